package intake

import (
	"strings"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// Option is one selectable catalog entry offered as a suggestion chip.
type Option struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Catalog is a read-only snapshot of the option catalogs taken when a
// conversation starts. LoadErr records a partial or total fetch failure;
// the affected lists are simply empty and the engine keeps going.
type Catalog struct {
	Departments []Option
	Categories  []Option
	Priorities  []Option
	LoadErr     error
}

// BuildCatalog converts catalog domain entities into a conversation snapshot.
func BuildCatalog(depts []domain.Department, cats []domain.Category, pris []domain.Priority, loadErr error) Catalog {
	snapshot := Catalog{LoadErr: loadErr}
	for _, d := range depts {
		snapshot.Departments = append(snapshot.Departments, Option{ID: d.ID, Name: d.Name})
	}
	for _, c := range cats {
		snapshot.Categories = append(snapshot.Categories, Option{ID: c.ID, Name: c.Name})
	}
	for _, p := range pris {
		snapshot.Priorities = append(snapshot.Priorities, Option{ID: p.ID, Name: p.Name})
	}
	return snapshot
}

// Resolve matches user input against a list by case-insensitive name
// comparison.
func Resolve(options []Option, input string) (Option, bool) {
	needle := strings.TrimSpace(input)
	for _, opt := range options {
		if strings.EqualFold(opt.Name, needle) {
			return opt, true
		}
	}
	return Option{}, false
}

func optionNames(options []Option) []string {
	names := make([]string, 0, len(options))
	for _, opt := range options {
		names = append(names, opt.Name)
	}
	return names
}
