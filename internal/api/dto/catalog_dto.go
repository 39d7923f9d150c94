package dto

import "github.com/spec-kit/helpdesk-service/internal/domain"

// CatalogOption is the public projection of a catalog entry.
type CatalogOption struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CatalogResponse bundles the three option catalogs.
type CatalogResponse struct {
	Departments []CatalogOption `json:"departments"`
	Categories  []CatalogOption `json:"categories"`
	Priorities  []CatalogOption `json:"priorities"`
}

// DepartmentOptions projects departments.
func DepartmentOptions(depts []domain.Department) []CatalogOption {
	out := make([]CatalogOption, 0, len(depts))
	for _, d := range depts {
		out = append(out, CatalogOption{ID: d.ID, Name: d.Name})
	}
	return out
}

// CategoryOptions projects categories.
func CategoryOptions(cats []domain.Category) []CatalogOption {
	out := make([]CatalogOption, 0, len(cats))
	for _, c := range cats {
		out = append(out, CatalogOption{ID: c.ID, Name: c.Name})
	}
	return out
}

// PriorityOptions projects priorities.
func PriorityOptions(pris []domain.Priority) []CatalogOption {
	out := make([]CatalogOption, 0, len(pris))
	for _, p := range pris {
		out = append(out, CatalogOption{ID: p.ID, Name: p.Name})
	}
	return out
}
