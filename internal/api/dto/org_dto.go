package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// DepartmentRequest payload for creating or updating a department.
type DepartmentRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	IsActive    *bool  `json:"is_active,omitempty"`
}

// CategoryRequest payload for creating or updating a category.
type CategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	IsActive    *bool  `json:"is_active,omitempty"`
}

// PriorityRequest payload for creating or updating a priority.
type PriorityRequest struct {
	Name     string `json:"name"`
	Rank     int    `json:"rank"`
	IsActive *bool  `json:"is_active,omitempty"`
}

// CatalogEntryResponse is the admin view of a catalog entity.
type CatalogEntryResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Rank        *int      `json:"rank,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateStaffRequest payload for provisioning staff accounts.
type CreateStaffRequest struct {
	Name         string           `json:"name"`
	Email        string           `json:"email"`
	Password     string           `json:"password"`
	Role         domain.StaffRole `json:"role,omitempty"`
	DepartmentID *string          `json:"department_id,omitempty"`
}

// StaffActiveRequest payload for toggling an account.
type StaffActiveRequest struct {
	Active bool `json:"active"`
}

// StaffResponse is the admin view of a staff member.
type StaffResponse struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	Email        string           `json:"email"`
	Role         domain.StaffRole `json:"role"`
	DepartmentID *string          `json:"department_id,omitempty"`
	Active       bool             `json:"active"`
	CreatedAt    time.Time        `json:"created_at"`
}

// DepartmentEntry projects a department for admin listings.
func DepartmentEntry(d *domain.Department) CatalogEntryResponse {
	return CatalogEntryResponse{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		IsActive:    d.IsActive,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

// CategoryEntry projects a category for admin listings.
func CategoryEntry(c *domain.Category) CatalogEntryResponse {
	return CatalogEntryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		IsActive:    c.IsActive,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

// PriorityEntry projects a priority for admin listings.
func PriorityEntry(p *domain.Priority) CatalogEntryResponse {
	rank := p.Rank
	return CatalogEntryResponse{
		ID:        p.ID,
		Name:      p.Name,
		Rank:      &rank,
		IsActive:  p.IsActive,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// StaffEntry projects a staff member.
func StaffEntry(m *domain.StaffMember) StaffResponse {
	return StaffResponse{
		ID:           m.ID,
		Name:         m.Name,
		Email:        m.Email,
		Role:         m.Role,
		DepartmentID: m.DepartmentID,
		Active:       m.Active,
		CreatedAt:    m.CreatedAt,
	}
}
