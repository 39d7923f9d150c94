package domain

import "time"

// Category classifies the kind of issue a ticket reports.
type Category struct {
	ID          string
	Name        string
	Description string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
