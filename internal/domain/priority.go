package domain

import "time"

// Priority is a catalog entry describing ticket urgency. The set of
// priorities is administered alongside departments and categories rather
// than fixed in code.
type Priority struct {
	ID        string
	Name      string
	Rank      int
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
