package domain

import "time"

// Category is a routing catalog entry. Its name is matched (normalized)
// against staff departments when a ticket is assigned.
type Category struct {
	ID        string
	Code      string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}
