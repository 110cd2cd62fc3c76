package domain

import "time"

// Brand tags tickets with the product lines they affect.
type Brand struct {
	ID          string
	Name        string
	Description string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
