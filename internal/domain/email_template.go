package domain

import "time"

// EmailTemplate is a named subject/body pattern with {{variable}} placeholders.
// Owned by the administrative surface; the engine only reads active templates.
type EmailTemplate struct {
	ID          string
	Name        string
	Subject     string
	Body        string
	Variables   []string
	IsActive    bool
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
