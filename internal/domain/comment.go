package domain

import "time"

// Comment captures discussion on a ticket. Internal comments are visible to
// operators only and never trigger notifications.
type Comment struct {
	ID         string
	TicketID   string
	AuthorID   string
	Content    string
	IsInternal bool
	IsResolved bool
	ResolvedBy *string
	ResolvedAt *time.Time
	CreatedAt  time.Time
}
