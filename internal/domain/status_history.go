package domain

import "time"

// StatusHistory is an immutable audit record of one ticket transition.
// PreviousStatus is nil only on the creation record. The ordered sequence of
// records for a ticket replays to its current status.
type StatusHistory struct {
	ID             string
	TicketID       string
	PreviousStatus *TicketStatus
	NewStatus      TicketStatus
	ChangedBy      string
	Reason         string
	Metadata       map[string]any
	CreatedAt      time.Time
}
