package domain

import "time"

// TicketStatus enumerates lifecycle states for process tickets.
type TicketStatus string

const (
	StatusDraft       TicketStatus = "draft"
	StatusInProgress  TicketStatus = "in_progress"
	StatusUnderReview TicketStatus = "under_review"
	StatusApproved    TicketStatus = "approved"
	StatusScheduled   TicketStatus = "scheduled"
	StatusLive        TicketStatus = "live"
	StatusOnHold      TicketStatus = "on_hold"
	StatusClosed      TicketStatus = "closed"
)

// TicketStatuses lists every valid status, in lifecycle order.
var TicketStatuses = []TicketStatus{
	StatusDraft,
	StatusInProgress,
	StatusUnderReview,
	StatusApproved,
	StatusScheduled,
	StatusLive,
	StatusOnHold,
	StatusClosed,
}

// Valid reports whether s is a known status value.
func (s TicketStatus) Valid() bool {
	for _, candidate := range TicketStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// TicketPriority enumerates urgency levels.
type TicketPriority string

const (
	PriorityLow      TicketPriority = "low"
	PriorityMedium   TicketPriority = "medium"
	PriorityHigh     TicketPriority = "high"
	PriorityCritical TicketPriority = "critical"
)

// Valid reports whether p is a known priority value.
func (p TicketPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// Ticket is the aggregate for a process change request. Status moves only
// through validated transitions; rows are soft-deactivated, never deleted.
// PublishedDate is stamped the first time the ticket reaches live.
type Ticket struct {
	ID            string
	Title         string
	Description   string
	Status        TicketStatus
	Priority      TicketPriority
	ComponentID   string
	CreatedBy     string
	AssignedTo    *string
	ScheduledDate *time.Time
	PublishedDate *time.Time
	Deadline      *time.Time
	Tags          []string
	Metadata      map[string]any
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
