package events

import (
	"time"

	"github.com/spec-kit/process-ticket-service/internal/domain"
)

// EventType enumerates workflow event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventStatusChanged       EventType = "status_changed"
	EventCommentAdded        EventType = "comment_added"
	EventApproachingDeadline EventType = "approaching_deadline"
	EventTicketLive          EventType = "ticket_live"
)

// Event is a workflow signal emitted after a committed mutation. Events are
// not persisted; only their downstream notification records are.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	ComponentID string `json:"component_id"`
	CreatedBy   string `json:"created_by"`
}

// StatusChangedPayload payload.
type StatusChangedPayload struct {
	ComponentID    string              `json:"component_id"`
	PreviousStatus domain.TicketStatus `json:"previous_status"`
	NewStatus      domain.TicketStatus `json:"new_status"`
	ChangedBy      string              `json:"changed_by"`
}

// CommentAddedPayload payload.
type CommentAddedPayload struct {
	CommentID   string `json:"comment_id"`
	AuthorID    string `json:"author_id"`
	RecipientID string `json:"recipient_id"`
}

// ApproachingDeadlinePayload payload.
type ApproachingDeadlinePayload struct {
	Deadline time.Time `json:"deadline"`
}

// TicketLivePayload payload.
type TicketLivePayload struct {
	ComponentID string `json:"component_id"`
}
