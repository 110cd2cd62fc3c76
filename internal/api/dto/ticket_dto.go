package dto

import (
	"time"

	"github.com/spec-kit/process-ticket-service/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title         string                `json:"title"`
	Description   string                `json:"description"`
	ComponentID   string                `json:"component_id"`
	Priority      domain.TicketPriority `json:"priority"`
	ScheduledDate *time.Time            `json:"scheduled_date"`
	Deadline      *time.Time            `json:"deadline"`
	Tags          []string              `json:"tags"`
	Metadata      map[string]any        `json:"metadata"`
	BrandIDs      []string              `json:"brand_ids"`
	AssignedTo    *string               `json:"assigned_to"`
}

// UpdateStatusRequest payload for a single transition.
type UpdateStatusRequest struct {
	Status     domain.TicketStatus `json:"status"`
	Reason     string              `json:"reason"`
	AssignedTo *string             `json:"assigned_to"`
}

// BulkUpdateStatusRequest payload for a bulk transition.
type BulkUpdateStatusRequest struct {
	TicketIDs []string            `json:"ticket_ids"`
	Status    domain.TicketStatus `json:"status"`
	Reason    string              `json:"reason"`
}

// CreateCommentRequest payload.
type CreateCommentRequest struct {
	Content    string `json:"content"`
	IsInternal bool   `json:"is_internal"`
}

// TicketSummary response.
type TicketSummary struct {
	ID            string                `json:"id"`
	Title         string                `json:"title"`
	Status        domain.TicketStatus   `json:"status"`
	Priority      domain.TicketPriority `json:"priority"`
	ComponentID   string                `json:"component_id"`
	AssignedTo    *string               `json:"assigned_to"`
	ScheduledDate *time.Time            `json:"scheduled_date"`
	PublishedDate *time.Time            `json:"published_date"`
	Deadline      *time.Time            `json:"deadline"`
	Tags          []string              `json:"tags"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

// TicketDetailResponse provides full ticket info.
type TicketDetailResponse struct {
	TicketSummary
	Description string             `json:"description"`
	CreatedBy   string             `json:"created_by"`
	Metadata    map[string]any     `json:"metadata,omitempty"`
	Component   *ComponentResponse `json:"component,omitempty"`
	Partner     *PartnerResponse   `json:"partner,omitempty"`
	Brands      []BrandResponse    `json:"brands"`
}

// ComponentResponse metadata.
type ComponentResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// PartnerResponse metadata.
type PartnerResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Timezone string `json:"timezone"`
}

// BrandResponse metadata.
type BrandResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CommentResponse represents a ticket comment.
type CommentResponse struct {
	ID         string    `json:"id"`
	TicketID   string    `json:"ticket_id"`
	AuthorID   string    `json:"author_id"`
	Content    string    `json:"content"`
	IsInternal bool      `json:"is_internal"`
	CreatedAt  time.Time `json:"created_at"`
}

// StatusHistoryResponse represents one audit entry.
type StatusHistoryResponse struct {
	ID             string               `json:"id"`
	TicketID       string               `json:"ticket_id"`
	PreviousStatus *domain.TicketStatus `json:"previous_status"`
	NewStatus      domain.TicketStatus  `json:"new_status"`
	ChangedBy      string               `json:"changed_by"`
	Reason         string               `json:"reason"`
	CreatedAt      time.Time            `json:"created_at"`
}

// BulkOutcomeResponse reports the per-ticket result of a bulk transition.
type BulkOutcomeResponse struct {
	TicketID string         `json:"ticket_id"`
	Success  bool           `json:"success"`
	Ticket   *TicketSummary `json:"ticket,omitempty"`
	Error    *ErrorBody     `json:"error,omitempty"`
}

// ErrorBody mirrors the error envelope used by the global error middleware.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
