package dto

import (
	"time"

	"github.com/spec-kit/process-ticket-service/internal/domain"
)

// NotificationResponse represents one delivery record.
type NotificationResponse struct {
	ID           string                    `json:"id"`
	Type         domain.NotificationType   `json:"type"`
	Recipient    string                    `json:"recipient"`
	Subject      string                    `json:"subject"`
	Status       domain.NotificationStatus `json:"status"`
	SentAt       *time.Time                `json:"sent_at"`
	DeliveredAt  *time.Time                `json:"delivered_at"`
	ErrorMessage string                    `json:"error_message,omitempty"`
	CreatedAt    time.Time                 `json:"created_at"`
}
