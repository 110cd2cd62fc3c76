package domain

import "time"

// NotificationType enumerates delivery channels.
type NotificationType string

const (
	NotificationEmail NotificationType = "email"
	NotificationSMS   NotificationType = "sms"
	NotificationInApp NotificationType = "in_app"
)

// NotificationStatus tracks delivery progress. Records only ever advance.
type NotificationStatus string

const (
	NotificationPending   NotificationStatus = "pending"
	NotificationSent      NotificationStatus = "sent"
	NotificationFailed    NotificationStatus = "failed"
	NotificationDelivered NotificationStatus = "delivered"
)

// Notification is the persisted outcome of one delivery attempt.
type Notification struct {
	ID           string
	Type         NotificationType
	Recipient    string
	Subject      string
	Content      string
	Status       NotificationStatus
	SentAt       *time.Time
	DeliveredAt  *time.Time
	ErrorMessage string
	Metadata     map[string]any
	CreatedAt    time.Time
}
