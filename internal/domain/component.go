package domain

import "time"

// ComponentNotificationSettings toggles per-event delivery for a component.
type ComponentNotificationSettings struct {
	TicketCreated       bool `json:"ticketCreated"`
	StatusChanged       bool `json:"statusChanged"`
	CommentAdded        bool `json:"commentAdded"`
	ApproachingDeadline bool `json:"approachingDeadline"`
	TicketLive          bool `json:"ticketLive"`
}

// DefaultNotificationSettings enables every event type.
func DefaultNotificationSettings() ComponentNotificationSettings {
	return ComponentNotificationSettings{
		TicketCreated:       true,
		StatusChanged:       true,
		CommentAdded:        true,
		ApproachingDeadline: true,
		TicketLive:          true,
	}
}

// Component is the organizational unit that owns tickets. Its email is the
// shared mailbox notified on ticket events.
type Component struct {
	ID                   string
	PartnerID            string
	Name                 string
	Email                string
	Description          string
	Languages            []string
	IsActive             bool
	NotificationSettings ComponentNotificationSettings
	CreatedAt            time.Time
	UpdatedAt            time.Time
}
