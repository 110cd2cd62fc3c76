package domain

import "time"

// Partner represents an external organization whose components receive
// process tickets. Managed by the administrative surface; read-only here.
type Partner struct {
	ID            string
	Name          string
	Email         string
	ContactPerson string
	Phone         string
	Timezone      string
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
