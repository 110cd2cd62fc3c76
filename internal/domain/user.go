package domain

import "time"

// UserRole enumerates workflow roles.
type UserRole string

const (
	RoleAdmin       UserRole = "admin"
	RoleSupervisor  UserRole = "supervisor"
	RoleProcessTeam UserRole = "process_team"
	RoleAgent       UserRole = "agent"
)

// Valid reports whether the role is a known workflow role.
func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleSupervisor, RoleProcessTeam, RoleAgent:
		return true
	}
	return false
}

// User models an internal operator. Account provisioning and authentication
// live outside this service; users are read-only here.
type User struct {
	ID        string
	FirstName string
	LastName  string
	Email     string
	Role      UserRole
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// FullName returns the display name used in notification templates.
func (u User) FullName() string {
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
