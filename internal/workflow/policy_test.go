package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/process-ticket-service/internal/domain"
)

func TestDefaultTableAdjacency(t *testing.T) {
	table := DefaultTable()

	allowed := map[domain.TicketStatus][]domain.TicketStatus{
		domain.StatusDraft:       {domain.StatusInProgress, domain.StatusOnHold},
		domain.StatusInProgress:  {domain.StatusUnderReview, domain.StatusOnHold},
		domain.StatusUnderReview: {domain.StatusApproved, domain.StatusInProgress, domain.StatusOnHold},
		domain.StatusApproved:    {domain.StatusScheduled, domain.StatusUnderReview},
		domain.StatusScheduled:   {domain.StatusLive, domain.StatusApproved},
		domain.StatusLive:        {domain.StatusClosed},
		domain.StatusOnHold:      {domain.StatusDraft, domain.StatusInProgress, domain.StatusUnderReview},
		domain.StatusClosed:      {},
	}

	authority := NewAuthority(table)
	for _, current := range domain.TicketStatuses {
		allowedSet := map[domain.TicketStatus]bool{}
		for _, target := range allowed[current] {
			allowedSet[target] = true
		}
		for _, target := range domain.TicketStatuses {
			got := authority.Allows(current, target, domain.RoleProcessTeam)
			assert.Equal(t, allowedSet[target], got, "process_team %s -> %s", current, target)
		}
	}
}

func TestAuthorityAdminAllowsEverything(t *testing.T) {
	authority := NewAuthority(DefaultTable())
	for _, current := range domain.TicketStatuses {
		for _, target := range domain.TicketStatuses {
			assert.True(t, authority.Allows(current, target, domain.RoleAdmin), "admin %s -> %s", current, target)
		}
	}
}

func TestAuthoritySupervisorBlockedOnlyFromClosing(t *testing.T) {
	authority := NewAuthority(DefaultTable())
	for _, current := range domain.TicketStatuses {
		for _, target := range domain.TicketStatuses {
			got := authority.Allows(current, target, domain.RoleSupervisor)
			if target == domain.StatusClosed {
				assert.False(t, got, "supervisor %s -> closed", current)
			} else {
				assert.True(t, got, "supervisor %s -> %s", current, target)
			}
		}
	}
}

func TestAuthorityClosedIsTerminalForTableRoles(t *testing.T) {
	authority := NewAuthority(DefaultTable())
	for _, target := range domain.TicketStatuses {
		assert.False(t, authority.Allows(domain.StatusClosed, target, domain.RoleAgent))
		assert.False(t, authority.Allows(domain.StatusClosed, target, domain.RoleProcessTeam))
	}
}

func TestAuthorityUnknownRoleFallsBackToTable(t *testing.T) {
	authority := NewAuthority(DefaultTable())
	assert.True(t, authority.Allows(domain.StatusDraft, domain.StatusInProgress, domain.UserRole("viewer")))
	assert.False(t, authority.Allows(domain.StatusDraft, domain.StatusLive, domain.UserRole("viewer")))
}
