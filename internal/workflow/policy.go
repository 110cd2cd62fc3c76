// Package workflow holds the pure transition rules for process tickets:
// the fixed status adjacency table and the per-role policies layered on top.
// Nothing here touches storage; every decision is deterministic.
package workflow

import "github.com/spec-kit/process-ticket-service/internal/domain"

// Table maps each status to the statuses it may move to. A status missing
// from the table, or an empty entry, is a dead end.
type Table map[domain.TicketStatus][]domain.TicketStatus

// DefaultTable returns the standard process workflow graph.
func DefaultTable() Table {
	return Table{
		domain.StatusDraft:       {domain.StatusInProgress, domain.StatusOnHold},
		domain.StatusInProgress:  {domain.StatusUnderReview, domain.StatusOnHold},
		domain.StatusUnderReview: {domain.StatusApproved, domain.StatusInProgress, domain.StatusOnHold},
		domain.StatusApproved:    {domain.StatusScheduled, domain.StatusUnderReview},
		domain.StatusScheduled:   {domain.StatusLive, domain.StatusApproved},
		domain.StatusLive:        {domain.StatusClosed},
		domain.StatusOnHold:      {domain.StatusDraft, domain.StatusInProgress, domain.StatusUnderReview},
		domain.StatusClosed:      {},
	}
}

// allows reports whether the table permits current -> target.
func (t Table) allows(current, target domain.TicketStatus) bool {
	for _, candidate := range t[current] {
		if candidate == target {
			return true
		}
	}
	return false
}

// rolePolicy decides a transition for one role capability set.
type rolePolicy interface {
	allows(table Table, current, target domain.TicketStatus) bool
}

// adminPolicy may perform any transition, including ones absent from the table.
type adminPolicy struct{}

func (adminPolicy) allows(Table, domain.TicketStatus, domain.TicketStatus) bool { return true }

// supervisorPolicy may perform any transition except into closed.
type supervisorPolicy struct{}

func (supervisorPolicy) allows(_ Table, _, target domain.TicketStatus) bool {
	return target != domain.StatusClosed
}

// tablePolicy restricts a role to the adjacency table.
type tablePolicy struct{}

func (tablePolicy) allows(table Table, current, target domain.TicketStatus) bool {
	return table.allows(current, target)
}

// Authority validates status transitions for a role. It is safe for
// concurrent use and callable without a persisted ticket.
type Authority struct {
	table    Table
	policies map[domain.UserRole]rolePolicy
}

// NewAuthority builds an authority over the given table.
func NewAuthority(table Table) *Authority {
	return &Authority{
		table: table,
		policies: map[domain.UserRole]rolePolicy{
			domain.RoleAdmin:      adminPolicy{},
			domain.RoleSupervisor: supervisorPolicy{},
		},
	}
}

// Allows reports whether role may move a ticket from current to target.
// Roles without an elevated policy fall back to the table adjacency.
func (a *Authority) Allows(current, target domain.TicketStatus, role domain.UserRole) bool {
	policy, ok := a.policies[role]
	if !ok {
		policy = tablePolicy{}
	}
	return policy.allows(a.table, current, target)
}
