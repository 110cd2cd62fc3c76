package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/process-ticket-service/internal/domain"
	"github.com/spec-kit/process-ticket-service/internal/events"
	"github.com/spec-kit/process-ticket-service/internal/observability"
	"github.com/spec-kit/process-ticket-service/internal/repository"
	"github.com/spec-kit/process-ticket-service/internal/workflow"
	apperrors "github.com/spec-kit/process-ticket-service/pkg/util/errorutil"
)

// Actor identifies the caller of a workflow operation.
type Actor struct {
	ID   string
	Role domain.UserRole
}

// WorkflowService orchestrates ticket transitions: validate, persist, audit,
// notify. It is the only writer of ticket status.
type WorkflowService struct {
	store      repository.WorkflowStore
	history    repository.StatusHistoryRepository
	comments   repository.CommentRepository
	authority  *workflow.Authority
	locks      TicketLocker
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	now        func() time.Time
}

// WorkflowDependencies bundles collaborators for the workflow service.
type WorkflowDependencies struct {
	Store       repository.WorkflowStore
	HistoryRepo repository.StatusHistoryRepository
	CommentRepo repository.CommentRepository
	Authority   *workflow.Authority
	Locks       TicketLocker
	Dispatcher  events.Dispatcher
	Metrics     *observability.Metrics
	Logger      *zap.Logger
	Clock       func() time.Time
}

// NewWorkflowService constructs the service.
func NewWorkflowService(deps WorkflowDependencies) *WorkflowService {
	svc := &WorkflowService{
		store:      deps.Store,
		history:    deps.HistoryRepo,
		comments:   deps.CommentRepo,
		authority:  deps.Authority,
		locks:      deps.Locks,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
		now:        deps.Clock,
	}
	if svc.authority == nil {
		svc.authority = workflow.NewAuthority(workflow.DefaultTable())
	}
	if svc.locks == nil {
		svc.locks = NewMemoryTicketLocker()
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	if svc.now == nil {
		svc.now = time.Now
	}
	return svc
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title         string
	Description   string
	ComponentID   string
	Priority      domain.TicketPriority
	ScheduledDate *time.Time
	Deadline      *time.Time
	Tags          []string
	Metadata      map[string]any
	BrandIDs      []string
	AssignedTo    *string
}

// CreateTicket persists a new ticket in draft, appends the creation audit
// record, and emits ticket_created. Creation is reserved for the process
// team and above.
func (s *WorkflowService) CreateTicket(ctx context.Context, actor Actor, input TicketCreateInput) (*domain.Ticket, error) {
	switch actor.Role {
	case domain.RoleProcessTeam, domain.RoleSupervisor, domain.RoleAdmin:
	default:
		return nil, apperrors.NewForbidden("role may not create tickets", map[string]any{"role": actor.Role})
	}

	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if title == "" || description == "" || input.ComponentID == "" {
		return nil, apperrors.NewValidationError("title, description and component_id are required", nil)
	}
	if input.Priority == "" {
		input.Priority = domain.PriorityMedium
	}
	if !input.Priority.Valid() {
		return nil, apperrors.NewValidationError("unknown priority", map[string]any{"priority": input.Priority})
	}

	ticket := &domain.Ticket{
		Title:         title,
		Description:   description,
		Status:        domain.StatusDraft,
		Priority:      input.Priority,
		ComponentID:   input.ComponentID,
		CreatedBy:     actor.ID,
		AssignedTo:    input.AssignedTo,
		ScheduledDate: input.ScheduledDate,
		Deadline:      input.Deadline,
		Tags:          input.Tags,
		Metadata:      input.Metadata,
		IsActive:      true,
	}
	record := &domain.StatusHistory{
		NewStatus: domain.StatusDraft,
		ChangedBy: actor.ID,
		Reason:    "created",
	}

	if err := s.store.CreateTicket(ctx, ticket, record, input.BrandIDs); err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Payload: events.TicketCreatedPayload{
			ComponentID: ticket.ComponentID,
			CreatedBy:   ticket.CreatedBy,
		},
	})
	return ticket, nil
}

// Transition moves one ticket to target. The status change and its audit
// record commit atomically under a per-ticket lock; notification is
// best-effort after commit.
func (s *WorkflowService) Transition(ctx context.Context, ticketID string, target domain.TicketStatus, actor Actor, reason string, reassignTo *string) (*domain.Ticket, error) {
	if !target.Valid() {
		return nil, apperrors.NewValidationError("unknown target status", map[string]any{"status": target})
	}

	release, err := s.locks.Acquire(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	defer release()

	ticket, err := s.store.GetTicket(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.NewStorageFailure(err)
	}

	if !s.authority.Allows(ticket.Status, target, actor.Role) {
		return nil, apperrors.NewForbidden("status change not allowed", map[string]any{
			"current_status": ticket.Status,
			"target_status":  target,
			"role":           actor.Role,
		})
	}

	// A cancellation arriving before the commit must leave no trace.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	previous := ticket.Status
	ticket.Status = target
	if target == domain.StatusLive && ticket.PublishedDate == nil {
		published := s.now()
		ticket.PublishedDate = &published
	}
	if reassignTo != nil {
		ticket.AssignedTo = reassignTo
	}

	if reason == "" {
		reason = fmt.Sprintf("Status changed from %s to %s", previous, target)
	}
	record := &domain.StatusHistory{
		TicketID:       ticket.ID,
		PreviousStatus: &previous,
		NewStatus:      target,
		ChangedBy:      actor.ID,
		Reason:         reason,
	}

	if err := s.store.ApplyTransition(ctx, ticket, record); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.NewStorageFailure(err)
	}

	s.metrics.RecordTransition(previous, target)

	s.publishEvent(ctx, events.Event{
		Type:     events.EventStatusChanged,
		TicketID: ticket.ID,
		Payload: events.StatusChangedPayload{
			ComponentID:    ticket.ComponentID,
			PreviousStatus: previous,
			NewStatus:      target,
			ChangedBy:      actor.ID,
		},
	})
	if target == domain.StatusLive {
		s.publishEvent(ctx, events.Event{
			Type:     events.EventTicketLive,
			TicketID: ticket.ID,
			Payload:  events.TicketLivePayload{ComponentID: ticket.ComponentID},
		})
	}
	return ticket, nil
}

// BulkOutcome reports the result for one id of a bulk transition.
type BulkOutcome struct {
	TicketID string
	Ticket   *domain.Ticket
	Err      error
}

// Succeeded reports whether the item committed.
func (o BulkOutcome) Succeeded() bool { return o.Err == nil }

// BulkTransition applies Transition to each id independently. One outcome is
// reported per input id, in input order; a failing item never aborts the
// rest. Only supervisors and admins may invoke it.
func (s *WorkflowService) BulkTransition(ctx context.Context, ticketIDs []string, target domain.TicketStatus, actor Actor, reason string) ([]BulkOutcome, error) {
	if actor.Role != domain.RoleSupervisor && actor.Role != domain.RoleAdmin {
		return nil, apperrors.NewForbidden("bulk status change requires supervisor role", map[string]any{"role": actor.Role})
	}
	if len(ticketIDs) == 0 {
		return nil, apperrors.NewValidationError("ticket_ids must not be empty", nil)
	}
	if !target.Valid() {
		return nil, apperrors.NewValidationError("unknown target status", map[string]any{"status": target})
	}

	outcomes := make([]BulkOutcome, len(ticketIDs))
	var wg sync.WaitGroup
	for i, id := range ticketIDs {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			ticket, err := s.Transition(ctx, id, target, actor, reason, nil)
			outcomes[i] = BulkOutcome{TicketID: id, Ticket: ticket, Err: err}
		}(i, id)
	}
	wg.Wait()
	return outcomes, nil
}

// AddComment appends discussion to a ticket. A public comment by someone
// other than the creator notifies the creator.
func (s *WorkflowService) AddComment(ctx context.Context, ticketID string, actor Actor, content string, isInternal bool) (*domain.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.NewValidationError("content is required", nil)
	}

	ticket, err := s.store.GetTicket(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.NewStorageFailure(err)
	}

	comment := &domain.Comment{
		TicketID:   ticket.ID,
		AuthorID:   actor.ID,
		Content:    content,
		IsInternal: isInternal,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}

	if !isInternal && ticket.CreatedBy != actor.ID {
		s.publishEvent(ctx, events.Event{
			Type:     events.EventCommentAdded,
			TicketID: ticket.ID,
			Payload: events.CommentAddedPayload{
				CommentID:   comment.ID,
				AuthorID:    actor.ID,
				RecipientID: ticket.CreatedBy,
			},
		})
	}
	return comment, nil
}

// History returns the audit ledger for a ticket, oldest first.
func (s *WorkflowService) History(ctx context.Context, ticketID string) ([]domain.StatusHistory, error) {
	if _, err := s.store.GetTicket(ctx, ticketID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.NewStorageFailure(err)
	}
	records, err := s.history.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.NewStorageFailure(err)
	}
	return records, nil
}

// publishEvent emits a workflow event. Publication is best-effort: a full
// queue or closed dispatcher is logged, never surfaced to the caller.
func (s *WorkflowService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	if err := s.dispatcher.Publish(context.WithoutCancel(ctx), event); err != nil {
		s.logger.Warn("event publish failed",
			zap.String("event_type", string(event.Type)),
			zap.String("ticket_id", event.TicketID),
			zap.Error(err))
	}
}
