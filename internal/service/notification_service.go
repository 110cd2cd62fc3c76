package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/process-ticket-service/internal/config"
	"github.com/spec-kit/process-ticket-service/internal/domain"
	"github.com/spec-kit/process-ticket-service/internal/events"
	"github.com/spec-kit/process-ticket-service/internal/notify"
	"github.com/spec-kit/process-ticket-service/internal/observability"
	"github.com/spec-kit/process-ticket-service/internal/repository"
)

// NotificationService reacts to workflow events: it resolves recipients,
// renders the named template, attempts delivery through the sink, and writes
// one NotificationRecord per attempt. Failures are recorded, never raised
// back to the workflow.
type NotificationService struct {
	tickets       repository.TicketRepository
	users         repository.UserRepository
	components    repository.ComponentRepository
	comments      repository.CommentRepository
	templates     repository.EmailTemplateRepository
	notifications repository.NotificationRepository
	sink          notify.EmailSink
	dispatcher    events.Dispatcher
	metrics       *observability.Metrics
	logger        *zap.Logger
	cfg           config.NotificationConfig
	now           func() time.Time
}

// NotificationDependencies bundles collaborators for the notification service.
type NotificationDependencies struct {
	TicketRepo       repository.TicketRepository
	UserRepo         repository.UserRepository
	ComponentRepo    repository.ComponentRepository
	CommentRepo      repository.CommentRepository
	TemplateRepo     repository.EmailTemplateRepository
	NotificationRepo repository.NotificationRepository
	Sink             notify.EmailSink
	Dispatcher       events.Dispatcher
	Metrics          *observability.Metrics
	Logger           *zap.Logger
	Config           config.NotificationConfig
	Clock            func() time.Time
}

// NewNotificationService creates the service.
func NewNotificationService(deps NotificationDependencies) *NotificationService {
	svc := &NotificationService{
		tickets:       deps.TicketRepo,
		users:         deps.UserRepo,
		components:    deps.ComponentRepo,
		comments:      deps.CommentRepo,
		templates:     deps.TemplateRepo,
		notifications: deps.NotificationRepo,
		sink:          deps.Sink,
		dispatcher:    deps.Dispatcher,
		metrics:       deps.Metrics,
		logger:        deps.Logger,
		cfg:           deps.Config,
		now:           deps.Clock,
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	if svc.now == nil {
		svc.now = time.Now
	}
	return svc
}

// RegisterHandlers subscribes one handler per event type.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, n.guard(events.EventTicketCreated, n.handleTicketCreated))
	n.dispatcher.Subscribe(events.EventStatusChanged, n.guard(events.EventStatusChanged, n.handleStatusChanged))
	n.dispatcher.Subscribe(events.EventCommentAdded, n.guard(events.EventCommentAdded, n.handleCommentAdded))
	n.dispatcher.Subscribe(events.EventApproachingDeadline, n.guard(events.EventApproachingDeadline, n.handleApproachingDeadline))
	n.dispatcher.Subscribe(events.EventTicketLive, n.guard(events.EventTicketLive, n.handleTicketLive))
}

// guard converts a handler failure into a single failed NotificationRecord
// with a best-effort recipient, so failures are never silently dropped.
func (n *NotificationService) guard(eventType events.EventType, handler events.EventHandler) events.EventHandler {
	return func(ctx context.Context, event events.Event) error {
		err := handler(ctx, event)
		if err == nil {
			return nil
		}
		n.logger.Error("notification handler failed",
			zap.String("event_type", string(eventType)),
			zap.String("ticket_id", event.TicketID),
			zap.Error(err))

		record := &domain.Notification{
			Type:         domain.NotificationEmail,
			Recipient:    "unknown",
			Subject:      "Notification Failed",
			Content:      fmt.Sprintf("Failed to send %s notification", eventType),
			Status:       domain.NotificationFailed,
			ErrorMessage: err.Error(),
			Metadata: map[string]any{
				"ticketId":         event.TicketID,
				"notificationType": string(eventType),
			},
		}
		if createErr := n.notifications.Create(ctx, record); createErr != nil {
			n.logger.Error("failed to persist failure record", zap.Error(createErr))
		}
		n.metrics.RecordNotification(string(eventType), domain.NotificationFailed)
		return nil
	}
}

func (n *NotificationService) handleTicketCreated(ctx context.Context, event events.Event) error {
	ticket, err := n.loadTicket(ctx, event.TicketID)
	if err != nil || ticket == nil {
		return err
	}
	component, err := n.loadComponent(ctx, ticket.ComponentID)
	if err != nil || component == nil {
		return err
	}
	if !component.NotificationSettings.TicketCreated {
		return nil
	}
	tmpl, err := n.loadTemplate(ctx, "ticket_created")
	if err != nil || tmpl == nil {
		return err
	}
	creator, err := n.users.GetByID(ctx, ticket.CreatedBy)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	vars := map[string]string{
		"ticketTitle":   ticket.Title,
		"componentName": component.Name,
		"status":        string(ticket.Status),
		"ticketUrl":     n.ticketURL(ticket.ID),
	}
	if creator != nil {
		vars["createdBy"] = creator.FullName()
	}
	n.deliver(ctx, event, tmpl, component.Email, vars)
	return nil
}

func (n *NotificationService) handleStatusChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.StatusChangedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for status_changed", event.Payload)
	}
	ticket, err := n.loadTicket(ctx, event.TicketID)
	if err != nil || ticket == nil {
		return err
	}
	component, err := n.loadComponent(ctx, ticket.ComponentID)
	if err != nil || component == nil {
		return err
	}
	if !component.NotificationSettings.StatusChanged {
		return nil
	}
	tmpl, err := n.loadTemplate(ctx, "status_changed")
	if err != nil || tmpl == nil {
		return err
	}
	changedBy, err := n.users.GetByID(ctx, payload.ChangedBy)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	vars := map[string]string{
		"ticketTitle":    ticket.Title,
		"componentName":  component.Name,
		"previousStatus": string(payload.PreviousStatus),
		"newStatus":      string(payload.NewStatus),
		"ticketUrl":      n.ticketURL(ticket.ID),
	}
	if changedBy != nil {
		vars["changedBy"] = changedBy.FullName()
	}
	n.deliver(ctx, event, tmpl, component.Email, vars)
	return nil
}

func (n *NotificationService) handleCommentAdded(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.CommentAddedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for comment_added", event.Payload)
	}
	ticket, err := n.loadTicket(ctx, event.TicketID)
	if err != nil || ticket == nil {
		return err
	}
	comment, err := n.comments.GetByID(ctx, payload.CommentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return err
	}
	if comment.IsInternal {
		return nil
	}
	tmpl, err := n.loadTemplate(ctx, "comment_added")
	if err != nil || tmpl == nil {
		return err
	}
	recipient, err := n.users.GetByID(ctx, payload.RecipientID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return err
	}
	author, err := n.users.GetByID(ctx, payload.AuthorID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	vars := map[string]string{
		"ticketTitle":    ticket.Title,
		"commentContent": comment.Content,
		"ticketUrl":      n.ticketURL(ticket.ID),
	}
	if author != nil {
		vars["authorName"] = author.FullName()
	}
	n.deliver(ctx, event, tmpl, recipient.Email, vars)
	return nil
}

func (n *NotificationService) handleApproachingDeadline(ctx context.Context, event events.Event) error {
	ticket, err := n.loadTicket(ctx, event.TicketID)
	if err != nil || ticket == nil {
		return err
	}
	if ticket.Deadline == nil || ticket.AssignedTo == nil {
		return nil
	}
	tmpl, err := n.loadTemplate(ctx, "approaching_deadline")
	if err != nil || tmpl == nil {
		return err
	}
	assignee, err := n.users.GetByID(ctx, *ticket.AssignedTo)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return err
	}

	vars := map[string]string{
		"ticketTitle": ticket.Title,
		"deadline":    ticket.Deadline.Format("2006-01-02"),
		"ticketUrl":   n.ticketURL(ticket.ID),
	}
	n.deliver(ctx, event, tmpl, assignee.Email, vars)
	return nil
}

// handleTicketLive broadcasts to every active agent. Recipients are
// independent: one failed delivery never blocks the rest, and each attempt
// gets its own record.
func (n *NotificationService) handleTicketLive(ctx context.Context, event events.Event) error {
	ticket, err := n.loadTicket(ctx, event.TicketID)
	if err != nil || ticket == nil {
		return err
	}
	component, err := n.loadComponent(ctx, ticket.ComponentID)
	if err != nil || component == nil {
		return err
	}
	tmpl, err := n.loadTemplate(ctx, "ticket_live")
	if err != nil || tmpl == nil {
		return err
	}
	agents, err := n.users.ListActiveByRole(ctx, domain.RoleAgent)
	if err != nil {
		return err
	}

	vars := map[string]string{
		"ticketTitle":   ticket.Title,
		"componentName": component.Name,
		"ticketUrl":     n.ticketURL(ticket.ID),
	}
	for _, agent := range agents {
		n.deliver(ctx, event, tmpl, agent.Email, vars)
	}
	return nil
}

// deliver renders the template, attempts one delivery, and writes exactly
// one NotificationRecord reflecting the outcome.
func (n *NotificationService) deliver(ctx context.Context, event events.Event, tmpl *domain.EmailTemplate, recipient string, vars map[string]string) {
	subject := notify.Render(tmpl.Subject, vars)
	body := notify.Render(tmpl.Body, vars)

	record := &domain.Notification{
		Type:      domain.NotificationEmail,
		Recipient: recipient,
		Subject:   subject,
		Content:   body,
		Metadata: map[string]any{
			"ticketId":         event.TicketID,
			"notificationType": string(event.Type),
		},
	}

	if err := n.sink.Send(ctx, recipient, subject, body); err != nil {
		record.Status = domain.NotificationFailed
		record.ErrorMessage = err.Error()
	} else {
		sentAt := n.now()
		record.Status = domain.NotificationSent
		record.SentAt = &sentAt
	}

	if err := n.notifications.Create(ctx, record); err != nil {
		n.logger.Error("failed to persist notification record",
			zap.String("recipient", recipient),
			zap.String("event_type", string(event.Type)),
			zap.Error(err))
		return
	}
	n.metrics.RecordNotification(string(event.Type), record.Status)
}

// loadTicket returns nil without error when the ticket vanished; the event
// is then stale and the handler is a no-op.
func (n *NotificationService) loadTicket(ctx context.Context, id string) (*domain.Ticket, error) {
	ticket, err := n.tickets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return ticket, nil
}

func (n *NotificationService) loadComponent(ctx context.Context, id string) (*domain.Component, error) {
	component, err := n.components.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return component, nil
}

// loadTemplate returns nil without error when the template is absent or
// inactive: the event type is then administratively muted.
func (n *NotificationService) loadTemplate(ctx context.Context, name string) (*domain.EmailTemplate, error) {
	tmpl, err := n.templates.FindActiveByName(ctx, name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return tmpl, nil
}

func (n *NotificationService) ticketURL(ticketID string) string {
	return fmt.Sprintf("%s/tickets/%s", n.cfg.FrontendURL, ticketID)
}
