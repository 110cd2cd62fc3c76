package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/process-ticket-service/internal/config"
	"github.com/spec-kit/process-ticket-service/internal/domain"
	"github.com/spec-kit/process-ticket-service/internal/events"
)

type notificationFixture struct {
	svc        *NotificationService
	store      *memoryStore
	users      *fakeUsers
	components *fakeComponents
	templates  *fakeTemplates
	records    *fakeNotifications
	sink       *fakeSink
	comments   *memoryComments
	dispatcher events.Dispatcher
}

func newNotificationFixture(t *testing.T) *notificationFixture {
	t.Helper()

	store := newMemoryStore()
	f := &notificationFixture{
		store: store,
		users: &fakeUsers{users: map[string]*domain.User{
			"user-creator": {ID: "user-creator", FirstName: "Grace", LastName: "Hopper", Email: "grace@example.com", Role: domain.RoleProcessTeam, IsActive: true},
		}},
		components: &fakeComponents{components: map[string]*domain.Component{
			"component-1": {
				ID:                   "component-1",
				PartnerID:            "partner-1",
				Name:                 "Payments",
				Email:                "payments@example.com",
				NotificationSettings: domain.DefaultNotificationSettings(),
			},
		}},
		templates: &fakeTemplates{templates: map[string]*domain.EmailTemplate{
			"ticket_created":       {Name: "ticket_created", Subject: "New: {{ticketTitle}}", Body: "Created by {{createdBy}}", IsActive: true},
			"status_changed":       {Name: "status_changed", Subject: "{{ticketTitle}}: {{previousStatus}} -> {{newStatus}}", Body: "Changed by {{changedBy}}", IsActive: true},
			"comment_added":        {Name: "comment_added", Subject: "Comment on {{ticketTitle}}", Body: "{{authorName}}: {{commentContent}}", IsActive: true},
			"approaching_deadline": {Name: "approaching_deadline", Subject: "Due {{deadline}}", Body: "{{ticketTitle}} is due soon", IsActive: true},
			"ticket_live":          {Name: "ticket_live", Subject: "Live: {{ticketTitle}}", Body: "{{componentName}} is live at {{ticketUrl}}", IsActive: true},
		}},
		records:  &fakeNotifications{},
		sink:     &fakeSink{failFor: map[string]error{}},
		comments: &memoryComments{},
	}
	f.svc = NewNotificationService(NotificationDependencies{
		TicketRepo:       &fakeTickets{store: store},
		UserRepo:         f.users,
		ComponentRepo:    f.components,
		CommentRepo:      f.comments,
		TemplateRepo:     f.templates,
		NotificationRepo: f.records,
		Sink:             f.sink,
		Config:           config.NotificationConfig{FrontendURL: "http://ops.example.com"},
	})
	return f
}

func (f *notificationFixture) seedTicket(status domain.TicketStatus) *domain.Ticket {
	return f.store.put(&domain.Ticket{
		Title:       "Launch checklist",
		Description: "prepare launch",
		Status:      status,
		Priority:    domain.PriorityHigh,
		ComponentID: "component-1",
		CreatedBy:   "user-creator",
		IsActive:    true,
	})
}

func TestStatusChangedNotifiesComponent(t *testing.T) {
	f := newNotificationFixture(t)
	ticket := f.seedTicket(domain.StatusUnderReview)

	err := f.svc.handleStatusChanged(context.Background(), events.Event{
		Type:     events.EventStatusChanged,
		TicketID: ticket.ID,
		Payload: events.StatusChangedPayload{
			ComponentID:    ticket.ComponentID,
			PreviousStatus: domain.StatusInProgress,
			NewStatus:      domain.StatusUnderReview,
			ChangedBy:      "user-creator",
		},
	})
	require.NoError(t, err)

	require.Len(t, f.records.records, 1)
	record := f.records.records[0]
	assert.Equal(t, "payments@example.com", record.Recipient)
	assert.Equal(t, "Launch checklist: in_progress -> under_review", record.Subject)
	assert.Equal(t, "Changed by Grace Hopper", record.Content)
	assert.Equal(t, domain.NotificationSent, record.Status)
	require.NotNil(t, record.SentAt)
	assert.Equal(t, ticket.ID, record.Metadata["ticketId"])
}

func TestStatusChangedHonorsComponentSettings(t *testing.T) {
	f := newNotificationFixture(t)
	ticket := f.seedTicket(domain.StatusUnderReview)
	settings := f.components.components["component-1"].NotificationSettings
	settings.StatusChanged = false
	f.components.components["component-1"].NotificationSettings = settings

	err := f.svc.handleStatusChanged(context.Background(), events.Event{
		Type:     events.EventStatusChanged,
		TicketID: ticket.ID,
		Payload:  events.StatusChangedPayload{NewStatus: domain.StatusUnderReview, ChangedBy: "user-creator"},
	})
	require.NoError(t, err)
	assert.Empty(t, f.records.records)
	assert.Empty(t, f.sink.sent)
}

func TestMissingTemplateMutesEvent(t *testing.T) {
	f := newNotificationFixture(t)
	ticket := f.seedTicket(domain.StatusDraft)
	delete(f.templates.templates, "ticket_created")

	err := f.svc.handleTicketCreated(context.Background(), events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Payload:  events.TicketCreatedPayload{ComponentID: ticket.ComponentID, CreatedBy: ticket.CreatedBy},
	})
	require.NoError(t, err)
	assert.Empty(t, f.records.records)
}

func TestStaleEventIsNoOp(t *testing.T) {
	f := newNotificationFixture(t)

	err := f.svc.handleTicketCreated(context.Background(), events.Event{
		Type:     events.EventTicketCreated,
		TicketID: "gone",
	})
	require.NoError(t, err)
	assert.Empty(t, f.records.records)
}

func TestTicketLiveBroadcastIsolatesFailures(t *testing.T) {
	f := newNotificationFixture(t)
	ticket := f.seedTicket(domain.StatusLive)

	for _, agent := range []struct{ id, email string }{
		{"agent-1", "a1@example.com"},
		{"agent-2", "a2@example.com"},
		{"agent-3", "a3@example.com"},
	} {
		f.users.users[agent.id] = &domain.User{ID: agent.id, Email: agent.email, Role: domain.RoleAgent, IsActive: true}
	}
	f.sink.failFor["a2@example.com"] = errors.New("smtp refused")

	err := f.svc.handleTicketLive(context.Background(), events.Event{
		Type:     events.EventTicketLive,
		TicketID: ticket.ID,
		Payload:  events.TicketLivePayload{ComponentID: ticket.ComponentID},
	})
	require.NoError(t, err)

	require.Len(t, f.records.records, 3)
	byStatus := map[domain.NotificationStatus]int{}
	for _, record := range f.records.records {
		byStatus[record.Status]++
		if record.Status == domain.NotificationFailed {
			assert.Equal(t, "a2@example.com", record.Recipient)
			assert.Equal(t, "smtp refused", record.ErrorMessage)
		}
	}
	assert.Equal(t, 2, byStatus[domain.NotificationSent])
	assert.Equal(t, 1, byStatus[domain.NotificationFailed])
}

func TestCommentAddedSkipsInternal(t *testing.T) {
	f := newNotificationFixture(t)
	ticket := f.seedTicket(domain.StatusInProgress)

	comment := &domain.Comment{TicketID: ticket.ID, AuthorID: "agent-1", Content: "internal", IsInternal: true}
	require.NoError(t, f.comments.Create(context.Background(), comment))

	err := f.svc.handleCommentAdded(context.Background(), events.Event{
		Type:     events.EventCommentAdded,
		TicketID: ticket.ID,
		Payload:  events.CommentAddedPayload{CommentID: comment.ID, AuthorID: "agent-1", RecipientID: "user-creator"},
	})
	require.NoError(t, err)
	assert.Empty(t, f.records.records)
}

func TestCommentAddedNotifiesRecipient(t *testing.T) {
	f := newNotificationFixture(t)
	ticket := f.seedTicket(domain.StatusInProgress)
	f.users.users["agent-1"] = &domain.User{ID: "agent-1", FirstName: "Alan", LastName: "Turing", Email: "alan@example.com", Role: domain.RoleAgent, IsActive: true}

	comment := &domain.Comment{TicketID: ticket.ID, AuthorID: "agent-1", Content: "ready for review"}
	require.NoError(t, f.comments.Create(context.Background(), comment))

	err := f.svc.handleCommentAdded(context.Background(), events.Event{
		Type:     events.EventCommentAdded,
		TicketID: ticket.ID,
		Payload:  events.CommentAddedPayload{CommentID: comment.ID, AuthorID: "agent-1", RecipientID: "user-creator"},
	})
	require.NoError(t, err)

	require.Len(t, f.records.records, 1)
	record := f.records.records[0]
	assert.Equal(t, "grace@example.com", record.Recipient)
	assert.Equal(t, "Alan Turing: ready for review", record.Content)
}

func TestApproachingDeadlineNotifiesAssignee(t *testing.T) {
	f := newNotificationFixture(t)
	deadline := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	assignee := "agent-1"
	f.users.users[assignee] = &domain.User{ID: assignee, Email: "alan@example.com", Role: domain.RoleAgent, IsActive: true}

	ticket := f.store.put(&domain.Ticket{
		Title:       "Quarterly report",
		Description: "d",
		Status:      domain.StatusInProgress,
		Priority:    domain.PriorityMedium,
		ComponentID: "component-1",
		CreatedBy:   "user-creator",
		AssignedTo:  &assignee,
		Deadline:    &deadline,
		IsActive:    true,
	})

	err := f.svc.handleApproachingDeadline(context.Background(), events.Event{
		Type:     events.EventApproachingDeadline,
		TicketID: ticket.ID,
		Payload:  events.ApproachingDeadlinePayload{Deadline: deadline},
	})
	require.NoError(t, err)

	require.Len(t, f.records.records, 1)
	assert.Equal(t, "alan@example.com", f.records.records[0].Recipient)
	assert.Equal(t, "Due 2026-09-15", f.records.records[0].Subject)
}

func TestGuardRecordsHandlerFailure(t *testing.T) {
	f := newNotificationFixture(t)

	boom := errors.New("users table unavailable")
	handler := f.svc.guard(events.EventTicketLive, func(context.Context, events.Event) error {
		return boom
	})

	err := handler(context.Background(), events.Event{Type: events.EventTicketLive, TicketID: "ticket-9"})
	require.NoError(t, err)

	require.Len(t, f.records.records, 1)
	record := f.records.records[0]
	assert.Equal(t, "unknown", record.Recipient)
	assert.Equal(t, domain.NotificationFailed, record.Status)
	assert.Equal(t, boom.Error(), record.ErrorMessage)
	assert.Equal(t, "ticket-9", record.Metadata["ticketId"])
}

func TestRegisterHandlersDeliversThroughDispatcher(t *testing.T) {
	f := newNotificationFixture(t)
	ticket := f.seedTicket(domain.StatusDraft)

	dispatcher := events.NewAsyncDispatcher(zap.NewNop(), 8)
	f.svc.dispatcher = dispatcher
	f.svc.RegisterHandlers()

	require.NoError(t, dispatcher.Publish(context.Background(), events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Payload:  events.TicketCreatedPayload{ComponentID: ticket.ComponentID, CreatedBy: ticket.CreatedBy},
	}))
	dispatcher.Close()

	require.Len(t, f.records.records, 1)
	assert.Equal(t, "payments@example.com", f.records.records[0].Recipient)
	assert.Equal(t, "New: Launch checklist", f.records.records[0].Subject)
}
