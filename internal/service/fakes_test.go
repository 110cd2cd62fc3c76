package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/process-ticket-service/internal/domain"
	"github.com/spec-kit/process-ticket-service/internal/events"
	"github.com/spec-kit/process-ticket-service/internal/repository"
)

// memoryStore is an in-memory WorkflowStore plus StatusHistoryRepository.
// Like the postgres implementation, a ticket mutation and its audit record
// land together under one lock.
type memoryStore struct {
	mu      sync.Mutex
	tickets map[string]*domain.Ticket
	history []domain.StatusHistory
	seq     int

	failApply error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{tickets: make(map[string]*domain.Ticket)}
}

func (m *memoryStore) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s-%d", prefix, m.seq)
}

func (m *memoryStore) put(ticket *domain.Ticket) *domain.Ticket {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ticket.ID == "" {
		ticket.ID = m.nextID("ticket")
	}
	copied := *ticket
	m.tickets[ticket.ID] = &copied
	return ticket
}

func (m *memoryStore) GetTicket(_ context.Context, id string) (*domain.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ticket, ok := m.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *ticket
	return &copied, nil
}

func (m *memoryStore) CreateTicket(_ context.Context, ticket *domain.Ticket, record *domain.StatusHistory, _ []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ticket.ID = m.nextID("ticket")
	now := time.Now()
	ticket.CreatedAt = now
	ticket.UpdatedAt = now
	copied := *ticket
	m.tickets[ticket.ID] = &copied

	record.TicketID = ticket.ID
	m.appendLocked(record)
	return nil
}

func (m *memoryStore) ApplyTransition(_ context.Context, ticket *domain.Ticket, record *domain.StatusHistory) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failApply != nil {
		return m.failApply
	}
	stored, ok := m.tickets[ticket.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	stored.Status = ticket.Status
	stored.AssignedTo = ticket.AssignedTo
	stored.PublishedDate = ticket.PublishedDate
	stored.UpdatedAt = time.Now()

	m.appendLocked(record)
	return nil
}

func (m *memoryStore) appendLocked(record *domain.StatusHistory) {
	record.ID = m.nextID("hist")
	record.CreatedAt = time.Now()
	m.history = append(m.history, *record)
}

func (m *memoryStore) Append(_ context.Context, record *domain.StatusHistory) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.appendLocked(record)
	return nil
}

func (m *memoryStore) ListByTicket(_ context.Context, ticketID string) ([]domain.StatusHistory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.StatusHistory
	for _, record := range m.history {
		if record.TicketID == ticketID {
			out = append(out, record)
		}
	}
	return out, nil
}

type memoryComments struct {
	mu       sync.Mutex
	comments []domain.Comment
	seq      int
}

func (m *memoryComments) Create(_ context.Context, comment *domain.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	comment.ID = fmt.Sprintf("comment-%d", m.seq)
	comment.CreatedAt = time.Now()
	m.comments = append(m.comments, *comment)
	return nil
}

func (m *memoryComments) GetByID(_ context.Context, id string) (*domain.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.comments {
		if m.comments[i].ID == id {
			copied := m.comments[i]
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *memoryComments) ListByTicket(_ context.Context, ticketID string) ([]domain.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Comment
	for _, comment := range m.comments {
		if comment.TicketID == ticketID {
			out = append(out, comment)
		}
	}
	return out, nil
}

// recordingDispatcher captures events synchronously.
type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}
func (d *recordingDispatcher) Close()                                         {}

func (d *recordingDispatcher) byType(eventType events.EventType) []events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []events.Event
	for _, event := range d.events {
		if event.Type == eventType {
			out = append(out, event)
		}
	}
	return out
}

// fakeTickets serves reads for the notification side.
type fakeTickets struct {
	store *memoryStore
}

func (f *fakeTickets) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	return f.store.GetTicket(ctx, id)
}

func (f *fakeTickets) ListWithFilter(context.Context, repository.TicketFilter) ([]domain.Ticket, error) {
	return nil, nil
}

func (f *fakeTickets) ListApproachingDeadline(context.Context, time.Duration) ([]domain.Ticket, error) {
	return nil, nil
}

func (f *fakeTickets) ListBrands(context.Context, string) ([]domain.Brand, error) {
	return nil, nil
}

type fakeUsers struct {
	users map[string]*domain.User
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return user, nil
}

func (f *fakeUsers) ListActiveByRole(_ context.Context, role domain.UserRole) ([]domain.User, error) {
	var out []domain.User
	for _, user := range f.users {
		if user.Role == role && user.IsActive {
			out = append(out, *user)
		}
	}
	return out, nil
}

type fakeComponents struct {
	components map[string]*domain.Component
}

func (f *fakeComponents) GetByID(_ context.Context, id string) (*domain.Component, error) {
	component, ok := f.components[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return component, nil
}

type fakeTemplates struct {
	templates map[string]*domain.EmailTemplate
}

func (f *fakeTemplates) FindActiveByName(_ context.Context, name string) (*domain.EmailTemplate, error) {
	tmpl, ok := f.templates[name]
	if !ok || !tmpl.IsActive {
		return nil, pgx.ErrNoRows
	}
	return tmpl, nil
}

type fakeNotifications struct {
	mu      sync.Mutex
	records []domain.Notification
	seq     int
}

func (f *fakeNotifications) Create(_ context.Context, notification *domain.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	notification.ID = fmt.Sprintf("notif-%d", f.seq)
	notification.CreatedAt = time.Now()
	f.records = append(f.records, *notification)
	return nil
}

func (f *fakeNotifications) UpdateStatus(context.Context, string, domain.NotificationStatus, *time.Time) error {
	return nil
}

func (f *fakeNotifications) ListWithFilter(context.Context, repository.NotificationFilter) ([]domain.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Notification{}, f.records...), nil
}

// fakeSink records deliveries and can be told to fail for given recipients.
type fakeSink struct {
	mu      sync.Mutex
	sent    []string
	failFor map[string]error
}

func (f *fakeSink) Send(_ context.Context, recipient, _, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failFor[recipient]; ok {
		return err
	}
	f.sent = append(f.sent, recipient)
	return nil
}
