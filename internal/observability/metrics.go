package observability

import (
	"sync"

	"github.com/spec-kit/process-ticket-service/internal/domain"
)

// Metrics provides in-memory counters for workflow activity.
type Metrics struct {
	mu            sync.Mutex
	transitions   map[string]int64
	notifications map[string]int64
	errorCount    map[string]int64
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		transitions:   make(map[string]int64),
		notifications: make(map[string]int64),
		errorCount:    make(map[string]int64),
	}
}

// RecordTransition counts a committed status transition.
func (m *Metrics) RecordTransition(from, to domain.TicketStatus) {
	if m == nil {
		return
	}
	key := string(from) + "->" + string(to)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transitions[key]++
}

// RecordNotification counts a delivery attempt by outcome.
func (m *Metrics) RecordNotification(eventType string, status domain.NotificationStatus) {
	if m == nil {
		return
	}
	key := eventType + "|" + string(status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifications[key]++
}

// RecordError increments error counters for request handling.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + code
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[key]++
}

// Snapshot returns copies of the counters for reporting endpoints.
func (m *Metrics) Snapshot() (transitions, notifications map[string]int64) {
	if m == nil {
		return map[string]int64{}, map[string]int64{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	transitions = make(map[string]int64, len(m.transitions))
	for k, v := range m.transitions {
		transitions[k] = v
	}
	notifications = make(map[string]int64, len(m.notifications))
	for k, v := range m.notifications {
		notifications[k] = v
	}
	return transitions, notifications
}
