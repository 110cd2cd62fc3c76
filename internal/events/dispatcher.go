package events

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

// EventHandler handles a published event. A nil return means the handler
// fully accounted for the event; errors are logged, never propagated to the
// publisher.
type EventHandler func(context.Context, Event) error

// Dispatcher routes events to subscribed handlers.
type Dispatcher interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType EventType, handler EventHandler)
	Close()
}

// ErrDispatcherClosed is returned by Publish after Close.
var ErrDispatcherClosed = errors.New("events: dispatcher closed")

// asyncDispatcher queues events on a channel drained by a single worker
// goroutine, so a slow handler cannot stall the publishing transition.
// Events for one ticket keep their publish order.
type asyncDispatcher struct {
	mu        sync.RWMutex
	listeners map[EventType][]EventHandler
	queue     chan Event
	quit      chan struct{}
	done      chan struct{}
	senders   sync.WaitGroup
	closeOnce sync.Once
	closed    bool
	logger    *zap.Logger
}

// NewAsyncDispatcher creates a dispatcher with the given queue capacity.
func NewAsyncDispatcher(logger *zap.Logger, buffer int) Dispatcher {
	if buffer <= 0 {
		buffer = 64
	}
	d := &asyncDispatcher{
		listeners: make(map[EventType][]EventHandler),
		queue:     make(chan Event, buffer),
		quit:      make(chan struct{}),
		done:      make(chan struct{}),
		logger:    logger,
	}
	go d.run()
	return d
}

func (d *asyncDispatcher) run() {
	defer close(d.done)
	for event := range d.queue {
		d.mu.RLock()
		handlers := append([]EventHandler{}, d.listeners[event.Type]...)
		d.mu.RUnlock()

		// Handlers run against a fresh context: the publishing request may
		// already be finished, and a committed transition must still notify.
		for _, handler := range handlers {
			if err := handler(context.Background(), event); err != nil {
				d.logger.Error("event handler failed",
					zap.String("event_type", string(event.Type)),
					zap.String("ticket_id", event.TicketID),
					zap.Error(err))
			}
		}
	}
}

// Publish enqueues the event. An event type with no subscribers is a no-op.
// The sender registration under the read lock pairs with Close: the queue is
// never closed while a Publish can still send on it.
func (d *asyncDispatcher) Publish(ctx context.Context, event Event) error {
	d.mu.RLock()
	if d.closed {
		d.mu.RUnlock()
		return ErrDispatcherClosed
	}
	d.senders.Add(1)
	d.mu.RUnlock()
	defer d.senders.Done()

	select {
	case d.queue <- event:
		return nil
	case <-d.quit:
		return ErrDispatcherClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Subscribe registers a handler for the given event type.
func (d *asyncDispatcher) Subscribe(eventType EventType, handler EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners[eventType] = append(d.listeners[eventType], handler)
}

// Close stops accepting events, unparks publishers blocked on a full queue,
// and blocks until every queued event is handled. The queue itself is closed
// only after all in-flight Publish calls have returned.
func (d *asyncDispatcher) Close() {
	d.closeOnce.Do(func() {
		d.mu.Lock()
		d.closed = true
		d.mu.Unlock()
		close(d.quit)
		d.senders.Wait()
		close(d.queue)
		<-d.done
	})
}
