package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDispatcherDeliversInPublishOrder(t *testing.T) {
	d := NewAsyncDispatcher(zap.NewNop(), 16)

	var mu sync.Mutex
	var seen []string
	d.Subscribe(EventStatusChanged, func(_ context.Context, event Event) error {
		mu.Lock()
		seen = append(seen, event.ID)
		mu.Unlock()
		return nil
	})

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, d.Publish(context.Background(), Event{ID: id, Type: EventStatusChanged}))
	}
	d.Close()

	assert.Equal(t, []string{"a", "b", "c"}, seen)
}

func TestDispatcherRoutesByType(t *testing.T) {
	d := NewAsyncDispatcher(zap.NewNop(), 16)

	var mu sync.Mutex
	counts := map[EventType]int{}
	record := func(eventType EventType) EventHandler {
		return func(context.Context, Event) error {
			mu.Lock()
			counts[eventType]++
			mu.Unlock()
			return nil
		}
	}
	d.Subscribe(EventTicketCreated, record(EventTicketCreated))
	d.Subscribe(EventTicketLive, record(EventTicketLive))

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventTicketCreated}))
	require.NoError(t, d.Publish(context.Background(), Event{Type: EventStatusChanged}))
	d.Close()

	assert.Equal(t, 1, counts[EventTicketCreated])
	assert.Zero(t, counts[EventTicketLive])
}

func TestDispatcherHandlerErrorDoesNotStopOthers(t *testing.T) {
	d := NewAsyncDispatcher(zap.NewNop(), 4)

	var mu sync.Mutex
	var calls int
	d.Subscribe(EventTicketLive, func(context.Context, Event) error {
		return errors.New("boom")
	})
	d.Subscribe(EventTicketLive, func(context.Context, Event) error {
		mu.Lock()
		calls++
		mu.Unlock()
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventTicketLive}))
	d.Close()

	assert.Equal(t, 1, calls)
}

func TestDispatcherPublishAfterClose(t *testing.T) {
	d := NewAsyncDispatcher(zap.NewNop(), 4)
	d.Close()

	err := d.Publish(context.Background(), Event{Type: EventTicketCreated})
	assert.ErrorIs(t, err, ErrDispatcherClosed)
}

func TestDispatcherPublishHonorsContext(t *testing.T) {
	d := NewAsyncDispatcher(zap.NewNop(), 1)
	block := make(chan struct{})
	d.Subscribe(EventTicketCreated, func(context.Context, Event) error {
		<-block
		return nil
	})

	// Fill the worker and the buffer.
	require.NoError(t, d.Publish(context.Background(), Event{Type: EventTicketCreated}))
	require.NoError(t, d.Publish(context.Background(), Event{Type: EventTicketCreated}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := d.Publish(ctx, Event{Type: EventTicketCreated})
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(block)
	d.Close()
}

func TestDispatcherCloseUnparksBlockedPublisher(t *testing.T) {
	d := NewAsyncDispatcher(zap.NewNop(), 1)
	block := make(chan struct{})
	d.Subscribe(EventTicketCreated, func(context.Context, Event) error {
		<-block
		return nil
	})

	// Fill the worker and the buffer so the next Publish parks.
	require.NoError(t, d.Publish(context.Background(), Event{Type: EventTicketCreated}))
	require.NoError(t, d.Publish(context.Background(), Event{Type: EventTicketCreated}))

	publishErr := make(chan error, 1)
	go func() {
		publishErr <- d.Publish(context.Background(), Event{Type: EventTicketCreated})
	}()
	time.Sleep(20 * time.Millisecond)

	closed := make(chan struct{})
	go func() {
		d.Close()
		close(closed)
	}()

	// The parked publisher must be released with an error, not panic.
	select {
	case err := <-publishErr:
		assert.ErrorIs(t, err, ErrDispatcherClosed)
	case <-time.After(time.Second):
		t.Fatal("blocked publisher was not released by Close")
	}

	close(block)
	select {
	case <-closed:
	case <-time.After(time.Second):
		t.Fatal("Close did not return after handlers drained")
	}
}
