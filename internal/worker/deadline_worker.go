package worker

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/process-ticket-service/internal/config"
	"github.com/spec-kit/process-ticket-service/internal/events"
	"github.com/spec-kit/process-ticket-service/internal/repository"
)

// DeadlineWorker periodically scans for active tickets whose deadline falls
// inside the configured window and publishes an approaching_deadline event
// for each one.
type DeadlineWorker struct {
	tickets    repository.TicketRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.WorkerConfig
}

// NewDeadlineWorker creates the worker.
func NewDeadlineWorker(tickets repository.TicketRepository, dispatcher events.Dispatcher, cfg config.WorkerConfig, logger *zap.Logger) *DeadlineWorker {
	return &DeadlineWorker{
		tickets:    tickets,
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// Start runs the sweep loop until ctx is cancelled. Call in a goroutine.
func (w *DeadlineWorker) Start(ctx context.Context) {
	interval := w.cfg.SweepInterval()
	w.logger.Info("deadline worker started", zap.Duration("interval", interval))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("deadline worker stopped")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *DeadlineWorker) sweep(ctx context.Context) {
	window := w.cfg.DeadlineWindow()
	tickets, err := w.tickets.ListApproachingDeadline(ctx, window)
	if err != nil {
		w.logger.Error("deadline sweep failed", zap.Error(err))
		return
	}

	for _, ticket := range tickets {
		if ticket.Deadline == nil {
			continue
		}
		event := events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventApproachingDeadline,
			TicketID:  ticket.ID,
			Timestamp: time.Now(),
			Payload:   events.ApproachingDeadlinePayload{Deadline: *ticket.Deadline},
		}
		if err := w.dispatcher.Publish(ctx, event); err != nil {
			w.logger.Warn("failed to publish deadline event",
				zap.String("ticket_id", ticket.ID),
				zap.Error(err))
		}
	}
	if len(tickets) > 0 {
		w.logger.Info("deadline sweep published events", zap.Int("count", len(tickets)))
	}
}
