package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/process-ticket-service/internal/domain"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// WorkflowStore is the mutation surface of the workflow engine. CreateTicket
// and ApplyTransition persist the ticket change and its audit record as one
// atomic unit: a reader never sees one without the other.
type WorkflowStore interface {
	GetTicket(ctx context.Context, id string) (*domain.Ticket, error)
	CreateTicket(ctx context.Context, ticket *domain.Ticket, record *domain.StatusHistory, brandIDs []string) error
	ApplyTransition(ctx context.Context, ticket *domain.Ticket, record *domain.StatusHistory) error
}

type workflowStore struct {
	pool *pgxpool.Pool
}

// NewWorkflowStore builds the postgres-backed store.
func NewWorkflowStore(pool *pgxpool.Pool) WorkflowStore {
	return &workflowStore{pool: pool}
}

func (s *workflowStore) GetTicket(ctx context.Context, id string) (*domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE id=$1`, ticketColumns)
	return fetchTicket(ctx, s.pool, query, id)
}

func (s *workflowStore) CreateTicket(ctx context.Context, ticket *domain.Ticket, record *domain.StatusHistory, brandIDs []string) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		const query = `
            INSERT INTO tickets (title, description, status, priority, component_id, created_by,
                assigned_to, scheduled_date, deadline, tags, metadata, is_active)
            VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
            RETURNING id, created_at, updated_at`
		if err := tx.QueryRow(ctx, query,
			ticket.Title,
			ticket.Description,
			ticket.Status,
			ticket.Priority,
			ticket.ComponentID,
			ticket.CreatedBy,
			ticket.AssignedTo,
			ticket.ScheduledDate,
			ticket.Deadline,
			ticket.Tags,
			ticket.Metadata,
			ticket.IsActive,
		).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt); err != nil {
			return err
		}

		for _, brandID := range brandIDs {
			if _, err := tx.Exec(ctx,
				`INSERT INTO ticket_brands (ticket_id, brand_id) VALUES ($1,$2) ON CONFLICT DO NOTHING`,
				ticket.ID, brandID); err != nil {
				return err
			}
		}

		record.TicketID = ticket.ID
		return insertStatusHistory(ctx, tx, record)
	})
}

func (s *workflowStore) ApplyTransition(ctx context.Context, ticket *domain.Ticket, record *domain.StatusHistory) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		const query = `
            UPDATE tickets SET status=$1, assigned_to=$2, published_date=$3, updated_at=NOW()
            WHERE id=$4`
		cmd, err := tx.Exec(ctx, query,
			ticket.Status,
			ticket.AssignedTo,
			ticket.PublishedDate,
			ticket.ID,
		)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return pgx.ErrNoRows
		}
		return insertStatusHistory(ctx, tx, record)
	})
}

func (s *workflowStore) inTx(ctx context.Context, fn func(pgx.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func insertStatusHistory(ctx context.Context, q querier, record *domain.StatusHistory) error {
	const query = `
        INSERT INTO status_history (ticket_id, previous_status, new_status, changed_by, reason, metadata)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at`
	return q.QueryRow(ctx, query,
		record.TicketID,
		record.PreviousStatus,
		record.NewStatus,
		record.ChangedBy,
		record.Reason,
		record.Metadata,
	).Scan(&record.ID, &record.CreatedAt)
}
