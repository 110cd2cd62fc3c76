package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/process-ticket-service/internal/domain"
)

// StatusHistoryRepository reads the append-only transition ledger. Writes
// happen inside WorkflowStore transactions; Append exists for records that
// have no accompanying ticket mutation.
type StatusHistoryRepository interface {
	Append(ctx context.Context, record *domain.StatusHistory) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.StatusHistory, error)
}

type statusHistoryRepository struct {
	pool *pgxpool.Pool
}

// NewStatusHistoryRepository builds repository.
func NewStatusHistoryRepository(pool *pgxpool.Pool) StatusHistoryRepository {
	return &statusHistoryRepository{pool: pool}
}

func (r *statusHistoryRepository) Append(ctx context.Context, record *domain.StatusHistory) error {
	return insertStatusHistory(ctx, r.pool, record)
}

// ListByTicket returns records oldest first. Ordering by the serial id keeps
// the replay stable even when timestamps collide.
func (r *statusHistoryRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.StatusHistory, error) {
	const query = `
        SELECT id, ticket_id, previous_status, new_status, changed_by, reason, metadata, created_at
        FROM status_history WHERE ticket_id=$1 ORDER BY id ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.StatusHistory
	for rows.Next() {
		var record domain.StatusHistory
		if err := rows.Scan(
			&record.ID,
			&record.TicketID,
			&record.PreviousStatus,
			&record.NewStatus,
			&record.ChangedBy,
			&record.Reason,
			&record.Metadata,
			&record.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, record)
	}
	return result, rows.Err()
}
