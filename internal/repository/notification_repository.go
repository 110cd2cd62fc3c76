package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/process-ticket-service/internal/domain"
)

// NotificationFilter narrows notification listings.
type NotificationFilter struct {
	Recipient *string
	Status    *domain.NotificationStatus
	Limit     int
	Offset    int
}

// NotificationRepository persists delivery attempt outcomes. Records are
// created once per attempt and only ever advance their status.
type NotificationRepository interface {
	Create(ctx context.Context, notification *domain.Notification) error
	UpdateStatus(ctx context.Context, id string, status domain.NotificationStatus, deliveredAt *time.Time) error
	ListWithFilter(ctx context.Context, filter NotificationFilter) ([]domain.Notification, error)
}

type notificationRepository struct {
	pool *pgxpool.Pool
}

// NewNotificationRepository instantiates repository.
func NewNotificationRepository(pool *pgxpool.Pool) NotificationRepository {
	return &notificationRepository{pool: pool}
}

func (r *notificationRepository) Create(ctx context.Context, notification *domain.Notification) error {
	const query = `
        INSERT INTO notifications (type, recipient, subject, content, status, sent_at, error_message, metadata)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		notification.Type,
		notification.Recipient,
		notification.Subject,
		notification.Content,
		notification.Status,
		notification.SentAt,
		notification.ErrorMessage,
		notification.Metadata,
	).Scan(&notification.ID, &notification.CreatedAt)
}

func (r *notificationRepository) UpdateStatus(ctx context.Context, id string, status domain.NotificationStatus, deliveredAt *time.Time) error {
	const query = `UPDATE notifications SET status=$1, delivered_at=$2 WHERE id=$3`
	cmd, err := r.pool.Exec(ctx, query, status, deliveredAt, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *notificationRepository) ListWithFilter(ctx context.Context, filter NotificationFilter) ([]domain.Notification, error) {
	base := `SELECT id, type, recipient, subject, content, status, sent_at, delivered_at,
                    error_message, metadata, created_at
             FROM notifications`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Recipient != nil {
		args = append(args, *filter.Recipient)
		clauses = append(clauses, fmt.Sprintf("recipient=$%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Notification
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(
			&n.ID,
			&n.Type,
			&n.Recipient,
			&n.Subject,
			&n.Content,
			&n.Status,
			&n.SentAt,
			&n.DeliveredAt,
			&n.ErrorMessage,
			&n.Metadata,
			&n.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, n)
	}
	return result, rows.Err()
}
