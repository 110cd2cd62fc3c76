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

// TicketFilter captures ticket search parameters.
type TicketFilter struct {
	Statuses        []domain.TicketStatus
	Priorities      []domain.TicketPriority
	ComponentID     *string
	AssignedTo      *string
	CreatedBy       *string
	SearchTerm      *string
	IncludeInactive bool
	Limit           int
	Offset          int
}

// TicketRepository is the read side of ticket persistence. Mutations go
// through WorkflowStore so status and audit stay consistent.
type TicketRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	ListApproachingDeadline(ctx context.Context, within time.Duration) ([]domain.Ticket, error)
	ListBrands(ctx context.Context, ticketID string) ([]domain.Brand, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, title, description, status, priority, component_id, created_by,
       assigned_to, scheduled_date, published_date, deadline, tags, metadata,
       is_active, created_at, updated_at`

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE id=$1`, ticketColumns)
	return fetchTicket(ctx, r.pool, query, id)
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	base := fmt.Sprintf(`SELECT %s FROM tickets`, ticketColumns)
	clauses := []string{"1=1"}
	args := []any{}

	if !filter.IncludeInactive {
		clauses = append(clauses, "is_active=TRUE")
	}
	if filter.ComponentID != nil {
		args = append(args, *filter.ComponentID)
		clauses = append(clauses, fmt.Sprintf("component_id=$%d", len(args)))
	}
	if filter.AssignedTo != nil {
		args = append(args, *filter.AssignedTo)
		clauses = append(clauses, fmt.Sprintf("assigned_to=$%d", len(args)))
	}
	if filter.CreatedBy != nil {
		args = append(args, *filter.CreatedBy)
		clauses = append(clauses, fmt.Sprintf("created_by=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Priorities) > 0 {
		placeholders := make([]string, len(filter.Priorities))
		for i, pr := range filter.Priorities {
			args = append(args, pr)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("priority IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(title) LIKE %s OR LOWER(description) LIKE %s)", placeholder, placeholder))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
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
	return scanTickets(rows)
}

func (r *ticketRepository) ListApproachingDeadline(ctx context.Context, within time.Duration) ([]domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets
        WHERE is_active=TRUE
          AND deadline IS NOT NULL
          AND deadline BETWEEN NOW() AND NOW() + make_interval(secs => $1)
          AND status NOT IN ($2, $3)`, ticketColumns)
	rows, err := r.pool.Query(ctx, query, within.Seconds(), domain.StatusLive, domain.StatusClosed)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) ListBrands(ctx context.Context, ticketID string) ([]domain.Brand, error) {
	const query = `
        SELECT b.id, b.name, b.description, b.is_active, b.created_at, b.updated_at
        FROM brands b
        JOIN ticket_brands tb ON tb.brand_id = b.id
        WHERE tb.ticket_id=$1
        ORDER BY b.name`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Brand
	for rows.Next() {
		var brand domain.Brand
		if err := rows.Scan(
			&brand.ID,
			&brand.Name,
			&brand.Description,
			&brand.IsActive,
			&brand.CreatedAt,
			&brand.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, brand)
	}
	return result, rows.Err()
}

func fetchTicket(ctx context.Context, q querier, query string, args ...any) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := q.QueryRow(ctx, query, args...).Scan(
		&ticket.ID,
		&ticket.Title,
		&ticket.Description,
		&ticket.Status,
		&ticket.Priority,
		&ticket.ComponentID,
		&ticket.CreatedBy,
		&ticket.AssignedTo,
		&ticket.ScheduledDate,
		&ticket.PublishedDate,
		&ticket.Deadline,
		&ticket.Tags,
		&ticket.Metadata,
		&ticket.IsActive,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.Title,
			&ticket.Description,
			&ticket.Status,
			&ticket.Priority,
			&ticket.ComponentID,
			&ticket.CreatedBy,
			&ticket.AssignedTo,
			&ticket.ScheduledDate,
			&ticket.PublishedDate,
			&ticket.Deadline,
			&ticket.Tags,
			&ticket.Metadata,
			&ticket.IsActive,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
