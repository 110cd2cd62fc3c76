package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/process-ticket-service/internal/domain"
)

// EmailTemplateRepository reads templates managed by the admin surface.
type EmailTemplateRepository interface {
	FindActiveByName(ctx context.Context, name string) (*domain.EmailTemplate, error)
}

type emailTemplateRepository struct {
	pool *pgxpool.Pool
}

// NewEmailTemplateRepository instantiates repository.
func NewEmailTemplateRepository(pool *pgxpool.Pool) EmailTemplateRepository {
	return &emailTemplateRepository{pool: pool}
}

// FindActiveByName returns the active template or pgx.ErrNoRows.
func (r *emailTemplateRepository) FindActiveByName(ctx context.Context, name string) (*domain.EmailTemplate, error) {
	const query = `
        SELECT id, name, subject, body, variables, is_active, description, created_at, updated_at
        FROM email_templates WHERE name=$1 AND is_active=TRUE`
	var tmpl domain.EmailTemplate
	if err := r.pool.QueryRow(ctx, query, name).Scan(
		&tmpl.ID,
		&tmpl.Name,
		&tmpl.Subject,
		&tmpl.Body,
		&tmpl.Variables,
		&tmpl.IsActive,
		&tmpl.Description,
		&tmpl.CreatedAt,
		&tmpl.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &tmpl, nil
}
