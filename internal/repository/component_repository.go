package repository

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/process-ticket-service/internal/domain"
)

// ComponentRepository reads the components tickets belong to.
type ComponentRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Component, error)
}

type componentRepository struct {
	pool *pgxpool.Pool
}

// NewComponentRepository instantiates repository.
func NewComponentRepository(pool *pgxpool.Pool) ComponentRepository {
	return &componentRepository{pool: pool}
}

func (r *componentRepository) GetByID(ctx context.Context, id string) (*domain.Component, error) {
	const query = `
        SELECT id, partner_id, name, email, description, languages, is_active,
               notification_settings, created_at, updated_at
        FROM components WHERE id=$1`
	var (
		component   domain.Component
		settingsRaw []byte
	)
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&component.ID,
		&component.PartnerID,
		&component.Name,
		&component.Email,
		&component.Description,
		&component.Languages,
		&component.IsActive,
		&settingsRaw,
		&component.CreatedAt,
		&component.UpdatedAt,
	); err != nil {
		return nil, err
	}

	component.NotificationSettings = domain.DefaultNotificationSettings()
	if len(settingsRaw) > 0 {
		if err := json.Unmarshal(settingsRaw, &component.NotificationSettings); err != nil {
			return nil, err
		}
	}
	return &component, nil
}
