package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/process-ticket-service/internal/domain"
)

// PartnerRepository reads partner organizations.
type PartnerRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Partner, error)
}

type partnerRepository struct {
	pool *pgxpool.Pool
}

// NewPartnerRepository instantiates repository.
func NewPartnerRepository(pool *pgxpool.Pool) PartnerRepository {
	return &partnerRepository{pool: pool}
}

func (r *partnerRepository) GetByID(ctx context.Context, id string) (*domain.Partner, error) {
	const query = `
        SELECT id, name, email, contact_person, phone, timezone, is_active, created_at, updated_at
        FROM partners WHERE id=$1`
	var partner domain.Partner
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&partner.ID,
		&partner.Name,
		&partner.Email,
		&partner.ContactPerson,
		&partner.Phone,
		&partner.Timezone,
		&partner.IsActive,
		&partner.CreatedAt,
		&partner.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &partner, nil
}
