package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ticket-dispatch/internal/domain"
)

// SlaPolicyRepository exposes the per-priority SLA targets.
type SlaPolicyRepository interface {
	GetAll(ctx context.Context) (map[domain.TicketPriority]domain.SlaPolicy, error)
}

type slaPolicyRepository struct {
	pool *pgxpool.Pool
}

// NewSlaPolicyRepository instantiates repository.
func NewSlaPolicyRepository(pool *pgxpool.Pool) SlaPolicyRepository {
	return &slaPolicyRepository{pool: pool}
}

func (r *slaPolicyRepository) GetAll(ctx context.Context) (map[domain.TicketPriority]domain.SlaPolicy, error) {
	const query = `
        SELECT id, priority, response_time_hours, resolution_time_hours, created_at, updated_at
        FROM sla_policies`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	policies := make(map[domain.TicketPriority]domain.SlaPolicy)
	for rows.Next() {
		var policy domain.SlaPolicy
		if err := rows.Scan(
			&policy.ID,
			&policy.Priority,
			&policy.ResponseTimeHours,
			&policy.ResolutionTimeHours,
			&policy.CreatedAt,
			&policy.UpdatedAt,
		); err != nil {
			return nil, err
		}
		policies[policy.Priority] = policy
	}
	return policies, rows.Err()
}
