package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ticket-dispatch/internal/domain"
)

// PerformanceRepository stores the aggregated per-agent metrics.
type PerformanceRepository interface {
	GetByAgent(ctx context.Context, agentID int64) (*domain.AgentPerformance, error)
	Create(ctx context.Context, perf *domain.AgentPerformance) error
	Update(ctx context.Context, perf *domain.AgentPerformance) error
}

type performanceRepository struct {
	pool *pgxpool.Pool
}

// NewPerformanceRepository instantiates repository.
func NewPerformanceRepository(pool *pgxpool.Pool) PerformanceRepository {
	return &performanceRepository{pool: pool}
}

func (r *performanceRepository) GetByAgent(ctx context.Context, agentID int64) (*domain.AgentPerformance, error) {
	const query = `
        SELECT id, agent_id, tickets_resolved, average_resolution_time_hours, customer_satisfaction_score, updated_at
        FROM agent_performance WHERE agent_id=$1`
	var perf domain.AgentPerformance
	if err := r.pool.QueryRow(ctx, query, agentID).Scan(
		&perf.ID,
		&perf.AgentID,
		&perf.TicketsResolved,
		&perf.AverageResolutionTimeHours,
		&perf.CustomerSatisfactionScore,
		&perf.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &perf, nil
}

func (r *performanceRepository) Create(ctx context.Context, perf *domain.AgentPerformance) error {
	const query = `
        INSERT INTO agent_performance (agent_id, tickets_resolved, average_resolution_time_hours, customer_satisfaction_score)
        VALUES ($1,$2,$3,$4)
        RETURNING id, updated_at`
	return r.pool.QueryRow(ctx, query,
		perf.AgentID,
		perf.TicketsResolved,
		perf.AverageResolutionTimeHours,
		perf.CustomerSatisfactionScore,
	).Scan(&perf.ID, &perf.UpdatedAt)
}

func (r *performanceRepository) Update(ctx context.Context, perf *domain.AgentPerformance) error {
	const query = `
        UPDATE agent_performance SET tickets_resolved=$1, average_resolution_time_hours=$2,
            customer_satisfaction_score=$3, updated_at=NOW()
        WHERE agent_id=$4`
	cmd, err := r.pool.Exec(ctx, query,
		perf.TicketsResolved,
		perf.AverageResolutionTimeHours,
		perf.CustomerSatisfactionScore,
		perf.AgentID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
