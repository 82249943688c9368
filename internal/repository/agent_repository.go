package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ticket-dispatch/internal/domain"
)

// AgentRepository encapsulates agent directory access. Agent records are
// owned by the directory; this service reads them and mutates workload
// bookkeeping fields only.
type AgentRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Agent, error)
	ListActiveAvailable(ctx context.Context) ([]domain.Agent, error)
	Update(ctx context.Context, agent *domain.Agent) error
}

type agentRepository struct {
	pool *pgxpool.Pool
}

// NewAgentRepository instantiates repository.
func NewAgentRepository(pool *pgxpool.Pool) AgentRepository {
	return &agentRepository{pool: pool}
}

func (r *agentRepository) GetByID(ctx context.Context, id int64) (*domain.Agent, error) {
	const query = `
        SELECT id, name, email, active, available, specialties, current_workload, last_assigned_at, created_at, updated_at
        FROM agents WHERE id=$1`
	var agent domain.Agent
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&agent.ID,
		&agent.Name,
		&agent.Email,
		&agent.Active,
		&agent.Available,
		&agent.Specialties,
		&agent.CurrentWorkload,
		&agent.LastAssignedAt,
		&agent.CreatedAt,
		&agent.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &agent, nil
}

func (r *agentRepository) ListActiveAvailable(ctx context.Context) ([]domain.Agent, error) {
	const query = `
        SELECT id, name, email, active, available, specialties, current_workload, last_assigned_at, created_at, updated_at
        FROM agents
        WHERE active AND available
        ORDER BY id ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Agent
	for rows.Next() {
		var agent domain.Agent
		if err := rows.Scan(
			&agent.ID,
			&agent.Name,
			&agent.Email,
			&agent.Active,
			&agent.Available,
			&agent.Specialties,
			&agent.CurrentWorkload,
			&agent.LastAssignedAt,
			&agent.CreatedAt,
			&agent.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, agent)
	}
	return result, rows.Err()
}

func (r *agentRepository) Update(ctx context.Context, agent *domain.Agent) error {
	const query = `
        UPDATE agents SET available=$1, specialties=$2, current_workload=$3, last_assigned_at=$4, updated_at=NOW()
        WHERE id=$5`
	cmd, err := r.pool.Exec(ctx, query,
		agent.Available,
		agent.Specialties,
		agent.CurrentWorkload,
		agent.LastAssignedAt,
		agent.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
