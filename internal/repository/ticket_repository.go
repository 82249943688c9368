package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ticket-dispatch/internal/domain"
)

const ticketColumns = `id, ticket_number, subject, category, priority, status,
       assigned_to, assigned_at, first_response_at, resolved_at,
       sla_status, satisfaction_rating, created_at, updated_at`

// TicketRepository encapsulates ticket persistence. Tickets are created by
// the intake flow outside this service; this repository reads them and
// mutates only the assignment and SLA fields.
type TicketRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	ListUnassigned(ctx context.Context) ([]domain.Ticket, error)
	ListActive(ctx context.Context) ([]domain.Ticket, error)
	ListOpenByAgent(ctx context.Context, agentID int64) ([]domain.Ticket, error)
	ListResolvedByAgent(ctx context.Context, agentID int64) ([]domain.Ticket, error)
	UpdateAssignment(ctx context.Context, ticket *domain.Ticket) error
	UpdateSlaStatus(ctx context.Context, id int64, status domain.SlaStatus) error
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	const query = `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1`
	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&ticket.ID,
		&ticket.TicketNumber,
		&ticket.Subject,
		&ticket.Category,
		&ticket.Priority,
		&ticket.Status,
		&ticket.AssignedTo,
		&ticket.AssignedAt,
		&ticket.FirstResponseAt,
		&ticket.ResolvedAt,
		&ticket.SlaStatus,
		&ticket.SatisfactionRating,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) ListUnassigned(ctx context.Context) ([]domain.Ticket, error) {
	// urgent work is dispatched first, then oldest first
	const query = `SELECT ` + ticketColumns + `
        FROM tickets
        WHERE status='new' AND assigned_to IS NULL
        ORDER BY CASE priority
            WHEN 'urgent' THEN 0
            WHEN 'high' THEN 1
            WHEN 'normal' THEN 2
            WHEN 'low' THEN 3
            ELSE 4
        END ASC, created_at ASC, id ASC`
	return r.list(ctx, query)
}

func (r *ticketRepository) ListActive(ctx context.Context) ([]domain.Ticket, error) {
	const query = `SELECT ` + ticketColumns + `
        FROM tickets
        WHERE status NOT IN ('resolved','closed')
        ORDER BY id ASC`
	return r.list(ctx, query)
}

func (r *ticketRepository) ListOpenByAgent(ctx context.Context, agentID int64) ([]domain.Ticket, error) {
	const query = `SELECT ` + ticketColumns + `
        FROM tickets
        WHERE assigned_to=$1 AND status NOT IN ('resolved','closed')
        ORDER BY created_at ASC, id ASC`
	return r.list(ctx, query, agentID)
}

func (r *ticketRepository) ListResolvedByAgent(ctx context.Context, agentID int64) ([]domain.Ticket, error) {
	const query = `SELECT ` + ticketColumns + `
        FROM tickets
        WHERE assigned_to=$1 AND resolved_at IS NOT NULL
        ORDER BY resolved_at ASC, id ASC`
	return r.list(ctx, query, agentID)
}

func (r *ticketRepository) UpdateAssignment(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET assigned_to=$1, assigned_at=$2, status=$3, updated_at=NOW()
        WHERE id=$4`
	cmd, err := r.pool.Exec(ctx, query,
		ticket.AssignedTo,
		ticket.AssignedAt,
		ticket.Status,
		ticket.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ticketRepository) UpdateSlaStatus(ctx context.Context, id int64, status domain.SlaStatus) error {
	const query = `UPDATE tickets SET sla_status=$1, updated_at=NOW() WHERE id=$2`
	cmd, err := r.pool.Exec(ctx, query, status, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ticketRepository) list(ctx context.Context, query string, args ...any) ([]domain.Ticket, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.TicketNumber,
			&ticket.Subject,
			&ticket.Category,
			&ticket.Priority,
			&ticket.Status,
			&ticket.AssignedTo,
			&ticket.AssignedAt,
			&ticket.FirstResponseAt,
			&ticket.ResolvedAt,
			&ticket.SlaStatus,
			&ticket.SatisfactionRating,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
