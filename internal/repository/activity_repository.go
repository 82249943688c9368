package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ticket-dispatch/internal/domain"
)

// ActivityRepository records the append-only audit trail.
type ActivityRepository interface {
	Append(ctx context.Context, entry *domain.TicketActivity) error
	ListByTicket(ctx context.Context, ticketID int64, limit int) ([]domain.TicketActivity, error)
}

type activityRepository struct {
	pool *pgxpool.Pool
}

// NewActivityRepository instantiates repository.
func NewActivityRepository(pool *pgxpool.Pool) ActivityRepository {
	return &activityRepository{pool: pool}
}

func (r *activityRepository) Append(ctx context.Context, entry *domain.TicketActivity) error {
	const query = `
        INSERT INTO ticket_activities (ticket_id, activity_type, description, performed_by, metadata)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		entry.TicketID,
		entry.ActivityType,
		entry.Description,
		entry.PerformedBy,
		entry.Metadata,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *activityRepository) ListByTicket(ctx context.Context, ticketID int64, limit int) ([]domain.TicketActivity, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `
        SELECT id, ticket_id, activity_type, description, performed_by, metadata, created_at
        FROM ticket_activities
        WHERE ticket_id=$1
        ORDER BY created_at DESC, id DESC
        LIMIT $2`
	rows, err := r.pool.Query(ctx, query, ticketID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TicketActivity
	for rows.Next() {
		var entry domain.TicketActivity
		if err := rows.Scan(
			&entry.ID,
			&entry.TicketID,
			&entry.ActivityType,
			&entry.Description,
			&entry.PerformedBy,
			&entry.Metadata,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
