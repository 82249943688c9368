package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-dispatch/internal/domain"
	"github.com/spec-kit/ticket-dispatch/internal/repository"
)

// ActivityService reads the audit trail.
type ActivityService struct {
	tickets    repository.TicketRepository
	activities repository.ActivityRepository
	logger     *zap.Logger
}

// NewActivityService creates the service.
func NewActivityService(tickets repository.TicketRepository, activities repository.ActivityRepository, logger *zap.Logger) *ActivityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActivityService{tickets: tickets, activities: activities, logger: logger}
}

// ListTicketActivities returns the ticket's audit entries, most recent first.
func (s *ActivityService) ListTicketActivities(ctx context.Context, ticketID int64, limit int) ([]domain.TicketActivity, error) {
	if _, err := s.tickets.GetByID(ctx, ticketID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTicketNotFound
		}
		s.logger.Error("load ticket failed", zap.Int64("ticket_id", ticketID), zap.Error(err))
		return nil, err
	}
	entries, err := s.activities.ListByTicket(ctx, ticketID, limit)
	if err != nil {
		s.logger.Error("load ticket activities failed", zap.Int64("ticket_id", ticketID), zap.Error(err))
		return nil, err
	}
	return entries, nil
}
