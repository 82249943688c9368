package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-dispatch/internal/domain"
	"github.com/spec-kit/ticket-dispatch/internal/events"
	"github.com/spec-kit/ticket-dispatch/internal/repository"
)

// PerformanceService aggregates resolved-ticket metrics per agent.
type PerformanceService struct {
	tickets     repository.TicketRepository
	agents      repository.AgentRepository
	performance repository.PerformanceRepository
	dispatcher  events.Dispatcher
	logger      *zap.Logger
	now         func() time.Time
}

// PerformanceDependencies bundles repositories and collaborators.
type PerformanceDependencies struct {
	TicketRepo      repository.TicketRepository
	AgentRepo       repository.AgentRepository
	PerformanceRepo repository.PerformanceRepository
	Dispatcher      events.Dispatcher
	Logger          *zap.Logger
	Now             func() time.Time
}

// NewPerformanceService creates the service.
func NewPerformanceService(deps PerformanceDependencies) *PerformanceService {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &PerformanceService{
		tickets:     deps.TicketRepo,
		agents:      deps.AgentRepo,
		performance: deps.PerformanceRepo,
		dispatcher:  deps.Dispatcher,
		logger:      deps.Logger,
		now:         deps.Now,
	}
}

// UpdateAgentPerformanceMetrics recomputes the agent's resolution and
// satisfaction aggregates over all resolved tickets and upserts the
// snapshot. With no resolved tickets the call is a no-op and returns nil.
// Satisfaction averages only tickets that carry a rating.
func (s *PerformanceService) UpdateAgentPerformanceMetrics(ctx context.Context, agentID int64) (*domain.AgentPerformance, error) {
	agent, err := s.agents.GetByID(ctx, agentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAgentNotFound
		}
		s.logger.Error("load agent failed", zap.Int64("agent_id", agentID), zap.Error(err))
		return nil, err
	}

	resolved, err := s.tickets.ListResolvedByAgent(ctx, agent.ID)
	if err != nil {
		s.logger.Error("load resolved tickets failed", zap.Int64("agent_id", agentID), zap.Error(err))
		return nil, err
	}
	if len(resolved) == 0 {
		return nil, nil
	}

	var hoursSum float64
	hoursCount := 0
	var ratingSum float64
	ratingCount := 0
	for i := range resolved {
		ticket := &resolved[i]
		if ticket.ResolvedAt != nil {
			hoursSum += ticket.ResolvedAt.Sub(ticket.CreatedAt).Hours()
			hoursCount++
		}
		if ticket.SatisfactionRating != nil {
			ratingSum += *ticket.SatisfactionRating
			ratingCount++
		}
	}

	perf := &domain.AgentPerformance{
		AgentID:         agent.ID,
		TicketsResolved: len(resolved),
	}
	if hoursCount > 0 {
		perf.AverageResolutionTimeHours = hoursSum / float64(hoursCount)
	}
	if ratingCount > 0 {
		score := ratingSum / float64(ratingCount)
		perf.CustomerSatisfactionScore = &score
	}

	if err := s.upsert(ctx, perf); err != nil {
		s.logger.Error("persist performance snapshot failed", zap.Int64("agent_id", agentID), zap.Error(err))
		return nil, err
	}
	s.publishUpdated(ctx, perf)
	return perf, nil
}

// GetAgentPerformance returns the stored snapshot for the agent.
func (s *PerformanceService) GetAgentPerformance(ctx context.Context, agentID int64) (*domain.AgentPerformance, error) {
	perf, err := s.performance.GetByAgent(ctx, agentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPerformanceNotFound
		}
		s.logger.Error("load performance snapshot failed", zap.Int64("agent_id", agentID), zap.Error(err))
		return nil, err
	}
	return perf, nil
}

func (s *PerformanceService) upsert(ctx context.Context, perf *domain.AgentPerformance) error {
	existing, err := s.performance.GetByAgent(ctx, perf.AgentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return s.performance.Create(ctx, perf)
		}
		return err
	}
	perf.ID = existing.ID
	return s.performance.Update(ctx, perf)
}

func (s *PerformanceService) publishUpdated(ctx context.Context, perf *domain.AgentPerformance) {
	if s.dispatcher == nil {
		return
	}
	event := events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventAgentPerformanceUpdated,
		AgentID:   &perf.AgentID,
		Timestamp: s.now().UTC(),
		Payload: events.AgentPerformanceUpdatedPayload{
			TicketsResolved:            perf.TicketsResolved,
			AverageResolutionTimeHours: perf.AverageResolutionTimeHours,
		},
	}
	_ = s.dispatcher.Publish(ctx, event)
}
