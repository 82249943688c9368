package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-dispatch/internal/domain"
	"github.com/spec-kit/ticket-dispatch/internal/events"
	"github.com/spec-kit/ticket-dispatch/internal/observability"
	"github.com/spec-kit/ticket-dispatch/internal/repository"
)

// SlaService recomputes the derived SLA status of active tickets.
type SlaService struct {
	tickets    repository.TicketRepository
	policies   repository.SlaPolicyRepository
	activities repository.ActivityRepository
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	now        func() time.Time
}

// SlaDependencies bundles repositories and collaborators.
type SlaDependencies struct {
	TicketRepo   repository.TicketRepository
	PolicyRepo   repository.SlaPolicyRepository
	ActivityRepo repository.ActivityRepository
	Dispatcher   events.Dispatcher
	Metrics      *observability.Metrics
	Logger       *zap.Logger
	Now          func() time.Time
}

// NewSlaService creates the service.
func NewSlaService(deps SlaDependencies) *SlaService {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &SlaService{
		tickets:    deps.TicketRepo,
		policies:   deps.PolicyRepo,
		activities: deps.ActivityRepo,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
		now:        deps.Now,
	}
}

// UpdateTicketSlaStatus recomputes the SLA status of every active ticket and
// persists the transitions, one activity entry per change. The sweep is
// idempotent: re-running it with no elapsed time produces no writes.
// Per-ticket write failures are logged and skipped so a partial sweep can
// resume on the next run.
func (s *SlaService) UpdateTicketSlaStatus(ctx context.Context) (int, error) {
	active, err := s.tickets.ListActive(ctx)
	if err != nil {
		s.logger.Error("load active tickets failed", zap.Error(err))
		return 0, err
	}
	policies, err := s.policies.GetAll(ctx)
	if err != nil {
		s.logger.Error("load sla policies failed", zap.Error(err))
		return 0, err
	}

	now := s.now().UTC()
	updated := 0
	for i := range active {
		if ctx.Err() != nil {
			return updated, ctx.Err()
		}
		ticket := &active[i]
		policy, ok := resolvePolicy(policies, ticket.Priority)
		if !ok {
			s.logger.Warn("no sla policy registered",
				zap.String("priority", string(ticket.Priority)), zap.Int64("ticket_id", ticket.ID))
			continue
		}
		next := evaluateSlaStatus(ticket, policy, now)
		if next == ticket.SlaStatus {
			continue
		}
		if err := s.tickets.UpdateSlaStatus(ctx, ticket.ID, next); err != nil {
			s.logger.Error("persist sla status failed",
				zap.Int64("ticket_id", ticket.ID), zap.Error(err))
			continue
		}
		if err := s.recordTransition(ctx, ticket.ID, ticket.SlaStatus, next); err != nil {
			s.logger.Error("record sla activity failed",
				zap.Int64("ticket_id", ticket.ID), zap.Error(err))
		}
		s.publishSlaChanged(ctx, ticket.ID, ticket.SlaStatus, next)
		if s.metrics != nil {
			s.metrics.RecordSlaTransition(string(next))
		}
		updated++
	}
	if updated > 0 {
		s.logger.Info("sla sweep finished", zap.Int("active", len(active)), zap.Int("updated", updated))
	}
	return updated, nil
}

// resolvePolicy returns the policy for the priority, falling back to the
// normal priority's policy when none is registered.
func resolvePolicy(policies map[domain.TicketPriority]domain.SlaPolicy, priority domain.TicketPriority) (domain.SlaPolicy, bool) {
	if policy, ok := policies[priority]; ok {
		return policy, true
	}
	policy, ok := policies[domain.TicketPriorityNormal]
	return policy, ok
}

// evaluateSlaStatus derives the SLA state of one ticket at the given time.
// Response thresholds apply until the first response is recorded, resolution
// thresholds until the ticket is resolved.
func evaluateSlaStatus(ticket *domain.Ticket, policy domain.SlaPolicy, now time.Time) domain.SlaStatus {
	if ticket.FirstResponseAt == nil {
		elapsed := now.Sub(ticket.CreatedAt)
		target := policy.ResponseTarget()
		if elapsed > target {
			return domain.SlaResponseOverdue
		}
		if elapsed > time.Duration(0.75*float64(target)) {
			return domain.SlaResponseAtRisk
		}
		return domain.SlaWithin
	}
	if ticket.ResolvedAt == nil {
		target := policy.ResolutionTarget()
		remaining := ticket.CreatedAt.Add(target).Sub(now)
		if remaining < 0 {
			return domain.SlaResolutionOverdue
		}
		if remaining < time.Duration(0.25*float64(target)) {
			return domain.SlaResolutionAtRisk
		}
		return domain.SlaWithin
	}
	return ticket.SlaStatus
}

func (s *SlaService) recordTransition(ctx context.Context, ticketID int64, old, next domain.SlaStatus) error {
	return s.activities.Append(ctx, &domain.TicketActivity{
		TicketID:     ticketID,
		ActivityType: domain.ActivitySlaUpdate,
		Description:  fmt.Sprintf("sla status changed from %s to %s", old, next),
		PerformedBy:  domain.SystemActorID,
		Metadata: map[string]any{
			"old": map[string]any{"sla_status": old},
			"new": map[string]any{"sla_status": next},
		},
	})
}

func (s *SlaService) publishSlaChanged(ctx context.Context, ticketID int64, old, next domain.SlaStatus) {
	if s.dispatcher == nil {
		return
	}
	event := events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventTicketSlaChanged,
		TicketID:  ticketID,
		Timestamp: s.now().UTC(),
		Payload: events.TicketSlaChangedPayload{
			OldStatus: old,
			NewStatus: next,
		},
	}
	_ = s.dispatcher.Publish(ctx, event)
}
