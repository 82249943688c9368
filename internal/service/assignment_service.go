package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-dispatch/internal/domain"
	"github.com/spec-kit/ticket-dispatch/internal/events"
	"github.com/spec-kit/ticket-dispatch/internal/locking"
	"github.com/spec-kit/ticket-dispatch/internal/observability"
	"github.com/spec-kit/ticket-dispatch/internal/repository"
)

// AssignmentService routes tickets to agents and keeps the workload
// bookkeeping consistent.
type AssignmentService struct {
	tickets    repository.TicketRepository
	agents     repository.AgentRepository
	activities repository.ActivityRepository
	dispatcher events.Dispatcher
	locker     locking.PoolLocker
	strategy   SelectionStrategy
	preview    WeightedScoreStrategy
	metrics    *observability.Metrics
	logger     *zap.Logger
	now        func() time.Time
}

// AssignmentDependencies bundles repositories and collaborators.
type AssignmentDependencies struct {
	TicketRepo   repository.TicketRepository
	AgentRepo    repository.AgentRepository
	ActivityRepo repository.ActivityRepository
	Dispatcher   events.Dispatcher
	Locker       locking.PoolLocker
	Strategy     SelectionStrategy
	Metrics      *observability.Metrics
	Logger       *zap.Logger
	Now          func() time.Time
}

// NewAssignmentService creates the service.
func NewAssignmentService(deps AssignmentDependencies) *AssignmentService {
	if deps.Strategy == nil {
		deps.Strategy = LowestWorkloadStrategy{}
	}
	if deps.Locker == nil {
		deps.Locker = locking.NewLocalLocker()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &AssignmentService{
		tickets:    deps.TicketRepo,
		agents:     deps.AgentRepo,
		activities: deps.ActivityRepo,
		dispatcher: deps.Dispatcher,
		locker:     deps.Locker,
		strategy:   deps.Strategy,
		preview:    WeightedScoreStrategy{Now: deps.Now},
		metrics:    deps.Metrics,
		logger:     deps.Logger,
		now:        deps.Now,
	}
}

// AssignmentResult pairs a ticket with the agent it was assigned to.
type AssignmentResult struct {
	TicketID int64
	AgentID  int64
}

// BulkAssignmentSummary reports the outcome of a bulk assignment run.
type BulkAssignmentSummary struct {
	Total    int
	Assigned int
	Results  []AssignmentResult
}

// AssignTicket selects an agent for the ticket and performs the full
// transition: ticket assignment fields, agent workload, activity entry.
// Returns ErrTicketNotFound or ErrNoAgentAvailable as distinguishable
// negative outcomes.
func (s *AssignmentService) AssignTicket(ctx context.Context, ticketID int64) (*domain.Agent, error) {
	release, err := s.locker.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()
	return s.assignTicketLocked(ctx, ticketID)
}

// FindBestAgentForTicket scores every available agent for the ticket and
// returns the best match with its score. Read-only: no assignment happens.
func (s *AssignmentService) FindBestAgentForTicket(ctx context.Context, ticket *domain.Ticket) (*domain.Agent, float64, error) {
	agents, err := s.agents.ListActiveAvailable(ctx)
	if err != nil {
		s.logger.Error("load available agents failed", zap.Int64("ticket_id", ticket.ID), zap.Error(err))
		return nil, 0, err
	}
	best := s.preview.Select(ticket, agents)
	if best == nil {
		return nil, 0, ErrNoAgentAvailable
	}
	return best, s.preview.Score(ticket, best), nil
}

// PreviewAssignment loads the ticket and runs the weighted-score preview.
func (s *AssignmentService) PreviewAssignment(ctx context.Context, ticketID int64) (*domain.Agent, float64, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, 0, ErrTicketNotFound
		}
		s.logger.Error("load ticket failed", zap.Int64("ticket_id", ticketID), zap.Error(err))
		return nil, 0, err
	}
	return s.FindBestAgentForTicket(ctx, ticket)
}

// AssignAllUnassigned runs the engine over every new, unassigned ticket in
// dispatch order. Tickets without an eligible agent are skipped; per-ticket
// failures are logged and do not abort the batch.
func (s *AssignmentService) AssignAllUnassigned(ctx context.Context) (BulkAssignmentSummary, error) {
	unassigned, err := s.tickets.ListUnassigned(ctx)
	if err != nil {
		s.logger.Error("load unassigned tickets failed", zap.Error(err))
		return BulkAssignmentSummary{}, err
	}

	summary := BulkAssignmentSummary{Total: len(unassigned)}
	for _, ticket := range unassigned {
		if ctx.Err() != nil {
			return summary, ctx.Err()
		}
		agent, err := s.AssignTicket(ctx, ticket.ID)
		if err != nil {
			if errors.Is(err, ErrNoAgentAvailable) {
				continue
			}
			s.logger.Error("bulk assignment failed for ticket",
				zap.Int64("ticket_id", ticket.ID), zap.Error(err))
			continue
		}
		summary.Assigned++
		summary.Results = append(summary.Results, AssignmentResult{TicketID: ticket.ID, AgentID: agent.ID})
	}
	s.logger.Info("bulk assignment finished",
		zap.Int("total", summary.Total), zap.Int("assigned", summary.Assigned))
	return summary, nil
}

// ReassignAgentTickets moves the agent's open tickets back through the
// engine. Tickets that cannot be placed stay with the original agent. Each
// successfully moved ticket decrements the source agent's workload once, so
// the workload counter keeps matching the agent's open tickets.
func (s *AssignmentService) ReassignAgentTickets(ctx context.Context, agentID int64) (int, error) {
	if _, err := s.agents.GetByID(ctx, agentID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, ErrAgentNotFound
		}
		s.logger.Error("load agent failed", zap.Int64("agent_id", agentID), zap.Error(err))
		return 0, err
	}

	open, err := s.tickets.ListOpenByAgent(ctx, agentID)
	if err != nil {
		s.logger.Error("load open tickets failed", zap.Int64("agent_id", agentID), zap.Error(err))
		return 0, err
	}

	moved := 0
	for _, ticket := range open {
		if ctx.Err() != nil {
			return moved, ctx.Err()
		}
		if _, err := s.reassignOne(ctx, ticket.ID, agentID); err != nil {
			if errors.Is(err, ErrNoAgentAvailable) {
				continue
			}
			s.logger.Error("reassignment failed for ticket",
				zap.Int64("ticket_id", ticket.ID), zap.Int64("agent_id", agentID), zap.Error(err))
			continue
		}
		moved++
	}
	s.logger.Info("reassignment finished",
		zap.Int64("agent_id", agentID), zap.Int("open", len(open)), zap.Int("moved", moved))
	return moved, nil
}

func (s *AssignmentService) reassignOne(ctx context.Context, ticketID, sourceAgentID int64) (*domain.Agent, error) {
	release, err := s.locker.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	selected, err := s.assignTicketLocked(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if err := s.decrementWorkload(ctx, sourceAgentID); err != nil {
		s.logger.Warn("source workload decrement failed",
			zap.Int64("agent_id", sourceAgentID), zap.Error(err))
	}
	return selected, nil
}

func (s *AssignmentService) assignTicketLocked(ctx context.Context, ticketID int64) (*domain.Agent, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.recordOutcome("not_found")
			return nil, ErrTicketNotFound
		}
		s.logger.Error("load ticket failed", zap.Int64("ticket_id", ticketID), zap.Error(err))
		s.recordOutcome("error")
		return nil, err
	}

	available, err := s.agents.ListActiveAvailable(ctx)
	if err != nil {
		s.logger.Error("load available agents failed", zap.Int64("ticket_id", ticketID), zap.Error(err))
		s.recordOutcome("error")
		return nil, err
	}
	if len(available) == 0 {
		s.recordOutcome("no_agent")
		return nil, ErrNoAgentAvailable
	}

	candidates := filterBySpecialty(available, ticket.Category)
	if len(candidates) == 0 {
		candidates = available
	}
	selected := s.strategy.Select(ticket, candidates)
	if selected == nil {
		s.recordOutcome("no_agent")
		return nil, ErrNoAgentAvailable
	}

	now := s.now().UTC()
	previousAgent := ticket.AssignedTo
	previousStatus := ticket.Status
	ticket.AssignedTo = &selected.ID
	ticket.AssignedAt = &now
	if ticket.Status == domain.TicketStatusNew {
		ticket.Status = domain.TicketStatusInProgress
	}
	if err := s.tickets.UpdateAssignment(ctx, ticket); err != nil {
		s.logger.Error("persist ticket assignment failed", zap.Int64("ticket_id", ticketID), zap.Error(err))
		s.recordOutcome("error")
		return nil, err
	}

	selected.CurrentWorkload++
	selected.LastAssignedAt = &now
	if err := s.agents.Update(ctx, selected); err != nil {
		s.logger.Error("persist agent workload failed",
			zap.Int64("ticket_id", ticketID), zap.Int64("agent_id", selected.ID), zap.Error(err))
		s.recordOutcome("error")
		return nil, err
	}

	if err := s.recordAssignment(ctx, ticket, selected.ID, previousAgent, previousStatus); err != nil {
		s.logger.Error("record assignment activity failed",
			zap.Int64("ticket_id", ticketID), zap.Error(err))
		s.recordOutcome("error")
		return nil, err
	}
	s.publishAssigned(ctx, ticket.ID, selected.ID, previousAgent)
	s.recordOutcome("assigned")
	return selected, nil
}

func (s *AssignmentService) decrementWorkload(ctx context.Context, agentID int64) error {
	agent, err := s.agents.GetByID(ctx, agentID)
	if err != nil {
		return err
	}
	if agent.CurrentWorkload > 0 {
		agent.CurrentWorkload--
	}
	return s.agents.Update(ctx, agent)
}

func filterBySpecialty(agents []domain.Agent, category string) []domain.Agent {
	var matched []domain.Agent
	for _, agent := range agents {
		if agent.HasSpecialty(category) {
			matched = append(matched, agent)
		}
	}
	return matched
}

func (s *AssignmentService) recordAssignment(ctx context.Context, ticket *domain.Ticket, agentID int64, previousAgent *int64, previousStatus domain.TicketStatus) error {
	return s.activities.Append(ctx, &domain.TicketActivity{
		TicketID:     ticket.ID,
		ActivityType: domain.ActivityAssignment,
		Description:  fmt.Sprintf("assigned to agent %d (automatic)", agentID),
		PerformedBy:  domain.SystemActorID,
		Metadata: map[string]any{
			"method": "automatic",
			"old": map[string]any{
				"assigned_to": previousAgent,
				"status":      previousStatus,
			},
			"new": map[string]any{
				"assigned_to": agentID,
				"status":      ticket.Status,
			},
		},
	})
}

func (s *AssignmentService) publishAssigned(ctx context.Context, ticketID, agentID int64, previousAgent *int64) {
	if s.dispatcher == nil {
		return
	}
	event := events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventTicketAssigned,
		TicketID:  ticketID,
		AgentID:   &agentID,
		Timestamp: s.now().UTC(),
		Payload: events.TicketAssignedPayload{
			AgentID:         agentID,
			Method:          "automatic",
			PreviousAgentID: previousAgent,
		},
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func (s *AssignmentService) recordOutcome(outcome string) {
	if s.metrics == nil {
		return
	}
	s.metrics.RecordAssignment(outcome)
}
