// Package memory provides in-memory repository implementations used by tests
// and by DSN-less runs of the service.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/spec-kit/ticket-dispatch/internal/domain"
	"github.com/spec-kit/ticket-dispatch/internal/repository"
)

// Store holds all records behind a single lock. Repository views share it.
type Store struct {
	mu             sync.RWMutex
	tickets        map[int64]*domain.Ticket
	agents         map[int64]*domain.Agent
	policies       map[domain.TicketPriority]domain.SlaPolicy
	activities     []domain.TicketActivity
	performance    map[int64]*domain.AgentPerformance
	nextTicketID   int64
	nextAgentID    int64
	nextActivityID int64
	nextPerfID     int64
}

// NewStore initializes an empty store.
func NewStore() *Store {
	return &Store{
		tickets:     make(map[int64]*domain.Ticket),
		agents:      make(map[int64]*domain.Agent),
		policies:    make(map[domain.TicketPriority]domain.SlaPolicy),
		performance: make(map[int64]*domain.AgentPerformance),
	}
}

// Tickets returns the ticket repository view.
func (s *Store) Tickets() repository.TicketRepository { return &ticketRepo{s} }

// Agents returns the agent repository view.
func (s *Store) Agents() repository.AgentRepository { return &agentRepo{s} }

// Policies returns the SLA policy repository view.
func (s *Store) Policies() repository.SlaPolicyRepository { return &policyRepo{s} }

// Activities returns the activity repository view.
func (s *Store) Activities() repository.ActivityRepository { return &activityRepo{s} }

// Performance returns the performance repository view.
func (s *Store) Performance() repository.PerformanceRepository { return &perfRepo{s} }

// SeedTicket inserts a ticket, assigning defaults for zero-valued fields.
func (s *Store) SeedTicket(t domain.Ticket) domain.Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.ID == 0 {
		s.nextTicketID++
		t.ID = s.nextTicketID
	} else if t.ID > s.nextTicketID {
		s.nextTicketID = t.ID
	}
	if t.TicketNumber == "" {
		t.TicketNumber = domain.NewTicketNumber()
	}
	if t.Status == "" {
		t.Status = domain.TicketStatusNew
	}
	if t.SlaStatus == "" {
		t.SlaStatus = domain.SlaWithin
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = t.CreatedAt
	}
	stored := t
	s.tickets[t.ID] = &stored
	return t
}

// SeedAgent inserts an agent, assigning defaults for zero-valued fields.
func (s *Store) SeedAgent(a domain.Agent) domain.Agent {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID == 0 {
		s.nextAgentID++
		a.ID = s.nextAgentID
	} else if a.ID > s.nextAgentID {
		s.nextAgentID = a.ID
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = a.CreatedAt
	}
	stored := a
	s.agents[a.ID] = &stored
	return a
}

// SeedPolicy registers an SLA policy for its priority.
func (s *Store) SeedPolicy(p domain.SlaPolicy) domain.SlaPolicy {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == 0 {
		p.ID = int64(len(s.policies) + 1)
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = p.CreatedAt
	}
	s.policies[p.Priority] = p
	return p
}

// SeedDefaultPolicies installs the standard four-priority policy set.
func (s *Store) SeedDefaultPolicies() {
	defaults := []domain.SlaPolicy{
		{Priority: domain.TicketPriorityLow, ResponseTimeHours: 24, ResolutionTimeHours: 72},
		{Priority: domain.TicketPriorityNormal, ResponseTimeHours: 4, ResolutionTimeHours: 24},
		{Priority: domain.TicketPriorityHigh, ResponseTimeHours: 2, ResolutionTimeHours: 12},
		{Priority: domain.TicketPriorityUrgent, ResponseTimeHours: 1, ResolutionTimeHours: 4},
	}
	for _, p := range defaults {
		s.SeedPolicy(p)
	}
}

type ticketRepo struct {
	s *Store
}

func (r *ticketRepo) GetByID(_ context.Context, id int64) (*domain.Ticket, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	t, ok := r.s.tickets[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *t
	return &copied, nil
}

func (r *ticketRepo) ListUnassigned(_ context.Context) ([]domain.Ticket, error) {
	return r.filter(func(t *domain.Ticket) bool {
		return t.Status == domain.TicketStatusNew && t.AssignedTo == nil
	}, byDispatchOrder), nil
}

func (r *ticketRepo) ListActive(_ context.Context) ([]domain.Ticket, error) {
	return r.filter(func(t *domain.Ticket) bool {
		return t.Open()
	}, byID), nil
}

func (r *ticketRepo) ListOpenByAgent(_ context.Context, agentID int64) ([]domain.Ticket, error) {
	return r.filter(func(t *domain.Ticket) bool {
		return t.Open() && t.AssignedTo != nil && *t.AssignedTo == agentID
	}, byCreatedAt), nil
}

func (r *ticketRepo) ListResolvedByAgent(_ context.Context, agentID int64) ([]domain.Ticket, error) {
	return r.filter(func(t *domain.Ticket) bool {
		return t.ResolvedAt != nil && t.AssignedTo != nil && *t.AssignedTo == agentID
	}, byResolvedAt), nil
}

func (r *ticketRepo) UpdateAssignment(_ context.Context, ticket *domain.Ticket) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.tickets[ticket.ID]
	if !ok {
		return repository.ErrNotFound
	}
	stored.AssignedTo = ticket.AssignedTo
	stored.AssignedAt = ticket.AssignedAt
	stored.Status = ticket.Status
	stored.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *ticketRepo) UpdateSlaStatus(_ context.Context, id int64, status domain.SlaStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.tickets[id]
	if !ok {
		return repository.ErrNotFound
	}
	stored.SlaStatus = status
	stored.UpdatedAt = time.Now().UTC()
	return nil
}

type ticketOrder func(a, b domain.Ticket) bool

func byCreatedAt(a, b domain.Ticket) bool {
	if a.CreatedAt.Equal(b.CreatedAt) {
		return a.ID < b.ID
	}
	return a.CreatedAt.Before(b.CreatedAt)
}

func byDispatchOrder(a, b domain.Ticket) bool {
	if a.Priority.Rank() != b.Priority.Rank() {
		return a.Priority.Rank() < b.Priority.Rank()
	}
	return byCreatedAt(a, b)
}

func byID(a, b domain.Ticket) bool {
	return a.ID < b.ID
}

func byResolvedAt(a, b domain.Ticket) bool {
	if a.ResolvedAt == nil || b.ResolvedAt == nil || a.ResolvedAt.Equal(*b.ResolvedAt) {
		return a.ID < b.ID
	}
	return a.ResolvedAt.Before(*b.ResolvedAt)
}

func (r *ticketRepo) filter(keep func(*domain.Ticket) bool, less ticketOrder) []domain.Ticket {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var result []domain.Ticket
	for _, t := range r.s.tickets {
		if keep(t) {
			result = append(result, *t)
		}
	}
	sort.Slice(result, func(i, j int) bool { return less(result[i], result[j]) })
	return result
}

type agentRepo struct {
	s *Store
}

func (r *agentRepo) GetByID(_ context.Context, id int64) (*domain.Agent, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	a, ok := r.s.agents[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *a
	return &copied, nil
}

func (r *agentRepo) ListActiveAvailable(_ context.Context) ([]domain.Agent, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var result []domain.Agent
	for _, a := range r.s.agents {
		if a.Active && a.Available {
			result = append(result, *a)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *agentRepo) Update(_ context.Context, agent *domain.Agent) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.agents[agent.ID]
	if !ok {
		return repository.ErrNotFound
	}
	stored.Available = agent.Available
	stored.Specialties = agent.Specialties
	stored.CurrentWorkload = agent.CurrentWorkload
	stored.LastAssignedAt = agent.LastAssignedAt
	stored.UpdatedAt = time.Now().UTC()
	return nil
}

type policyRepo struct {
	s *Store
}

func (r *policyRepo) GetAll(_ context.Context) (map[domain.TicketPriority]domain.SlaPolicy, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	result := make(map[domain.TicketPriority]domain.SlaPolicy, len(r.s.policies))
	for k, v := range r.s.policies {
		result[k] = v
	}
	return result, nil
}

type activityRepo struct {
	s *Store
}

func (r *activityRepo) Append(_ context.Context, entry *domain.TicketActivity) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextActivityID++
	entry.ID = r.s.nextActivityID
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	r.s.activities = append(r.s.activities, *entry)
	return nil
}

func (r *activityRepo) ListByTicket(_ context.Context, ticketID int64, limit int) ([]domain.TicketActivity, error) {
	if limit <= 0 {
		limit = 50
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var result []domain.TicketActivity
	for i := len(r.s.activities) - 1; i >= 0 && len(result) < limit; i-- {
		if r.s.activities[i].TicketID == ticketID {
			result = append(result, r.s.activities[i])
		}
	}
	return result, nil
}

type perfRepo struct {
	s *Store
}

func (r *perfRepo) GetByAgent(_ context.Context, agentID int64) (*domain.AgentPerformance, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.performance[agentID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (r *perfRepo) Create(_ context.Context, perf *domain.AgentPerformance) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextPerfID++
	perf.ID = r.s.nextPerfID
	perf.UpdatedAt = time.Now().UTC()
	stored := *perf
	r.s.performance[perf.AgentID] = &stored
	return nil
}

func (r *perfRepo) Update(_ context.Context, perf *domain.AgentPerformance) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.performance[perf.AgentID]
	if !ok {
		return repository.ErrNotFound
	}
	perf.ID = existing.ID
	perf.UpdatedAt = time.Now().UTC()
	stored := *perf
	r.s.performance[perf.AgentID] = &stored
	return nil
}
