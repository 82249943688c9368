package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ticket-dispatch/internal/domain"
	"github.com/spec-kit/ticket-dispatch/internal/repository"
)

func TestListUnassignedDispatchOrder(t *testing.T) {
	store := NewStore()
	base := time.Now().UTC().Add(-3 * time.Hour)

	oldLow := store.SeedTicket(domain.Ticket{Priority: domain.TicketPriorityLow, CreatedAt: base})
	newUrgent := store.SeedTicket(domain.Ticket{Priority: domain.TicketPriorityUrgent, CreatedAt: base.Add(2 * time.Hour)})
	oldNormal := store.SeedTicket(domain.Ticket{Priority: domain.TicketPriorityNormal, CreatedAt: base.Add(time.Hour)})
	newNormal := store.SeedTicket(domain.Ticket{Priority: domain.TicketPriorityNormal, CreatedAt: base.Add(90 * time.Minute)})

	agentID := store.SeedAgent(domain.Agent{Name: "a", Active: true, Available: true}).ID
	assignedAt := time.Now().UTC()
	store.SeedTicket(domain.Ticket{
		Priority:   domain.TicketPriorityUrgent,
		Status:     domain.TicketStatusInProgress,
		AssignedTo: &agentID,
		AssignedAt: &assignedAt,
	})

	tickets, err := store.Tickets().ListUnassigned(context.Background())

	require.NoError(t, err)
	require.Len(t, tickets, 4)
	assert.Equal(t, newUrgent.ID, tickets[0].ID)
	assert.Equal(t, oldNormal.ID, tickets[1].ID)
	assert.Equal(t, newNormal.ID, tickets[2].ID)
	assert.Equal(t, oldLow.ID, tickets[3].ID)
}

func TestListActiveExcludesFinishedTickets(t *testing.T) {
	store := NewStore()
	open := store.SeedTicket(domain.Ticket{Priority: domain.TicketPriorityNormal})
	escalated := store.SeedTicket(domain.Ticket{Priority: domain.TicketPriorityNormal, Status: domain.TicketStatusEscalated})
	store.SeedTicket(domain.Ticket{Priority: domain.TicketPriorityNormal, Status: domain.TicketStatusResolved})
	store.SeedTicket(domain.Ticket{Priority: domain.TicketPriorityNormal, Status: domain.TicketStatusClosed})

	tickets, err := store.Tickets().ListActive(context.Background())

	require.NoError(t, err)
	require.Len(t, tickets, 2)
	assert.Equal(t, open.ID, tickets[0].ID)
	assert.Equal(t, escalated.ID, tickets[1].ID)
}

func TestListOpenByAgentFiltersAssignee(t *testing.T) {
	store := NewStore()
	agent := store.SeedAgent(domain.Agent{Name: "a", Active: true, Available: true})
	other := store.SeedAgent(domain.Agent{Name: "b", Active: true, Available: true})

	agentID, otherID := agent.ID, other.ID
	mine := store.SeedTicket(domain.Ticket{Status: domain.TicketStatusInProgress, AssignedTo: &agentID})
	store.SeedTicket(domain.Ticket{Status: domain.TicketStatusInProgress, AssignedTo: &otherID})
	resolvedAt := time.Now().UTC()
	store.SeedTicket(domain.Ticket{Status: domain.TicketStatusResolved, AssignedTo: &agentID, ResolvedAt: &resolvedAt})

	tickets, err := store.Tickets().ListOpenByAgent(context.Background(), agent.ID)

	require.NoError(t, err)
	require.Len(t, tickets, 1)
	assert.Equal(t, mine.ID, tickets[0].ID)
}

func TestActivityListNewestFirstWithLimit(t *testing.T) {
	store := NewStore()
	activities := store.Activities()

	for i := 0; i < 5; i++ {
		err := activities.Append(context.Background(), &domain.TicketActivity{
			TicketID:     1,
			ActivityType: domain.ActivitySlaUpdate,
			Description:  "entry",
			PerformedBy:  domain.SystemActorID,
		})
		require.NoError(t, err)
	}
	err := activities.Append(context.Background(), &domain.TicketActivity{
		TicketID:     2,
		ActivityType: domain.ActivityAssignment,
		PerformedBy:  domain.SystemActorID,
	})
	require.NoError(t, err)

	entries, err := activities.ListByTicket(context.Background(), 1, 3)

	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, int64(5), entries[0].ID)
	assert.Equal(t, int64(4), entries[1].ID)
	assert.Equal(t, int64(3), entries[2].ID)
}

func TestPerformanceCreateUpdateCycle(t *testing.T) {
	store := NewStore()
	perfRepo := store.Performance()

	_, err := perfRepo.GetByAgent(context.Background(), 1)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	created := &domain.AgentPerformance{AgentID: 1, TicketsResolved: 2, AverageResolutionTimeHours: 3}
	require.NoError(t, perfRepo.Create(context.Background(), created))
	assert.NotZero(t, created.ID)

	stored, err := perfRepo.GetByAgent(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.TicketsResolved)

	updated := &domain.AgentPerformance{AgentID: 1, TicketsResolved: 5, AverageResolutionTimeHours: 4}
	require.NoError(t, perfRepo.Update(context.Background(), updated))
	assert.Equal(t, created.ID, updated.ID)

	stored, err = perfRepo.GetByAgent(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 5, stored.TicketsResolved)

	err = perfRepo.Update(context.Background(), &domain.AgentPerformance{AgentID: 99})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestAgentUpdateUnknownAgent(t *testing.T) {
	store := NewStore()

	err := store.Agents().Update(context.Background(), &domain.Agent{ID: 123})

	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSeedDefaultPoliciesCoversAllPriorities(t *testing.T) {
	store := NewStore()
	store.SeedDefaultPolicies()

	policies, err := store.Policies().GetAll(context.Background())

	require.NoError(t, err)
	require.Len(t, policies, 4)
	assert.InDelta(t, 1, policies[domain.TicketPriorityUrgent].ResponseTimeHours, 1e-9)
	assert.InDelta(t, 24, policies[domain.TicketPriorityNormal].ResolutionTimeHours, 1e-9)
}
