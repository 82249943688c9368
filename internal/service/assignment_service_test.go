package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-dispatch/internal/domain"
	"github.com/spec-kit/ticket-dispatch/internal/events"
	"github.com/spec-kit/ticket-dispatch/internal/repository/memory"
)

func newAssignmentFixture() (*memory.Store, *AssignmentService) {
	store := memory.NewStore()
	svc := NewAssignmentService(AssignmentDependencies{
		TicketRepo:   store.Tickets(),
		AgentRepo:    store.Agents(),
		ActivityRepo: store.Activities(),
		Dispatcher:   events.NewInMemoryDispatcher(zap.NewNop()),
	})
	return store, svc
}

func TestAssignTicketPrefersSpecialist(t *testing.T) {
	store, svc := newAssignmentFixture()
	ticket := store.SeedTicket(domain.Ticket{Subject: "refund failed", Category: "billing", Priority: domain.TicketPriorityNormal})
	store.SeedAgent(domain.Agent{Name: "generalist", Active: true, Available: true})
	specialist := store.SeedAgent(domain.Agent{Name: "specialist", Active: true, Available: true, Specialties: []string{"billing"}, CurrentWorkload: 3})

	selected, err := svc.AssignTicket(context.Background(), ticket.ID)

	require.NoError(t, err)
	assert.Equal(t, specialist.ID, selected.ID)
}

func TestAssignTicketFallsBackToFullPool(t *testing.T) {
	store, svc := newAssignmentFixture()
	ticket := store.SeedTicket(domain.Ticket{Category: "hardware", Priority: domain.TicketPriorityNormal})
	store.SeedAgent(domain.Agent{Name: "busy", Active: true, Available: true, Specialties: []string{"billing"}, CurrentWorkload: 2})
	idle := store.SeedAgent(domain.Agent{Name: "idle", Active: true, Available: true, Specialties: []string{"network"}})

	selected, err := svc.AssignTicket(context.Background(), ticket.ID)

	require.NoError(t, err)
	assert.Equal(t, idle.ID, selected.ID)
}

func TestAssignTicketUpdatesTicketAndAgent(t *testing.T) {
	store, svc := newAssignmentFixture()
	ticket := store.SeedTicket(domain.Ticket{Category: "billing", Priority: domain.TicketPriorityHigh})
	agent := store.SeedAgent(domain.Agent{Name: "a", Active: true, Available: true})

	_, err := svc.AssignTicket(context.Background(), ticket.ID)
	require.NoError(t, err)

	stored, err := store.Tickets().GetByID(context.Background(), ticket.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.AssignedTo)
	assert.Equal(t, agent.ID, *stored.AssignedTo)
	assert.NotNil(t, stored.AssignedAt)
	assert.Equal(t, domain.TicketStatusInProgress, stored.Status)

	storedAgent, err := store.Agents().GetByID(context.Background(), agent.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, storedAgent.CurrentWorkload)
	assert.NotNil(t, storedAgent.LastAssignedAt)
}

func TestAssignTicketKeepsEscalatedStatus(t *testing.T) {
	store, svc := newAssignmentFixture()
	ticket := store.SeedTicket(domain.Ticket{Category: "billing", Status: domain.TicketStatusEscalated})
	store.SeedAgent(domain.Agent{Name: "a", Active: true, Available: true})

	_, err := svc.AssignTicket(context.Background(), ticket.ID)
	require.NoError(t, err)

	stored, err := store.Tickets().GetByID(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusEscalated, stored.Status)
	assert.NotNil(t, stored.AssignedTo)
}

func TestAssignTicketRecordsActivity(t *testing.T) {
	store, svc := newAssignmentFixture()
	ticket := store.SeedTicket(domain.Ticket{Category: "billing"})
	agent := store.SeedAgent(domain.Agent{Name: "a", Active: true, Available: true})

	_, err := svc.AssignTicket(context.Background(), ticket.ID)
	require.NoError(t, err)

	entries, err := store.Activities().ListByTicket(context.Background(), ticket.ID, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	entry := entries[0]
	assert.Equal(t, domain.ActivityAssignment, entry.ActivityType)
	assert.Equal(t, domain.SystemActorID, entry.PerformedBy)
	assert.Equal(t, "automatic", entry.Metadata["method"])
	assert.Contains(t, entry.Description, "assigned to agent")

	previous, ok := entry.Metadata["old"].(map[string]any)
	require.True(t, ok)
	assert.Nil(t, previous["assigned_to"])
	next, ok := entry.Metadata["new"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, agent.ID, next["assigned_to"])
}

func TestAssignTicketUnknownTicket(t *testing.T) {
	store, svc := newAssignmentFixture()
	store.SeedAgent(domain.Agent{Name: "a", Active: true, Available: true})

	_, err := svc.AssignTicket(context.Background(), 404)

	assert.ErrorIs(t, err, ErrTicketNotFound)
}

func TestAssignTicketNoAgents(t *testing.T) {
	store, svc := newAssignmentFixture()
	ticket := store.SeedTicket(domain.Ticket{Category: "billing"})

	_, err := svc.AssignTicket(context.Background(), ticket.ID)

	assert.ErrorIs(t, err, ErrNoAgentAvailable)
}

func TestAssignTicketSkipsUnavailableAgents(t *testing.T) {
	store, svc := newAssignmentFixture()
	ticket := store.SeedTicket(domain.Ticket{Category: "billing"})
	store.SeedAgent(domain.Agent{Name: "offline", Active: true, Available: false})
	store.SeedAgent(domain.Agent{Name: "inactive", Active: false, Available: true})

	_, err := svc.AssignTicket(context.Background(), ticket.ID)

	assert.ErrorIs(t, err, ErrNoAgentAvailable)
}

func TestAssignTicketPublishesEvent(t *testing.T) {
	store := memory.NewStore()
	dispatcher := events.NewInMemoryDispatcher(zap.NewNop())
	svc := NewAssignmentService(AssignmentDependencies{
		TicketRepo:   store.Tickets(),
		AgentRepo:    store.Agents(),
		ActivityRepo: store.Activities(),
		Dispatcher:   dispatcher,
	})
	var published []events.Event
	dispatcher.Subscribe(events.EventTicketAssigned, func(_ context.Context, e events.Event) error {
		published = append(published, e)
		return nil
	})
	ticket := store.SeedTicket(domain.Ticket{Category: "billing"})
	agent := store.SeedAgent(domain.Agent{Name: "a", Active: true, Available: true})

	_, err := svc.AssignTicket(context.Background(), ticket.ID)
	require.NoError(t, err)

	require.Len(t, published, 1)
	assert.Equal(t, ticket.ID, published[0].TicketID)
	require.NotNil(t, published[0].AgentID)
	assert.Equal(t, agent.ID, *published[0].AgentID)
}

func TestAssignAllUnassignedNoAgents(t *testing.T) {
	store, svc := newAssignmentFixture()
	for i := 0; i < 5; i++ {
		store.SeedTicket(domain.Ticket{Category: "billing", Priority: domain.TicketPriorityNormal})
	}

	summary, err := svc.AssignAllUnassigned(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 5, summary.Total)
	assert.Zero(t, summary.Assigned)
	assert.Empty(t, summary.Results)

	unassigned, err := store.Tickets().ListUnassigned(context.Background())
	require.NoError(t, err)
	assert.Len(t, unassigned, 5)
}

func TestAssignAllUnassignedAssignsEverything(t *testing.T) {
	store, svc := newAssignmentFixture()
	for i := 0; i < 3; i++ {
		store.SeedTicket(domain.Ticket{Category: "billing", Priority: domain.TicketPriorityNormal})
	}
	store.SeedAgent(domain.Agent{Name: "a", Active: true, Available: true})
	store.SeedAgent(domain.Agent{Name: "b", Active: true, Available: true})

	summary, err := svc.AssignAllUnassigned(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 3, summary.Assigned)
	require.Len(t, summary.Results, 3)

	unassigned, err := store.Tickets().ListUnassigned(context.Background())
	require.NoError(t, err)
	assert.Empty(t, unassigned)
}

// Urgent tickets must be dispatched before older lower-priority ones.
func TestAssignAllUnassignedDispatchOrder(t *testing.T) {
	store, svc := newAssignmentFixture()
	base := time.Now().UTC().Add(-2 * time.Hour)
	normal := store.SeedTicket(domain.Ticket{Category: "billing", Priority: domain.TicketPriorityNormal, CreatedAt: base})
	urgent := store.SeedTicket(domain.Ticket{Category: "billing", Priority: domain.TicketPriorityUrgent, CreatedAt: base.Add(30 * time.Minute)})
	store.SeedAgent(domain.Agent{Name: "a", Active: true, Available: true})

	summary, err := svc.AssignAllUnassigned(context.Background())

	require.NoError(t, err)
	require.Len(t, summary.Results, 2)
	assert.Equal(t, urgent.ID, summary.Results[0].TicketID)
	assert.Equal(t, normal.ID, summary.Results[1].TicketID)
}

func TestReassignAgentTicketsMovesAllOpen(t *testing.T) {
	store, svc := newAssignmentFixture()
	source := store.SeedAgent(domain.Agent{Name: "leaving", Active: true, Available: false, CurrentWorkload: 3})
	store.SeedAgent(domain.Agent{Name: "a", Active: true, Available: true})
	store.SeedAgent(domain.Agent{Name: "b", Active: true, Available: true})
	store.SeedAgent(domain.Agent{Name: "c", Active: true, Available: true})

	base := time.Now().UTC().Add(-time.Hour)
	var ticketIDs []int64
	for i := 0; i < 3; i++ {
		sourceID := source.ID
		ticket := store.SeedTicket(domain.Ticket{
			Category:   "billing",
			Status:     domain.TicketStatusInProgress,
			AssignedTo: &sourceID,
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		})
		ticketIDs = append(ticketIDs, ticket.ID)
	}

	moved, err := svc.ReassignAgentTickets(context.Background(), source.ID)

	require.NoError(t, err)
	assert.Equal(t, 3, moved)

	seen := map[int64]int{}
	for _, id := range ticketIDs {
		stored, err := store.Tickets().GetByID(context.Background(), id)
		require.NoError(t, err)
		require.NotNil(t, stored.AssignedTo)
		assert.NotEqual(t, source.ID, *stored.AssignedTo)
		seen[*stored.AssignedTo]++
	}
	assert.Len(t, seen, 3)

	storedSource, err := store.Agents().GetByID(context.Background(), source.ID)
	require.NoError(t, err)
	assert.Zero(t, storedSource.CurrentWorkload)
}

func TestReassignAgentTicketsNoOpenTickets(t *testing.T) {
	store, svc := newAssignmentFixture()
	agent := store.SeedAgent(domain.Agent{Name: "a", Active: true, Available: true})

	moved, err := svc.ReassignAgentTickets(context.Background(), agent.ID)

	require.NoError(t, err)
	assert.Zero(t, moved)
}

func TestReassignAgentTicketsUnknownAgent(t *testing.T) {
	_, svc := newAssignmentFixture()

	_, err := svc.ReassignAgentTickets(context.Background(), 42)

	assert.ErrorIs(t, err, ErrAgentNotFound)
}

func TestPreviewAssignmentDoesNotWrite(t *testing.T) {
	store, svc := newAssignmentFixture()
	ticket := store.SeedTicket(domain.Ticket{Category: "billing"})
	agent := store.SeedAgent(domain.Agent{Name: "a", Active: true, Available: true, Specialties: []string{"billing"}})

	best, score, err := svc.PreviewAssignment(context.Background(), ticket.ID)

	require.NoError(t, err)
	assert.Equal(t, agent.ID, best.ID)
	assert.Greater(t, score, 0.0)

	stored, err := store.Tickets().GetByID(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.AssignedTo)
	assert.Equal(t, domain.TicketStatusNew, stored.Status)

	storedAgent, err := store.Agents().GetByID(context.Background(), agent.ID)
	require.NoError(t, err)
	assert.Zero(t, storedAgent.CurrentWorkload)
}

func TestPreviewAssignmentUnknownTicket(t *testing.T) {
	_, svc := newAssignmentFixture()

	_, _, err := svc.PreviewAssignment(context.Background(), 999)

	assert.ErrorIs(t, err, ErrTicketNotFound)
}
