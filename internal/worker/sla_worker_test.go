package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-dispatch/internal/config"
	"github.com/spec-kit/ticket-dispatch/internal/domain"
	"github.com/spec-kit/ticket-dispatch/internal/repository/memory"
	"github.com/spec-kit/ticket-dispatch/internal/service"
)

func newSweepFixture() (*memory.Store, *service.SlaService) {
	store := memory.NewStore()
	store.SeedDefaultPolicies()
	svc := service.NewSlaService(service.SlaDependencies{
		TicketRepo:   store.Tickets(),
		PolicyRepo:   store.Policies(),
		ActivityRepo: store.Activities(),
	})
	return store, svc
}

func TestSlaWorkerStartStop(t *testing.T) {
	_, slaService := newSweepFixture()
	w := NewSlaWorker(slaService, config.SlaConfig{
		SweepSchedule:       "@every 1h",
		SweepTimeoutSeconds: 5,
		SweepEnabled:        true,
	}, zap.NewNop())

	require.NoError(t, w.Start())
	w.Stop()
}

func TestSlaWorkerDisabled(t *testing.T) {
	_, slaService := newSweepFixture()
	w := NewSlaWorker(slaService, config.SlaConfig{SweepEnabled: false}, zap.NewNop())

	require.NoError(t, w.Start())
	w.Stop()
}

func TestSlaWorkerInvalidSchedule(t *testing.T) {
	_, slaService := newSweepFixture()
	w := NewSlaWorker(slaService, config.SlaConfig{
		SweepSchedule: "not a schedule",
		SweepEnabled:  true,
	}, zap.NewNop())

	assert.Error(t, w.Start())
}

func TestSlaWorkerSweepUpdatesTickets(t *testing.T) {
	store, slaService := newSweepFixture()
	ticket := store.SeedTicket(domain.Ticket{
		Priority:  domain.TicketPriorityNormal,
		CreatedAt: time.Now().UTC().Add(-5 * time.Hour),
	})
	w := NewSlaWorker(slaService, config.SlaConfig{
		SweepSchedule:       "@every 1h",
		SweepTimeoutSeconds: 5,
		SweepEnabled:        true,
	}, zap.NewNop())

	w.runSweep()

	stored, err := store.Tickets().GetByID(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SlaResponseOverdue, stored.SlaStatus)
}
