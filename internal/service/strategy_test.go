package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ticket-dispatch/internal/domain"
)

func TestLowestWorkloadSelectsLeastLoaded(t *testing.T) {
	strategy := LowestWorkloadStrategy{}
	candidates := []domain.Agent{
		{ID: 1, CurrentWorkload: 4},
		{ID: 2, CurrentWorkload: 1},
		{ID: 3, CurrentWorkload: 2},
	}

	selected := strategy.Select(&domain.Ticket{}, candidates)

	require.NotNil(t, selected)
	assert.Equal(t, int64(2), selected.ID)
}

func TestLowestWorkloadTieKeepsListOrder(t *testing.T) {
	strategy := LowestWorkloadStrategy{}
	candidates := []domain.Agent{
		{ID: 7, CurrentWorkload: 2},
		{ID: 8, CurrentWorkload: 2},
		{ID: 9, CurrentWorkload: 2},
	}

	selected := strategy.Select(&domain.Ticket{}, candidates)

	require.NotNil(t, selected)
	assert.Equal(t, int64(7), selected.ID)
}

func TestLowestWorkloadEmptyCandidates(t *testing.T) {
	strategy := LowestWorkloadStrategy{}
	assert.Nil(t, strategy.Select(&domain.Ticket{}, nil))
}

// Sequential assignment against an equally loaded pool must rotate through
// every agent instead of pinning the first one.
func TestLowestWorkloadRotatesEquallyLoadedPool(t *testing.T) {
	strategy := LowestWorkloadStrategy{}
	pool := []domain.Agent{{ID: 1}, {ID: 2}, {ID: 3}}

	var picked []int64
	for i := 0; i < 6; i++ {
		selected := strategy.Select(&domain.Ticket{}, pool)
		require.NotNil(t, selected)
		picked = append(picked, selected.ID)
		selected.CurrentWorkload++
	}

	assert.Equal(t, []int64{1, 2, 3, 1, 2, 3}, picked)
}

func TestWeightedScoreComponents(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	strategy := WeightedScoreStrategy{Now: func() time.Time { return now }}
	ticket := &domain.Ticket{Category: "billing"}

	fourHoursAgo := now.Add(-4 * time.Hour)
	twoDaysAgo := now.Add(-48 * time.Hour)

	tests := []struct {
		name     string
		agent    domain.Agent
		expected float64
	}{
		{"idle generalist never assigned", domain.Agent{}, 13},
		{"idle specialist never assigned", domain.Agent{Specialties: []string{"billing"}}, 18},
		{"workload capped at ten", domain.Agent{CurrentWorkload: 15}, 3},
		{"assigned four hours ago", domain.Agent{LastAssignedAt: &fourHoursAgo}, 10.5},
		{"recency bonus capped", domain.Agent{LastAssignedAt: &twoDaysAgo}, 13},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, strategy.Score(ticket, &tt.agent), 1e-9)
		})
	}
}

// A loaded specialist still outranks a less busy generalist as long as the
// specialty bonus covers the workload gap.
func TestWeightedScorePrefersSpecialist(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	strategy := WeightedScoreStrategy{Now: func() time.Time { return now }}
	ticket := &domain.Ticket{Category: "network"}

	candidates := []domain.Agent{
		{ID: 1, CurrentWorkload: 2},
		{ID: 2, CurrentWorkload: 5, Specialties: []string{"network"}},
	}

	selected := strategy.Select(ticket, candidates)

	require.NotNil(t, selected)
	assert.Equal(t, int64(2), selected.ID)
	assert.Greater(t, strategy.Score(ticket, &candidates[1]), strategy.Score(ticket, &candidates[0]))
}

func TestWeightedScoreTieKeepsFirst(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	strategy := WeightedScoreStrategy{Now: func() time.Time { return now }}

	candidates := []domain.Agent{
		{ID: 4, CurrentWorkload: 1},
		{ID: 5, CurrentWorkload: 1},
	}

	selected := strategy.Select(&domain.Ticket{Category: "billing"}, candidates)

	require.NotNil(t, selected)
	assert.Equal(t, int64(4), selected.ID)
}

func TestWeightedScoreEmptyCandidates(t *testing.T) {
	strategy := WeightedScoreStrategy{}
	assert.Nil(t, strategy.Select(&domain.Ticket{}, []domain.Agent{}))
}
