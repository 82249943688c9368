package service

import (
	"time"

	"github.com/spec-kit/ticket-dispatch/internal/domain"
)

// SelectionStrategy picks one agent from a non-empty candidate set.
// LowestWorkloadStrategy performs real assignments; WeightedScoreStrategy
// powers the read-only preview.
type SelectionStrategy interface {
	Select(ticket *domain.Ticket, candidates []domain.Agent) *domain.Agent
}

// LowestWorkloadStrategy selects the candidate with the smallest current
// workload. Ties keep the earliest candidate in list order, which makes
// sequential assignment against an equally loaded pool rotate through it.
type LowestWorkloadStrategy struct{}

// Select returns the least-loaded candidate, or nil when the set is empty.
func (LowestWorkloadStrategy) Select(_ *domain.Ticket, candidates []domain.Agent) *domain.Agent {
	if len(candidates) == 0 {
		return nil
	}
	best := 0
	for i := 1; i < len(candidates); i++ {
		if candidates[i].CurrentWorkload < candidates[best].CurrentWorkload {
			best = i
		}
	}
	return &candidates[best]
}

// WeightedScoreStrategy ranks candidates by a composite score: specialty
// match, low workload, and time since the last assignment. Ties keep the
// earliest candidate in list order.
type WeightedScoreStrategy struct {
	Now func() time.Time
}

// Select returns the highest-scoring candidate, or nil when the set is empty.
func (s WeightedScoreStrategy) Select(ticket *domain.Ticket, candidates []domain.Agent) *domain.Agent {
	if len(candidates) == 0 {
		return nil
	}
	now := s.now()
	best := 0
	bestScore := s.scoreAt(ticket, &candidates[0], now)
	for i := 1; i < len(candidates); i++ {
		if score := s.scoreAt(ticket, &candidates[i], now); score > bestScore {
			best = i
			bestScore = score
		}
	}
	return &candidates[best]
}

// Score computes the candidate's score for the given ticket.
func (s WeightedScoreStrategy) Score(ticket *domain.Ticket, agent *domain.Agent) float64 {
	return s.scoreAt(ticket, agent, s.now())
}

func (s WeightedScoreStrategy) scoreAt(ticket *domain.Ticket, agent *domain.Agent, now time.Time) float64 {
	score := 0.0
	if agent.HasSpecialty(ticket.Category) {
		score += 5
	}
	workload := agent.CurrentWorkload
	if workload > 10 {
		workload = 10
	}
	score += float64(10 - workload)
	if agent.LastAssignedAt == nil {
		score += 3
	} else {
		bonus := now.Sub(*agent.LastAssignedAt).Hours() / 8
		if bonus > 3 {
			bonus = 3
		}
		score += bonus
	}
	return score
}

func (s WeightedScoreStrategy) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
