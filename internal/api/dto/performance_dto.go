package dto

import "time"

// AgentPerformanceResponse is the stored performance snapshot.
type AgentPerformanceResponse struct {
	AgentID                    int64     `json:"agent_id"`
	TicketsResolved            int       `json:"tickets_resolved"`
	AverageResolutionTimeHours float64   `json:"average_resolution_time_hours"`
	CustomerSatisfactionScore  *float64  `json:"customer_satisfaction_score"`
	UpdatedAt                  time.Time `json:"updated_at"`
}

// PerformanceRefreshResponse wraps a recompute outcome. Updated is false when
// the agent has no resolved tickets and nothing was written.
type PerformanceRefreshResponse struct {
	Updated     bool                      `json:"updated"`
	Performance *AgentPerformanceResponse `json:"performance,omitempty"`
}
