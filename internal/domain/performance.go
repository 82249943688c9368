package domain

import "time"

// AgentPerformance is an aggregated snapshot of an agent's resolved work.
// One row exists per agent; refreshes overwrite the previous snapshot.
type AgentPerformance struct {
	ID                         int64
	AgentID                    int64
	TicketsResolved            int
	AverageResolutionTimeHours float64
	CustomerSatisfactionScore  *float64
	UpdatedAt                  time.Time
}
