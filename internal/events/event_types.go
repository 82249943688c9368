package events

import (
	"time"

	"github.com/spec-kit/ticket-dispatch/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketAssigned          EventType = "ticket_assigned"
	EventTicketSlaChanged        EventType = "ticket_sla_changed"
	EventAgentPerformanceUpdated EventType = "agent_performance_updated"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  int64       `json:"ticket_id,omitempty"`
	AgentID   *int64      `json:"agent_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	AgentID         int64  `json:"agent_id"`
	Method          string `json:"method"`
	PreviousAgentID *int64 `json:"previous_agent_id,omitempty"`
}

// TicketSlaChangedPayload payload.
type TicketSlaChangedPayload struct {
	OldStatus domain.SlaStatus `json:"old_status"`
	NewStatus domain.SlaStatus `json:"new_status"`
}

// AgentPerformanceUpdatedPayload payload.
type AgentPerformanceUpdatedPayload struct {
	TicketsResolved            int     `json:"tickets_resolved"`
	AverageResolutionTimeHours float64 `json:"average_resolution_time_hours"`
}
