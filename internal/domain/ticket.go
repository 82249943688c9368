package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusNew        TicketStatus = "new"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusEscalated  TicketStatus = "escalated"
	TicketStatusResolved   TicketStatus = "resolved"
	TicketStatusClosed     TicketStatus = "closed"
)

// TicketPriority keys the SLA policy table.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "low"
	TicketPriorityNormal TicketPriority = "normal"
	TicketPriorityHigh   TicketPriority = "high"
	TicketPriorityUrgent TicketPriority = "urgent"
)

// Rank orders priorities for dispatch, most urgent first. Unknown values
// sort last.
func (p TicketPriority) Rank() int {
	switch p {
	case TicketPriorityUrgent:
		return 0
	case TicketPriorityHigh:
		return 1
	case TicketPriorityNormal:
		return 2
	case TicketPriorityLow:
		return 3
	default:
		return 4
	}
}

// SlaStatus classifies a ticket against its priority's SLA thresholds. It is
// derived from the ticket timestamps and the active policy; it must be
// recomputable at any time from those fields and is never authored directly.
type SlaStatus string

const (
	SlaWithin            SlaStatus = "within_sla"
	SlaResponseAtRisk    SlaStatus = "response_at_risk"
	SlaResponseOverdue   SlaStatus = "response_overdue"
	SlaResolutionAtRisk  SlaStatus = "resolution_at_risk"
	SlaResolutionOverdue SlaStatus = "resolution_overdue"
)

// Ticket is the aggregate for support requests.
type Ticket struct {
	ID                 int64
	TicketNumber       string
	Subject            string
	Category           string
	Priority           TicketPriority
	Status             TicketStatus
	AssignedTo         *int64
	AssignedAt         *time.Time
	FirstResponseAt    *time.Time
	ResolvedAt         *time.Time
	SlaStatus          SlaStatus
	SatisfactionRating *float64
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Open reports whether the ticket still requires agent work.
func (t *Ticket) Open() bool {
	return t.Status != TicketStatusResolved && t.Status != TicketStatusClosed
}

// NewTicketNumber generates a human-readable ticket key.
func NewTicketNumber() string {
	return "TDK-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}
