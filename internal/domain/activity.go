package domain

import "time"

// ActivityType captures what kind of transition an activity entry records.
type ActivityType string

const (
	ActivityAssignment ActivityType = "assignment"
	ActivitySlaUpdate  ActivityType = "sla_update"
)

// SystemActorID marks activity entries performed by the service itself
// rather than a human operator.
const SystemActorID int64 = 0

// TicketActivity is an immutable audit trail entry. Every state transition
// performed by the assignment and SLA services appends exactly one entry.
type TicketActivity struct {
	ID           int64
	TicketID     int64
	ActivityType ActivityType
	Description  string
	PerformedBy  int64
	Metadata     map[string]any
	CreatedAt    time.Time
}
