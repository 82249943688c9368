package domain

import "time"

// SlaPolicy defines response and resolution targets for one priority.
type SlaPolicy struct {
	ID                  int64
	Priority            TicketPriority
	ResponseTimeHours   float64
	ResolutionTimeHours float64
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// ResponseTarget returns the first-response window as a duration.
func (p SlaPolicy) ResponseTarget() time.Duration {
	return time.Duration(p.ResponseTimeHours * float64(time.Hour))
}

// ResolutionTarget returns the resolution window as a duration.
func (p SlaPolicy) ResolutionTarget() time.Duration {
	return time.Duration(p.ResolutionTimeHours * float64(time.Hour))
}
