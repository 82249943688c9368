package service

import "errors"

// Sentinel outcomes for assignment and aggregation operations. Callers
// distinguish these from storage failures: not-found means the id does not
// resolve and a retry is pointless; no-agent-available is an expected,
// recoverable state of the pool.
var (
	ErrTicketNotFound      = errors.New("ticket not found")
	ErrAgentNotFound       = errors.New("agent not found")
	ErrNoAgentAvailable    = errors.New("no agent available")
	ErrPerformanceNotFound = errors.New("performance record not found")
)
