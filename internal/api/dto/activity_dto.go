package dto

import (
	"time"

	"github.com/spec-kit/ticket-dispatch/internal/domain"
)

// ActivityResponse is one audit trail entry.
type ActivityResponse struct {
	ID           int64               `json:"id"`
	TicketID     int64               `json:"ticket_id"`
	ActivityType domain.ActivityType `json:"activity_type"`
	Description  string              `json:"description"`
	PerformedBy  int64               `json:"performed_by"`
	Metadata     map[string]any      `json:"metadata"`
	CreatedAt    time.Time           `json:"created_at"`
}
