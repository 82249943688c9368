package dto

// AssignmentResponse reports a completed assignment.
type AssignmentResponse struct {
	TicketID int64 `json:"ticket_id"`
	AgentID  int64 `json:"agent_id"`
}

// AssignmentResultItem pairs a ticket with its assigned agent.
type AssignmentResultItem struct {
	TicketID int64 `json:"ticket_id"`
	AgentID  int64 `json:"agent_id"`
}

// BulkAssignmentResponse summarizes a bulk run.
type BulkAssignmentResponse struct {
	Total    int                    `json:"total"`
	Assigned int                    `json:"assigned"`
	Results  []AssignmentResultItem `json:"results"`
}

// ReassignmentResponse reports how many tickets were moved off an agent.
type ReassignmentResponse struct {
	AgentID    int64 `json:"agent_id"`
	Reassigned int   `json:"reassigned"`
}

// AssignmentPreviewResponse is the read-only best-candidate answer.
type AssignmentPreviewResponse struct {
	TicketID  int64   `json:"ticket_id"`
	AgentID   int64   `json:"agent_id"`
	AgentName string  `json:"agent_name"`
	Score     float64 `json:"score"`
}
