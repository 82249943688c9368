package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-dispatch/internal/api/dto"
	"github.com/spec-kit/ticket-dispatch/internal/service"
	apperrors "github.com/spec-kit/ticket-dispatch/pkg/util"
)

// AssignmentsHandler exposes the assignment engine.
type AssignmentsHandler struct {
	service *service.AssignmentService
}

// NewAssignmentsHandler constructs handler.
func NewAssignmentsHandler(assignmentService *service.AssignmentService) *AssignmentsHandler {
	return &AssignmentsHandler{service: assignmentService}
}

// AssignTicket POST /assignments/tickets/:id.
func (h *AssignmentsHandler) AssignTicket(c *fiber.Ctx) error {
	ticketID, err := parseID(c, "id", "ticket id")
	if err != nil {
		return err
	}
	agent, err := h.service.AssignTicket(c.UserContext(), ticketID)
	if err != nil {
		return mapAssignmentError(err, ticketID)
	}
	return c.JSON(fiber.Map{"data": dto.AssignmentResponse{TicketID: ticketID, AgentID: agent.ID}})
}

// RunBulk POST /assignments/run.
func (h *AssignmentsHandler) RunBulk(c *fiber.Ctx) error {
	summary, err := h.service.AssignAllUnassigned(c.UserContext())
	if err != nil {
		return apperrors.MapError(err)
	}
	items := make([]dto.AssignmentResultItem, 0, len(summary.Results))
	for _, result := range summary.Results {
		items = append(items, dto.AssignmentResultItem{TicketID: result.TicketID, AgentID: result.AgentID})
	}
	return c.JSON(fiber.Map{"data": dto.BulkAssignmentResponse{
		Total:    summary.Total,
		Assigned: summary.Assigned,
		Results:  items,
	}})
}

// ReassignAgent POST /assignments/agents/:id/reassign.
func (h *AssignmentsHandler) ReassignAgent(c *fiber.Ctx) error {
	agentID, err := parseID(c, "id", "agent id")
	if err != nil {
		return err
	}
	moved, err := h.service.ReassignAgentTickets(c.UserContext(), agentID)
	if err != nil {
		if errors.Is(err, service.ErrAgentNotFound) {
			return apperrors.NewNotFound("agent", map[string]any{"agent_id": agentID})
		}
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": dto.ReassignmentResponse{AgentID: agentID, Reassigned: moved}})
}

// Preview GET /assignments/tickets/:id/preview.
func (h *AssignmentsHandler) Preview(c *fiber.Ctx) error {
	ticketID, err := parseID(c, "id", "ticket id")
	if err != nil {
		return err
	}
	agent, score, err := h.service.PreviewAssignment(c.UserContext(), ticketID)
	if err != nil {
		return mapAssignmentError(err, ticketID)
	}
	return c.JSON(fiber.Map{"data": dto.AssignmentPreviewResponse{
		TicketID:  ticketID,
		AgentID:   agent.ID,
		AgentName: agent.Name,
		Score:     score,
	}})
}

func mapAssignmentError(err error, ticketID int64) error {
	switch {
	case errors.Is(err, service.ErrTicketNotFound):
		return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
	case errors.Is(err, service.ErrNoAgentAvailable):
		return apperrors.NewConflict("no agent available", map[string]any{"ticket_id": ticketID})
	default:
		return apperrors.MapError(err)
	}
}

func parseID(c *fiber.Ctx, param, label string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(param), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid "+label, nil)
	}
	return id, nil
}

func parseLimit(c *fiber.Ctx, def int) int {
	val := c.Query("limit")
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}
