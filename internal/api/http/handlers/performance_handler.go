package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-dispatch/internal/api/dto"
	"github.com/spec-kit/ticket-dispatch/internal/domain"
	"github.com/spec-kit/ticket-dispatch/internal/service"
	apperrors "github.com/spec-kit/ticket-dispatch/pkg/util"
)

// PerformanceHandler exposes agent performance metrics.
type PerformanceHandler struct {
	service *service.PerformanceService
}

// NewPerformanceHandler constructs handler.
func NewPerformanceHandler(performanceService *service.PerformanceService) *PerformanceHandler {
	return &PerformanceHandler{service: performanceService}
}

// Refresh POST /agents/:id/performance/refresh.
func (h *PerformanceHandler) Refresh(c *fiber.Ctx) error {
	agentID, err := parseID(c, "id", "agent id")
	if err != nil {
		return err
	}
	performance, err := h.service.UpdateAgentPerformanceMetrics(c.UserContext(), agentID)
	if err != nil {
		if errors.Is(err, service.ErrAgentNotFound) {
			return apperrors.NewNotFound("agent", map[string]any{"agent_id": agentID})
		}
		return apperrors.MapError(err)
	}
	if performance == nil {
		return c.JSON(fiber.Map{"data": dto.PerformanceRefreshResponse{Updated: false}})
	}
	return c.JSON(fiber.Map{"data": dto.PerformanceRefreshResponse{
		Updated:     true,
		Performance: performanceResponse(performance),
	}})
}

// Get GET /agents/:id/performance.
func (h *PerformanceHandler) Get(c *fiber.Ctx) error {
	agentID, err := parseID(c, "id", "agent id")
	if err != nil {
		return err
	}
	performance, err := h.service.GetAgentPerformance(c.UserContext(), agentID)
	if err != nil {
		if errors.Is(err, service.ErrPerformanceNotFound) {
			return apperrors.NewNotFound("performance record", map[string]any{"agent_id": agentID})
		}
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": performanceResponse(performance)})
}

func performanceResponse(performance *domain.AgentPerformance) *dto.AgentPerformanceResponse {
	return &dto.AgentPerformanceResponse{
		AgentID:                    performance.AgentID,
		TicketsResolved:            performance.TicketsResolved,
		AverageResolutionTimeHours: performance.AverageResolutionTimeHours,
		CustomerSatisfactionScore:  performance.CustomerSatisfactionScore,
		UpdatedAt:                  performance.UpdatedAt,
	}
}
