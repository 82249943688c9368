package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-dispatch/internal/api/dto"
	"github.com/spec-kit/ticket-dispatch/internal/service"
	apperrors "github.com/spec-kit/ticket-dispatch/pkg/util"
)

// SlaHandler triggers SLA sweeps on demand, outside of the cron schedule.
type SlaHandler struct {
	service *service.SlaService
}

// NewSlaHandler constructs handler.
func NewSlaHandler(slaService *service.SlaService) *SlaHandler {
	return &SlaHandler{service: slaService}
}

// Run POST /sla/run.
func (h *SlaHandler) Run(c *fiber.Ctx) error {
	updated, err := h.service.UpdateTicketSlaStatus(c.UserContext())
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": dto.SlaSweepResponse{Updated: updated}})
}
