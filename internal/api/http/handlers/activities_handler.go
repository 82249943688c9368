package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-dispatch/internal/api/dto"
	"github.com/spec-kit/ticket-dispatch/internal/service"
	apperrors "github.com/spec-kit/ticket-dispatch/pkg/util"
)

// ActivitiesHandler exposes the audit trail of a ticket.
type ActivitiesHandler struct {
	service *service.ActivityService
}

// NewActivitiesHandler constructs handler.
func NewActivitiesHandler(activityService *service.ActivityService) *ActivitiesHandler {
	return &ActivitiesHandler{service: activityService}
}

// List GET /tickets/:id/activities.
func (h *ActivitiesHandler) List(c *fiber.Ctx) error {
	ticketID, err := parseID(c, "id", "ticket id")
	if err != nil {
		return err
	}
	limit := parseLimit(c, 50)
	activities, err := h.service.ListTicketActivities(c.UserContext(), ticketID, limit)
	if err != nil {
		if errors.Is(err, service.ErrTicketNotFound) {
			return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return apperrors.MapError(err)
	}
	items := make([]dto.ActivityResponse, 0, len(activities))
	for _, activity := range activities {
		items = append(items, dto.ActivityResponse{
			ID:           activity.ID,
			TicketID:     activity.TicketID,
			ActivityType: activity.ActivityType,
			Description:  activity.Description,
			PerformedBy:  activity.PerformedBy,
			Metadata:     activity.Metadata,
			CreatedAt:    activity.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}
