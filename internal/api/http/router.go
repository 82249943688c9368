package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-dispatch/internal/api/http/handlers"
)

// RouteConfig bundles the handlers mounted by RegisterRoutes.
type RouteConfig struct {
	Health      *handlers.HealthHandler
	Assignments *handlers.AssignmentsHandler
	Sla         *handlers.SlaHandler
	Performance *handlers.PerformanceHandler
	Activities  *handlers.ActivitiesHandler
	Metrics     *handlers.MetricsHandler
}

// RegisterRoutes mounts all HTTP routes on the app.
func RegisterRoutes(app *fiber.App, routes RouteConfig) {
	app.Get("/health/live", routes.Health.Live)
	app.Get("/health/ready", routes.Health.Ready)
	app.Get("/metrics", routes.Metrics.Get)

	v1 := app.Group("/api/v1")

	assignments := v1.Group("/assignments")
	assignments.Post("/run", routes.Assignments.RunBulk)
	assignments.Post("/tickets/:id", routes.Assignments.AssignTicket)
	assignments.Get("/tickets/:id/preview", routes.Assignments.Preview)
	assignments.Post("/agents/:id/reassign", routes.Assignments.ReassignAgent)

	v1.Post("/sla/run", routes.Sla.Run)

	v1.Get("/tickets/:id/activities", routes.Activities.List)

	agents := v1.Group("/agents")
	agents.Get("/:id/performance", routes.Performance.Get)
	agents.Post("/:id/performance/refresh", routes.Performance.Refresh)
}
