package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/process-ticket-service/internal/api/http/handlers"
	"github.com/spec-kit/process-ticket-service/internal/auth"
	"github.com/spec-kit/process-ticket-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Tickets        *handlers.TicketsHandler
	Workflow       *handlers.WorkflowHandler
	Notifications  *handlers.NotificationsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	api := app.Group("/api/v1", cfg.AuthMiddleware.Handle)

	tickets := api.Group("/tickets")
	tickets.Post("", auth.RequireRole(domain.RoleProcessTeam, domain.RoleSupervisor, domain.RoleAdmin), cfg.Tickets.CreateTicket)
	tickets.Get("", cfg.Tickets.ListTickets)

	// Registered before /:id routes so "bulk" is not captured as a ticket id.
	tickets.Put("/bulk/status", auth.RequireRole(domain.RoleSupervisor, domain.RoleAdmin), cfg.Workflow.BulkUpdateStatus)

	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Put("/:id/status", cfg.Workflow.UpdateStatus)
	tickets.Get("/:id/history", cfg.Tickets.History)
	tickets.Get("/:id/comments", cfg.Tickets.ListComments)
	tickets.Post("/:id/comments", cfg.Tickets.AddComment)

	api.Get("/notifications", auth.RequireRole(domain.RoleSupervisor, domain.RoleAdmin), cfg.Notifications.ListNotifications)
}
