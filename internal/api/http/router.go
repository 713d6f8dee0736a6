package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/incident-service/internal/api/http/handlers"
	"github.com/spec-kit/incident-service/internal/auth"
	"github.com/spec-kit/incident-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Cases          *handlers.CasesHandler
	SLA            *handlers.SLAHandler
	Notifications  *handlers.NotificationsHandler
	OHS            *handlers.OHSHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/login", cfg.Auth.Login)

	incidents := app.Group("/incidents", cfg.AuthMiddleware.Handle, auth.RequireRole())
	incidents.Post("", cfg.Cases.CreateCase)
	incidents.Get("", cfg.Cases.ListCases)
	incidents.Get("/categories", cfg.Cases.Categories)
	incidents.Get("/:id", cfg.Cases.GetCase)
	incidents.Get("/:id/timeline", cfg.Cases.Timeline)
	incidents.Get("/:id/assignee", cfg.Cases.CurrentAssignee)
	incidents.Post("/:id/evidence", cfg.Cases.AddEvidence)
	incidents.Get("/:id/evidence", cfg.Cases.ListEvidence)
	incidents.Post("/:id/comments", cfg.Cases.AddComment)
	incidents.Get("/:id/comments", cfg.Cases.ListComments)

	supervised := auth.RequireRole(
		domain.RoleSupervisor,
		domain.RoleManager,
		domain.RoleSystemAdministrator,
		domain.RoleOHSPractitioner,
		domain.RoleSecurityPractitioner,
	)
	incidents.Patch("/:id/assign", supervised, cfg.Cases.AssignCase)
	incidents.Patch("/:id/status", supervised, cfg.Cases.UpdateStatus)
	incidents.Patch("/:id/escalate", supervised, cfg.Cases.EscalateCase)
	incidents.Patch("/:id/close", supervised, cfg.Cases.CloseCase)
	incidents.Delete("/:id", auth.RequireRole(domain.RoleSystemAdministrator), cfg.Cases.DeleteCase)

	sla := app.Group("/sla", cfg.AuthMiddleware.Handle, supervised)
	sla.Get("/tracking", cfg.SLA.ListTracking)

	notifications := app.Group("/notifications", cfg.AuthMiddleware.Handle, auth.RequireRole())
	notifications.Get("", cfg.Notifications.List)
	notifications.Get("/unread-count", cfg.Notifications.UnreadCount)
	notifications.Patch("/read-all", cfg.Notifications.MarkAllRead)
	notifications.Patch("/:id/read", cfg.Notifications.MarkRead)

	ohs := app.Group("/ohs", cfg.AuthMiddleware.Handle, auth.RequireRole(
		domain.RoleOHSPractitioner,
		domain.RoleManager,
		domain.RoleSystemAdministrator,
	))
	ohs.Get("/hazards", cfg.OHS.ListHazards)
	ohs.Get("/stats", cfg.OHS.Stats)
}
