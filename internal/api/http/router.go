package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/complaint-service/internal/api/http/handlers"
	"github.com/spec-kit/complaint-service/internal/auth"
	"github.com/spec-kit/complaint-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Complaints     *handlers.ComplaintsHandler
	Feedback       *handlers.FeedbackHandler
	Notifications  *handlers.NotificationsHandler
	Catalog        *handlers.CatalogHandler
	Stats          *handlers.StatsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes. Role middleware guards the obvious cases;
// the services re-check authorization with full context, including ownership.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Get("/me", cfg.AuthMiddleware.Handle, cfg.Auth.Me)

	complaints := app.Group("/complaints", cfg.AuthMiddleware.Handle)
	complaints.Post("", auth.RequireRole(domain.RoleStudent), cfg.Complaints.Create)
	complaints.Get("", cfg.Complaints.List)
	complaints.Get("/:id", cfg.Complaints.Get)
	complaints.Post("/:id/assign", auth.RequireRole(domain.RoleAdmin), cfg.Complaints.Assign)
	complaints.Post("/:id/accept", auth.RequireRole(domain.RoleTechnician), cfg.Complaints.Accept)
	complaints.Post("/:id/reject", auth.RequireRole(domain.RoleTechnician), cfg.Complaints.Reject)
	complaints.Post("/:id/complete", auth.RequireRole(domain.RoleTechnician), cfg.Complaints.Complete)
	complaints.Post("/:id/verify", auth.RequireRole(domain.RoleAdmin), cfg.Complaints.Verify)

	feedback := app.Group("/feedback", cfg.AuthMiddleware.Handle)
	feedback.Post("", auth.RequireRole(domain.RoleStudent), cfg.Feedback.Submit)
	feedback.Get("", auth.RequireRole(domain.RoleAdmin), cfg.Feedback.List)

	notifications := app.Group("/notifications", cfg.AuthMiddleware.Handle)
	notifications.Get("", cfg.Notifications.List)
	notifications.Patch("/:id/read", cfg.Notifications.MarkRead)

	app.Get("/categories", cfg.AuthMiddleware.Handle, cfg.Catalog.ListCategories)
	app.Get("/technicians", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleAdmin), cfg.Complaints.ListTechnicians)
	app.Get("/dashboard/stats", cfg.AuthMiddleware.Handle, cfg.Stats.Dashboard)
}
