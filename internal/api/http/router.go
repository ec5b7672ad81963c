package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Accounts       *handlers.AccountsHandler
	Tickets        *handlers.TicketsHandler
	Messages       *handlers.MessagesHandler
	Notifications  *handlers.NotificationsHandler
	Directory      *handlers.DirectoryHandler
	Categories     *handlers.CategoriesHandler
	Reports        *handlers.ReportsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Accounts.Register)
	authGroup.Post("/login", cfg.Accounts.Login)
	authGroup.Post("/password/reset/request", cfg.Accounts.RequestPasswordReset)
	authGroup.Post("/password/reset/confirm", cfg.Accounts.ConfirmPasswordReset)

	authed := app.Group("", cfg.AuthMiddleware.Handle)

	staffOrAdmin := auth.RequireRole(domain.RoleStaff, domain.RoleAdmin)
	adminOnly := auth.RequireRole(domain.RoleAdmin)

	tickets := authed.Group("/tickets")
	tickets.Post("", cfg.Tickets.CreateTicket)
	tickets.Get("", staffOrAdmin, cfg.Tickets.ListTickets)
	tickets.Get("/user/:userId", cfg.Tickets.ListUserTickets)
	tickets.Get("/staff/:staffId", staffOrAdmin, cfg.Tickets.ListStaffTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Put("/:id/category", staffOrAdmin, cfg.Tickets.UpdateCategory)
	tickets.Put("/:id", staffOrAdmin, cfg.Tickets.UpdateTicket)
	tickets.Delete("/:id", adminOnly, cfg.Tickets.DeleteTicket)
	tickets.Get("/:id/audits", staffOrAdmin, cfg.Tickets.ListAudits)

	tickets.Post("/:id/messages", cfg.Messages.PostMessage)
	tickets.Get("/:id/messages", cfg.Messages.ListMessages)
	tickets.Put("/:id/notifications/read", cfg.Messages.MarkTicketRead)

	notifications := authed.Group("/notifications", staffOrAdmin)
	notifications.Get("/staff/:staffId", cfg.Notifications.ListForStaff)
	notifications.Get("/staff/:staffId/new", cfg.Notifications.Poll)
	notifications.Put("/staff/:staffId/read", cfg.Notifications.MarkAllRead)
	notifications.Put("/:id/read", cfg.Notifications.MarkRead)
	notifications.Delete("/:id", cfg.Notifications.Delete)

	authed.Get("/staff", adminOnly, cfg.Directory.ListStaff)
	authed.Post("/staff", adminOnly, cfg.Accounts.CreateStaff)
	authed.Delete("/staff/:id", adminOnly, cfg.Accounts.DeleteStaff)
	authed.Get("/clients", adminOnly, cfg.Directory.ListClients)

	categories := authed.Group("/categories", adminOnly)
	categories.Post("", cfg.Categories.Create)
	categories.Get("", cfg.Categories.List)
	categories.Delete("/:id", cfg.Categories.Delete)

	reports := authed.Group("/reports", adminOnly)
	reports.Get("/categories", cfg.Reports.TicketsByCategory)
	reports.Get("/statuses", cfg.Reports.StatusBreakdown)
	reports.Get("/staff", cfg.Reports.StaffWorkload)
}
