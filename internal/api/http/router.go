package http

import (
	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Staff          *handlers.StaffHandler
	Tickets        *handlers.TicketsHandler
	PublicTickets  *handlers.PublicTicketsHandler
	StaffTickets   *handlers.StaffTicketsHandler
	Catalogs       *handlers.CatalogHandler
	Intake         *handlers.IntakeHandler
	Metrics        *observability.Metrics
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	// Anonymous surface: catalogs, direct submission, guided intake.
	app.Get("/catalogs", cfg.Catalogs.GetCatalogs)
	app.Get("/catalogs/departments", cfg.Catalogs.GetDepartments)
	app.Get("/catalogs/categories", cfg.Catalogs.GetCategories)
	app.Get("/catalogs/priorities", cfg.Catalogs.GetPriorities)

	public := app.Group("/public")
	public.Post("/tickets", cfg.PublicTickets.CreateTicket)
	public.Get("/tickets/:key", cfg.PublicTickets.GetTicketStatus)

	intakeGroup := app.Group("/intake/sessions")
	intakeGroup.Post("", cfg.Intake.StartSession)
	intakeGroup.Get("/:id", cfg.Intake.GetSession)
	intakeGroup.Post("/:id/answers", cfg.Intake.SubmitAnswer)
	intakeGroup.Post("/:id/suggestions", cfg.Intake.SelectSuggestion)
	intakeGroup.Delete("/:id", cfg.Intake.CloseSession)

	authGroup := app.Group("/auth")
	authGroup.Post("/users/register", cfg.Users.Register)
	authGroup.Post("/users/login", cfg.Users.Login)

	authGroup.Post("/staff/login", cfg.Staff.Login)
	authGroup.Post("/password/reset/request", cfg.Staff.RequestPasswordReset)
	authGroup.Post("/password/reset/confirm", cfg.Staff.ConfirmPasswordReset)

	protectedAuth := authGroup.Group("", cfg.AuthMiddleware.Handle, auth.RequireAnyRole())
	protectedAuth.Post("/password/change", cfg.Staff.ChangePassword)

	// Authenticated end-user surface.
	tickets := app.Group("/tickets", cfg.AuthMiddleware.Handle, auth.RequireUser())
	tickets.Post("", cfg.Tickets.CreateTicket)
	tickets.Get("", cfg.Tickets.ListTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Post("/:id/messages", cfg.Tickets.AddMessage)
	tickets.Post("/:id/close", cfg.Tickets.CloseTicket)

	// Staff workspace.
	staff := app.Group("/staff", cfg.AuthMiddleware.Handle, auth.RequireStaffRole())
	staff.Get("/tickets", cfg.StaffTickets.ListTickets)
	staff.Get("/tickets/export", cfg.StaffTickets.ExportTickets)
	staff.Get("/tickets/:id", cfg.StaffTickets.GetTicket)
	staff.Post("/tickets/:id/messages", cfg.StaffTickets.AddMessage)
	staff.Patch("/tickets/:id/status", cfg.StaffTickets.UpdateStatus)
	staff.Patch("/tickets/:id/priority", cfg.StaffTickets.UpdatePriority)
	staff.Post("/tickets/:id/assign/self", cfg.StaffTickets.SelfAssign)
	staff.Post("/tickets/:id/assign", auth.RequireStaffRole(domain.StaffRoleTeamLead, domain.StaffRoleAdmin), cfg.StaffTickets.Assign)
	staff.Delete("/tickets/:id/assign", auth.RequireStaffRole(domain.StaffRoleTeamLead, domain.StaffRoleAdmin), cfg.StaffTickets.Unassign)
	staff.Post("/tickets/:id/merge", cfg.StaffTickets.Merge)
	staff.Get("/analytics/overview", cfg.StaffTickets.AnalyticsOverview)

	admin := staff.Group("/admin", auth.RequireStaffRole(domain.StaffRoleAdmin))
	admin.Post("/departments", cfg.Staff.CreateDepartment)
	admin.Get("/departments", cfg.Staff.ListDepartments)
	admin.Patch("/departments/:id", cfg.Staff.UpdateDepartment)
	admin.Post("/categories", cfg.Staff.CreateCategory)
	admin.Get("/categories", cfg.Staff.ListCategories)
	admin.Patch("/categories/:id", cfg.Staff.UpdateCategory)
	admin.Post("/priorities", cfg.Staff.CreatePriority)
	admin.Get("/priorities", cfg.Staff.ListPriorities)
	admin.Patch("/priorities/:id", cfg.Staff.UpdatePriority)
	admin.Post("/staff", cfg.Staff.CreateStaff)
	admin.Get("/staff", cfg.Staff.ListStaff)
	admin.Patch("/staff/:id/active", cfg.Staff.SetStaffActive)
}
