package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/room-booking/internal/api/http/handlers"
	"github.com/spec-kit/room-booking/internal/auth"
	"github.com/spec-kit/room-booking/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Rooms          *handlers.RoomsHandler
	Reservations   *handlers.ReservationsHandler
	SystemConfig   *handlers.SystemConfigHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)

	protected := app.Group("", cfg.AuthMiddleware.Handle, auth.RequireAnyRole())
	admin := auth.RequireAdmin()

	protected.Get("/user-types", cfg.Users.ListUserTypes)
	protected.Get("/users/me", cfg.Users.Me)
	protected.Get("/users/me/weekly-usage", cfg.Users.WeeklyUsage)

	protected.Get("/rooms", cfg.Rooms.ListRooms)
	protected.Get("/rooms/available", cfg.Rooms.ListAvailable)
	protected.Get("/rooms/:id", cfg.Rooms.GetRoom)
	protected.Post("/rooms", admin, cfg.Rooms.CreateRoom)
	protected.Patch("/rooms/:id", admin, cfg.Rooms.UpdateRoom)
	protected.Delete("/rooms/:id", admin, cfg.Rooms.DeleteRoom)

	protected.Post("/reservations", cfg.Reservations.CreateReservation)
	protected.Get("/reservations", admin, cfg.Reservations.ListReservations)
	protected.Get("/reservations/mine", cfg.Reservations.ListMine)
	protected.Get("/reservations/:id", cfg.Reservations.GetReservation)
	protected.Patch("/reservations/:id", cfg.Reservations.UpdateReservation)
	protected.Patch("/reservations/:id/cancel", cfg.Reservations.CancelReservation)

	protected.Get("/system-config", cfg.SystemConfig.List)
	protected.Get("/system-config/timezone", cfg.SystemConfig.GetTimezone)
	protected.Post("/system-config/timezone", admin, cfg.SystemConfig.SetTimezone)
	protected.Post("/system-config", admin, cfg.SystemConfig.Set)
}
