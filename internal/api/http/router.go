package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/callbook-service/internal/api/http/handlers"
	"github.com/spec-kit/callbook-service/internal/auth"
	"github.com/spec-kit/callbook-service/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health   *handlers.HealthHandler
	Auth     *handlers.AuthHandler
	Contacts *handlers.ContactsHandler
	Calls    *handlers.CallsHandler
	Sessions *auth.Authenticator
	Metrics  *observability.Metrics
}

// RegisterRoutes wires HTTP routes. Public routes come first; everything
// registered on the protected router requires a session.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	app.Post("/register", cfg.Auth.Register)
	app.Post("/login", cfg.Auth.Login)
	app.Get("/check-auth", cfg.Sessions.Try(), cfg.Auth.CheckAuth)

	protected := app.Group("", cfg.Sessions.Require())
	protected.Post("/logout", cfg.Auth.Logout)

	protected.Post("/initiateCall", cfg.Calls.Initiate)
	protected.Post("/endCall", cfg.Calls.End)
	protected.Get("/calls/history", cfg.Calls.History)

	protected.Post("/contacts", cfg.Contacts.Create)
	protected.Get("/contacts", cfg.Contacts.List)
	protected.Get("/contacts/:id", cfg.Contacts.Get)
	protected.Put("/contacts/:id", cfg.Contacts.Update)
	protected.Delete("/contacts/:id", cfg.Contacts.Delete)
}
