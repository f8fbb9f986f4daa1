package http

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/user-service/internal/api/http/handlers"
	"github.com/spec-kit/user-service/internal/api/http/pipeline"
	"github.com/spec-kit/user-service/internal/observability"
)

// UsersPrefix is the root every user route is mounted under.
const UsersPrefix = "/users"

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health  *handlers.HealthHandler
	Users   *handlers.UsersHandler
	Metrics *observability.Metrics
	Logger  *zap.Logger
}

// RegisterRoutes wires HTTP routes and returns the user router.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) *pipeline.Router {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", cfg.Metrics.Handler())
	}

	var recorder pipeline.RejectionRecorder
	if cfg.Metrics != nil {
		recorder = cfg.Metrics
	}
	users := pipeline.NewRouter(app, UsersPrefix, cfg.Logger, recorder)
	users.AddRoutes(cfg.Users.Routes()...)
	return users
}
