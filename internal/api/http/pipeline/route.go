package pipeline

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	apperrors "github.com/spec-kit/user-service/pkg/util/errorutil"
)

// Route binds a method and path to a chain and its terminal handler.
type Route struct {
	Method  string
	Path    string
	Chain   Chain
	Handler fiber.Handler
}

// RejectionRecorder counts gate rejections.
type RejectionRecorder interface {
	RecordGateRejection(gate, code string)
}

// Router mounts routes on a fiber router. fiber resolves each request by exact method and path,
// with ":name" segments as the only wildcard.
type Router struct {
	group    fiber.Router
	prefix   string
	logger   *zap.Logger
	recorder RejectionRecorder
	routes   []Route
}

// NewRouter returns a router mounting under prefix. recorder may be nil.
func NewRouter(app fiber.Router, prefix string, logger *zap.Logger, recorder RejectionRecorder) *Router {
	return &Router{
		group:    app.Group(prefix),
		prefix:   prefix,
		logger:   logger,
		recorder: recorder,
	}
}

// Register mounts handler behind chain at method and path.
func (r *Router) Register(method, path string, chain Chain, handler fiber.Handler) {
	handle := chain.Handler(handler, r.observe)
	r.group.Add(method, path, func(c *fiber.Ctx) error {
		err := handle(c)
		if cleanupErr := FromCtx(c).CleanupErr(); cleanupErr != nil {
			r.logger.Warn("request cleanup failed",
				zap.String("method", method),
				zap.String("path", c.Path()),
				zap.Error(cleanupErr))
		}
		return err
	})
	r.routes = append(r.routes, Route{Method: method, Path: path, Chain: chain, Handler: handler})

	names := make([]string, 0, chain.Len())
	for _, gate := range chain.Gates() {
		names = append(names, gate.Name())
	}
	r.logger.Info("route registered",
		zap.String("method", method),
		zap.String("path", r.prefix+path),
		zap.Strings("gates", names))
}

// AddRoutes registers every route in order.
func (r *Router) AddRoutes(routes ...Route) {
	for _, route := range routes {
		r.Register(route.Method, route.Path, route.Chain, route.Handler)
	}
}

// Routes returns the registered routes.
func (r *Router) Routes() []Route {
	return append([]Route(nil), r.routes...)
}

func (r *Router) observe(gate Gate, err error) {
	code := apperrors.ToDomainError(err).Code
	if r.recorder != nil {
		r.recorder.RecordGateRejection(gate.Name(), code)
	}
	r.logger.Debug("request rejected by gate", zap.String("gate", gate.Name()), zap.String("code", code))
}
