package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/user-service/internal/observability"
)

// multipartOverhead leaves room for form boundaries and other fields next to the largest upload.
const multipartOverhead = 1 << 20

// AppOptions configures the fiber application.
type AppOptions struct {
	Name           string
	MaxUploadBytes int64
	RequestTimeout time.Duration
	Logger         *zap.Logger
	Metrics        *observability.Metrics
}

// NewApp builds the fiber application with exact, case-sensitive routing and the global middlewares.
func NewApp(opts AppOptions) *fiber.App {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	cfg := fiber.Config{
		AppName:               opts.Name,
		StrictRouting:         true,
		CaseSensitive:         true,
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return renderError(c, err, logger, opts.Metrics)
		},
	}
	if opts.MaxUploadBytes > 0 {
		cfg.BodyLimit = int(opts.MaxUploadBytes) + multipartOverhead
	}

	app := fiber.New(cfg)
	RegisterMiddlewares(app, logger, opts.Metrics, opts.RequestTimeout)
	return app
}
