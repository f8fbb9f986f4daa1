package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	httptransport "github.com/spec-kit/user-service/internal/api/http"
	"github.com/spec-kit/user-service/internal/api/http/handlers"
	"github.com/spec-kit/user-service/internal/api/http/pipeline"
	"github.com/spec-kit/user-service/internal/auth"
	"github.com/spec-kit/user-service/internal/config"
	"github.com/spec-kit/user-service/internal/events"
	"github.com/spec-kit/user-service/internal/observability"
	"github.com/spec-kit/user-service/internal/persistence"
	"github.com/spec-kit/user-service/internal/repository"
	"github.com/spec-kit/user-service/internal/service"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	var userRepo repository.UserRepository
	if pg.Enabled() {
		userRepo = repository.NewUserRepository(pg.PoolHandle())
	} else {
		userRepo = repository.NewMemoryUserRepository()
	}
	userRepo = repository.NewCachedUserRepository(userRepo, redis.Client, cfg.Redis.ExistsTTL())

	dispatcher := events.NewInMemoryDispatcher()
	service.NewNotificationService(dispatcher, logger, cfg.Notification).RegisterHandlers()

	tokenMgr := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	userService := service.NewUserService(userRepo, dispatcher, logger, cfg.Auth.BcryptCost)
	authService := service.NewAuthService(userRepo, tokenMgr, cfg.Get("SALT"))

	storage, err := newAvatarStorage(ctx, cfg.Upload)
	if err != nil {
		logger.Fatal("failed to init avatar storage", zap.Error(err))
	}

	metrics := observability.NewMetrics()
	app := httptransport.NewApp(httptransport.AppOptions{
		Name:           cfg.App.Name,
		MaxUploadBytes: cfg.Upload.MaxSizeBytes,
		RequestTimeout: cfg.App.RequestTimeout(),
		Logger:         logger,
		Metrics:        metrics,
	})

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Users: handlers.NewUsersHandler(handlers.UsersDependencies{
			Users:   userService,
			Auth:    authService,
			Config:  cfg,
			Storage: storage,
			Limits: pipeline.UploadLimits{
				MaxSizeBytes:      cfg.Upload.MaxSizeBytes,
				AllowedExtensions: cfg.Upload.AllowedExtensions,
				ContentTypePrefix: "image/",
			},
		}),
		Metrics: metrics,
		Logger:  logger,
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
	}
}

func newAvatarStorage(ctx context.Context, cfg config.UploadConfig) (pipeline.AvatarStorage, error) {
	if cfg.Backend == config.UploadBackendS3 {
		client, err := pipeline.NewS3Client(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return pipeline.NewS3Storage(client, cfg.S3Bucket), nil
	}
	storage, err := pipeline.NewDiskStorage(cfg.Directory)
	if err != nil {
		return nil, err
	}
	return storage, nil
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
