package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/repotec-dev/repotec-api/internal/admin"
	"github.com/repotec-dev/repotec-api/internal/auth"
	"github.com/repotec-dev/repotec-api/internal/config"
	"github.com/repotec-dev/repotec-api/internal/core"
	"github.com/repotec-dev/repotec-api/internal/emaildomain"
	"github.com/repotec-dev/repotec-api/internal/faq"
	"github.com/repotec-dev/repotec-api/internal/favorite"
	"github.com/repotec-dev/repotec-api/internal/file"
	"github.com/repotec-dev/repotec-api/internal/health"
	"github.com/repotec-dev/repotec-api/internal/mail"
	"github.com/repotec-dev/repotec-api/internal/middleware"
	"github.com/repotec-dev/repotec-api/internal/project"
	"github.com/repotec-dev/repotec-api/internal/rating"
	"github.com/repotec-dev/repotec-api/internal/server"
	"github.com/repotec-dev/repotec-api/internal/tag"
	"github.com/repotec-dev/repotec-api/internal/user"
)

const (
	drainDelay = 5 * time.Second
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

//nolint:funlen // bootstrap code is inherently verbose
func run(configPath string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	var telemetry *core.Telemetry
	if cfg.Otel.Enabled {
		tel, telErr := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
		if telErr != nil {
			logger.Warn("failed to initialize telemetry", "error", telErr)
		} else {
			telemetry = tel
			logger.Info("OpenTelemetry tracer initialized",
				"endpoint", cfg.Otel.Endpoint,
			)
		}
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	logger.Info("database connected",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
	)

	redis, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	logger.Info("redis connected",
		"pool_size", cfg.Redis.PoolSize,
	)

	jwtManager, err := auth.NewJWTManager(cfg.JWT)
	if err != nil {
		return err
	}
	logger.Info("JWT manager initialized",
		"algorithm", "ES256",
		"key_id", jwtManager.GetKeyID(),
	)

	storage, err := file.NewDiskStorage(cfg.Storage.UploadDir)
	if err != nil {
		return err
	}
	logger.Info("upload storage ready", "dir", cfg.Storage.UploadDir)

	mailer := mail.NewMailer(cfg.Mail, logger)

	tagRepo := tag.NewRepository(db.DB)
	tagSvc := tag.NewService(tagRepo)
	tagHandler := tag.NewHandler(tagSvc)

	projectRepo := project.NewRepository(db.DB)
	projectSvc := project.NewService(db.DB, projectRepo, tagSvc)
	projectHandler := project.NewHandler(projectSvc)

	fileRepo := file.NewRepository(db.DB)
	fileSvc := file.NewService(
		fileRepo, storage, projectSvc, cfg.Storage.IgnoreUploads, logger)
	fileHandler := file.NewHandler(fileSvc, cfg.Storage.MaxUploadSize)

	userRepo := user.NewRepository(db.DB)
	userSvc := user.NewService(userRepo, fileSvc, logger)
	userHandler := user.NewHandler(userSvc, cfg.Storage.MaxUploadSize)

	domainRepo := emaildomain.NewRepository(db.DB)
	domainSvc := emaildomain.NewService(domainRepo)
	domainHandler := emaildomain.NewHandler(domainSvc)

	authRepo := auth.NewRepository(db.DB)
	authSvc := auth.NewService(
		authRepo, jwtManager, userSvc, domainSvc, mailer,
		cfg.App.FrontendURL, logger)
	authHandler := auth.NewHandler(authSvc)

	ratingRepo := rating.NewRepository(db.DB)
	ratingSvc := rating.NewService(db.DB, ratingRepo, projectSvc)
	ratingHandler := rating.NewHandler(ratingSvc)

	favoriteRepo := favorite.NewRepository(db.DB)
	favoriteSvc := favorite.NewService(favoriteRepo, projectSvc)
	favoriteHandler := favorite.NewHandler(favoriteSvc)

	faqRepo := faq.NewRepository(db.DB)
	faqSvc := faq.NewService(faqRepo)
	faqHandler := faq.NewHandler(faqSvc)

	healthHandler := health.NewHandler(
		health.Dependency{Name: "postgres", Ping: db.Ping},
		health.Dependency{Name: "redis", Ping: redis.Ping},
	)

	adminHandler := admin.NewHandler(admin.HandlerConfig{
		DBStats:    db.Stats,
		RedisStats: redis.PoolStats,
		DBPing:     db.Ping,
		RedisPing:  redis.Ping,
		Catalog:    admin.NewCatalogCounter(db.DB),
	})

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	router := srv.Router()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(logger))
	router.Use(
		middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
			Limit: middleware.PerMinute(
				cfg.RateLimit.Requests,
				cfg.RateLimit.Burst,
			),
			FailOpen: true,
		}).Handler,
	)
	router.Use(middleware.SecurityHeaders(cfg.App.Environment == "production"))
	router.Use(middleware.CORS(cfg.CORS))

	healthHandler.RegisterRoutes(router)

	router.Get("/.well-known/jwks.json", jwtManager.GetJWKSHandler())

	authenticator := middleware.Authenticator(jwtManager, userSvc)
	adminOnly := middleware.RequireAdmin

	router.Route("/api", func(r chi.Router) {
		authHandler.RegisterRoutes(r, authenticator)
		userHandler.RegisterRoutes(r, authenticator)
		projectHandler.RegisterRoutes(r, authenticator)
		ratingHandler.RegisterRoutes(r, authenticator)
		favoriteHandler.RegisterRoutes(r, authenticator)
		fileHandler.RegisterRoutes(r, authenticator)
		tagHandler.RegisterRoutes(r, authenticator)
		faqHandler.RegisterRoutes(r, authenticator)
		domainHandler.RegisterRoutes(r, authenticator)
		adminHandler.RegisterRoutes(r, authenticator, adminOnly)
	})

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}

	if err := redis.Close(); err != nil {
		logger.Error("redis close error", "error", err)
	}

	if err := db.Close(); err != nil {
		logger.Error("database close error", "error", err)
	}

	logger.Info("application stopped")
	return nil
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var handler slog.Handler

	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
