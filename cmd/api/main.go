package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/eduquery-api/internal/config"
	"github.com/noah-isme/eduquery-api/internal/dashboard"
	"github.com/noah-isme/eduquery-api/internal/database"
	"github.com/noah-isme/eduquery-api/internal/handler"
	"github.com/noah-isme/eduquery-api/internal/middleware"
	"github.com/noah-isme/eduquery-api/internal/models"
	"github.com/noah-isme/eduquery-api/internal/repository"
	"github.com/noah-isme/eduquery-api/internal/router"
	"github.com/noah-isme/eduquery-api/internal/service"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", "eduquery-api").Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}

	db, err := database.ConnectSQL(database.SQLOptions{
		Driver:       cfg.DatabaseDriver,
		DSN:          cfg.DatabaseURL,
		MaxOpenConns: cfg.DatabaseMaxOpenConns,
		MaxIdleConns: cfg.DatabaseMaxIdleConns,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer func() {
		if err := database.Close(db); err != nil {
			logger.Error().Err(err).Msg("failed to close database")
		}
	}()

	if err := db.AutoMigrate(models.DirectoryModels()...); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate database")
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer redisClient.Close()
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL, cfg.AppName)
		if err != nil {
			logger.Warn().Err(err).Msg("activity mirroring disabled")
		} else {
			defer natsConn.Drain()
		}
	}

	activityRepo := repository.NewActivityLogRepository(db)
	if redisClient != nil {
		activityRepo = repository.NewActivityStreamRepository(redisClient, cfg.ActivityStream)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	schoolRepo := repository.NewSchoolRepository(db)
	analyticsRepo := repository.NewAnalyticsRepository(db)
	userRepo := repository.NewUserRepository(db)

	activityService := service.NewActivityService(activityRepo, natsConn, "", logger)
	analyticsService := service.NewAnalyticsService(analyticsRepo, redisClient, cfg.AnalyticsCacheTTL, logger)
	schoolService := service.NewSchoolService(schoolRepo, validate, activityService, analyticsService, cfg.SearchNameLimit, logger)
	importService := service.NewImportService(schoolRepo, validate, activityService, analyticsService, logger)
	searchService := service.NewSearchService(schoolRepo, validate, activityService, logger)
	authService := service.NewAuthService(userRepo, validate, activityService, cfg.JWTSecret, cfg.JWTTTL, logger)

	bootstrapCtx, cancelBootstrap := context.WithTimeout(context.Background(), 10*time.Second)
	if err := authService.EnsureAdmin(bootstrapCtx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		logger.Fatal().Err(err).Msg("failed to create bootstrap administrator")
	}
	cancelBootstrap()

	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to access connection pool")
	}

	app := router.NewApp(cfg, dashboard.NewViews())

	middleware.Register(app, middleware.Config{
		Logger:    &logger,
		AccessLog: cfg.AppEnv == "development",
	})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:      handler.NewAuthHandler(authService, logger),
		SchoolHandler:    handler.NewSchoolHandler(schoolService, importService, logger),
		SearchHandler:    handler.NewSearchHandler(searchService, logger),
		AnalyticsHandler: handler.NewAnalyticsHandler(analyticsService, activityService, logger),
		Dashboard:        dashboard.NewHandler(dashboard.NewClient(cfg.DashboardAPIBaseURL, nil), logger),
		JWTMiddleware:    middleware.JWTProtected(cfg.JWTSecret, authService),
		Database:         sqlDB,
	})

	go func() {
		logger.Info().Str("address", cfg.HTTPAddress()).Msg("http server listening")
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	waitForShutdown(app, logger)
}

func waitForShutdown(app *fiber.App, logger zerolog.Logger) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	logger.Info().Msg("server stopped")
}
