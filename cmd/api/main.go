package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/complaint-service/internal/api/http"
	"github.com/spec-kit/complaint-service/internal/api/http/handlers"
	"github.com/spec-kit/complaint-service/internal/auth"
	"github.com/spec-kit/complaint-service/internal/config"
	"github.com/spec-kit/complaint-service/internal/events"
	"github.com/spec-kit/complaint-service/internal/observability"
	"github.com/spec-kit/complaint-service/internal/persistence"
	"github.com/spec-kit/complaint-service/internal/repository"
	"github.com/spec-kit/complaint-service/internal/service"
	"github.com/spec-kit/complaint-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
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

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	categoryRepo := repository.NewCategoryRepository(pool)
	complaintRepo := repository.NewComplaintRepository(pool)
	activityRepo := repository.NewActivityLogRepository(pool)
	notificationRepo := repository.NewNotificationRepository(pool)
	feedbackRepo := repository.NewFeedbackRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authService := service.NewAuthService(userRepo, tokens, cfg.Auth.BcryptCost)
	authMiddleware := auth.NewAuthMiddleware(tokens, userRepo)

	lifecycleService := service.NewLifecycleService(service.LifecycleDependencies{
		ComplaintRepo: complaintRepo,
		UserRepo:      userRepo,
		CategoryRepo:  categoryRepo,
		ActivityRepo:  activityRepo,
		Dispatcher:    dispatcher,
	})
	feedbackService := service.NewFeedbackService(feedbackRepo, complaintRepo)
	categoryService := service.NewCategoryService(categoryRepo)
	statsService := service.NewStatsService(complaintRepo, userRepo, feedbackRepo, redis.Client, cfg.Stats.CacheTTL(), logger)

	notificationService := service.NewNotificationService(notificationRepo, userRepo, logger)
	notificationService.Register(dispatcher)

	escalationService := service.NewEscalationService(complaintRepo, lifecycleService, metrics, logger, nil)
	escalationWorker := worker.NewEscalationWorker(escalationService, cfg.Escalation.Interval(), logger)
	if cfg.Escalation.Enabled {
		if err := escalationWorker.Start(ctx); err != nil {
			logger.Fatal("failed to start escalation worker", zap.Error(err))
		}
		defer escalationWorker.Stop()
	}

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Complaints:     handlers.NewComplaintsHandler(lifecycleService),
		Feedback:       handlers.NewFeedbackHandler(feedbackService),
		Notifications:  handlers.NewNotificationsHandler(notificationService),
		Catalog:        handlers.NewCatalogHandler(categoryService),
		Stats:          handlers.NewStatsHandler(statsService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
