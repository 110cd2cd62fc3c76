package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/process-ticket-service/internal/api/http"
	"github.com/spec-kit/process-ticket-service/internal/api/http/handlers"
	"github.com/spec-kit/process-ticket-service/internal/auth"
	"github.com/spec-kit/process-ticket-service/internal/config"
	"github.com/spec-kit/process-ticket-service/internal/events"
	"github.com/spec-kit/process-ticket-service/internal/notify"
	"github.com/spec-kit/process-ticket-service/internal/observability"
	"github.com/spec-kit/process-ticket-service/internal/persistence"
	"github.com/spec-kit/process-ticket-service/internal/repository"
	"github.com/spec-kit/process-ticket-service/internal/service"
	"github.com/spec-kit/process-ticket-service/internal/worker"
	"github.com/spec-kit/process-ticket-service/internal/workflow"
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

	pool := pg.PoolHandle()
	ticketRepo := repository.NewTicketRepository(pool)
	historyRepo := repository.NewStatusHistoryRepository(pool)
	commentRepo := repository.NewCommentRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	componentRepo := repository.NewComponentRepository(pool)
	partnerRepo := repository.NewPartnerRepository(pool)
	templateRepo := repository.NewEmailTemplateRepository(pool)
	notificationRepo := repository.NewNotificationRepository(pool)
	store := repository.NewWorkflowStore(pool)

	metrics := observability.NewMetrics()
	dispatcher := events.NewAsyncDispatcher(logger, cfg.Worker.EventQueueSize)

	var locks service.TicketLocker
	if redis != nil && redis.Client != nil {
		locks = persistence.NewRedisTicketLocker(redis.Client, cfg.Worker.TicketLockTTL(), logger)
	} else {
		locks = service.NewMemoryTicketLocker()
	}

	workflowService := service.NewWorkflowService(service.WorkflowDependencies{
		Store:       store,
		HistoryRepo: historyRepo,
		CommentRepo: commentRepo,
		Authority:   workflow.NewAuthority(workflow.DefaultTable()),
		Locks:       locks,
		Dispatcher:  dispatcher,
		Metrics:     metrics,
		Logger:      logger,
	})

	notificationService := service.NewNotificationService(service.NotificationDependencies{
		TicketRepo:       ticketRepo,
		UserRepo:         userRepo,
		ComponentRepo:    componentRepo,
		CommentRepo:      commentRepo,
		TemplateRepo:     templateRepo,
		NotificationRepo: notificationRepo,
		Sink:             notify.NewLogEmailSink(cfg.Notification, logger),
		Dispatcher:       dispatcher,
		Metrics:          metrics,
		Logger:           logger,
		Config:           cfg.Notification,
	})
	worker.StartNotificationWorker(notificationService, logger)

	deadlineWorker := worker.NewDeadlineWorker(ticketRepo, dispatcher, cfg.Worker, logger)
	go deadlineWorker.Start(ctx)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret)
	authMiddleware := auth.NewAuthMiddleware(tokens)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, metrics),
		Tickets:        handlers.NewTicketsHandler(workflowService, ticketRepo, componentRepo, partnerRepo, commentRepo),
		Workflow:       handlers.NewWorkflowHandler(workflowService),
		Notifications:  handlers.NewNotificationsHandler(notificationRepo),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	cancel()
	_ = app.Shutdown()
	dispatcher.Close()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
