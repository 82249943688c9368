package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httpapi "github.com/spec-kit/ticket-dispatch/internal/api/http"
	"github.com/spec-kit/ticket-dispatch/internal/api/http/handlers"
	"github.com/spec-kit/ticket-dispatch/internal/config"
	"github.com/spec-kit/ticket-dispatch/internal/events"
	"github.com/spec-kit/ticket-dispatch/internal/locking"
	"github.com/spec-kit/ticket-dispatch/internal/observability"
	"github.com/spec-kit/ticket-dispatch/internal/persistence"
	"github.com/spec-kit/ticket-dispatch/internal/repository"
	"github.com/spec-kit/ticket-dispatch/internal/repository/memory"
	"github.com/spec-kit/ticket-dispatch/internal/service"
	"github.com/spec-kit/ticket-dispatch/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pg.Close()

	if pg.Pool != nil && cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.Pool, cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	var redisConn *persistence.Redis
	if cfg.Redis.Addr != "" {
		redisConn = persistence.NewRedis(cfg.Redis, logger)
		defer redisConn.Close()
	}

	var (
		ticketRepo      repository.TicketRepository
		agentRepo       repository.AgentRepository
		policyRepo      repository.SlaPolicyRepository
		activityRepo    repository.ActivityRepository
		performanceRepo repository.PerformanceRepository
	)
	if pg.Pool != nil {
		ticketRepo = repository.NewTicketRepository(pg.Pool)
		agentRepo = repository.NewAgentRepository(pg.Pool)
		policyRepo = repository.NewSlaPolicyRepository(pg.Pool)
		activityRepo = repository.NewActivityRepository(pg.Pool)
		performanceRepo = repository.NewPerformanceRepository(pg.Pool)
	} else {
		logger.Warn("POSTGRES_DSN not set; using in-memory storage")
		store := memory.NewStore()
		store.SeedDefaultPolicies()
		ticketRepo = store.Tickets()
		agentRepo = store.Agents()
		policyRepo = store.Policies()
		activityRepo = store.Activities()
		performanceRepo = store.Performance()
	}

	var locker locking.PoolLocker = locking.NewLocalLocker()
	if redisConn != nil {
		locker = locking.NewRedisLocker(redisConn.Client, cfg.Assignment.LockKey, cfg.Assignment.LockTTL(), cfg.Assignment.LockRetry())
	}

	dispatcher := events.NewInMemoryDispatcher(logger)
	metrics := observability.NewMetrics()

	assignmentService := service.NewAssignmentService(service.AssignmentDependencies{
		TicketRepo:   ticketRepo,
		AgentRepo:    agentRepo,
		ActivityRepo: activityRepo,
		Dispatcher:   dispatcher,
		Locker:       locker,
		Strategy:     service.LowestWorkloadStrategy{},
		Metrics:      metrics,
		Logger:       logger,
	})
	slaService := service.NewSlaService(service.SlaDependencies{
		TicketRepo:   ticketRepo,
		PolicyRepo:   policyRepo,
		ActivityRepo: activityRepo,
		Dispatcher:   dispatcher,
		Metrics:      metrics,
		Logger:       logger,
	})
	performanceService := service.NewPerformanceService(service.PerformanceDependencies{
		TicketRepo:      ticketRepo,
		AgentRepo:       agentRepo,
		PerformanceRepo: performanceRepo,
		Dispatcher:      dispatcher,
		Logger:          logger,
	})
	activityService := service.NewActivityService(ticketRepo, activityRepo, logger)
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)

	worker.StartNotificationWorker(notificationService)

	slaWorker := worker.NewSlaWorker(slaService, cfg.Sla, logger)
	if err := slaWorker.Start(); err != nil {
		logger.Fatal("failed to start sla worker", zap.Error(err))
	}
	defer slaWorker.Stop()

	app := fiber.New(fiber.Config{
		AppName: cfg.App.Name,
	})

	httpapi.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httpapi.RegisterRoutes(app, httpapi.RouteConfig{
		Health:      handlers.NewHealthHandler(pg, redisConn, logger, cfg.App.Name),
		Assignments: handlers.NewAssignmentsHandler(assignmentService),
		Sla:         handlers.NewSlaHandler(slaService),
		Performance: handlers.NewPerformanceHandler(performanceService),
		Activities:  handlers.NewActivitiesHandler(activityService),
		Metrics:     handlers.NewMetricsHandler(metrics),
	})

	go func() {
		logger.Info("starting http server", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("http server stopped", zap.Error(err))
		}
	}()

	waitForShutdown(app, logger)
}

func waitForShutdown(app *fiber.App, logger *zap.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	if err := app.Shutdown(); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}
}
