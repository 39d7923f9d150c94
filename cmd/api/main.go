package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/helpdesk-service/internal/api/http"
	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/intake"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/persistence"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/service"
	"github.com/spec-kit/helpdesk-service/internal/worker"
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
	userRepo := repository.NewUserRepository(pool)
	staffRepo := repository.NewStaffRepository(pool)
	resetRepo := repository.NewPasswordResetRepository(pool)
	departmentRepo := repository.NewDepartmentRepository(pool)
	categoryRepo := repository.NewCategoryRepository(pool)
	priorityRepo := repository.NewPriorityRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	messageRepo := repository.NewTicketMessageRepository(pool)
	historyRepo := repository.NewTicketHistoryRepository(pool)

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:          userRepo,
		StaffRepo:         staffRepo,
		PasswordResetRepo: resetRepo,
	})
	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo, staffRepo)

	catalogService := service.NewCatalogService(service.CatalogDependencies{
		DepartmentRepo: departmentRepo,
		CategoryRepo:   categoryRepo,
		PriorityRepo:   priorityRepo,
		Cache:          redis,
		CacheTTL:       cfg.Catalog.CacheTTL(),
	}, logger)

	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:     ticketRepo,
		MessageRepo:    messageRepo,
		DepartmentRepo: departmentRepo,
		CategoryRepo:   categoryRepo,
		PriorityRepo:   priorityRepo,
		HistoryRepo:    historyRepo,
		Dispatcher:     dispatcher,
	})

	assignmentService := service.NewAssignmentService(service.AssignmentDependencies{
		TicketRepo:  ticketRepo,
		StaffRepo:   staffRepo,
		HistoryRepo: historyRepo,
		Dispatcher:  dispatcher,
	})

	analyticsService := service.NewAnalyticsService(ticketRepo)

	orgService := service.NewStaffService(*cfg, service.OrgDependencies{
		DepartmentRepo: departmentRepo,
		CategoryRepo:   categoryRepo,
		PriorityRepo:   priorityRepo,
		StaffRepo:      staffRepo,
		Catalog:        catalogService,
	})

	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	intakeSessions := intake.NewSessionManager(intake.SessionManagerDependencies{
		Catalogs:      catalogService,
		Submitter:     intake.NewServiceSubmitter(ticketService),
		Dispatcher:    dispatcher,
		Metrics:       metrics,
		SubmitTimeout: cfg.Intake.SubmitTimeout(),
		SessionTTL:    cfg.Intake.SessionTTL(),
		Logger:        logger,
	})
	worker.StartIntakeJanitor(ctx, intakeSessions, cfg.Intake.JanitorInterval(), logger)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Users:          handlers.NewUsersHandler(authService),
		Staff:          handlers.NewStaffHandler(authService, orgService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		PublicTickets:  handlers.NewPublicTicketsHandler(ticketService),
		StaffTickets:   handlers.NewStaffTicketsHandler(ticketService, assignmentService, analyticsService),
		Catalogs:       handlers.NewCatalogHandler(catalogService),
		Intake:         handlers.NewIntakeHandler(intakeSessions),
		Metrics:        metrics,
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
