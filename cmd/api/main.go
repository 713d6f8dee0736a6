package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/incident-service/internal/api/http"
	"github.com/spec-kit/incident-service/internal/api/http/handlers"
	"github.com/spec-kit/incident-service/internal/auth"
	"github.com/spec-kit/incident-service/internal/config"
	"github.com/spec-kit/incident-service/internal/events"
	"github.com/spec-kit/incident-service/internal/notify"
	"github.com/spec-kit/incident-service/internal/observability"
	"github.com/spec-kit/incident-service/internal/persistence"
	"github.com/spec-kit/incident-service/internal/repository"
	"github.com/spec-kit/incident-service/internal/service"
	"github.com/spec-kit/incident-service/internal/worker"
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
	stores := repository.NewStores(pool)
	txRunner := repository.NewTxRunner(pool)
	evidenceStore := repository.NewEvidenceStore(pool)
	notificationStore := repository.NewNotificationStore(pool)

	metrics := observability.NewMetrics()
	unreadCache := notify.NewUnreadCache(redis.ClientHandle(), cfg.Notification.UnreadCacheTTL())
	notifier := notify.NewStoreDispatcher(notificationStore, unreadCache, logger)
	dispatcher := events.NewInMemoryDispatcher()

	auditService := service.NewAuditService(dispatcher, logger)
	worker.StartAuditWorker(auditService)

	caseService := service.NewCaseService(service.CaseDependencies{
		TxRunner:      txRunner,
		CaseStore:     stores.Cases,
		LedgerStore:   stores.Ledger,
		JournalStore:  stores.Journal,
		UserStore:     stores.Users,
		EvidenceStore: evidenceStore,
		Notifier:      notifier,
		Dispatcher:    dispatcher,
		Logger:        logger,
	})
	slaService := service.NewSLAService(stores.SLA, metrics, logger)
	authService := service.NewAuthService(cfg.Auth, stores.Users)
	notificationService := service.NewNotificationService(notificationStore, unreadCache)
	ohsService := service.NewOHSService(stores.Cases)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), stores.Users)

	var sweeper interface{ Stop() context.Context }
	if cfg.Sweeper.Enabled {
		cronRunner, err := worker.StartSLASweeper(cfg.Sweeper, slaService, logger)
		if err != nil {
			logger.Fatal("failed to start sla sweeper", zap.Error(err))
		}
		sweeper = cronRunner
	}

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Cases:          handlers.NewCasesHandler(caseService),
		SLA:            handlers.NewSLAHandler(slaService),
		Notifications:  handlers.NewNotificationsHandler(notificationService),
		OHS:            handlers.NewOHSHandler(ohsService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if sweeper != nil {
		<-sweeper.Stop().Done()
	}
	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
