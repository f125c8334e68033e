package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/slot-swap-service/internal/api/http"
	"github.com/spec-kit/slot-swap-service/internal/api/http/handlers"
	"github.com/spec-kit/slot-swap-service/internal/auth"
	"github.com/spec-kit/slot-swap-service/internal/config"
	"github.com/spec-kit/slot-swap-service/internal/events"
	"github.com/spec-kit/slot-swap-service/internal/observability"
	"github.com/spec-kit/slot-swap-service/internal/persistence"
	"github.com/spec-kit/slot-swap-service/internal/service"
	"github.com/spec-kit/slot-swap-service/internal/store"
	"github.com/spec-kit/slot-swap-service/internal/worker"
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

	snapshotter, backend, closeBackend, err := openSnapshotBackend(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to open snapshot backend", zap.Error(err))
	}
	defer closeBackend()

	recordStore, err := store.Open(ctx, snapshotter, logger)
	if err != nil {
		logger.Fatal("failed to open record store", zap.Error(err))
	}

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	authService := service.NewAuthService(*cfg, recordStore)
	slotService := service.NewSlotService(recordStore, dispatcher)
	swapService := service.NewSwapService(recordStore, dispatcher, metrics, logger)
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), recordStore)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, backend, snapshotter),
		Users:          handlers.NewUsersHandler(authService),
		Slots:          handlers.NewSlotsHandler(slotService),
		Swaps:          handlers.NewSwapsHandler(swapService),
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

// pingSnapshotter is what every snapshot backend provides: persistence plus
// a readiness probe.
type pingSnapshotter interface {
	store.Snapshotter
	handlers.DependencyPinger
}

func openSnapshotBackend(ctx context.Context, cfg *config.Config, logger *zap.Logger) (pingSnapshotter, string, func(), error) {
	switch cfg.Store.Backend {
	case config.StoreBackendFile:
		return persistence.NewFileSnapshot(cfg.Store.FilePath, logger), "file", func() {}, nil

	case config.StoreBackendPostgres:
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, "", nil, err
		}
		snap, err := persistence.NewPostgresSnapshot(ctx, pg, cfg.Store.SnapshotName, logger)
		if err != nil {
			pg.Close()
			return nil, "", nil, err
		}
		return snap, "postgres", pg.Close, nil

	case config.StoreBackendRedis:
		rdb := persistence.NewRedis(cfg.Redis, logger)
		return persistence.NewRedisSnapshot(rdb, "snapshot:"+cfg.Store.SnapshotName), "redis", rdb.Close, nil
	}
	return nil, "", nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
