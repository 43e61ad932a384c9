package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/copallet/copallet-api/internal/app/config"
	shipmentsmemory "github.com/copallet/copallet-api/internal/domains/shipments/adapters/memory"
	shipmentsnotify "github.com/copallet/copallet-api/internal/domains/shipments/adapters/notify"
	shipmentsobs "github.com/copallet/copallet-api/internal/domains/shipments/adapters/observability"
	shipmentspostgres "github.com/copallet/copallet-api/internal/domains/shipments/adapters/persistence/postgres"
	shipmentsworkflows "github.com/copallet/copallet-api/internal/domains/shipments/adapters/workflows"
	shipmentsapp "github.com/copallet/copallet-api/internal/domains/shipments/application"
	shipmentsports "github.com/copallet/copallet-api/internal/domains/shipments/ports"
	"github.com/copallet/copallet-api/internal/httpapi"
	"github.com/copallet/copallet-api/internal/platform/migrations"
	platformobservability "github.com/copallet/copallet-api/internal/platform/observability"
	platformpostgres "github.com/copallet/copallet-api/internal/platform/postgres"
	platformtemporal "github.com/copallet/copallet-api/internal/platform/temporal"
)

const serviceName = "copallet-api"

// Run boots the shipments HTTP API and blocks until ctx is cancelled or the server fails.
func Run(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	instruments, shutdown, err := platformobservability.Init(ctx, cfg.Telemetry(serviceName))
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	repo, cleanupRepo := buildShipmentRepository(ctx, cfg, logger)
	defer cleanupRepo()
	notifier, cleanupNotifier := buildNotifier(cfg, instruments)
	defer cleanupNotifier()

	coreService := shipmentsapp.NewService(
		repo,
		shipmentsapp.WithNotifier(notifier),
		shipmentsapp.WithLogger(logger),
	)
	shipmentService := shipmentsobs.New(
		coreService,
		shipmentsobs.WithLogger(logger),
		shipmentsobs.WithTracer(instruments.Tracer("internal.shipments.application")),
		shipmentsobs.WithMeter(instruments.Meter("internal.shipments.application")),
	)

	handlers := httpapi.ApiHandleFunctions{
		ShipmentAPI: httpapi.NewShipmentAPI(shipmentService,
			httpapi.WithConflictRetries(cfg.ConflictRetries),
			httpapi.WithLogger(logger),
		),
	}
	router := gin.New()
	router.Use(gin.Recovery(), otelgin.Middleware(serviceName))
	router = httpapi.NewRouterWithGinEngine(router, handlers, httpapi.RouterOptions{RequestTimeout: cfg.RequestTimeout()})

	server := &http.Server{Addr: cfg.Addr(), Handler: router, ReadHeaderTimeout: 5 * time.Second}
	serverErr := make(chan error, 1)
	go func() {
		logger.Info("CoPallet API listening", slog.String("addr", server.Addr))
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("CoPallet API server exited", slog.String("addr", server.Addr), slog.String("error", err.Error()))
			return err
		}
		return nil
	case <-ctx.Done():
	}
	logger.Info("CoPallet API shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout())
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func buildShipmentRepository(ctx context.Context, cfg config.Config, logger *slog.Logger) (shipmentsports.Repository, func()) {
	db, cleanup := platformpostgres.ConnectOrFallback(ctx, cfg.PostgresDSN, logger)
	if db == nil {
		return shipmentsmemory.NewRepository(), cleanup
	}
	if err := migrations.Run(db); err != nil {
		logger.Warn("failed to migrate shipments schema, falling back to memory", slog.String("error", err.Error()))
		cleanup()
		return shipmentsmemory.NewRepository(), func() {}
	}
	logger.Info("shipment repository configured with postgres")
	return shipmentspostgres.NewRepository(db), cleanup
}

// buildNotifier prefers durable dispatch through Temporal, then a direct Kafka producer, then the log.
func buildNotifier(cfg config.Config, instruments *platformobservability.Instruments) (shipmentsports.Notifier, func()) {
	logger := instruments.Logger
	temporalClient, err := platformtemporal.Dial(platformtemporal.Options{
		Address:   cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Disabled:  cfg.TemporalDisabled,
	}, instruments)
	if err == nil {
		logger.Info("Temporal notification dispatch enabled", slog.String("namespace", cfg.TemporalNamespace))
		return shipmentsworkflows.NewTemporalNotifier(temporalClient), temporalClient.Close
	}
	logger.Warn("Temporal unavailable, notifications are delivered inline", slog.String("error", err.Error()))

	if brokers := cfg.Brokers(); len(brokers) > 0 {
		kafkaNotifier, err := shipmentsnotify.NewKafkaNotifier(brokers, cfg.KafkaNotificationsTopic)
		if err == nil {
			logger.Info("Kafka notifications enabled", slog.String("topic", cfg.KafkaNotificationsTopic))
			return kafkaNotifier, func() { _ = kafkaNotifier.Close() }
		}
		logger.Warn("failed to configure Kafka notifier", slog.String("error", err.Error()))
	}
	return shipmentsnotify.NewLogNotifier(logger), func() {}
}
