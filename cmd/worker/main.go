package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/copallet/copallet-api/internal/app/config"
	shipmentsnotify "github.com/copallet/copallet-api/internal/domains/shipments/adapters/notify"
	shipmentsports "github.com/copallet/copallet-api/internal/domains/shipments/ports"
	notifyactivities "github.com/copallet/copallet-api/internal/durable/temporal/activities/notifications"
	notifyworkflows "github.com/copallet/copallet-api/internal/durable/temporal/workflows/notifications"
	platformobservability "github.com/copallet/copallet-api/internal/platform/observability"
	platformtemporal "github.com/copallet/copallet-api/internal/platform/temporal"
)

func main() {
	ctx := context.Background()
	const serviceName = "copallet-worker"
	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	instruments, shutdown, err := platformobservability.Init(ctx, cfg.Telemetry(serviceName))
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	notifier, closeNotifier := buildDeliveryNotifier(cfg, logger)
	defer closeNotifier()
	activities := notifyactivities.NewActivities(notifier)

	temporalClient, err := platformtemporal.Dial(platformtemporal.Options{
		Address:    cfg.TemporalAddress,
		Namespace:  cfg.TemporalNamespace,
		Disabled:   cfg.TemporalDisabled,
		TracerName: "temporal-worker",
	}, instruments)
	if err != nil {
		logger.Error("failed to create Temporal client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, notifyworkflows.TaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(notifyworkflows.DispatchWorkflow, workflow.RegisterOptions{Name: notifyworkflows.DispatchWorkflowName})
	w.RegisterActivityWithOptions(activities.DeliverNotification, activity.RegisterOptions{Name: notifyactivities.DeliverNotificationActivityName})

	logger.Info("worker listening", slog.String("taskQueue", notifyworkflows.TaskQueue), slog.String("namespace", cfg.TemporalNamespace))
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return
	}
	logger.Info("Temporal worker stopped")
}

func buildDeliveryNotifier(cfg config.Config, logger *slog.Logger) (shipmentsports.Notifier, func()) {
	brokers := cfg.Brokers()
	if len(brokers) == 0 {
		logger.Warn("KAFKA_BROKERS not set, notifications are only logged")
		return shipmentsnotify.NewLogNotifier(logger), func() {}
	}
	kafkaNotifier, err := shipmentsnotify.NewKafkaNotifier(brokers, cfg.KafkaNotificationsTopic)
	if err != nil {
		logger.Warn("failed to configure Kafka notifier, notifications are only logged", slog.String("error", err.Error()))
		return shipmentsnotify.NewLogNotifier(logger), func() {}
	}
	logger.Info("worker delivering notifications to Kafka", slog.String("topic", cfg.KafkaNotificationsTopic))
	return kafkaNotifier, func() { _ = kafkaNotifier.Close() }
}
