package notifications

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/copallet/copallet-api/internal/domains/shipments/domain"
	notifyactivities "github.com/copallet/copallet-api/internal/durable/temporal/activities/notifications"
)

const (
	// DispatchWorkflowName is the public identifier for registering the workflow.
	DispatchWorkflowName = "shipments.workflows.NotificationDispatch"
	// TaskQueue is the queue consumed by the worker delivering notifications.
	TaskQueue = "SHIPMENT_NOTIFICATIONS"
)

// DispatchInput carries the notifications raised by one committed command.
type DispatchInput struct {
	ShipmentID    string
	Notifications []domain.Notification
	TraceID       string
}

// DispatchResult reports how many notifications reached the notifier.
type DispatchResult struct {
	Delivered int
	Failed    int
}

// DispatchWorkflow delivers each notification through its own activity so one bad recipient
// does not hold back the others. A notification that exhausts its retries is counted and dropped.
func DispatchWorkflow(ctx workflow.Context, input DispatchInput) (*DispatchResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("NotificationDispatchWorkflow started", withTraceID(input.TraceID, "shipmentId", input.ShipmentID, "count", len(input.Notifications))...)

	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    30 * time.Second,
			MaximumAttempts:    5,
		},
	})

	futures := make([]workflow.Future, 0, len(input.Notifications))
	for _, notification := range input.Notifications {
		futures = append(futures, workflow.ExecuteActivity(ctx, notifyactivities.DeliverNotificationActivityName, notification))
	}

	result := &DispatchResult{}
	for i, future := range futures {
		if err := future.Get(ctx, nil); err != nil {
			result.Failed++
			logger.Error("notification dropped", withTraceID(input.TraceID,
				"shipmentId", input.ShipmentID,
				"event", input.Notifications[i].EventName(),
				"recipientId", input.Notifications[i].RecipientID,
				"error", err,
			)...)
			continue
		}
		result.Delivered++
	}
	logger.Info("NotificationDispatchWorkflow completed", withTraceID(input.TraceID, "shipmentId", input.ShipmentID, "delivered", result.Delivered, "failed", result.Failed)...)
	return result, nil
}

func withTraceID(traceID string, keyvals ...interface{}) []interface{} {
	if traceID == "" {
		return keyvals
	}
	return append(keyvals, "traceId", traceID)
}
