package workflows

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.temporal.io/sdk/client"

	"github.com/copallet/copallet-api/internal/domains/shipments/domain"
	"github.com/copallet/copallet-api/internal/domains/shipments/ports"
	notifyworkflows "github.com/copallet/copallet-api/internal/durable/temporal/workflows/notifications"
)

var _ ports.Notifier = (*TemporalNotifier)(nil)

// WorkflowStarter is the subset of client.Client the notifier needs.
type WorkflowStarter interface {
	ExecuteWorkflow(ctx context.Context, options client.StartWorkflowOptions, workflow interface{}, args ...interface{}) (client.WorkflowRun, error)
}

// TemporalNotifier hands notifications to a durable dispatch workflow. It returns once the
// workflow is accepted by the cluster and never waits for delivery.
type TemporalNotifier struct {
	client    WorkflowStarter
	taskQueue string
}

// NewTemporalNotifier wires a Temporal client into the notifier.
func NewTemporalNotifier(c WorkflowStarter) *TemporalNotifier {
	return &TemporalNotifier{client: c, taskQueue: notifyworkflows.TaskQueue}
}

// Notify starts one dispatch workflow for the batch.
func (n *TemporalNotifier) Notify(ctx context.Context, notifications []domain.Notification) error {
	if n == nil || n.client == nil {
		return errors.New("temporal notifier not configured")
	}
	if len(notifications) == 0 {
		return nil
	}
	shipmentID := notifications[0].ShipmentID
	options := client.StartWorkflowOptions{
		ID:                       buildDispatchWorkflowID(shipmentID),
		TaskQueue:                n.taskQueue,
		WorkflowExecutionTimeout: 24 * time.Hour,
	}
	_, err := n.client.ExecuteWorkflow(ctx, options, notifyworkflows.DispatchWorkflowName, notifyworkflows.DispatchInput{
		ShipmentID:    shipmentID,
		Notifications: notifications,
		TraceID:       workflowTraceID(ctx),
	})
	if err != nil {
		return fmt.Errorf("start notification workflow: %w", err)
	}
	return nil
}

func buildDispatchWorkflowID(shipmentID string) string {
	return fmt.Sprintf("shipment-notifications-%s-%s", shipmentID, uuid.NewString())
}

func workflowTraceID(ctx context.Context) string {
	spanCtx := oteltrace.SpanFromContext(ctx).SpanContext()
	if !spanCtx.IsValid() {
		return ""
	}
	return spanCtx.TraceID().String()
}
