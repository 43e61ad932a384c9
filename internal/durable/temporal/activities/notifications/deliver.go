package notifications

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"

	"github.com/copallet/copallet-api/internal/domains/shipments/domain"
	"github.com/copallet/copallet-api/internal/domains/shipments/ports"
)

// DeliverNotificationActivityName delivers one notification through the configured notifier.
const DeliverNotificationActivityName = "shipments.activities.DeliverNotification"

// Activities groups the notification delivery activities.
type Activities struct {
	notifier ports.Notifier
}

// NewActivities wires the outbound notifier into the Temporal activities bundle.
func NewActivities(notifier ports.Notifier) *Activities {
	return &Activities{notifier: notifier}
}

// DeliverNotification hands a single notification to the notifier. Errors are retried by Temporal.
func (a *Activities) DeliverNotification(ctx context.Context, notification domain.Notification) error {
	logger := activity.GetLogger(ctx)
	if a == nil || a.notifier == nil {
		logger.Error("notification activity not initialized", "shipmentId", notification.ShipmentID)
		return errors.New("notification activity not initialized")
	}
	if err := a.notifier.Notify(ctx, []domain.Notification{notification}); err != nil {
		logger.Error("DeliverNotification failed",
			"shipmentId", notification.ShipmentID,
			"event", notification.EventName(),
			"recipientId", notification.RecipientID,
			"error", err,
		)
		return err
	}
	logger.Info("DeliverNotification completed", "shipmentId", notification.ShipmentID, "event", notification.EventName())
	return nil
}
