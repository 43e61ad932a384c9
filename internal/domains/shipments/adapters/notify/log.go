package notify

import (
	"context"
	"log/slog"

	"github.com/copallet/copallet-api/internal/domains/shipments/domain"
	"github.com/copallet/copallet-api/internal/domains/shipments/ports"
)

var _ ports.Notifier = (*LogNotifier)(nil)

// LogNotifier writes notifications to the structured log. Used when no broker is configured.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(ctx context.Context, notifications []domain.Notification) error {
	for _, notification := range notifications {
		n.logger.LogAttrs(ctx, slog.LevelInfo, "notification",
			slog.String("event", notification.EventName()),
			slog.String("recipient.id", notification.RecipientID),
			slog.String("shipment.id", notification.ShipmentID),
			slog.String("bid.id", notification.BidID),
		)
	}
	return nil
}
