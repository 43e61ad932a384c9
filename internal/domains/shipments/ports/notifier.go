package ports

import (
	"context"

	"github.com/copallet/copallet-api/internal/domains/shipments/domain"
)

// Notifier delivers notifications to affected parties after a command commits.
type Notifier interface {
	Notify(ctx context.Context, notifications []domain.Notification) error
}

// NoopNotifier drops every notification.
type NoopNotifier struct{}

func (NoopNotifier) Notify(context.Context, []domain.Notification) error { return nil }
