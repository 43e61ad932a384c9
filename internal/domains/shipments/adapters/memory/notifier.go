package memory

import (
	"context"
	"sync"

	"github.com/copallet/copallet-api/internal/domains/shipments/domain"
	"github.com/copallet/copallet-api/internal/domains/shipments/ports"
)

var _ ports.Notifier = (*Notifier)(nil)

// Notifier records notifications in memory. Err, when set, is returned from every call
// after the batch has been recorded.
type Notifier struct {
	mu   sync.Mutex
	sent []domain.Notification
	Err  error
}

func NewNotifier() *Notifier {
	return &Notifier{}
}

func (n *Notifier) Notify(_ context.Context, notifications []domain.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notifications...)
	return n.Err
}

// Sent returns a copy of everything recorded so far.
func (n *Notifier) Sent() []domain.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]domain.Notification(nil), n.sent...)
}
