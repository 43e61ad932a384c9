package application

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/copallet/copallet-api/internal/domains/shipments/application/types"
	"github.com/copallet/copallet-api/internal/domains/shipments/domain"
	"github.com/copallet/copallet-api/internal/domains/shipments/ports"
)

// Service orchestrates the shipment lifecycle use cases. Every command on an existing
// shipment runs inside a single repository update so preconditions are checked against
// the locked snapshot.
type Service struct {
	repo     ports.Repository
	notifier ports.Notifier
	logger   *slog.Logger
	now      func() time.Time
	newID    func() string
}

type Option func(*Service)

// WithNotifier sets the collaborator that receives post-commit notifications.
func WithNotifier(n ports.Notifier) Option {
	return func(s *Service) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithLogger injects a slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithIDGenerator overrides how shipment and bid ids are minted.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) {
		s.newID = newID
	}
}

// NewService wires the shipments service with its dependencies.
func NewService(repo ports.Repository, opts ...Option) *Service {
	s := &Service{
		repo:     repo,
		notifier: ports.NoopNotifier{},
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:      func() time.Time { return time.Now().UTC() },
		newID:    func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// CreateShipment stores a new draft shipment owned by the calling shipper.
func (s *Service) CreateShipment(ctx context.Context, input types.CreateShipmentInput) (*domain.Shipment, error) {
	shipment, err := domain.NewShipment(s.newID(), input.Actor, input.Payload, s.now())
	if err != nil {
		return nil, mapError(err)
	}
	saved, err := s.repo.Create(ctx, shipment)
	if err != nil {
		return nil, mapError(err)
	}
	return saved, nil
}

// Publish opens a draft to carriers.
func (s *Service) Publish(ctx context.Context, input types.ShipmentCommand) (*domain.Shipment, error) {
	return s.transition(ctx, input.ShipmentID, func(l *domain.Listing) error {
		return l.Publish(input.Actor, s.now())
	})
}

// PlaceBid records a carrier's offer.
func (s *Service) PlaceBid(ctx context.Context, input types.PlaceBidInput) (*domain.Bid, error) {
	var placed *domain.Bid
	_, err := s.update(ctx, input.ShipmentID, func(l *domain.Listing) error {
		bid, err := l.PlaceBid(s.newID(), input.Actor, input.Price, s.now())
		if err != nil {
			return err
		}
		placed = bid.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return placed, nil
}

// AcceptBid assigns the shipment to the bid's carrier and declines the rest. It returns the
// assigned shipment together with the accepted bid.
func (s *Service) AcceptBid(ctx context.Context, input types.AcceptBidInput) (*domain.Shipment, *domain.Bid, error) {
	var accepted *domain.Bid
	shipment, err := s.transition(ctx, input.ShipmentID, func(l *domain.Listing) error {
		bid, err := l.AcceptBid(input.BidID, input.Actor, s.now())
		if err != nil {
			return err
		}
		accepted = bid.Clone()
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return shipment, accepted, nil
}

// StartTransit records pickup.
func (s *Service) StartTransit(ctx context.Context, input types.ShipmentCommand) (*domain.Shipment, error) {
	return s.transition(ctx, input.ShipmentID, func(l *domain.Listing) error {
		return l.StartTransit(input.Actor, s.now())
	})
}

// MarkDelivered closes the shipment.
func (s *Service) MarkDelivered(ctx context.Context, input types.MarkDeliveredInput) (*domain.Shipment, error) {
	return s.transition(ctx, input.ShipmentID, func(l *domain.Listing) error {
		return l.MarkDelivered(input.Actor, input.PODReference, s.now())
	})
}

// Cancel terminates the shipment and declines outstanding bids.
func (s *Service) Cancel(ctx context.Context, input types.ShipmentCommand) (*domain.Shipment, error) {
	return s.transition(ctx, input.ShipmentID, func(l *domain.Listing) error {
		return l.Cancel(input.Actor, s.now())
	})
}

// GetShipment loads a single shipment.
func (s *Service) GetShipment(ctx context.Context, id string) (*domain.Shipment, error) {
	shipment, err := s.repo.GetShipment(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}
	return shipment, nil
}

// ListShipments returns shipments matching the filter, newest first.
func (s *Service) ListShipments(ctx context.Context, filter types.ShipmentFilter) ([]*domain.Shipment, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, mapError(domain.ErrUnknownStatus)
	}
	result, err := s.repo.ListShipments(ctx, filter.Normalize())
	if err != nil {
		return nil, mapError(err)
	}
	return result, nil
}

// ListBids returns every bid on the shipment in placement order.
func (s *Service) ListBids(ctx context.Context, shipmentID string) ([]*domain.Bid, error) {
	if _, err := s.repo.GetShipment(ctx, shipmentID); err != nil {
		return nil, mapError(err)
	}
	bids, err := s.repo.ListBids(ctx, shipmentID)
	if err != nil {
		return nil, mapError(err)
	}
	return bids, nil
}

// History returns the transition log of the shipment, oldest first.
func (s *Service) History(ctx context.Context, shipmentID string) ([]domain.Transition, error) {
	if _, err := s.repo.GetShipment(ctx, shipmentID); err != nil {
		return nil, mapError(err)
	}
	history, err := s.repo.History(ctx, shipmentID)
	if err != nil {
		return nil, mapError(err)
	}
	return history, nil
}

func (s *Service) transition(ctx context.Context, shipmentID string, mutate ports.MutateFunc) (*domain.Shipment, error) {
	listing, err := s.update(ctx, shipmentID, mutate)
	if err != nil {
		return nil, err
	}
	return listing.Shipment, nil
}

// update runs mutate atomically and dispatches notifications once the change is committed.
func (s *Service) update(ctx context.Context, shipmentID string, mutate ports.MutateFunc) (*domain.Listing, error) {
	listing, err := s.repo.Update(ctx, shipmentID, mutate)
	if err != nil {
		return nil, mapError(err)
	}
	s.dispatch(ctx, listing.Notifications())
	listing.ClearEvents()
	return listing, nil
}

func (s *Service) dispatch(ctx context.Context, notifications []domain.Notification) {
	if len(notifications) == 0 {
		return
	}
	if err := s.notifier.Notify(context.WithoutCancel(ctx), notifications); err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "notification dispatch failed",
			slog.String("shipment.id", notifications[0].ShipmentID),
			slog.Int("count", len(notifications)),
			slog.String("error", err.Error()),
		)
	}
}

var _ ports.Service = (*Service)(nil)
