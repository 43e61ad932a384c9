package ports

import (
	"context"
	"errors"

	"github.com/copallet/copallet-api/internal/domains/shipments/application/types"
	"github.com/copallet/copallet-api/internal/domains/shipments/domain"
)

var (
	// ErrNotFound is returned when the shipment does not exist.
	ErrNotFound = errors.New("shipment not found")
	// ErrConflict signals a concurrent writer changed the shipment first.
	ErrConflict = errors.New("shipment was modified concurrently")
)

// MutateFunc applies one command to a freshly loaded listing. Returning an error aborts the update.
type MutateFunc func(listing *domain.Listing) error

// Repository persists shipments, their bids and the transition log.
type Repository interface {
	Create(ctx context.Context, shipment *domain.Shipment) (*domain.Shipment, error)
	GetShipment(ctx context.Context, id string) (*domain.Shipment, error)
	ListShipments(ctx context.Context, filter types.ShipmentFilter) ([]*domain.Shipment, error)
	ListBids(ctx context.Context, shipmentID string) ([]*domain.Bid, error)
	History(ctx context.Context, shipmentID string) ([]domain.Transition, error)

	// Update loads the listing under an exclusive lock, runs mutate and persists the result
	// atomically: shipment with a version check, every bid, and the new transitions.
	// The returned listing still carries the transitions and notifications raised by mutate.
	Update(ctx context.Context, shipmentID string, mutate MutateFunc) (*domain.Listing, error)
}
