package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/copallet/copallet-api/internal/domains/shipments/application/types"
	"github.com/copallet/copallet-api/internal/domains/shipments/domain"
	"github.com/copallet/copallet-api/internal/domains/shipments/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory shipment persistence adapter. Update holds the write lock for
// the whole mutation, which gives the same serialization a row lock gives in postgres.
type Repository struct {
	mu          sync.RWMutex
	shipments   map[string]*domain.Shipment
	bids        map[string][]*domain.Bid
	transitions map[string][]domain.Transition
}

func NewRepository() *Repository {
	return &Repository{
		shipments:   map[string]*domain.Shipment{},
		bids:        map[string][]*domain.Bid{},
		transitions: map[string][]domain.Transition{},
	}
}

func (r *Repository) Create(_ context.Context, shipment *domain.Shipment) (*domain.Shipment, error) {
	if shipment == nil {
		return nil, errors.New("shipment is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.shipments[shipment.ID]; exists {
		return nil, ports.ErrConflict
	}
	clone := shipment.Clone()
	clone.Version = 1
	r.shipments[clone.ID] = clone
	return clone.Clone(), nil
}

func (r *Repository) GetShipment(_ context.Context, id string) (*domain.Shipment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	shipment, ok := r.shipments[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return shipment.Clone(), nil
}

func (r *Repository) ListShipments(_ context.Context, filter types.ShipmentFilter) ([]*domain.Shipment, error) {
	filter = filter.Normalize()
	r.mu.RLock()
	defer r.mu.RUnlock()
	matched := make([]*domain.Shipment, 0, len(r.shipments))
	for _, shipment := range r.shipments {
		if filter.Matches(shipment) {
			matched = append(matched, shipment)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID < matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	if filter.Offset >= len(matched) {
		return []*domain.Shipment{}, nil
	}
	end := filter.Offset + filter.Limit
	if end > len(matched) {
		end = len(matched)
	}
	list := make([]*domain.Shipment, 0, end-filter.Offset)
	for _, shipment := range matched[filter.Offset:end] {
		list = append(list, shipment.Clone())
	}
	return list, nil
}

func (r *Repository) ListBids(_ context.Context, shipmentID string) ([]*domain.Bid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneBids(r.bids[shipmentID]), nil
}

func (r *Repository) History(_ context.Context, shipmentID string) ([]domain.Transition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domain.Transition{}, r.transitions[shipmentID]...), nil
}

func (r *Repository) Update(_ context.Context, shipmentID string, mutate ports.MutateFunc) (*domain.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.shipments[shipmentID]
	if !ok {
		return nil, ports.ErrNotFound
	}
	listing := domain.NewListing(stored.Clone(), cloneBids(r.bids[shipmentID]))
	if err := mutate(listing); err != nil {
		return nil, err
	}
	if err := listing.CheckInvariants(); err != nil {
		return nil, err
	}

	listing.Shipment.Version = stored.Version + 1
	r.shipments[shipmentID] = listing.Shipment.Clone()
	r.bids[shipmentID] = cloneBids(listing.Bids)
	r.transitions[shipmentID] = append(r.transitions[shipmentID], listing.Transitions()...)
	return listing, nil
}

func cloneBids(bids []*domain.Bid) []*domain.Bid {
	list := make([]*domain.Bid, 0, len(bids))
	for _, bid := range bids {
		list = append(list, bid.Clone())
	}
	return list
}

// Reset drops every stored shipment with its bids and history.
func (r *Repository) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.shipments = map[string]*domain.Shipment{}
	r.bids = map[string][]*domain.Bid{}
	r.transitions = map[string][]domain.Transition{}
}
