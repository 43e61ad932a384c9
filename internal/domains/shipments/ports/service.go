package ports

import (
	"context"

	"github.com/copallet/copallet-api/internal/domains/shipments/application/types"
	"github.com/copallet/copallet-api/internal/domains/shipments/domain"
)

// Service defines the shipment lifecycle use cases exposed to adapters (inbound/driving port).
type Service interface {
	CreateShipment(ctx context.Context, input types.CreateShipmentInput) (*domain.Shipment, error)
	Publish(ctx context.Context, input types.ShipmentCommand) (*domain.Shipment, error)
	PlaceBid(ctx context.Context, input types.PlaceBidInput) (*domain.Bid, error)
	AcceptBid(ctx context.Context, input types.AcceptBidInput) (*domain.Shipment, *domain.Bid, error)
	StartTransit(ctx context.Context, input types.ShipmentCommand) (*domain.Shipment, error)
	MarkDelivered(ctx context.Context, input types.MarkDeliveredInput) (*domain.Shipment, error)
	Cancel(ctx context.Context, input types.ShipmentCommand) (*domain.Shipment, error)

	GetShipment(ctx context.Context, id string) (*domain.Shipment, error)
	ListShipments(ctx context.Context, filter types.ShipmentFilter) ([]*domain.Shipment, error)
	ListBids(ctx context.Context, shipmentID string) ([]*domain.Bid, error)
	History(ctx context.Context, shipmentID string) ([]domain.Transition, error)
}
