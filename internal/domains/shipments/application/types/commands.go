package types

import (
	"github.com/shopspring/decimal"

	"github.com/copallet/copallet-api/internal/domains/shipments/domain"
)

// CreateShipmentInput carries a new shipment request from a shipper.
type CreateShipmentInput struct {
	Actor   domain.Actor
	Payload domain.Payload
}

// ShipmentCommand targets an existing shipment with no further arguments.
type ShipmentCommand struct {
	ShipmentID string
	Actor      domain.Actor
}

// PlaceBidInput offers a price on an open shipment.
type PlaceBidInput struct {
	ShipmentID string
	Actor      domain.Actor
	Price      decimal.Decimal
}

// AcceptBidInput selects the winning bid.
type AcceptBidInput struct {
	ShipmentID string
	BidID      string
	Actor      domain.Actor
}

// MarkDeliveredInput closes a shipment with its proof of delivery.
type MarkDeliveredInput struct {
	ShipmentID   string
	Actor        domain.Actor
	PODReference string
}
