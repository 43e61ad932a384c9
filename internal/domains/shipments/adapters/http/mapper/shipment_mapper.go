package mapper

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/copallet/copallet-api/internal/domains/shipments/domain"
)

// TimeWindow is the HTTP representation of a pickup or delivery slot.
type TimeWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// CreateShipment captures the inbound payload for a new shipment.
type CreateShipment struct {
	FromAddress    string           `json:"fromAddress"`
	ToAddress      string           `json:"toAddress"`
	PickupWindow   *TimeWindow      `json:"pickupWindow"`
	DeliveryWindow *TimeWindow      `json:"deliveryWindow"`
	Pallets        int32            `json:"pallets"`
	Constraints    []string         `json:"constraints,omitempty"`
	PriceGuidance  *decimal.Decimal `json:"priceGuidance,omitempty"`
}

// PlaceBid carries a carrier's offer. Price accepts a JSON string or number.
type PlaceBid struct {
	Price decimal.Decimal `json:"price"`
}

// Deliver carries the proof-of-delivery reference.
type Deliver struct {
	PODReference string `json:"podReference"`
}

// Shipment is the HTTP representation of a shipment.
type Shipment struct {
	ID                string     `json:"id"`
	Status            string     `json:"status"`
	ShipperID         string     `json:"shipperId"`
	AssignedCarrierID string     `json:"assignedCarrierId,omitempty"`
	FromAddress       string     `json:"fromAddress"`
	ToAddress         string     `json:"toAddress"`
	PickupWindow      TimeWindow `json:"pickupWindow"`
	DeliveryWindow    TimeWindow `json:"deliveryWindow"`
	Pallets           int32      `json:"pallets"`
	Constraints       []string   `json:"constraints"`
	PriceGuidance     string     `json:"priceGuidance,omitempty"`
	PODReference      string     `json:"podReference,omitempty"`
	Version           int64      `json:"version"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

// Bid is the HTTP representation of a bid.
type Bid struct {
	ID         string    `json:"id"`
	ShipmentID string    `json:"shipmentId"`
	CarrierID  string    `json:"carrierId"`
	Price      string    `json:"price"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Acceptance is the response of a successful bid acceptance.
type Acceptance struct {
	Shipment Shipment `json:"shipment"`
	Bid      Bid      `json:"bid"`
}

// Transition is one entry of a shipment's history.
type Transition struct {
	From       string    `json:"from"`
	To         string    `json:"to"`
	Operation  string    `json:"operation"`
	ActorID    string    `json:"actorId"`
	OccurredAt time.Time `json:"occurredAt"`
}

// ToPayload maps the create request onto the domain payload. Absent windows stay zero and
// are rejected by domain validation.
func ToPayload(input CreateShipment) domain.Payload {
	payload := domain.Payload{
		FromAddress:   input.FromAddress,
		ToAddress:     input.ToAddress,
		Pallets:       input.Pallets,
		Constraints:   append([]string(nil), input.Constraints...),
		PriceGuidance: input.PriceGuidance,
	}
	if input.PickupWindow != nil {
		payload.PickupWindow = domain.TimeWindow{Start: input.PickupWindow.Start, End: input.PickupWindow.End}
	}
	if input.DeliveryWindow != nil {
		payload.DeliveryWindow = domain.TimeWindow{Start: input.DeliveryWindow.Start, End: input.DeliveryWindow.End}
	}
	return payload
}

// FromShipment maps a domain shipment into its HTTP representation.
func FromShipment(s *domain.Shipment) Shipment {
	out := Shipment{
		ID:                s.ID,
		Status:            string(s.Status),
		ShipperID:         s.ShipperID,
		AssignedCarrierID: s.AssignedCarrierID,
		FromAddress:       s.Payload.FromAddress,
		ToAddress:         s.Payload.ToAddress,
		PickupWindow:      TimeWindow{Start: s.Payload.PickupWindow.Start, End: s.Payload.PickupWindow.End},
		DeliveryWindow:    TimeWindow{Start: s.Payload.DeliveryWindow.Start, End: s.Payload.DeliveryWindow.End},
		Pallets:           s.Payload.Pallets,
		Constraints:       append([]string{}, s.Payload.Constraints...),
		PODReference:      s.PODReference,
		Version:           s.Version,
		CreatedAt:         s.CreatedAt,
		UpdatedAt:         s.UpdatedAt,
	}
	if s.Payload.PriceGuidance != nil {
		out.PriceGuidance = s.Payload.PriceGuidance.StringFixed(2)
	}
	return out
}

// FromShipmentList maps a slice of shipments.
func FromShipmentList(list []*domain.Shipment) []Shipment {
	out := make([]Shipment, 0, len(list))
	for _, s := range list {
		out = append(out, FromShipment(s))
	}
	return out
}

// FromBid maps a domain bid into its HTTP representation.
func FromBid(b *domain.Bid) Bid {
	return Bid{
		ID:         b.ID,
		ShipmentID: b.ShipmentID,
		CarrierID:  b.CarrierID,
		Price:      b.Price.StringFixed(2),
		Status:     string(b.Status),
		CreatedAt:  b.CreatedAt,
		UpdatedAt:  b.UpdatedAt,
	}
}

// FromAcceptance pairs the assigned shipment with the bid that won it.
func FromAcceptance(s *domain.Shipment, b *domain.Bid) Acceptance {
	return Acceptance{Shipment: FromShipment(s), Bid: FromBid(b)}
}

// FromBidList maps a slice of bids.
func FromBidList(list []*domain.Bid) []Bid {
	out := make([]Bid, 0, len(list))
	for _, b := range list {
		out = append(out, FromBid(b))
	}
	return out
}

// FromHistory maps the transition log.
func FromHistory(list []domain.Transition) []Transition {
	out := make([]Transition, 0, len(list))
	for _, t := range list {
		out = append(out, Transition{
			From:       string(t.From),
			To:         string(t.To),
			Operation:  string(t.Operation),
			ActorID:    t.ActorID,
			OccurredAt: t.Timestamp,
		})
	}
	return out
}
