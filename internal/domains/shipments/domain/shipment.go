package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TimeWindow bounds a pickup or delivery slot.
type TimeWindow struct {
	Start time.Time
	End   time.Time
}

// IsZero reports whether the window was left unset.
func (w TimeWindow) IsZero() bool {
	return w.Start.IsZero() && w.End.IsZero()
}

// Payload is the descriptive part of a shipment. The engine checks presence only.
type Payload struct {
	FromAddress    string
	ToAddress      string
	PickupWindow   TimeWindow
	DeliveryWindow TimeWindow
	Pallets        int32
	Constraints    []string
	PriceGuidance  *decimal.Decimal
}

// Validate enforces presence of the required payload fields.
func (p Payload) Validate() error {
	if strings.TrimSpace(p.FromAddress) == "" || strings.TrimSpace(p.ToAddress) == "" {
		return ErrMissingField
	}
	if p.PickupWindow.IsZero() || p.DeliveryWindow.IsZero() {
		return ErrMissingField
	}
	if p.PickupWindow.End.Before(p.PickupWindow.Start) || p.DeliveryWindow.End.Before(p.DeliveryWindow.Start) {
		return ErrInvalidWindow
	}
	if p.Pallets <= 0 {
		return ErrInvalidPallets
	}
	if p.PriceGuidance != nil {
		return ValidatePrice(*p.PriceGuidance)
	}
	return nil
}

// Shipment is a freight job posted by a shipper.
type Shipment struct {
	ID                string
	ShipperID         string
	Status            Status
	AssignedCarrierID string
	PODReference      string
	Payload           Payload
	Version           int64
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// NewShipment builds a draft shipment owned by the actor.
func NewShipment(id string, actor Actor, payload Payload, now time.Time) (*Shipment, error) {
	if err := Authorize(OpCreate, actor, nil); err != nil {
		return nil, err
	}
	if err := payload.Validate(); err != nil {
		return nil, err
	}
	payload.Constraints = append([]string(nil), payload.Constraints...)
	return &Shipment{
		ID:        id,
		ShipperID: actor.ID,
		Status:    StatusDraft,
		Payload:   payload,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Clone returns a deep copy safe to hand out of a store.
func (s *Shipment) Clone() *Shipment {
	if s == nil {
		return nil
	}
	clone := *s
	clone.Payload.Constraints = append([]string(nil), s.Payload.Constraints...)
	if s.Payload.PriceGuidance != nil {
		price := *s.Payload.PriceGuidance
		clone.Payload.PriceGuidance = &price
	}
	return &clone
}

// CheckInvariants verifies the carrier/status coupling.
func (s *Shipment) CheckInvariants() error {
	if !s.Status.Valid() {
		return ErrIllegalTransition
	}
	if s.Status.HasCarrier() != (s.AssignedCarrierID != "") {
		return ErrIllegalTransition
	}
	return nil
}
