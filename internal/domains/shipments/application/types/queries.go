package types

import "github.com/copallet/copallet-api/internal/domains/shipments/domain"

// Paging bounds for shipment listings.
const (
	DefaultPageSize = 50
	MaxPageSize     = 200
)

// ShipmentFilter narrows a shipment listing. Zero values match everything.
type ShipmentFilter struct {
	Status    domain.Status
	ShipperID string
	CarrierID string
	Limit     int
	Offset    int
}

// Normalize clamps paging to sane bounds.
func (f ShipmentFilter) Normalize() ShipmentFilter {
	if f.Limit <= 0 {
		f.Limit = DefaultPageSize
	}
	if f.Limit > MaxPageSize {
		f.Limit = MaxPageSize
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

// Matches reports whether the shipment passes the filter, ignoring paging.
func (f ShipmentFilter) Matches(s *domain.Shipment) bool {
	if f.Status != "" && s.Status != f.Status {
		return false
	}
	if f.ShipperID != "" && s.ShipperID != f.ShipperID {
		return false
	}
	if f.CarrierID != "" && s.AssignedCarrierID != f.CarrierID {
		return false
	}
	return true
}
