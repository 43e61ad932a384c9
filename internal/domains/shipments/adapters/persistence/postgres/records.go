package postgres

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/copallet/copallet-api/internal/domains/shipments/domain"
)

// Records mirror internal/platform/migrations, which owns the schema.

type shipmentRecord struct {
	ID                string              `gorm:"primaryKey;column:id;size:64"`
	ShipperID         string              `gorm:"column:shipper_id;size:64;index"`
	Status            string              `gorm:"column:status;type:varchar(32);index"`
	AssignedCarrierID string              `gorm:"column:assigned_carrier_id;size:64;index"`
	PODReference      string              `gorm:"column:pod_reference"`
	FromAddress       string              `gorm:"column:from_address"`
	ToAddress         string              `gorm:"column:to_address"`
	PickupStart       time.Time           `gorm:"column:pickup_start"`
	PickupEnd         time.Time           `gorm:"column:pickup_end"`
	DeliveryStart     time.Time           `gorm:"column:delivery_start"`
	DeliveryEnd       time.Time           `gorm:"column:delivery_end"`
	Pallets           int32               `gorm:"column:pallets"`
	Constraints       pq.StringArray      `gorm:"column:constraints;type:text[]"`
	PriceGuidance     decimal.NullDecimal `gorm:"column:price_guidance;type:numeric(14,2)"`
	Version           int64               `gorm:"column:version;not null"`
	CreatedAt         time.Time           `gorm:"column:created_at;index;autoCreateTime:false"`
	UpdatedAt         time.Time           `gorm:"column:updated_at;autoUpdateTime:false"`
}

func (shipmentRecord) TableName() string { return "shipments" }

type bidRecord struct {
	ID         string          `gorm:"primaryKey;column:id;size:64"`
	ShipmentID string          `gorm:"column:shipment_id;size:64;index;uniqueIndex:idx_bids_one_accepted,where:status = 'accepted';uniqueIndex:idx_bids_one_pending_per_carrier,where:status = 'pending'"`
	CarrierID  string          `gorm:"column:carrier_id;size:64;uniqueIndex:idx_bids_one_pending_per_carrier,where:status = 'pending'"`
	Price      decimal.Decimal `gorm:"column:price;type:numeric(14,2)"`
	Status     string          `gorm:"column:status;type:varchar(16)"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime:false"`
	UpdatedAt  time.Time       `gorm:"column:updated_at;autoUpdateTime:false"`
}

func (bidRecord) TableName() string { return "bids" }

type transitionRecord struct {
	ID         int64     `gorm:"primaryKey;column:id;autoIncrement"`
	ShipmentID string    `gorm:"column:shipment_id;size:64;index"`
	FromStatus string    `gorm:"column:from_status;type:varchar(32)"`
	ToStatus   string    `gorm:"column:to_status;type:varchar(32)"`
	Operation  string    `gorm:"column:operation;type:varchar(32)"`
	ActorID    string    `gorm:"column:actor_id;size:64"`
	OccurredAt time.Time `gorm:"column:occurred_at"`
}

func (transitionRecord) TableName() string { return "shipment_transitions" }

func toShipmentRecord(s *domain.Shipment) shipmentRecord {
	record := shipmentRecord{
		ID:                s.ID,
		ShipperID:         s.ShipperID,
		Status:            string(s.Status),
		AssignedCarrierID: s.AssignedCarrierID,
		PODReference:      s.PODReference,
		FromAddress:       s.Payload.FromAddress,
		ToAddress:         s.Payload.ToAddress,
		PickupStart:       s.Payload.PickupWindow.Start,
		PickupEnd:         s.Payload.PickupWindow.End,
		DeliveryStart:     s.Payload.DeliveryWindow.Start,
		DeliveryEnd:       s.Payload.DeliveryWindow.End,
		Pallets:           s.Payload.Pallets,
		Constraints:       pq.StringArray(append([]string{}, s.Payload.Constraints...)),
		Version:           s.Version,
		CreatedAt:         s.CreatedAt,
		UpdatedAt:         s.UpdatedAt,
	}
	if s.Payload.PriceGuidance != nil {
		record.PriceGuidance = decimal.NewNullDecimal(*s.Payload.PriceGuidance)
	}
	return record
}

func (r shipmentRecord) toDomain() *domain.Shipment {
	s := &domain.Shipment{
		ID:                r.ID,
		ShipperID:         r.ShipperID,
		Status:            domain.Status(r.Status),
		AssignedCarrierID: r.AssignedCarrierID,
		PODReference:      r.PODReference,
		Payload: domain.Payload{
			FromAddress:    r.FromAddress,
			ToAddress:      r.ToAddress,
			PickupWindow:   domain.TimeWindow{Start: r.PickupStart.UTC(), End: r.PickupEnd.UTC()},
			DeliveryWindow: domain.TimeWindow{Start: r.DeliveryStart.UTC(), End: r.DeliveryEnd.UTC()},
			Pallets:        r.Pallets,
			Constraints:    append([]string(nil), r.Constraints...),
		},
		Version:   r.Version,
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}
	if r.PriceGuidance.Valid {
		price := r.PriceGuidance.Decimal
		s.Payload.PriceGuidance = &price
	}
	return s
}

func toBidRecord(b *domain.Bid) bidRecord {
	return bidRecord{
		ID:         b.ID,
		ShipmentID: b.ShipmentID,
		CarrierID:  b.CarrierID,
		Price:      b.Price,
		Status:     string(b.Status),
		CreatedAt:  b.CreatedAt,
		UpdatedAt:  b.UpdatedAt,
	}
}

func (r bidRecord) toDomain() *domain.Bid {
	return &domain.Bid{
		ID:         r.ID,
		ShipmentID: r.ShipmentID,
		CarrierID:  r.CarrierID,
		Price:      r.Price,
		Status:     domain.BidStatus(r.Status),
		CreatedAt:  r.CreatedAt.UTC(),
		UpdatedAt:  r.UpdatedAt.UTC(),
	}
}

func toTransitionRecord(t domain.Transition) transitionRecord {
	return transitionRecord{
		ShipmentID: t.ShipmentID,
		FromStatus: string(t.From),
		ToStatus:   string(t.To),
		Operation:  string(t.Operation),
		ActorID:    t.ActorID,
		OccurredAt: t.Timestamp,
	}
}

func (r transitionRecord) toDomain() domain.Transition {
	return domain.Transition{
		ShipmentID: r.ShipmentID,
		From:       domain.Status(r.FromStatus),
		To:         domain.Status(r.ToStatus),
		Operation:  domain.Operation(r.Operation),
		ActorID:    r.ActorID,
		Timestamp:  r.OccurredAt.UTC(),
	}
}
