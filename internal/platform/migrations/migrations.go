package migrations

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Run applies the schema for the shipments bounded context.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(Models()...)
}

// Models lists the tables this package owns. The shipments Postgres adapter keeps its own
// copies of these records and they must stay field-for-field identical.
func Models() []any {
	return []any{
		&shipmentRecord{},
		&bidRecord{},
		&transitionRecord{},
	}
}

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

// The partial unique indexes back the single accepted bid per shipment and the single
// pending bid per carrier.
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
