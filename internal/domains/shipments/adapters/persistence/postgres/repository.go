package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/copallet/copallet-api/internal/domains/shipments/application/types"
	"github.com/copallet/copallet-api/internal/domains/shipments/domain"
	"github.com/copallet/copallet-api/internal/domains/shipments/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists shipments, bids and transitions in PostgreSQL using GORM.
// The schema is owned by internal/platform/migrations.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new shipment at version 1.
func (r *Repository) Create(ctx context.Context, shipment *domain.Shipment) (*domain.Shipment, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if shipment == nil {
		return nil, errors.New("shipment is nil")
	}
	record := toShipmentRecord(shipment)
	record.Version = 1
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, translate(err)
	}
	return record.toDomain(), nil
}

// GetShipment fetches a shipment by id.
func (r *Repository) GetShipment(ctx context.Context, id string) (*domain.Shipment, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record shipmentRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return record.toDomain(), nil
}

// ListShipments returns a page of shipments, newest first.
func (r *Repository) ListShipments(ctx context.Context, filter types.ShipmentFilter) ([]*domain.Shipment, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	filter = filter.Normalize()
	query := r.db.WithContext(ctx).Model(&shipmentRecord{})
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}
	if filter.ShipperID != "" {
		query = query.Where("shipper_id = ?", filter.ShipperID)
	}
	if filter.CarrierID != "" {
		query = query.Where("assigned_carrier_id = ?", filter.CarrierID)
	}
	var records []shipmentRecord
	if err := query.Order("created_at DESC").Order("id").Limit(filter.Limit).Offset(filter.Offset).Find(&records).Error; err != nil {
		return nil, err
	}
	list := make([]*domain.Shipment, 0, len(records))
	for i := range records {
		list = append(list, records[i].toDomain())
	}
	return list, nil
}

// ListBids returns every bid on a shipment in placement order.
func (r *Repository) ListBids(ctx context.Context, shipmentID string) ([]*domain.Bid, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	return loadBids(r.db.WithContext(ctx), shipmentID)
}

// History returns the transition log of a shipment, oldest first.
func (r *Repository) History(ctx context.Context, shipmentID string) ([]domain.Transition, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []transitionRecord
	if err := r.db.WithContext(ctx).Where("shipment_id = ?", shipmentID).Order("id").Find(&records).Error; err != nil {
		return nil, err
	}
	history := make([]domain.Transition, 0, len(records))
	for i := range records {
		history = append(history, records[i].toDomain())
	}
	return history, nil
}

// Update runs mutate inside one transaction holding a row lock on the shipment. The shipment
// write is additionally guarded by its version so a writer that bypassed the lock loses.
func (r *Repository) Update(ctx context.Context, shipmentID string, mutate ports.MutateFunc) (*domain.Listing, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var listing *domain.Listing
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current shipmentRecord
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&current, "id = ?", shipmentID).Error; err != nil {
			return translate(err)
		}
		bids, err := loadBids(tx, shipmentID)
		if err != nil {
			return err
		}

		listing = domain.NewListing(current.toDomain(), bids)
		if err := mutate(listing); err != nil {
			return err
		}
		if err := listing.CheckInvariants(); err != nil {
			return err
		}

		next := toShipmentRecord(listing.Shipment)
		next.Version = current.Version + 1
		result := tx.Model(&shipmentRecord{}).
			Where("id = ? AND version = ?", shipmentID, current.Version).
			Select("*").Omit("id", "created_at").
			Updates(&next)
		if result.Error != nil {
			return translate(result.Error)
		}
		if result.RowsAffected == 0 {
			return ports.ErrConflict
		}
		listing.Shipment.Version = next.Version

		if len(listing.Bids) > 0 {
			records := make([]bidRecord, 0, len(listing.Bids))
			for _, bid := range listing.Bids {
				records = append(records, toBidRecord(bid))
			}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				DoUpdates: clause.AssignmentColumns([]string{"status", "updated_at"}),
			}).Create(&records).Error; err != nil {
				return translate(err)
			}
		}

		if transitions := listing.Transitions(); len(transitions) > 0 {
			records := make([]transitionRecord, 0, len(transitions))
			for _, t := range transitions {
				records = append(records, toTransitionRecord(t))
			}
			if err := tx.Create(&records).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return listing, nil
}

func loadBids(db *gorm.DB, shipmentID string) ([]*domain.Bid, error) {
	var records []bidRecord
	if err := db.Where("shipment_id = ?", shipmentID).Order("created_at").Order("id").Find(&records).Error; err != nil {
		return nil, err
	}
	bids := make([]*domain.Bid, 0, len(records))
	for i := range records {
		bids = append(bids, records[i].toDomain())
	}
	return bids, nil
}

// translate maps storage failures onto port errors. Unique violations on the bid indexes
// mean a concurrent writer got there first.
func translate(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ports.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %w", ports.ErrConflict, err)
	default:
		return err
	}
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres shipment repository not configured")
	}
	return nil
}
