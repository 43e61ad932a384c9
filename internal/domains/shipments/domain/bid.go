package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BidStatus represents the decision state of a bid.
type BidStatus string

const (
	BidPending  BidStatus = "pending"
	BidAccepted BidStatus = "accepted"
	BidDeclined BidStatus = "declined"
)

// Bid is a carrier's priced offer on an open shipment.
type Bid struct {
	ID         string
	ShipmentID string
	CarrierID  string
	Price      decimal.Decimal
	Status     BidStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Clone returns a copy of the bid.
func (b *Bid) Clone() *Bid {
	if b == nil {
		return nil
	}
	clone := *b
	return &clone
}

// MaxPrice is the largest amount a numeric(14,2) column holds.
var MaxPrice = decimal.RequireFromString("999999999999.99")

// ValidatePrice accepts positive amounts with at most two decimal places up to MaxPrice.
func ValidatePrice(price decimal.Decimal) error {
	if !price.IsPositive() {
		return ErrNonPositivePrice
	}
	if !price.Equal(price.Truncate(2)) || price.GreaterThan(MaxPrice) {
		return ErrPriceOutOfRange
	}
	return nil
}

func (b *Bid) decline(now time.Time) bool {
	if b.Status == BidDeclined {
		return false
	}
	b.Status = BidDeclined
	b.UpdatedAt = now
	return true
}
