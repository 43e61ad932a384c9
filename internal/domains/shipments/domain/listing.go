package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Listing is the consistency boundary of the engine: one shipment plus every bid on it.
// Each command validates all of its preconditions before mutating anything, so a
// failed command leaves the listing untouched.
type Listing struct {
	Shipment *Shipment
	Bids     []*Bid

	transitions   []Transition
	notifications []Notification
}

// NewListing groups a shipment with its bids.
func NewListing(shipment *Shipment, bids []*Bid) *Listing {
	return &Listing{Shipment: shipment, Bids: bids}
}

// Publish opens a draft shipment to carriers.
func (l *Listing) Publish(actor Actor, now time.Time) error {
	if err := Authorize(OpPublish, actor, l.Shipment); err != nil {
		return err
	}
	to, err := Next(OpPublish, l.Shipment.Status)
	if err != nil {
		return err
	}
	l.moveTo(OpPublish, to, actor, now)
	return nil
}

// PlaceBid records a pending bid from a carrier.
func (l *Listing) PlaceBid(id string, actor Actor, price decimal.Decimal, now time.Time) (*Bid, error) {
	if l.Shipment.Status != StatusOpen {
		return nil, fmt.Errorf("%w: cannot %s a shipment in status %q", ErrIllegalTransition, OpPlaceBid, l.Shipment.Status)
	}
	if err := ValidatePrice(price); err != nil {
		return nil, err
	}
	if actor.ID == l.Shipment.ShipperID {
		return nil, ErrSelfBid
	}
	if err := Authorize(OpPlaceBid, actor, l.Shipment); err != nil {
		return nil, err
	}
	for _, existing := range l.Bids {
		if existing.CarrierID == actor.ID && existing.Status == BidPending {
			return nil, ErrDuplicateBid
		}
	}
	bid := &Bid{
		ID:         id,
		ShipmentID: l.Shipment.ID,
		CarrierID:  actor.ID,
		Price:      price,
		Status:     BidPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	l.Bids = append(l.Bids, bid)
	return bid, nil
}

// AcceptBid assigns the shipment to the bidding carrier and declines every competing bid.
func (l *Listing) AcceptBid(bidID string, actor Actor, now time.Time) (*Bid, error) {
	if err := Authorize(OpAcceptBid, actor, l.Shipment); err != nil {
		return nil, err
	}
	to, err := Next(OpAcceptBid, l.Shipment.Status)
	if err != nil {
		return nil, err
	}
	accepted := l.FindBid(bidID)
	if accepted == nil {
		return nil, ErrBidNotFound
	}
	if accepted.Status != BidPending {
		return nil, fmt.Errorf("%w: bid %s is %s", ErrBidNotPending, bidID, accepted.Status)
	}

	accepted.Status = BidAccepted
	accepted.UpdatedAt = now
	for _, bid := range l.Bids {
		if bid.ID == accepted.ID || bid.Status != BidPending {
			continue
		}
		bid.decline(now)
		l.notify(NotifyBidDeclined, bid.CarrierID, bid, now)
	}
	l.Shipment.AssignedCarrierID = accepted.CarrierID
	l.moveTo(OpAcceptBid, to, actor, now)
	l.notify(NotifyBidAccepted, accepted.CarrierID, accepted, now)
	l.notify(NotifyShipmentAssigned, l.Shipment.ShipperID, accepted, now)
	return accepted, nil
}

// StartTransit marks pickup by the assigned carrier.
func (l *Listing) StartTransit(actor Actor, now time.Time) error {
	if err := Authorize(OpStartTransit, actor, l.Shipment); err != nil {
		return err
	}
	to, err := Next(OpStartTransit, l.Shipment.Status)
	if err != nil {
		return err
	}
	l.moveTo(OpStartTransit, to, actor, now)
	return nil
}

// MarkDelivered closes the shipment with a proof-of-delivery reference.
func (l *Listing) MarkDelivered(actor Actor, podReference string, now time.Time) error {
	if err := Authorize(OpMarkDelivered, actor, l.Shipment); err != nil {
		return err
	}
	to, err := Next(OpMarkDelivered, l.Shipment.Status)
	if err != nil {
		return err
	}
	if podReference == "" {
		return ErrMissingPOD
	}
	l.Shipment.PODReference = podReference
	l.moveTo(OpMarkDelivered, to, actor, now)
	return nil
}

// Cancel terminates the shipment. Every bid still in play, including an accepted one, is declined.
func (l *Listing) Cancel(actor Actor, now time.Time) error {
	if err := Authorize(OpCancel, actor, l.Shipment); err != nil {
		return err
	}
	to, err := Next(OpCancel, l.Shipment.Status)
	if err != nil {
		return err
	}
	for _, bid := range l.Bids {
		if bid.decline(now) {
			l.notify(NotifyBidDeclined, bid.CarrierID, bid, now)
		}
	}
	l.Shipment.AssignedCarrierID = ""
	l.moveTo(OpCancel, to, actor, now)
	return nil
}

// FindBid returns the bid with the given id, or nil.
func (l *Listing) FindBid(id string) *Bid {
	for _, bid := range l.Bids {
		if bid.ID == id {
			return bid
		}
	}
	return nil
}

// CheckInvariants verifies the cross-entity rules of the listing.
func (l *Listing) CheckInvariants() error {
	if err := l.Shipment.CheckInvariants(); err != nil {
		return err
	}
	accepted := 0
	for _, bid := range l.Bids {
		if bid.Status == BidAccepted {
			accepted++
			if bid.CarrierID != l.Shipment.AssignedCarrierID {
				return fmt.Errorf("%w: accepted bid %s does not match assigned carrier", ErrIllegalTransition, bid.ID)
			}
		}
	}
	if accepted > 1 {
		return fmt.Errorf("%w: %d accepted bids", ErrIllegalTransition, accepted)
	}
	return nil
}

// Transitions returns the status changes recorded since the listing was loaded.
func (l *Listing) Transitions() []Transition {
	return append([]Transition(nil), l.transitions...)
}

// Notifications returns the notifications raised since the listing was loaded.
func (l *Listing) Notifications() []Notification {
	return append([]Notification(nil), l.notifications...)
}

// ClearEvents drops recorded transitions and notifications.
func (l *Listing) ClearEvents() {
	l.transitions = nil
	l.notifications = nil
}

// Clone returns a deep copy without pending events.
func (l *Listing) Clone() *Listing {
	bids := make([]*Bid, 0, len(l.Bids))
	for _, bid := range l.Bids {
		bids = append(bids, bid.Clone())
	}
	return NewListing(l.Shipment.Clone(), bids)
}

func (l *Listing) moveTo(op Operation, to Status, actor Actor, now time.Time) {
	from := l.Shipment.Status
	l.Shipment.Status = to
	l.Shipment.UpdatedAt = now
	l.transitions = append(l.transitions, Transition{
		ShipmentID: l.Shipment.ID,
		From:       from,
		To:         to,
		Operation:  op,
		ActorID:    actor.ID,
		Timestamp:  now,
	})
}

func (l *Listing) notify(kind NotificationKind, recipient string, bid *Bid, now time.Time) {
	l.notifications = append(l.notifications, Notification{
		Kind:        kind,
		RecipientID: recipient,
		ShipmentID:  l.Shipment.ID,
		BidID:       bid.ID,
		CarrierID:   bid.CarrierID,
		Price:       bid.Price,
		Timestamp:   now,
	})
}
