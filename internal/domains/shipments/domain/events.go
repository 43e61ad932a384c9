package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event is the base interface for all domain events.
type Event interface {
	EventName() string
	OccurredAt() time.Time
}

// NotificationKind identifies what happened to the recipient.
type NotificationKind string

const (
	NotifyBidAccepted      NotificationKind = "bid.accepted"
	NotifyBidDeclined      NotificationKind = "bid.declined"
	NotifyShipmentAssigned NotificationKind = "shipment.assigned"
)

// Notification is addressed to one affected party. Delivery is the notifier's concern.
type Notification struct {
	Kind        NotificationKind `json:"kind"`
	RecipientID string           `json:"recipientId"`
	ShipmentID  string           `json:"shipmentId"`
	BidID       string           `json:"bidId,omitempty"`
	CarrierID   string           `json:"carrierId,omitempty"`
	Price       decimal.Decimal  `json:"price"`
	Timestamp   time.Time        `json:"occurredAt"`
}

// EventName returns the event type identifier.
func (n Notification) EventName() string {
	return "shipments." + string(n.Kind)
}

// OccurredAt returns when the event occurred.
func (n Notification) OccurredAt() time.Time {
	return n.Timestamp
}

// Transition is the audit record of one status change.
type Transition struct {
	ShipmentID string
	From       Status
	To         Status
	Operation  Operation
	ActorID    string
	Timestamp  time.Time
}

// EventName returns the event type identifier.
func (t Transition) EventName() string {
	return "shipments.shipment.transitioned"
}

// OccurredAt returns when the event occurred.
func (t Transition) OccurredAt() time.Time {
	return t.Timestamp
}

var (
	_ Event = Notification{}
	_ Event = Transition{}
)
