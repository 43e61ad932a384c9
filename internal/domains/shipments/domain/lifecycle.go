package domain

import "fmt"

// Status represents the lifecycle state of a shipment.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusOpen      Status = "open"
	StatusAssigned  Status = "assigned"
	StatusInTransit Status = "in-transit"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

// Operation names a lifecycle command.
type Operation string

const (
	OpCreate        Operation = "create"
	OpPublish       Operation = "publish"
	OpPlaceBid      Operation = "place_bid"
	OpAcceptBid     Operation = "accept_bid"
	OpStartTransit  Operation = "start_transit"
	OpMarkDelivered Operation = "mark_delivered"
	OpCancel        Operation = "cancel"
)

type edge struct {
	op   Operation
	from Status
}

// transitions is the only place status rules live.
var transitions = map[edge]Status{
	{OpPublish, StatusDraft}:           StatusOpen,
	{OpAcceptBid, StatusOpen}:          StatusAssigned,
	{OpCancel, StatusDraft}:            StatusCancelled,
	{OpCancel, StatusOpen}:             StatusCancelled,
	{OpCancel, StatusAssigned}:         StatusCancelled,
	{OpStartTransit, StatusAssigned}:   StatusInTransit,
	{OpMarkDelivered, StatusInTransit}: StatusDelivered,
}

// Next resolves the status reached by applying op from the given status.
func Next(op Operation, from Status) (Status, error) {
	to, ok := transitions[edge{op: op, from: from}]
	if !ok {
		return "", fmt.Errorf("%w: cannot %s a shipment in status %q", ErrIllegalTransition, op, from)
	}
	return to, nil
}

// CanTransition reports whether any operation moves a shipment from one status to another.
func CanTransition(from, to Status) bool {
	for e, target := range transitions {
		if e.from == from && target == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no operation leaves the status.
func (s Status) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// HasCarrier reports whether shipments in this status carry an assigned carrier.
func (s Status) HasCarrier() bool {
	switch s {
	case StatusAssigned, StatusInTransit, StatusDelivered:
		return true
	default:
		return false
	}
}

// Valid reports whether the status is known.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusOpen, StatusAssigned, StatusInTransit, StatusDelivered, StatusCancelled:
		return true
	default:
		return false
	}
}
