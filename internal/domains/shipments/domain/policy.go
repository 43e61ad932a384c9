package domain

import "strings"

// Role is the marketplace capability an actor acts under.
type Role string

const (
	RoleShipper Role = "shipper"
	RoleCarrier Role = "carrier"
	RoleAdmin   Role = "admin"
)

// Actor identifies who is invoking a lifecycle operation. Authentication happens upstream.
type Actor struct {
	ID   string
	Role Role
}

// Valid reports whether the role is known.
func (r Role) Valid() bool {
	return r == RoleShipper || r == RoleCarrier || r == RoleAdmin
}

// Authorize is the single capability check consulted by every lifecycle operation.
// Operations without an ownership rule (place_bid) only require a carrier.
func Authorize(op Operation, actor Actor, s *Shipment) error {
	if strings.TrimSpace(actor.ID) == "" {
		return ErrMissingActor
	}
	switch op {
	case OpCreate:
		if actor.Role != RoleShipper {
			return ErrNotShipper
		}
		return nil
	case OpPlaceBid:
		if actor.Role != RoleCarrier {
			return ErrNotCarrier
		}
		return nil
	case OpPublish, OpAcceptBid:
		return requireOwner(actor, s, false)
	case OpCancel:
		return requireOwner(actor, s, true)
	case OpStartTransit:
		return requireAssignedCarrier(actor, s, true)
	case OpMarkDelivered:
		return requireAssignedCarrier(actor, s, false)
	default:
		return ErrIllegalTransition
	}
}

func requireOwner(actor Actor, s *Shipment, adminOverride bool) error {
	if adminOverride && actor.Role == RoleAdmin {
		return nil
	}
	if s == nil || actor.ID != s.ShipperID {
		return ErrNotOwner
	}
	return nil
}

// A shipment without a carrier yet has nobody to match, so the status check decides
// the outcome for the carrier rules once the actor is a carrier at all.
func requireAssignedCarrier(actor Actor, s *Shipment, adminOverride bool) error {
	if adminOverride && actor.Role == RoleAdmin {
		return nil
	}
	if s == nil {
		return ErrNotAssignedCarrier
	}
	if s.AssignedCarrierID == "" {
		if actor.Role == RoleCarrier {
			return nil
		}
		return ErrNotAssignedCarrier
	}
	if actor.ID != s.AssignedCarrierID {
		return ErrNotAssignedCarrier
	}
	return nil
}
