package domain

import "errors"

// Transition errors.
var (
	ErrIllegalTransition = errors.New("illegal status transition")
	ErrBidNotPending     = errors.New("bid is not pending")
)

// Authorization errors.
var (
	ErrNotOwner           = errors.New("actor does not own the shipment")
	ErrNotAssignedCarrier = errors.New("actor is not the assigned carrier")
	ErrNotShipper         = errors.New("actor is not a shipper")
	ErrNotCarrier         = errors.New("actor is not a carrier")
)

// Argument errors.
var (
	ErrMissingActor     = errors.New("actor id is required")
	ErrMissingField     = errors.New("required shipment field is missing")
	ErrInvalidPallets   = errors.New("pallets must be greater than zero")
	ErrInvalidWindow    = errors.New("time window must end after it starts")
	ErrNonPositivePrice = errors.New("price must be greater than zero")
	ErrPriceOutOfRange  = errors.New("price must have at most two decimal places and stay below one trillion")
	ErrSelfBid          = errors.New("a shipper may not bid on its own shipment")
	ErrDuplicateBid     = errors.New("carrier already has a pending bid on this shipment")
	ErrMissingPOD       = errors.New("proof-of-delivery reference is required")
	ErrUnknownStatus    = errors.New("unknown shipment status")
)

// ErrBidNotFound is returned when a bid does not exist on the shipment.
var ErrBidNotFound = errors.New("bid not found on shipment")
