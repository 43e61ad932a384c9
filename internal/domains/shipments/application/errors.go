package application

import (
	"errors"
	"fmt"

	"github.com/copallet/copallet-api/internal/domains/shipments/domain"
	"github.com/copallet/copallet-api/internal/domains/shipments/ports"
)

// Error kinds surfaced to callers. Each failure carries exactly one of them, wrapped
// around the specific domain error.
var (
	ErrInvalidTransition = errors.New("invalid transition")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ErrInvalidTransition),
		errors.Is(err, ErrUnauthorized),
		errors.Is(err, ErrInvalidArgument),
		errors.Is(err, ErrNotFound),
		errors.Is(err, ErrConflict):
		return err
	case errors.Is(err, domain.ErrIllegalTransition),
		errors.Is(err, domain.ErrBidNotPending):
		return fmt.Errorf("%w: %w", ErrInvalidTransition, err)
	case errors.Is(err, domain.ErrNotOwner),
		errors.Is(err, domain.ErrNotAssignedCarrier),
		errors.Is(err, domain.ErrNotShipper),
		errors.Is(err, domain.ErrNotCarrier),
		errors.Is(err, domain.ErrMissingActor):
		return fmt.Errorf("%w: %w", ErrUnauthorized, err)
	case errors.Is(err, domain.ErrMissingField),
		errors.Is(err, domain.ErrInvalidPallets),
		errors.Is(err, domain.ErrInvalidWindow),
		errors.Is(err, domain.ErrNonPositivePrice),
		errors.Is(err, domain.ErrPriceOutOfRange),
		errors.Is(err, domain.ErrSelfBid),
		errors.Is(err, domain.ErrDuplicateBid),
		errors.Is(err, domain.ErrMissingPOD),
		errors.Is(err, domain.ErrUnknownStatus):
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	case errors.Is(err, domain.ErrBidNotFound),
		errors.Is(err, ports.ErrNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, ports.ErrConflict):
		return fmt.Errorf("%w: %w", ErrConflict, err)
	}
	return err
}
