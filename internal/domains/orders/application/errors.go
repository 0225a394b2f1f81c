package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/go-pos-backoffice/internal/domains/orders/domain"
	"github.com/Apurer/go-pos-backoffice/internal/domains/orders/ports"
)

var (
	// ErrInvalidInput signals structurally invalid request data.
	ErrInvalidInput = errors.New("invalid order input")
	// ErrInvalidState signals the order's status forbids the operation.
	ErrInvalidState = errors.New("invalid order state")
	// ErrConflict signals a duplicate line item or a reused idempotency key.
	ErrConflict = errors.New("order conflict")
	// ErrInsufficientStock signals a sale asking for more than is on hand.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrForbidden signals the caller's role does not allow the operation.
	ErrForbidden = errors.New("forbidden")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrInvalidState) ||
		errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrInsufficientStock) ||
		errors.Is(err, ErrForbidden) {
		return err
	}
	switch {
	case errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrInvalidPrice),
		errors.Is(err, domain.ErrPriceRequired),
		errors.Is(err, domain.ErrPriceLocked),
		errors.Is(err, domain.ErrInvalidTotal),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrInvalidPayment),
		errors.Is(err, domain.ErrEmptySale),
		errors.Is(err, domain.ErrCounterpartyRequired),
		errors.Is(err, domain.ErrInvalidKind),
		errors.Is(err, domain.ErrInvalidActor):
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	case errors.Is(err, domain.ErrNotPending),
		errors.Is(err, domain.ErrTransitionDenied):
		return fmt.Errorf("%w: %w", ErrInvalidState, err)
	case errors.Is(err, domain.ErrDuplicateItem),
		errors.Is(err, ports.ErrIdempotencyConflict):
		return fmt.Errorf("%w: %w", ErrConflict, err)
	case errors.Is(err, domain.ErrForbidden):
		return fmt.Errorf("%w: %w", ErrForbidden, err)
	case errors.Is(err, domain.ErrItemMissing):
		return ports.ErrItemNotFound
	}
	return err
}

func insufficientStock(recordID int64, available, requested int) error {
	return fmt.Errorf("%w: inventory record %d has %d available, %d requested", ErrInsufficientStock, recordID, available, requested)
}
