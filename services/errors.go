package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	ErrNotFound             = errors.New("not found")
	ErrValidation           = errors.New("validation failed")
	ErrEmptyOrder           = errors.New("order has no items")
	ErrInvalidDeliveryType  = errors.New("invalid delivery type")
	ErrInvalidTransition    = errors.New("invalid status transition")
	ErrForbiddenTransition  = errors.New("role not allowed to perform this transition")
	ErrTransitionConflict   = errors.New("order status changed concurrently")
	ErrCapacityExceeded     = errors.New("reservation capacity exceeded")
	ErrTableNumberTaken     = errors.New("table number already used by an active table")
	ErrTableInactive        = errors.New("table is not active")
	ErrSessionInactive      = errors.New("session is not active")
	ErrIngredientNotFound   = errors.New("recipe ingredient does not exist")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrReservationCancelled = errors.New("reservation already cancelled")
	ErrCheckoutInProgress   = errors.New("checkout already in progress for this cart")
)

// validationError tags an ozzo (or any) error as a validation failure.
func validationError(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrValidation, err)
}

// notFound maps gorm's record-not-found onto ErrNotFound.
func notFound(what string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %w", what, ErrNotFound)
	}
	return err
}
