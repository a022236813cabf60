package booking

import (
	"errors"
	"hrs/src/store"
)

var (
	// ErrValidation covers caller mistakes detected before any mutation:
	// malformed dates, missing stay, bad guest contact info.
	ErrValidation = errors.New("invalid booking request")

	// ErrInsufficientInventory surfaces after full compensation; the caller
	// may re-check availability and retry.
	ErrInsufficientInventory = errors.New("insufficient inventory for the requested stay")

	ErrInvalidPromoCode = errors.New("invalid promo code")

	ErrDraftNotFound = store.ErrDraftNotFound
	ErrDraftExpired  = errors.New("draft has expired")

	ErrBookingNotFound = errors.New("booking not found")
	ErrCannotCancel    = errors.New("booking can no longer be cancelled")
)
