package pricing

import "errors"

var (
	// ErrRateMissing is a data-integrity fault: a night inside the stay has
	// no price row. Callers must treat it as internal, not user-correctable.
	ErrRateMissing = errors.New("no rate for night")

	ErrAddOnQuantity = errors.New("add-on quantity out of range")
	ErrAddOnInactive = errors.New("add-on is not available")

	ErrPromoInactive   = errors.New("promo code is not active")
	ErrPromoNotStarted = errors.New("promo code is not active yet")
	ErrPromoExpired    = errors.New("promo code has expired")
	ErrPromoMinNights  = errors.New("stay is below the promo code minimum nights")
	ErrPromoMinAmount  = errors.New("stay total is below the promo code minimum amount")
	ErrPromoUsageLimit = errors.New("promo code usage limit reached")
)

// IsPromoError reports whether err is one of the promo eligibility
// rejections, so handlers can map the whole family at once.
func IsPromoError(err error) bool {
	for _, target := range []error{
		ErrPromoInactive,
		ErrPromoNotStarted,
		ErrPromoExpired,
		ErrPromoMinNights,
		ErrPromoMinAmount,
		ErrPromoUsageLimit,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
