// Package booking holds the reservation core: draft management, the
// confirmation state machine and cancellation. Confirmation is the only code
// path that consumes inventory and it either finishes whole or leaves the
// ledger exactly as it found it.
package booking

import (
	"context"
	"errors"
	"fmt"
	"hrs/src/config"
	"hrs/src/models"
	"hrs/src/pricing"
	"hrs/src/search"
	"hrs/src/store"
	"hrs/src/types"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Engine struct {
	inventory store.InventoryStore
	bookings  store.BookingRepo
	drafts    store.DraftRepo
	promos    store.PromoRepo
	catalog   store.CatalogRepo
	search    *search.Service
	payments  PaymentCollaborator
	notifier  Notifier
}

type EngineOption func(*Engine)

func WithPayments(payments PaymentCollaborator) EngineOption {
	return func(e *Engine) { e.payments = payments }
}

func WithNotifier(notifier Notifier) EngineOption {
	return func(e *Engine) { e.notifier = notifier }
}

func NewEngine(
	inventory store.InventoryStore,
	bookings store.BookingRepo,
	drafts store.DraftRepo,
	promos store.PromoRepo,
	catalog store.CatalogRepo,
	searchSvc *search.Service,
	opts ...EngineOption,
) *Engine {
	e := &Engine{
		inventory: inventory,
		bookings:  bookings,
		drafts:    drafts,
		promos:    promos,
		catalog:   catalog,
		search:    searchSvc,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type ConfirmInput struct {
	DraftKey      *string
	Stay          *types.CreateDraftRequestBody
	Guest         types.GuestInfo
	GuestRef      *uint
	PaymentIntent *string
}

func newReferenceCode() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))
	return "BK-" + raw[:10]
}

func validGuest(guest types.GuestInfo) bool {
	return strings.TrimSpace(guest.Name) != "" && strings.Count(guest.Email, "@") == 1
}

// Confirm turns a draft (or a direct stay request) into a booking. Nights
// are claimed in ascending date order; every claimed night pushes a
// compensating increment, and any later failure unwinds the stack before the
// error reaches the caller. No other caller ever observes a half-confirmed
// attempt.
func (e *Engine) Confirm(ctx context.Context, in ConfirmInput) (*models.Booking, error) {
	if !validGuest(in.Guest) {
		return nil, fmt.Errorf("%w: guest contact info is missing or malformed", ErrValidation)
	}

	now := time.Now()
	req, err := e.resolveStay(ctx, in, now)
	if err != nil {
		return nil, err
	}
	checkIn, checkOut, err := parseStayDates(req.CheckIn, req.CheckOut)
	if err != nil {
		return nil, err
	}

	roomType, err := e.catalog.GetRoomType(ctx, req.RoomTypeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: unknown room type %d", ErrValidation, req.RoomTypeID)
		}
		return nil, err
	}

	// Inventory may have moved since the draft was priced; re-check the
	// whole stay before touching the ledger.
	eval, err := e.search.EvaluateStay(ctx, req.RoomTypeID, req.RatePlanID, checkIn, checkOut)
	if err != nil {
		if errors.Is(err, search.ErrNotAvailable) {
			return nil, ErrInsufficientInventory
		}
		return nil, err
	}

	undo := &undoStack{}

	for d := checkIn; d.Before(checkOut); d = d.AddDate(0, 0, 1) {
		night := d
		ok, err := e.inventory.DecrementOneRoom(ctx, req.RoomTypeID, night)
		if err != nil {
			undo.unwind()
			return nil, fmt.Errorf("claiming night %s: %w", night.Format(config.DATE_PARSE_FORMAT), err)
		}
		if !ok {
			undo.unwind()
			return nil, ErrInsufficientInventory
		}
		undo.push("release night "+night.Format(config.DATE_PARSE_FORMAT), func() error {
			return e.inventory.IncrementOneRoom(context.Background(), req.RoomTypeID, night)
		})
	}

	// Reprice with the rates fetched at confirmation time, not the possibly
	// stale draft snapshot.
	breakdown, promo, err := e.reprice(ctx, req, roomType, eval.Rates, checkIn, checkOut, now)
	if err != nil {
		undo.unwind()
		return nil, err
	}

	booking := buildBooking(req, roomType, breakdown, in, now)

	if in.PaymentIntent == nil && e.payments != nil {
		intentID, err := e.payments.CreateIntent(ctx, breakdown.TotalCents, breakdown.CurrencyCode, booking.ReferenceCode)
		if err != nil {
			log.Printf("Payment collaborator failed for %s, keeping booking reserved: %s\n", booking.ReferenceCode, err.Error())
		} else {
			booking.PaymentIntentID = &intentID
			undo.push("cancel payment intent "+intentID, func() error {
				return e.payments.CancelIntent(context.Background(), intentID)
			})
		}
	}

	var promoCode *string
	if promo != nil {
		promoCode = &promo.Code
	}
	if err := e.bookings.CreateConfirmed(ctx, booking, promoCode, in.DraftKey); err != nil {
		undo.unwind()
		if errors.Is(err, pricing.ErrPromoUsageLimit) || errors.Is(err, store.ErrDraftNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("persisting booking: %w", err)
	}
	undo.discard()

	if e.notifier != nil {
		// Fire and forget: a failed notification never rolls back a booking.
		go func(b models.Booking) {
			if err := e.notifier.BookingConfirmed(&b); err != nil {
				log.Printf("Error notifying confirmation of %s: %s\n", b.ReferenceCode, err.Error())
			}
		}(*booking)
	}

	return booking, nil
}

// resolveStay normalizes the two confirm entry points into one stay request.
// Drafts must still be alive; a draft that a concurrent confirm already
// consumed surfaces as ErrDraftNotFound, never as a second decrement.
func (e *Engine) resolveStay(ctx context.Context, in ConfirmInput, now time.Time) (*types.CreateDraftRequestBody, error) {
	if in.DraftKey != nil {
		draft, err := e.drafts.GetByKey(ctx, *in.DraftKey)
		if err != nil {
			return nil, err
		}
		if draft.Expired(now) {
			return nil, ErrDraftExpired
		}
		return &types.CreateDraftRequestBody{
			RoomTypeID: draft.RoomTypeID,
			RatePlanID: draft.RatePlanID,
			CheckIn:    draft.CheckIn.Format(config.DATE_PARSE_FORMAT),
			CheckOut:   draft.CheckOut.Format(config.DATE_PARSE_FORMAT),
			Adults:     draft.Adults,
			Children:   draft.Children,
			AddOns:     []types.DraftAddOnSelection(draft.AddOns),
			PromoCode:  draft.PromoCode,
		}, nil
	}
	if in.Stay != nil {
		return in.Stay, nil
	}
	return nil, fmt.Errorf("%w: neither draft key nor stay supplied", ErrValidation)
}

func (e *Engine) reprice(ctx context.Context, req *types.CreateDraftRequestBody, roomType *models.RoomType, rates []models.RoomRate, checkIn time.Time, checkOut time.Time, now time.Time) (*pricing.Breakdown, *models.PromoCode, error) {
	selections, err := resolveAddOns(ctx, e.catalog, req)
	if err != nil {
		return nil, nil, err
	}

	var promo *models.PromoCode
	if req.PromoCode != nil && *req.PromoCode != "" {
		promo, err = e.promos.GetByCode(ctx, *req.PromoCode, roomType.HotelID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, nil, fmt.Errorf("%w: %s", ErrInvalidPromoCode, *req.PromoCode)
			}
			return nil, nil, err
		}
	}

	rules, err := e.catalog.GetTaxFeeRules(ctx, roomType.HotelID)
	if err != nil {
		return nil, nil, err
	}

	breakdown, err := pricing.Quote(pricing.QuoteInput{
		CheckIn:   checkIn,
		CheckOut:  checkOut,
		Rates:     rates,
		AddOns:    selections,
		Promo:     promo,
		Rules:     rules,
		PartySize: req.Adults + req.Children,
		Now:       now,
	})
	if err != nil {
		return nil, nil, err
	}
	return breakdown, promo, nil
}

func buildBooking(req *types.CreateDraftRequestBody, roomType *models.RoomType, breakdown *pricing.Breakdown, in ConfirmInput, now time.Time) *models.Booking {
	checkIn := breakdown.Nights[0].Date
	checkOut := breakdown.Nights[len(breakdown.Nights)-1].Date.AddDate(0, 0, 1)

	booking := &models.Booking{
		ReferenceCode:    newReferenceCode(),
		HotelID:          roomType.HotelID,
		RoomTypeID:       roomType.ID,
		RatePlanID:       req.RatePlanID,
		GuestRef:         in.GuestRef,
		GuestName:        in.Guest.Name,
		GuestEmail:       in.Guest.Email,
		GuestPhone:       in.Guest.Phone,
		CheckIn:          checkIn,
		CheckOut:         checkOut,
		Adults:           req.Adults,
		Children:         req.Children,
		Status:           types.BOOKING_RESERVED,
		BaseCents:        breakdown.BaseCents,
		AddOnsCents:      breakdown.AddOnsCents,
		DiscountCents:    breakdown.DiscountCents,
		TaxCents:         breakdown.TaxCents,
		FeeCents:         breakdown.FeeCents,
		TotalAmountCents: breakdown.TotalCents,
		BalanceDueCents:  breakdown.BalanceDueCents,
		CurrencyCode:     breakdown.CurrencyCode,
		PromoCode:        req.PromoCode,
	}
	if in.PaymentIntent != nil {
		booking.PaymentIntentID = in.PaymentIntent
		booking.Status = types.BOOKING_CONFIRMED
	}

	for _, night := range breakdown.Nights {
		booking.Items = append(booking.Items, models.BookingItem{
			Date:       night.Date,
			PriceCents: night.PriceCents,
			TaxCents:   night.TaxCents,
			FeeCents:   night.FeeCents,
		})
	}
	for _, addOn := range breakdown.AddOns {
		booking.AddOns = append(booking.AddOns, models.BookingAddOn{
			AddOnID:         addOn.AddOnID,
			Name:            addOn.Name,
			Quantity:        addOn.Quantity,
			UnitPriceCents:  addOn.UnitPriceCents,
			TotalPriceCents: addOn.TotalPriceCents,
		})
	}
	return booking
}
