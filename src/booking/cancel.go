package booking

import (
	"context"
	"errors"
	"fmt"
	"hrs/src/config"
	"hrs/src/models"
	"hrs/src/types"
	"log"
	"time"

	"gorm.io/gorm"
)

type CancelInput struct {
	BookingID uint
	Reason    *string
}

// Cancel releases a booking's nights back to inventory and marks it
// cancelled. Cancelling a booking that is already cancelled is a no-op
// success, so retried requests always converge on the same outcome.
func (e *Engine) Cancel(ctx context.Context, in CancelInput) (*models.Booking, error) {
	booking, err := e.bookings.GetByID(ctx, in.BookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}

	if booking.Status == types.BOOKING_CANCELLED {
		return booking, nil
	}
	if !booking.Cancellable() {
		return nil, fmt.Errorf("%w: booking %s is %s", ErrCannotCancel, booking.ReferenceCode, booking.Status)
	}

	// Release nights first, with a compensating re-claim per night. If the
	// status flip below loses a race the increments are taken back so the
	// winner's view of inventory stays consistent.
	undo := &undoStack{}
	for d := booking.CheckIn; d.Before(booking.CheckOut); d = d.AddDate(0, 0, 1) {
		night := d
		if err := e.inventory.IncrementOneRoom(ctx, booking.RoomTypeID, night); err != nil {
			undo.unwind()
			return nil, fmt.Errorf("releasing night %s: %w", night.Format(config.DATE_PARSE_FORMAT), err)
		}
		undo.push("re-claim night "+night.Format(config.DATE_PARSE_FORMAT), func() error {
			ok, err := e.inventory.DecrementOneRoom(context.Background(), booking.RoomTypeID, night)
			if err == nil && !ok {
				return errors.New("night already fully booked")
			}
			return err
		})
	}

	now := time.Now()
	booking.CancelledAt = &now
	booking.CancellationReason = in.Reason
	ok, err := e.bookings.MarkCancelled(ctx, booking)
	if err != nil {
		undo.unwind()
		return nil, fmt.Errorf("cancelling booking %s: %w", booking.ReferenceCode, err)
	}
	if !ok {
		// A concurrent cancel won the status flip. Take back our increments
		// and report the already-cancelled booking as success.
		undo.unwind()
		fresh, err := e.bookings.GetByID(ctx, in.BookingID)
		if err != nil {
			return booking, nil
		}
		return fresh, nil
	}
	undo.discard()
	booking.Status = types.BOOKING_CANCELLED

	if e.payments != nil && booking.PaymentIntentID != nil {
		if err := e.payments.CancelIntent(ctx, *booking.PaymentIntentID); err != nil {
			log.Printf("Error cancelling payment intent for %s: %s\n", booking.ReferenceCode, err.Error())
		}
	}

	if e.notifier != nil {
		go func(b models.Booking) {
			if err := e.notifier.BookingCancelled(&b); err != nil {
				log.Printf("Error notifying cancellation of %s: %s\n", b.ReferenceCode, err.Error())
			}
		}(*booking)
	}

	return booking, nil
}
