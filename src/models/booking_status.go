package models

import (
	"fmt"
	"hrs/src/types"
)

// transitions is the booking lifecycle graph. Terminal states have no
// outgoing edges: checked_out, cancelled and no_show stay where they are.
var transitions = map[types.BookingStatus][]types.BookingStatus{
	types.BOOKING_DRAFT:      {types.BOOKING_RESERVED},
	types.BOOKING_RESERVED:   {types.BOOKING_CONFIRMED, types.BOOKING_CANCELLED, types.BOOKING_NO_SHOW},
	types.BOOKING_CONFIRMED:  {types.BOOKING_CHECKED_IN, types.BOOKING_CANCELLED},
	types.BOOKING_CHECKED_IN: {types.BOOKING_CHECKED_OUT},
}

func CanTransition(from types.BookingStatus, to types.BookingStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition mutates the booking status after checking the lifecycle graph.
func (b *Booking) Transition(to types.BookingStatus) error {
	if !CanTransition(b.Status, to) {
		return fmt.Errorf("cannot transition booking from %s to %s", b.Status, to)
	}
	b.Status = to
	return nil
}

// Cancellable reports whether the booking may still be cancelled. Once the
// guest has checked in the booking only moves forward.
func (b *Booking) Cancellable() bool {
	return b.Status == types.BOOKING_RESERVED || b.Status == types.BOOKING_CONFIRMED
}
