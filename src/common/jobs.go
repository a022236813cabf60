package common

import (
	"context"
	"hrs/src/store"
	"log"
	"time"
)

// SweepExpiredDrafts purges drafts whose hold window has lapsed. Expired
// drafts never held inventory, so this is pure housekeeping.
func SweepExpiredDrafts(drafts store.DraftRepo) {
	n, err := drafts.DeleteExpired(context.Background(), time.Now())
	if err != nil {
		log.Printf("Error sweeping expired drafts: %s\n", err.Error())
		return
	}
	if n > 0 {
		log.Printf("Swept %d expired drafts\n", n)
	}
}

// RolloverNoShows flags reserved bookings whose check-in date has passed
// without payment confirmation. Runs once a day after the front desk cutoff.
func RolloverNoShows(bookings store.BookingRepo) {
	cutoff := time.Now().AddDate(0, 0, -1)
	n, err := bookings.MarkNoShows(context.Background(), cutoff)
	if err != nil {
		log.Printf("Error rolling over no-shows: %s\n", err.Error())
		return
	}
	if n > 0 {
		log.Printf("Marked %d bookings as no-show\n", n)
	}
}
