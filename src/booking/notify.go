package booking

import (
	"context"
	"hrs/src/models"
)

// Notifier is the post-transition collaborator. Failures here are logged by
// the caller and never roll back a reservation.
type Notifier interface {
	BookingConfirmed(booking *models.Booking) error
	BookingCancelled(booking *models.Booking) error
}

// KafkaNotifier publishes booking transitions for downstream consumers
// (guest mail, ops dashboards).
type KafkaNotifier struct{}

func (KafkaNotifier) BookingConfirmed(booking *models.Booking) error {
	return models.BookingConfirmedProducer(booking.ID, bookingPayload(booking))
}

func (KafkaNotifier) BookingCancelled(booking *models.Booking) error {
	return models.BookingCancelledProducer(booking.ID, bookingPayload(booking))
}

func bookingPayload(booking *models.Booking) map[string]any {
	return map[string]any{
		"id":             booking.ID,
		"reference_code": booking.ReferenceCode,
		"status":         string(booking.Status),
		"guest_name":     booking.GuestName,
		"guest_email":    booking.GuestEmail,
		"check_in":       booking.CheckIn.Format("2006-01-02"),
		"check_out":      booking.CheckOut.Format("2006-01-02"),
		"total_cents":    booking.TotalAmountCents,
		"currency":       booking.CurrencyCode,
	}
}

// PaymentCollaborator records a payment reference for a booking total. The
// engine never processes payment itself.
type PaymentCollaborator interface {
	CreateIntent(ctx context.Context, amountCents int64, currency string, referenceCode string) (string, error)
	CancelIntent(ctx context.Context, id string) error
}
