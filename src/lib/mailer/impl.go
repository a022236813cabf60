package mailer

import (
	"fmt"
	"hrs/src/lib"
	"os"
)

func sender() (string, string) {
	from := os.Getenv("MAIL_FROM")
	if from == "" {
		from = "reservations@example.com"
	}
	name := os.Getenv("MAIL_FROM_NAME")
	if name == "" {
		name = "Reservations"
	}
	return from, name
}

// SendBookingConfirmation mails the guest their reference code after a
// booking lands. Called from the kafka consumer, not the request path.
func SendBookingConfirmation(to, guestName, referenceCode, checkIn, checkOut string, totalCents int64, currency string) error {
	from, fromName := sender()
	body := fmt.Sprintf(
		"Hi %s,\n\nYour reservation %s is confirmed.\nCheck-in: %s\nCheck-out: %s\nTotal: %.2f %s\n\nWe look forward to your stay.",
		guestName, referenceCode, checkIn, checkOut, float64(totalCents)/100, currency,
	)
	return lib.SendMail(&lib.SendMailInput{
		From:     from,
		FromName: fromName,
		To:       []string{to},
		Subject:  fmt.Sprintf("Reservation confirmed: %s", referenceCode),
		Body:     body,
	})
}

func SendBookingCancellation(to, guestName, referenceCode string) error {
	from, fromName := sender()
	body := fmt.Sprintf(
		"Hi %s,\n\nYour reservation %s has been cancelled. If this was unexpected, reply to this email.",
		guestName, referenceCode,
	)
	return lib.SendMail(&lib.SendMailInput{
		From:     from,
		FromName: fromName,
		To:       []string{to},
		Subject:  fmt.Sprintf("Reservation cancelled: %s", referenceCode),
		Body:     body,
	})
}
