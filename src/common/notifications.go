package common

import (
	"hrs/src/lib"
	"hrs/src/lib/mailer"
	"log"

	"github.com/tidwall/gjson"
)

const (
	TopicBookingConfirmations = "booking-confirmations"
	TopicBookingCancellations = "booking-cancellations"
)

// BookingNotificationsConsumer listens for booking transition events and
// mails the guest. Mail failures are logged only; the booking is already
// committed by the time a message lands here.
func BookingNotificationsConsumer() {
	lib.KafkaConsume("hrs-notifications", []string{TopicBookingConfirmations, TopicBookingCancellations}, func(topic string, value []byte) {
		body := string(value)
		if !gjson.Valid(body) {
			log.Printf("[%s]: Received invalid json body. Aborting", topic)
			return
		}
		email := gjson.Get(body, "guest_email").String()
		name := gjson.Get(body, "guest_name").String()
		ref := gjson.Get(body, "reference_code").String()
		if email == "" || ref == "" {
			log.Printf("[%s]: Message missing guest_email or reference_code. Aborting", topic)
			return
		}
		switch topic {
		case TopicBookingConfirmations:
			checkIn := gjson.Get(body, "check_in").String()
			checkOut := gjson.Get(body, "check_out").String()
			total := gjson.Get(body, "total_cents").Int()
			currency := gjson.Get(body, "currency").String()
			if err := mailer.SendBookingConfirmation(email, name, ref, checkIn, checkOut, total, currency); err != nil {
				log.Printf("Error sending confirmation mail for %s: %s\n", ref, err.Error())
			}
		case TopicBookingCancellations:
			if err := mailer.SendBookingCancellation(email, name, ref); err != nil {
				log.Printf("Error sending cancellation mail for %s: %s\n", ref, err.Error())
			}
		}
	})
}
