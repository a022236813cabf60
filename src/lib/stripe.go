package lib

import (
	"context"
	"os"
	"strings"

	"github.com/stripe/stripe-go/v82"
)

var stripeClient *stripe.Client

func GetStripeClient() *stripe.Client {
	if stripeClient != nil {
		return stripeClient
	}
	apiKey := os.Getenv("STRIPE_SECRET_KEY")
	sc := stripe.NewClient(apiKey)
	stripeClient = sc

	return sc
}

func NewStripeClient(c *stripe.Client) {
	stripeClient = c
}

// StripePayments records a payment reference for a booking total via a
// Stripe PaymentIntent. The reference code travels in metadata so webhooks
// can be matched back to the booking.
type StripePayments struct{}

func (StripePayments) CreateIntent(ctx context.Context, amountCents int64, currency string, referenceCode string) (string, error) {
	sc := GetStripeClient()
	params := stripe.PaymentIntentCreateParams{
		Amount:   stripe.Int64(amountCents),
		Currency: stripe.String(strings.ToLower(currency)),
		Metadata: map[string]string{
			"reference_code": referenceCode,
		},
	}
	intent, err := sc.V1PaymentIntents.Create(ctx, &params)
	if err != nil {
		return "", err
	}
	return intent.ID, nil
}

func (StripePayments) CancelIntent(ctx context.Context, id string) error {
	sc := GetStripeClient()
	_, err := sc.V1PaymentIntents.Cancel(ctx, id, &stripe.PaymentIntentCancelParams{})
	return err
}
