package stripe

import (
	"context"
	"errors"

	"plantnet/idempotency"

	stripego "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// Intents creates Stripe payment intents.
type Intents struct {
	sc *client.API
}

func NewIntents(secretKey string) *Intents {
	return &Intents{sc: client.New(secretKey, nil)}
}

func (s *Intents) CreateIntent(ctx context.Context, amount int64, currency string) (string, error) {
	params := &stripego.PaymentIntentParams{
		Amount:   stripego.Int64(amount),
		Currency: stripego.String(currency),
		AutomaticPaymentMethods: &stripego.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripego.Bool(true),
		},
	}
	params.Context = ctx
	if key := idempotency.KeyFromContext(ctx); key != "" {
		params.SetIdempotencyKey("intent-" + key)
	}

	pi, err := s.sc.PaymentIntents.New(params)
	if err != nil {
		return "", err
	}
	if pi.ClientSecret == "" {
		return "", errors.New("stripe returned no client secret")
	}
	return pi.ClientSecret, nil
}
