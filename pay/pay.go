package pay

import (
	"context"
	"fmt"
	"math"

	"plantnet/apperr"

	"github.com/rs/zerolog/log"
)

// PriceSource resolves the authoritative unit price of a catalog item.
type PriceSource interface {
	Price(ctx context.Context, id string) (float64, error)
}

// IntentCreator requests a payment intent from the payment provider.
type IntentCreator interface {
	CreateIntent(ctx context.Context, amount int64, currency string) (clientSecret string, err error)
}

type Reconciler struct {
	prices   PriceSource
	intents  IntentCreator
	currency string
}

func NewReconciler(prices PriceSource, intents IntentCreator, currency string) *Reconciler {
	return &Reconciler{prices: prices, intents: intents, currency: currency}
}

// maxMinorUnits is 2^63 as a float64; anything at or above it does not fit an int64.
const maxMinorUnits = float64(math.MaxInt64)

// ToMinorUnits converts an amount to the smallest currency unit. Callers
// handling untrusted quantities check the range first, as Quote does.
func ToMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// Quote is the amount to charge, in minor units, for quantity of item id at
// its current catalog price.
func (p *Reconciler) Quote(ctx context.Context, id string, quantity int) (int64, error) {
	if quantity <= 0 {
		return 0, fmt.Errorf("%w: quantity must be positive", apperr.ErrInvalid)
	}
	price, err := p.prices.Price(ctx, id)
	if err != nil {
		return 0, err
	}
	total := price * float64(quantity) * 100
	if math.IsNaN(total) || math.IsInf(total, 0) || total >= maxMinorUnits {
		return 0, fmt.Errorf("%w: charge amount is too large", apperr.ErrInvalid)
	}
	return ToMinorUnits(price * float64(quantity)), nil
}

type Intent struct {
	ClientSecret string `json:"clientSecret"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
}

// CreateIntent quotes the charge and requests an intent for exactly that amount.
func (p *Reconciler) CreateIntent(ctx context.Context, id string, quantity int) (*Intent, error) {
	amount, err := p.Quote(ctx, id, quantity)
	if err != nil {
		return nil, err
	}
	if amount <= 0 {
		return nil, fmt.Errorf("%w: charge amount must be positive", apperr.ErrInvalid)
	}

	secret, err := p.intents.CreateIntent(ctx, amount, p.currency)
	if err != nil {
		log.Error().Err(err).Str("plant", id).Int64("amount", amount).Msg("create payment intent")
		return nil, fmt.Errorf("create payment intent: %w", err)
	}
	return &Intent{ClientSecret: secret, Amount: amount, Currency: p.currency}, nil
}
