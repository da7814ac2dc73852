package mq

import (
	"context"
	"encoding/json"

	"plantnet/models"

	"github.com/rs/zerolog/log"
)

type Sender interface {
	Send(ctx context.Context, to, subject, message string) error
}

// Dispatcher delivers notifications read from the broker. Failures are logged and dropped.
type Dispatcher struct {
	broker Broker
	sender Sender
}

func NewDispatcher(broker Broker, sender Sender) *Dispatcher {
	return &Dispatcher{broker: broker, sender: sender}
}

func (d *Dispatcher) Run(ctx context.Context) error {
	return d.broker.Subscribe(ctx, d.handle)
}

func (d *Dispatcher) handle(ctx context.Context, data []byte) {
	var n models.Notification
	if err := json.Unmarshal(data, &n); err != nil {
		log.Error().Err(err).Msg("decode notification")
		return
	}
	if err := d.sender.Send(ctx, n.To, n.Subject, n.Message); err != nil {
		log.Error().Err(err).Str("id", n.ID).Str("to", n.To).Msg("deliver notification")
		return
	}
	log.Info().Str("id", n.ID).Str("kind", n.Kind).Msg("notification delivered")
}
