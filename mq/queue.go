package mq

import (
	"context"
	"encoding/json"

	"plantnet/models"
	"plantnet/utils"

	"github.com/rs/zerolog/log"
)

// Queue buffers notifications between request handlers and the broker.
type Queue struct {
	events chan models.Notification
	broker Broker
}

func NewQueue(broker Broker, size int) *Queue {
	if size <= 0 {
		size = 256
	}
	return &Queue{events: make(chan models.Notification, size), broker: broker}
}

// Emit enqueues n without blocking. When the buffer is full the event is dropped and logged.
func (q *Queue) Emit(_ context.Context, n models.Notification) {
	if n.ID == "" {
		n.ID = utils.GetUUID()
	}
	select {
	case q.events <- n:
	default:
		log.Warn().Str("kind", n.Kind).Str("order", n.OrderID).Msg("notification queue full, dropping event")
	}
}

// Run publishes queued events until ctx is done.
func (q *Queue) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case n := <-q.events:
			q.publish(ctx, n)
		}
	}
}

func (q *Queue) publish(ctx context.Context, n models.Notification) {
	data, err := json.Marshal(n)
	if err != nil {
		log.Error().Err(err).Str("id", n.ID).Msg("marshal notification")
		return
	}
	if err := q.broker.Publish(ctx, n.Kind+"."+n.OrderID, data); err != nil {
		log.Error().Err(err).Str("id", n.ID).Msg("publish notification")
		return
	}
	log.Debug().Str("id", n.ID).Str("kind", n.Kind).Msg("notification published")
}
