package mq

import "context"

// NotificationsChannel is the Redis channel and default Kafka topic for order notifications.
const NotificationsChannel = "order-notifications"

// Broker moves serialized events between the queue and the dispatcher.
type Broker interface {
	Publish(ctx context.Context, key string, data []byte) error
	// Subscribe calls handle for each message until ctx is done.
	Subscribe(ctx context.Context, handle func(ctx context.Context, data []byte)) error
	Close() error
}
