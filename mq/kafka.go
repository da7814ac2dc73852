package mq

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
)

type KafkaBroker struct {
	writer *kafka.Writer
	reader *kafka.Reader
	topic  string
}

func NewKafkaBroker(brokers []string, topic, groupID string) *KafkaBroker {
	if topic == "" {
		topic = NotificationsChannel
	}
	return &KafkaBroker{
		topic: topic,
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			AllowAutoTopicCreation: true,
		},
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:  brokers,
			GroupID:  groupID,
			Topic:    topic,
			MinBytes: 10e3, // 10KB
			MaxBytes: 10e6, // 10MB
		}),
	}
}

func (b *KafkaBroker) Publish(ctx context.Context, key string, data []byte) error {
	if err := b.writer.WriteMessages(ctx, kafka.Message{Key: []byte(key), Value: data}); err != nil {
		return fmt.Errorf("publish to %s: %w", b.topic, err)
	}
	return nil
}

func (b *KafkaBroker) Subscribe(ctx context.Context, handle func(context.Context, []byte)) error {
	log.Info().Str("topic", b.topic).Msg("listening for notifications")
	for {
		msg, err := b.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("read from %s: %w", b.topic, err)
		}
		handle(ctx, msg.Value)
	}
}

func (b *KafkaBroker) Close() error {
	return errors.Join(b.writer.Close(), b.reader.Close())
}
