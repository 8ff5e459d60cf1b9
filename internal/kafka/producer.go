package kafka

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"boxoffice/internal/models"
)

type Producer struct {
	Writer *kafka.Writer
}

func NewProducer(brokers []string, topic string) *Producer {
	if topic == "" {
		topic = DefaultTicketsIssuedTopic
	}
	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers: brokers,
		Topic:   topic,
	})
	return &Producer{Writer: writer}
}

// PublishTicketsIssued streams one message per accepted purchase batch, keyed
// by event ID so batches for the same event stay ordered.
func (p *Producer) PublishTicketsIssued(ctx context.Context, batch models.TicketBatch) error {
	msgBytes, err := json.Marshal(batch)
	if err != nil {
		return err
	}

	return p.Writer.WriteMessages(ctx,
		kafka.Message{
			Key:   []byte(batch.EventID),
			Value: msgBytes,
		},
	)
}

func (p *Producer) Close() error {
	return p.Writer.Close()
}
