package alerts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

// MessageWriter is implemented by *kafka.Writer.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes one message per alert, keyed by date so that
// repeated runs for a day land on the same partition.
type KafkaPublisher struct {
	topic  string
	writer MessageWriter
}

// NewKafkaPublisher creates a publisher backed by a kafka.Writer.
func NewKafkaPublisher(brokers []string, topic string) (*KafkaPublisher, error) {
	if strings.TrimSpace(topic) == "" {
		return nil, errors.New("alert topic must not be empty")
	}
	if len(brokers) == 0 {
		return nil, errors.New("at least one broker is required")
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 50 * time.Millisecond,
	}
	return NewKafkaPublisherWithWriter(topic, w), nil
}

// NewKafkaPublisherWithWriter creates a publisher around an existing writer.
func NewKafkaPublisherWithWriter(topic string, w MessageWriter) *KafkaPublisher {
	return &KafkaPublisher{topic: topic, writer: w}
}

// Name implements Publisher
func (p *KafkaPublisher) Name() string {
	return "kafka"
}

// Publish implements Publisher
func (p *KafkaPublisher) Publish(ctx context.Context, alerts []Alert) error {
	if len(alerts) == 0 {
		return nil
	}

	msgs := make([]kafka.Message, 0, len(alerts))
	for _, a := range alerts {
		value, err := json.Marshal(a)
		if err != nil {
			return fmt.Errorf("encode alert: %w", err)
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(a.Date),
			Value: value,
			Time:  a.RaisedAt,
			Headers: []kafka.Header{
				{Key: "severity", Value: []byte(a.Severity)},
			},
		})
	}

	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write to topic %s: %w", p.topic, err)
	}
	return nil
}

// Close implements Publisher
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
