package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/copallet/copallet-api/internal/domains/shipments/domain"
	"github.com/copallet/copallet-api/internal/domains/shipments/ports"
)

var _ ports.Notifier = (*KafkaNotifier)(nil)

// Writer is the subset of kafka.Writer the notifier needs.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaNotifier publishes notifications to a topic keyed by shipment, so every message about one
// shipment lands on the same partition in order.
type KafkaNotifier struct {
	writer Writer
}

// NewKafkaNotifier creates a notifier writing to the given brokers and topic.
func NewKafkaNotifier(brokers []string, topic string) (*KafkaNotifier, error) {
	if len(brokers) == 0 || strings.TrimSpace(topic) == "" {
		return nil, errors.New("kafka brokers and topic are required")
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &KafkaNotifier{writer: w}, nil
}

// NewKafkaNotifierWithWriter allows injecting a test writer.
func NewKafkaNotifierWithWriter(w Writer) *KafkaNotifier {
	return &KafkaNotifier{writer: w}
}

// Envelope is the wire form of a notification message.
type Envelope struct {
	ID    string              `json:"id"`
	Event string              `json:"event"`
	Data  domain.Notification `json:"data"`
}

// Notify writes one message per notification in a single batch.
func (n *KafkaNotifier) Notify(ctx context.Context, notifications []domain.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	msgs := make([]kafka.Message, 0, len(notifications))
	for _, notification := range notifications {
		value, err := json.Marshal(Envelope{
			ID:    uuid.NewString(),
			Event: notification.EventName(),
			Data:  notification,
		})
		if err != nil {
			return fmt.Errorf("marshal notification: %w", err)
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(notification.ShipmentID),
			Value: value,
			Time:  notification.Timestamp,
			Headers: []kafka.Header{
				{Key: "event", Value: []byte(notification.EventName())},
				{Key: "recipient", Value: []byte(notification.RecipientID)},
			},
		})
	}
	if err := n.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("kafka write: %w", err)
	}
	return nil
}

// Close closes the underlying writer.
func (n *KafkaNotifier) Close() error {
	return n.writer.Close()
}
