// Package events publishes order lifecycle notifications for kitchen and
// reporting consumers. Publishing is best effort and never fails a request.
package events

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"tableorder/internal/logging"
)

const (
	SessionStarted  = "session.started"
	SessionClosed   = "session.closed"
	ItemAdded       = "order.item_added"
	ItemUpdated     = "order.item_updated"
	ItemRemoved     = "order.item_removed"
	PaymentRecorded = "payment.recorded"
	PaymentDeleted  = "payment.deleted"
	OrderPurged     = "order.purged"
)

// Event is the message body. OrderID doubles as the partition key so events
// of one order stay ordered.
type Event struct {
	Type       string                 `json:"type"`
	OrderID    int64                  `json:"orderId"`
	OccurredAt time.Time              `json:"occurredAt"`
	Data       map[string]interface{} `json:"data,omitempty"`
}

type Publisher interface {
	Publish(ctx context.Context, e Event)
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) {}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// KafkaPublisher writes events to a single topic.
type KafkaPublisher struct {
	writer messageWriter
	logger *zap.Logger
	now    func() time.Time
}

// NewKafkaWriter builds an async writer; delivery failures are logged from
// the completion callback.
func NewKafkaWriter(brokers []string, topic string, logger *zap.Logger) *kafka.Writer {
	logger = logging.OrNop(logger).Named("events")
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		Async:                  true,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Warn("delivery failed", zap.Int("messages", len(messages)), zap.Error(err))
			}
		},
	}
}

func NewKafkaPublisher(w messageWriter, logger *zap.Logger) *KafkaPublisher {
	return &KafkaPublisher{writer: w, logger: logging.OrNop(logger).Named("events"), now: time.Now}
}

func (p *KafkaPublisher) Publish(ctx context.Context, e Event) {
	if e.OccurredAt.IsZero() {
		e.OccurredAt = p.now().UTC()
	}
	body, err := json.Marshal(e)
	if err != nil {
		p.logger.Warn("encode", zap.String("type", e.Type), zap.Error(err))
		return
	}
	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(e.OrderID, 10)),
		Value: body,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(e.Type)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Warn("publish", zap.String("type", e.Type), zap.Int64("order_id", e.OrderID), zap.Error(err))
	}
}
