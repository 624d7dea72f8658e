package producer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/trunghai04/webmoi-sub001/internal/service"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
)

const (
	headerEventType = "event_type"
	writeTimeout    = 5 * time.Second
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// OrderEventProducer publishes order lifecycle events keyed by order id, so
// all events of one order land in the same partition.
type OrderEventProducer struct {
	writer messageWriter
}

func NewOrderEventProducer(brokers []string, topic string) *OrderEventProducer {
	return &OrderEventProducer{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireAll,
			AllowAutoTopicCreation: true,
		},
	}
}

var _ service.EventBus = (*OrderEventProducer)(nil)

func (p *OrderEventProducer) PublishOrderCreated(ctx context.Context, e service.OrderCreatedEvent) error {
	return p.send(ctx, service.EventOrderCreated, e.OrderID.String(), e)
}

func (p *OrderEventProducer) PublishOrderCancelled(ctx context.Context, e service.OrderCancelledEvent) error {
	return p.send(ctx, service.EventOrderCancelled, e.OrderID.String(), e)
}

func (p *OrderEventProducer) PublishOrderStatusChanged(ctx context.Context, e service.OrderStatusChangedEvent) error {
	return p.send(ctx, service.EventOrderStatusChanged, e.OrderID.String(), e)
}

func (p *OrderEventProducer) send(ctx context.Context, eventType, key string, payload any) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	value, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	headers := headerCarrier{{Key: headerEventType, Value: []byte(eventType)}}
	otel.GetTextMapPropagator().Inject(ctx, &headers)

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:     []byte(key),
		Value:   value,
		Headers: headers,
	})
}

func (p *OrderEventProducer) Close() error {
	return p.writer.Close()
}

// headerCarrier adapts Kafka headers to the OpenTelemetry propagation API.
type headerCarrier []kafka.Header

func (c *headerCarrier) Get(key string) string {
	for _, h := range *c {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func (c *headerCarrier) Set(key, value string) {
	for i, h := range *c {
		if h.Key == key {
			(*c)[i].Value = []byte(value)
			return
		}
	}
	*c = append(*c, kafka.Header{Key: key, Value: []byte(value)})
}

func (c *headerCarrier) Keys() []string {
	keys := make([]string, 0, len(*c))
	for _, h := range *c {
		keys = append(keys, h.Key)
	}
	return keys
}
