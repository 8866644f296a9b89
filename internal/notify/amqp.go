package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ExchangeName is the topic exchange events are published to. Routing keys
// are the topic names (order.{id}, driver.{id}), so clients bind queues with
// patterns like "order.*" or an exact key.
const ExchangeName = "dispatch.events"

// AMQPHub publishes events to a RabbitMQ topic exchange.
type AMQPHub struct {
	conn   *amqp.Connection
	logger *slog.Logger

	mu sync.Mutex
	ch *amqp.Channel
}

// DialAMQP connects to RabbitMQ and declares the dispatch exchange.
func DialAMQP(url string, logger *slog.Logger) (*AMQPHub, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect rabbitmq: %w", err)
	}

	hub := &AMQPHub{conn: conn, logger: logger}
	if _, err := hub.channel(); err != nil {
		conn.Close()
		return nil, err
	}
	return hub, nil
}

func (h *AMQPHub) channel() (*amqp.Channel, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.ch != nil && !h.ch.IsClosed() {
		return h.ch, nil
	}

	ch, err := h.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(ExchangeName, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	h.ch = ch
	return ch, nil
}

// Publish sends the event to the topic's routing key. Messages are transient:
// a subscriber that is offline misses the event and recovers by polling.
func (h *AMQPHub) Publish(ctx context.Context, topic Topic, event Event) error {
	ch, err := h.channel()
	if err != nil {
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	err = ch.PublishWithContext(ctx, ExchangeName, string(topic), false, false, amqp.Publishing{
		ContentType: "application/json",
		MessageId:   event.ID,
		Timestamp:   event.Timestamp,
		Type:        event.Name,
		Body:        body,
	})
	if err != nil {
		return fmt.Errorf("publish %s to %s: %w", event.Name, topic, err)
	}
	return nil
}

// Close releases the channel and connection.
func (h *AMQPHub) Close() error {
	h.mu.Lock()
	if h.ch != nil {
		_ = h.ch.Close()
		h.ch = nil
	}
	h.mu.Unlock()
	return h.conn.Close()
}
