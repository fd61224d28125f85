package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"coleta-seletiva/internal/domain"
)

// Publisher announces request lifecycle changes to other systems.
type Publisher interface {
	Publish(ctx context.Context, event domain.RequestEvent) error
	Close() error
}

// Channel is the part of *amqp.Channel the publisher needs.
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPPublisher publishes events as JSON to a topic exchange, using the event
// type as routing key.
type AMQPPublisher struct {
	mu       sync.Mutex
	ch       Channel
	conn     *amqp.Connection
	exchange string
}

func NewAMQPPublisher(conn *amqp.Connection, ch Channel, exchange string) *AMQPPublisher {
	return &AMQPPublisher{conn: conn, ch: ch, exchange: exchange}
}

func (p *AMQPPublisher) Publish(ctx context.Context, event domain.RequestEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ch.PublishWithContext(ctx, p.exchange, string(event.Type), false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    event.OccurredAt,
		Body:         body,
	})
}

func (p *AMQPPublisher) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// Nop drops every event. Used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, domain.RequestEvent) error { return nil }
func (Nop) Close() error                                       { return nil }
