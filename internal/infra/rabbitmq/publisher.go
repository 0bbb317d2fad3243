package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

type Publisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	log      *zap.Logger
}

// NestJSMessage is the envelope the downstream consumers decode.
type NestJSMessage struct {
	Pattern string `json:"pattern"`
	Data    any    `json:"data"`
	ID      string `json:"id,omitempty"`
}

func NewPublisher(amqpURL, exchange string, log *zap.Logger) (*Publisher, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		exchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	return &Publisher{
		conn:     conn,
		channel:  channel,
		exchange: exchange,
		log:      log,
	}, nil
}

func encode(pattern string, data any) ([]byte, error) {
	body, err := json.Marshal(NestJSMessage{
		Pattern: pattern,
		Data:    data,
		ID:      uuid.NewString(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}
	return body, nil
}

func (p *Publisher) Publish(ctx context.Context, pattern string, data any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := encode(pattern, data)
	if err != nil {
		return err
	}

	p.log.Debug("publishing message",
		zap.String("pattern", pattern),
		zap.String("exchange", p.exchange),
		zap.ByteString("body", body))

	p.mu.Lock()
	defer p.mu.Unlock()
	err = p.channel.Publish(
		p.exchange,
		pattern,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	return nil
}

func (p *Publisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}
