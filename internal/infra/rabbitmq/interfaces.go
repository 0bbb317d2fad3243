package rabbitmq

import (
	"context"

	"go.uber.org/zap"
)

type PublisherInterface interface {
	Publish(ctx context.Context, routingKey string, data any) error
}

var (
	_ PublisherInterface = (*Publisher)(nil)
	_ PublisherInterface = (*LogPublisher)(nil)
)

// LogPublisher stands in for the broker when no RabbitMQ URL is configured.
// Messages are encoded exactly as they would be on the wire and logged.
type LogPublisher struct {
	log *zap.Logger
}

func NewLogPublisher(log *zap.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) Publish(_ context.Context, pattern string, data any) error {
	body, err := encode(pattern, data)
	if err != nil {
		return err
	}
	p.log.Info("event (broker disabled)", zap.String("pattern", pattern), zap.ByteString("body", body))
	return nil
}
