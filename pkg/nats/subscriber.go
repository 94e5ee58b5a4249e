package nats

import (
	"context"
	"fmt"

	"food-rag-be/internal/pkg/logger"
	"food-rag-be/pkg/events"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// EventHandler processes one event. A returned error redelivers it.
type EventHandler func(ctx context.Context, event events.Event) error

// Subscriber consumes chat lifecycle events through durable consumers.
type Subscriber struct {
	nc       *nats.Conn
	js       jetstream.JetStream
	logger   logger.ILogger
	contexts []jetstream.ConsumeContext
}

func NewSubscriber(url string, log logger.ILogger) (*Subscriber, error) {
	nc, js, err := connect(url)
	if err != nil {
		return nil, err
	}
	return &Subscriber{nc: nc, js: js, logger: log}, nil
}

// Subscribe registers handler for eventType ("" for every type) under durableName.
func (s *Subscriber) Subscribe(ctx context.Context, eventType, durableName string, handler EventHandler) error {
	subject := Subject(">")
	if eventType != "" {
		subject = Subject(eventType)
	}

	consumer, err := s.js.CreateOrUpdateConsumer(ctx, StreamName, jetstream.ConsumerConfig{
		Durable:       durableName,
		FilterSubject: subject,
		AckPolicy:     jetstream.AckExplicitPolicy,
		MaxDeliver:    5,
	})
	if err != nil {
		return fmt.Errorf("failed to create consumer: %w", err)
	}

	cc, err := consumer.Consume(func(msg jetstream.Msg) {
		event, err := decode(msg.Data())
		if err != nil {
			s.logger.Error(module, "Dropping undecodable event", map[string]interface{}{"subject": msg.Subject(), "error": err})
			msg.Term()
			return
		}

		if err := handler(ctx, event); err != nil {
			s.logger.Warn(module, "Handler failed, event will be redelivered", map[string]interface{}{"type": event.Type, "error": err})
			msg.Nak()
			return
		}
		msg.Ack()
	})
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}
	s.contexts = append(s.contexts, cc)

	s.logger.Info(module, "Subscribed", map[string]interface{}{"subject": subject, "durable": durableName})
	return nil
}

func (s *Subscriber) Close() {
	for _, cc := range s.contexts {
		cc.Stop()
	}
	if s.nc != nil {
		s.nc.Close()
	}
}
