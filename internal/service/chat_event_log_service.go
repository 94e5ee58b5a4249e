package service

import (
	"context"

	"food-rag-be/internal/pkg/logger"
	"food-rag-be/pkg/events"
	pktNats "food-rag-be/pkg/nats"
)

const eventLogModule = "ChatEventLog"

type EventSubscriber interface {
	Subscribe(ctx context.Context, eventType, durableName string, handler pktNats.EventHandler) error
}

// IChatEventLogService mirrors chat lifecycle events into the application
// log, so failures raised on any instance show up in one place.
type IChatEventLogService interface {
	Start(ctx context.Context) error
}

type chatEventLogService struct {
	subscriber EventSubscriber
	logger     logger.ILogger
}

func NewChatEventLogService(subscriber EventSubscriber, log logger.ILogger) IChatEventLogService {
	return &chatEventLogService{subscriber: subscriber, logger: log}
}

func (s *chatEventLogService) Start(ctx context.Context) error {
	return s.subscriber.Subscribe(ctx, "", "chat-event-log", s.handle)
}

func (s *chatEventLogService) handle(_ context.Context, event events.Event) error {
	details := make(map[string]interface{}, len(event.Payload())+1)
	for k, v := range event.Payload() {
		details[k] = v
	}
	details["occurred_at"] = event.Timestamp()

	switch event.EventType() {
	case events.TypeChatFailed:
		s.logger.Warn(eventLogModule, "Chat failed", details)
	case events.TypeChatCompleted:
		s.logger.Info(eventLogModule, "Chat completed", details)
	default:
		s.logger.Debug(eventLogModule, "Ignoring event "+event.EventType(), nil)
	}
	return nil
}
