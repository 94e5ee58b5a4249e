package service

import (
	"context"
	"testing"
	"time"

	"food-rag-be/internal/pkg/logger"
	"food-rag-be/pkg/events"
	pktNats "food-rag-be/pkg/nats"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSubscriber struct {
	eventType string
	durable   string
	handler   pktNats.EventHandler
}

func (f *fakeSubscriber) Subscribe(_ context.Context, eventType, durableName string, handler pktNats.EventHandler) error {
	f.eventType, f.durable, f.handler = eventType, durableName, handler
	return nil
}

func TestChatEventLogSubscribesToAllChatEvents(t *testing.T) {
	sub := &fakeSubscriber{}
	require.NoError(t, NewChatEventLogService(sub, logger.NewNopLogger()).Start(context.Background()))

	assert.Empty(t, sub.eventType)
	assert.Equal(t, "chat-event-log", sub.durable)
	require.NotNil(t, sub.handler)

	for _, summary := range []events.ChatSummary{{SessionID: "a"}, {SessionID: "b", Error: "generation failed"}} {
		assert.NoError(t, sub.handler(context.Background(), events.NewChatEvent(summary, time.Now())))
	}
	assert.NoError(t, sub.handler(context.Background(), events.BaseEvent{Type: "OTHER"}))
}
