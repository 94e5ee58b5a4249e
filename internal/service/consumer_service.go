package service

import (
	"context"
	"encoding/json"
	"time"

	"food-rag-be/internal/dto"
	"food-rag-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill/message"
)

const consumerModule = "IngestConsumer"

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	subscriber message.Subscriber
	topicName  string
	indexer    IFoodIndexer
	logger     logger.ILogger
	retryDelay time.Duration
}

func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	indexer IFoodIndexer,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber: subscriber,
		topicName:  topicName,
		indexer:    indexer,
		logger:     log,
		retryDelay: 2 * time.Second,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.IngestFoodMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error(consumerModule, "Dropping undecodable ingest message", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err,
		})
		msg.Ack() // redelivery cannot fix a bad payload
		return
	}

	ids, err := cs.indexer.Index(ctx, payload.Food)
	if err != nil {
		cs.logger.Warn(consumerModule, "Indexing failed, will retry", map[string]interface{}{
			"message_id": msg.UUID,
			"food":       payload.Food.Name,
			"error":      err,
		})
		select {
		case <-ctx.Done():
		case <-time.After(cs.retryDelay):
		}
		msg.Nack()
		return
	}

	cs.logger.Info(consumerModule, "Food item indexed", map[string]interface{}{
		"id":   ids[0],
		"name": payload.Food.Name,
	})
	msg.Ack()
}
