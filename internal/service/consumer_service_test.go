package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"food-rag-be/internal/dto"
	"food-rag-be/internal/pkg/logger"
	"food-rag-be/pkg/store"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTopic = "INGEST_FOOD_ITEM"

func startConsumer(t *testing.T, vs *fakeVectorStore) IPublisherService {
	t.Helper()
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	t.Cleanup(func() { pubSub.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	consumer := NewConsumerService(pubSub, testTopic, NewFoodIndexer(vs), logger.NewNopLogger()).(*consumerService)
	consumer.retryDelay = 10 * time.Millisecond
	require.NoError(t, consumer.Consume(ctx))

	return NewPublisherService(testTopic, pubSub)
}

func TestConsumerIndexesFood(t *testing.T) {
	vs := &fakeVectorStore{}
	pub := startConsumer(t, vs)

	payload, _ := json.Marshal(dto.IngestFoodMessage{Food: dto.CreateFoodRequest{
		Id:          "pesarattu",
		Name:        "Pesarattu",
		Description: "Green gram crepe.",
		Cuisine:     "Andhra",
		Allergens:   []string{},
	}})
	require.NoError(t, pub.Publish(context.Background(), payload))

	require.Eventually(t, func() bool { return len(vs.records()) == 1 }, time.Second, 5*time.Millisecond)
	rec := vs.records()[0]
	assert.Equal(t, "pesarattu", rec.ID)
	assert.Equal(t, "Pesarattu. Green gram crepe. Cuisine: Andhra.", rec.Document)
	assert.Equal(t, "Andhra", rec.Metadata[store.MetaCuisine])
}

func TestConsumerRetriesTransientFailure(t *testing.T) {
	vs := &fakeVectorStore{err: errors.New("connection refused")}
	pub := startConsumer(t, vs)

	payload, _ := json.Marshal(dto.IngestFoodMessage{Food: dto.CreateFoodRequest{Id: "idli", Name: "Idli"}})
	require.NoError(t, pub.Publish(context.Background(), payload))

	time.Sleep(30 * time.Millisecond)
	vs.mu.Lock()
	vs.err = nil
	vs.mu.Unlock()

	require.Eventually(t, func() bool { return len(vs.records()) == 1 }, time.Second, 5*time.Millisecond)
}

func TestConsumerSkipsBadPayload(t *testing.T) {
	vs := &fakeVectorStore{}
	pub := startConsumer(t, vs)

	require.NoError(t, pub.Publish(context.Background(), []byte("not json")))
	payload, _ := json.Marshal(dto.IngestFoodMessage{Food: dto.CreateFoodRequest{Id: "upma", Name: "Upma"}})
	require.NoError(t, pub.Publish(context.Background(), payload))

	require.Eventually(t, func() bool { return len(vs.records()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "upma", vs.records()[0].ID)
}
