package transcript

import (
	"context"
	"os"
	"testing"
	"time"

	"food-rag-be/pkg/store"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func redisClient(t *testing.T) *redis.Client {
	t.Helper()
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}
	opt, err := redis.ParseURL(url)
	require.NoError(t, err)
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		t.Skipf("redis unavailable: %v", err)
	}
	t.Cleanup(func() { rdb.Close() })
	return rdb
}

func TestKey(t *testing.T) {
	assert.Equal(t, "chat:transcript:abc", Key("abc"))
}

func TestRedisStoreAppendAndList(t *testing.T) {
	rdb := redisClient(t)
	s := NewRedisStore(rdb, time.Minute)
	ctx := context.Background()
	session := uuid.NewString()
	t.Cleanup(func() { rdb.Del(ctx, Key(session)) })

	empty, err := s.List(ctx, session)
	require.NoError(t, err)
	assert.Empty(t, empty)

	now := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, s.Append(ctx, session,
		store.Message{ID: "1", Role: store.RoleUser, Content: "breakfast?", Timestamp: now},
		store.Message{ID: "2", Role: store.RoleAssistant, Content: "Try Pesarattu.", Timestamp: now},
	))

	got, err := s.List(ctx, session)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "breakfast?", got[0].Content)
	assert.Equal(t, store.RoleAssistant, got[1].Role)

	ttl, err := rdb.TTL(ctx, Key(session)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}
