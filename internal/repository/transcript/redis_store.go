// Package transcript keeps the message history of a chat session in redis.
package transcript

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"food-rag-be/pkg/store"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix  = "chat:transcript:"
	DefaultTTL = 24 * time.Hour
	// MaxMessages bounds a transcript; older turns are trimmed.
	MaxMessages = 200
)

func Key(sessionID string) string {
	return keyPrefix + sessionID
}

type Store interface {
	Append(ctx context.Context, sessionID string, messages ...store.Message) error
	List(ctx context.Context, sessionID string) ([]store.Message, error)
}

type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{rdb: rdb, ttl: ttl}
}

// Append pushes messages in order and refreshes the expiry.
func (s *RedisStore) Append(ctx context.Context, sessionID string, messages ...store.Message) error {
	if len(messages) == 0 {
		return nil
	}

	values := make([]interface{}, 0, len(messages))
	for _, m := range messages {
		data, err := json.Marshal(m)
		if err != nil {
			return fmt.Errorf("marshal message: %w", err)
		}
		values = append(values, data)
	}

	key := Key(sessionID)
	pipe := s.rdb.TxPipeline()
	pipe.RPush(ctx, key, values...)
	pipe.LTrim(ctx, key, -MaxMessages, -1)
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("append transcript %s: %w", sessionID, err)
	}
	return nil
}

// List returns the transcript oldest first; unknown sessions yield an empty slice.
func (s *RedisStore) List(ctx context.Context, sessionID string) ([]store.Message, error) {
	raw, err := s.rdb.LRange(ctx, Key(sessionID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read transcript %s: %w", sessionID, err)
	}

	messages := make([]store.Message, 0, len(raw))
	for _, r := range raw {
		var m store.Message
		if err := json.Unmarshal([]byte(r), &m); err != nil {
			continue
		}
		messages = append(messages, m)
	}
	return messages, nil
}
