package store

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"traffic-recorder/internal/domain/entity"
	"traffic-recorder/internal/infrastructure/redis"
)

// RedisStore keeps values under "<namespace>:<key>" and announces every write
// on the "<namespace>:changes" pub/sub channel.
type RedisStore struct {
	client    *redis.RedisClient
	namespace string
	channel   string
	logger    *zap.Logger
}

func NewRedisStore(client *redis.RedisClient, namespace string, logger *zap.Logger) *RedisStore {
	return &RedisStore{
		client:    client,
		namespace: namespace,
		channel:   namespace + ":changes",
		logger:    logger.Named("redis_store"),
	}
}

func (s *RedisStore) key(key string) string {
	return s.namespace + ":" + key
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.client.Get(ctx, s.key(key))
	if err != nil {
		return nil, fmt.Errorf("failed to get %s from redis: %w", key, err)
	}
	return value, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	old, err := s.client.Swap(ctx, s.key(key), value)
	if err != nil {
		return fmt.Errorf("failed to set %s in redis: %w", key, err)
	}

	payload, err := json.Marshal(entity.StoreChange{Key: key, OldValue: old, NewValue: value})
	if err != nil {
		return fmt.Errorf("failed to marshal change: %w", err)
	}

	// The value is committed at this point; a lost notification is logged, not returned
	if err := s.client.Publish(ctx, s.channel, payload); err != nil {
		s.logger.Warn("Failed to publish change",
			zap.String("key", key),
			zap.Error(err),
		)
	}

	return nil
}

func (s *RedisStore) Subscribe(ctx context.Context) (<-chan entity.StoreChange, error) {
	pubsub := s.client.Subscribe(ctx, s.channel)

	// Wait for the subscription confirmation so no change published after
	// Subscribe returns can be missed.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", s.channel, err)
	}

	out := make(chan entity.StoreChange, subscriberBuffer)
	messages := pubsub.Channel()

	go func() {
		defer close(out)
		defer pubsub.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}

				var change entity.StoreChange
				if err := json.Unmarshal([]byte(msg.Payload), &change); err != nil {
					s.logger.Warn("Discarding malformed change notification", zap.Error(err))
					continue
				}

				select {
				case out <- change:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
