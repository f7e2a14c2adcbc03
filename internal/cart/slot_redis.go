package cart

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const watchChannelPrefix = "cartwatch:"

// RedisSlot stores values in Redis and fans every write out over pub/sub so
// that other processes bound to the same key converge on the latest value.
// Replication is last write wins; no merge is attempted.
type RedisSlot struct {
	client *redis.Client
}

func NewRedisSlot(client *redis.Client) *RedisSlot {
	return &RedisSlot{client: client}
}

func (s *RedisSlot) Load(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return data, true, nil
}

func (s *RedisSlot) Save(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	if err := s.client.Publish(ctx, watchChannelPrefix+key, value).Err(); err != nil {
		return fmt.Errorf("redis publish %s: %w", key, err)
	}
	return nil
}

func (s *RedisSlot) Watch(ctx context.Context, key string, fn func([]byte)) (func(), error) {
	sub := s.client.Subscribe(ctx, watchChannelPrefix+key)

	// Force the subscription to be established before returning so that a
	// write immediately after Watch is not missed.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("redis subscribe %s: %w", key, err)
	}

	ch := sub.Channel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for msg := range ch {
			fn([]byte(msg.Payload))
		}
	}()

	return func() {
		_ = sub.Close()
		<-done
	}, nil
}
