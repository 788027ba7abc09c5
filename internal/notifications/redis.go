package notifications

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// redisPublishClient is the slice of *redis.Client the publisher uses.
type redisPublishClient interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
	Close() error
}

// RedisPublisher PUBLISHes events on <prefix><queueID>.
type RedisPublisher struct {
	client redisPublishClient
	prefix string
	codec  Codec
}

func NewRedisPublisher(addr, password string, db int, prefix string, codec Codec) *RedisPublisher {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisPublisher{client: client, prefix: prefix, codec: codec}
}

// Channel returns the pub/sub channel for queueID.
func (r *RedisPublisher) Channel(queueID string) string {
	return r.prefix + queueID
}

func (r *RedisPublisher) Name() string { return "redis" }

func (r *RedisPublisher) Publish(ctx context.Context, event Event) error {
	payload, err := r.codec.Encode(event)
	if err != nil {
		return err
	}
	if err := r.client.Publish(ctx, r.Channel(event.QueueID), payload).Err(); err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}
	return nil
}

func (r *RedisPublisher) Close() error {
	return r.client.Close()
}
