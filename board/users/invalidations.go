package users

import (
	"context"

	"github.com/go-redis/redis/v8"
)

// Invalidations carries ban changes between processes sharing a store.
type Invalidations interface {
	Publish(ctx context.Context, username string) error
	Subscribe(ctx context.Context, fn func(username string)) error
}

// RedisInvalidations announces ban changes on a redis pub/sub channel.
type RedisInvalidations struct {
	client  *redis.Client
	channel string
}

func NewRedisInvalidations(client *redis.Client, channel string) *RedisInvalidations {
	return &RedisInvalidations{client: client, channel: channel}
}

func (r *RedisInvalidations) Publish(ctx context.Context, username string) error {
	return r.client.Publish(ctx, r.channel, username).Err()
}

// Subscribe blocks until ctx is done or the subscription breaks.
func (r *RedisInvalidations) Subscribe(ctx context.Context, fn func(string)) error {
	sub := r.client.Subscribe(ctx, r.channel)
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		return err
	}
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			fn(msg.Payload)
		}
	}
}
