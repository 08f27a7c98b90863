package realtime

import (
	"context"
	"encoding/json"

	"github.com/go-redis/redis/v8"
)

// RedisRelay fans messages out through a redis pub/sub channel so several
// API processes deliver the same events.
type RedisRelay struct {
	client  *redis.Client
	channel string
}

func NewRedisRelay(client *redis.Client, channel string) *RedisRelay {
	return &RedisRelay{client: client, channel: channel}
}

func (r *RedisRelay) Publish(ctx context.Context, m M) error {
	bytes, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return r.client.Publish(ctx, r.channel, bytes).Err()
}

// Subscribe blocks until ctx is done or the subscription breaks.
func (r *RedisRelay) Subscribe(ctx context.Context, fn func(M)) error {
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
			var m M
			if err := json.Unmarshal([]byte(msg.Payload), &m); err != nil {
				log.Warningf("could not decode relayed message: %v", err)
				continue
			}
			fn(m)
		}
	}
}
