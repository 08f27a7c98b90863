package deps

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

// IgniteRedis connects the realtime relay when redis.addr is set.
func IgniteRedis(container Deps) (Deps, error) {
	addr := container.Config().Redis.Addr
	if addr == "" {
		return container, nil
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return container, err
	}
	container.RedisProvider = client
	return container, nil
}
