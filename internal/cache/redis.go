// Package cache provides the Redis client, cache-aside helpers, the feed
// key inventory, and the revalidation hook triggered after writes.
package cache

import (
	"context"
	"log/slog"
	"time"

	"threadloom/internal/observability"

	"github.com/redis/go-redis/v9"
)

var client *redis.Client

// InitRedis connects the package-level client. The application keeps
// working without a cache when Redis is unreachable.
func InitRedis(addr string) {
	client = redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		observability.GlobalLogger.Warn("Redis connection failed, continuing without cache",
			slog.String("addr", addr), slog.String("error", err.Error()))
		client = nil
		return
	}
	observability.GlobalLogger.Info("Redis connected", slog.String("addr", addr))
}

// GetClient returns the shared client, or nil when the cache is disabled.
func GetClient() *redis.Client {
	return client
}

// SetClient overrides the shared client. Used by tests with miniredis.
func SetClient(c *redis.Client) {
	client = c
}
