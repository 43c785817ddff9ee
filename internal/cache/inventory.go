package cache

import (
	"context"
	"fmt"
	"time"

	"threadloom/internal/observability"
)

const (
	FeedKeyPrefix = "feed:"
	ViewKeyPrefix = "view:"
)

const (
	FeedTTL = 2 * time.Minute
	ViewTTL = 5 * time.Minute
)

// FeedKey names the cached feed window for a page/size pair.
func FeedKey(pageNumber, pageSize int) string {
	return fmt.Sprintf("%s%d:%d", FeedKeyPrefix, pageNumber, pageSize)
}

// ViewKey names the cached rendering input for an opaque view path.
func ViewKey(path string) string {
	return ViewKeyPrefix + path
}

// Invalidate drops a single key, best-effort.
func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

// InvalidatePrefix drops every key under prefix, best-effort.
func InvalidatePrefix(ctx context.Context, prefix string) {
	if client == nil {
		return
	}
	iter := client.Scan(ctx, 0, prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		client.Del(ctx, iter.Val())
	}
	if err := iter.Err(); err != nil {
		observability.RedisErrorRate.WithLabelValues("scan").Inc()
	}
}

// PathRevalidator implements the presentation layer's "revalidate this
// view" contract. The path is treated as an opaque trigger: the cached
// view under it is dropped along with every feed window, since any write
// can change feed contents.
type PathRevalidator struct{}

// Revalidate drops the cached view for path plus all feed pages.
func (PathRevalidator) Revalidate(ctx context.Context, path string) {
	if path != "" {
		Invalidate(ctx, ViewKey(path))
	}
	InvalidatePrefix(ctx, FeedKeyPrefix)
	observability.FeedCacheEvents.WithLabelValues("invalidate").Inc()
}
