// Copyright (c) 2026 Novika. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package revalidate signals the read/cache layer which public paths may be
stale after a successful catalog mutation.

The signal is fire-and-forget: it runs asynchronously, is never awaited by
the mutation response, and a delivery failure is logged rather than
surfaced. Cache staleness after a successful mutation is tolerated for a
bounded window, so the mutation path never blocks on the cache layer.
*/
package revalidate

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// notifyTimeout bounds the background delivery of a single notification batch.
const notifyTimeout = 5 * time.Second

// Notifier delivers stale-path hints to the read/cache layer.
type Notifier interface {
	// Notify queues the given public paths for revalidation. It returns
	// immediately; delivery happens in the background and is best-effort.
	Notify(paths ...string)
}

// # Redis Delivery

// RedisNotifier publishes stale paths on a Redis pub/sub channel consumed by
// the rendering layer.
type RedisNotifier struct {
	client  *redis.Client
	channel string
	logger  *slog.Logger
}

// NewRedisNotifier constructs a [RedisNotifier] for the given channel.
func NewRedisNotifier(client *redis.Client, channel string, logger *slog.Logger) *RedisNotifier {
	return &RedisNotifier{client: client, channel: channel, logger: logger}
}

// Notify implements [Notifier]. Each path is published as its own message so
// subscribers can invalidate incrementally.
func (n *RedisNotifier) Notify(paths ...string) {
	if len(paths) == 0 {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()

		for _, path := range paths {
			if err := n.client.Publish(ctx, n.channel, path).Err(); err != nil {
				n.logger.Warn("revalidate_publish_failed",
					slog.String("path", path),
					slog.Any("error", err),
				)
				return
			}
		}

		n.logger.Debug("revalidate_published", slog.Int("paths", len(paths)))
	}()
}

// # Test Double

// Noop is a [Notifier] that records nothing and delivers nothing.
type Noop struct{}

// Notify implements [Notifier].
func (Noop) Notify(paths ...string) {}

// # Public Path Construction

// Paths for the catalog's public read surface. The engine does not render
// these pages; it only names them for the cache layer.

// CatalogPaths returns the paths of the top-level catalog listings.
func CatalogPaths() []string {
	return []string{"/novels", "/authors", "/genres"}
}

// AuthorPaths returns the stale paths after an author mutation.
func AuthorPaths(slug string) []string {
	return []string{"/authors", "/authors/" + slug}
}

// GenrePaths returns the stale paths after a genre mutation.
func GenrePaths(slug string) []string {
	return []string{"/genres", "/genres/" + slug}
}

// NovelPaths returns the stale paths after a novel mutation.
func NovelPaths(slug string) []string {
	return []string{"/novels", "/novels/" + slug}
}

// ChapterPaths returns the stale paths after a chapter mutation: the owning
// novel's detail and chapter-list pages plus the chapter itself.
func ChapterPaths(novelSlug string, number int) []string {
	base := "/novels/" + novelSlug
	return []string{
		"/novels",
		base,
		base + "/chapters",
		base + "/chapters/" + strconv.Itoa(number),
	}
}
