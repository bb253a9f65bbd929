package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/bradfitz/gomemcache/memcache"

	"github.com/folio-sh/folio"
	"github.com/folio-sh/folio/client"
	"github.com/folio-sh/folio/internal/domain"
	"github.com/folio-sh/folio/schemas"
)

// RevalidateService is the "stale cache for path P" side effect: after a
// mutation it drops the cached aggregate, notifies the front-end webhook and
// publishes a realtime event. Fire-and-forget; failures are logged, never
// returned to the mutation.
type RevalidateService struct {
	cache  *memcache.Client
	client *client.Client
	signal *SignalService
}

func NewRevalidateService(cache *memcache.Client, cl *client.Client, signal *SignalService) *RevalidateService {
	return &RevalidateService{
		cache:  cache,
		client: cl,
		signal: signal,
	}
}

func (s *RevalidateService) ContentChanged(ctx context.Context, eventType, collection, itemID string) {
	var paths []string
	if schema, ok := schemas.Lookup(collection); ok {
		paths = schema.Paths
	}

	if s.cache != nil {
		if err := s.cache.Delete(domain.HomePageCacheKey); err != nil && err != memcache.ErrCacheMiss {
			slog.WarnContext(
				ctx, "failed to drop page cache",
				slog.String("error", err.Error()),
				slog.String("module", "revalidate"),
			)
		}
	}

	if s.client != nil && s.client.Enabled() && len(paths) > 0 {
		// detached context: the originating request may finish first.
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := s.client.Revalidate(ctx, paths); err != nil {
				slog.Warn(
					"revalidate webhook failed",
					slog.String("error", err.Error()),
					slog.String("module", "revalidate"),
				)
			}
		}()
	}

	if s.signal != nil {
		event := folio.Event{
			Type:       eventType,
			Collection: collection,
			ItemID:     itemID,
			Paths:      paths,
			Timestamp:  time.Now().UTC(),
		}
		if err := s.signal.Publish(ctx, event); err != nil {
			slog.WarnContext(
				ctx, "failed to publish event",
				slog.String("error", err.Error()),
				slog.String("module", "revalidate"),
			)
		}
	}
}
