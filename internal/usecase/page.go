package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/zeebo/xxh3"
	"golang.org/x/sync/errgroup"

	"github.com/folio-sh/folio/internal/domain"
	"github.com/folio-sh/folio/internal/utils"
	"github.com/folio-sh/folio/schemas"
)

// HomePage is the aggregate every public render consumes: singletons plus
// every active ordered collection, sections emitted in registry order.
type HomePage struct {
	Hero     map[string]any                           `json:"hero"`
	About    map[string]any                           `json:"about"`
	Settings map[string]any                           `json:"settings"`
	Sections utils.OrderedKVMap[[]domain.ContentItem] `json:"sections"`
	Version  string                                   `json:"version"`
}

type PageUsecase struct {
	repo  ContentRepository
	cache *memcache.Client
}

func NewPageUsecase(repo ContentRepository, cache *memcache.Client) *PageUsecase {
	return &PageUsecase{repo: repo, cache: cache}
}

// GetHomePage fans out one read per collection concurrently and joins all of
// them; any single failure fails the whole aggregate.
func (uc *PageUsecase) GetHomePage(ctx context.Context) (HomePage, error) {
	page := HomePage{
		Sections: utils.OrderedKVMap[[]domain.ContentItem]{},
	}
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)

	for i, name := range schemas.Ordered() {
		i, name := i, name
		g.Go(func() error {
			items, err := uc.repo.List(ctx, name, true)
			if err != nil {
				return fmt.Errorf("list %s: %w", name, err)
			}
			mu.Lock()
			page.Sections.Put(name, int64(i), items)
			mu.Unlock()
			return nil
		})
	}

	for _, name := range schemas.Singletons() {
		name := name
		g.Go(func() error {
			items, err := uc.repo.List(ctx, name, true)
			if err != nil {
				return fmt.Errorf("list %s: %w", name, err)
			}
			var fields map[string]any
			if len(items) > 0 {
				fields = items[0].Fields
			}
			mu.Lock()
			switch name {
			case schemas.Hero:
				page.Hero = fields
			case schemas.About:
				page.About = fields
			case schemas.SiteSettings:
				page.Settings = fields
			}
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return HomePage{}, err
	}

	serialized, err := json.Marshal(page)
	if err != nil {
		return HomePage{}, err
	}
	page.Version = fmt.Sprintf("%016x", xxh3.Hash(serialized))

	return page, nil
}

// GetHomePageJSON serves the marshaled aggregate, through memcached when one
// is configured. The RevalidateService drops the entry after mutations.
func (uc *PageUsecase) GetHomePageJSON(ctx context.Context) ([]byte, error) {
	if uc.cache != nil {
		if entry, err := uc.cache.Get(domain.HomePageCacheKey); err == nil {
			return entry.Value, nil
		}
	}

	page, err := uc.GetHomePage(ctx)
	if err != nil {
		return nil, err
	}
	serialized, err := json.Marshal(page)
	if err != nil {
		return nil, err
	}

	if uc.cache != nil {
		err := uc.cache.Set(&memcache.Item{
			Key:        domain.HomePageCacheKey,
			Value:      serialized,
			Expiration: 300,
		})
		if err != nil {
			slog.Warn(
				"failed to cache home page",
				slog.String("error", err.Error()),
				slog.String("module", "page"),
			)
		}
	}

	return serialized, nil
}
