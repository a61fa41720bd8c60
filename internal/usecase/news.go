package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"FinAgent/internal/domain/models"
	domrepo "FinAgent/internal/domain/repository"
	"FinAgent/internal/service/cache"
	"FinAgent/internal/service/news"
	"FinAgent/pkg/logger"
)

const (
	defaultNewsLimit = 10
	maxNewsLimit     = 50
)

// NewsUseCase routes news queries by region: INDIA to the domestic provider,
// US and GLOBAL to the global provider. Provider failures yield an empty list.
type NewsUseCase struct {
	india  domrepo.NewsProvider
	global domrepo.NewsProvider
	cache  domrepo.BytesCache
	ttl    time.Duration
	log    *logger.Logger
}

func NewNewsUseCase(india, global domrepo.NewsProvider, c domrepo.BytesCache, ttl time.Duration, log *logger.Logger) *NewsUseCase {
	if log == nil {
		log = logger.NewNop()
	}
	return &NewsUseCase{india: india, global: global, cache: c, ttl: ttl, log: log}
}

func (uc *NewsUseCase) provider(r models.NewsRegion) domrepo.NewsProvider {
	if r == models.RegionIndia {
		return uc.india
	}
	return uc.global
}

// Get returns up to q.Limit items for the region.
func (uc *NewsUseCase) Get(ctx context.Context, q models.NewsQuery) models.NewsResult {
	if q.Region == "" {
		q.Region = models.RegionGlobal
	}
	if q.Limit <= 0 {
		q.Limit = defaultNewsLimit
	}
	if q.Limit > maxNewsLimit {
		q.Limit = maxNewsLimit
	}
	q.Ticker = NormalizeTicker(q.Ticker)

	key := cache.Key("news", q.Region, q.Ticker, q.Limit)
	if items, ok := uc.cached(ctx, key); ok {
		return models.NewsResult{Region: q.Region, Items: items}
	}

	p := uc.provider(q.Region)
	items, err := p.Fetch(ctx, q)
	if err != nil {
		if errors.Is(err, news.ErrNotConfigured) {
			uc.log.Warn("news provider not configured", logger.String("provider", p.Name()))
		} else {
			uc.log.Error("news fetch failed",
				logger.String("provider", p.Name()),
				logger.String("region", string(q.Region)),
				logger.Error(err),
			)
		}
		return models.NewsResult{Region: q.Region, Items: []models.NewsItem{}}
	}

	if len(items) > q.Limit {
		items = items[:q.Limit]
	}
	uc.store(ctx, key, items)
	return models.NewsResult{Region: q.Region, Items: items}
}

func (uc *NewsUseCase) cached(ctx context.Context, key string) ([]models.NewsItem, bool) {
	if uc.cache == nil || uc.ttl <= 0 {
		return nil, false
	}
	b, ok, err := uc.cache.Get(ctx, key)
	if err != nil {
		uc.log.Warn("news cache read failed", logger.String("key", key), logger.Error(err))
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var items []models.NewsItem
	if err := json.Unmarshal(b, &items); err != nil {
		return nil, false
	}
	return items, true
}

func (uc *NewsUseCase) store(ctx context.Context, key string, items []models.NewsItem) {
	if uc.cache == nil || uc.ttl <= 0 {
		return
	}
	b, err := json.Marshal(items)
	if err != nil {
		return
	}
	if err := uc.cache.Set(ctx, key, b, uc.ttl); err != nil {
		uc.log.Warn("news cache write failed", logger.String("key", key), logger.Error(err))
	}
}
