package repository

import (
	"context"
	"time"

	"FinAgent/internal/domain/models"
)

// MarketDataSource provides daily history and metadata for a symbol.
// An unknown symbol yields an empty series and a nil error.
type MarketDataSource interface {
	FetchHistory(ctx context.Context, symbol string, window Window) (models.PriceSeries, error)
	FetchMetadata(ctx context.Context, symbol string) (models.SymbolMetadata, error)
}

// NewsProvider fetches news from one upstream.
type NewsProvider interface {
	Name() string
	Fetch(ctx context.Context, q models.NewsQuery) ([]models.NewsItem, error)
}

// BytesCache stores opaque payloads with a TTL.
type BytesCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
}

type Metrics interface {
	RecordFetch(kind, symbol string, err error)
	RecordError(kind string)
	RecordLastPrice(symbol string, price float64)
	RecordLatency(op string, seconds float64)
}
