package cache

import (
	"context"
	"fmt"
	"time"

	domrepo "FinAgent/internal/domain/repository"
	"FinAgent/pkg/config"
	"FinAgent/pkg/logger"
)

// New returns a Redis-backed cache when enabled and reachable, otherwise an in-memory one.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) domrepo.BytesCache {
	rc := cfg.Cache.Redis
	if !rc.Enabled {
		return NewTTLCache()
	}

	r := NewRedisCache(RedisConfig{Addr: rc.Addr, Password: rc.Password, DB: rc.DB, Prefix: rc.Prefix})
	pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := r.Ping(pctx); err != nil {
		log.Warn("redis unavailable, falling back to in-memory cache",
			logger.String("addr", rc.Addr),
			logger.Error(err),
		)
		_ = r.Close()
		return NewTTLCache()
	}
	log.Info("redis cache connected", logger.String("addr", rc.Addr))
	return r
}

// Key joins parts into a cache key.
func Key(parts ...interface{}) string {
	k := ""
	for i, p := range parts {
		if i > 0 {
			k += ":"
		}
		k += fmt.Sprint(p)
	}
	return k
}
