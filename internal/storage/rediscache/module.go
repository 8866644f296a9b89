package rediscache

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/quickbites/dispatch/internal/config"
)

// Module wires the optional Redis location cache. With no Redis address
// configured the cache provider yields nil and callers fall back to Postgres
// reads.
var Module = fx.Options(
	fx.Provide(newLocationCache),
)

type cacheParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    *config.Config
	Logger    *slog.Logger
}

func newLocationCache(p cacheParams) *LocationCache {
	if p.Config.RedisAddress == "" {
		p.Logger.Info("location cache disabled, no redis address configured")
		return nil
	}

	client := redis.NewClient(&redis.Options{Addr: p.Config.RedisAddress})
	p.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})
	return NewLocationCache(client, p.Config.LocationCacheTTL)
}
