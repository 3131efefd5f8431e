// Package orderbook implements live orderbook retrieval and normalization.
package orderbook

import (
	"context"
	"fmt"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/sanketagarwal/replay-fee-oracle/business/orderbook/app"
	orderbookDI "github.com/sanketagarwal/replay-fee-oracle/business/orderbook/di"
	"github.com/sanketagarwal/replay-fee-oracle/business/orderbook/infra/cache"
	"github.com/sanketagarwal/replay-fee-oracle/business/orderbook/infra/replay"
	"github.com/sanketagarwal/replay-fee-oracle/internal/config"
	"github.com/sanketagarwal/replay-fee-oracle/internal/di"
	"github.com/sanketagarwal/replay-fee-oracle/internal/logger"
	"github.com/sanketagarwal/replay-fee-oracle/internal/metrics"
	"github.com/sanketagarwal/replay-fee-oracle/internal/monolith"
)

const redisConnectTimeout = 3 * time.Second

// Module implements the orderbook bounded context.
type Module struct {
	client *replay.Client
	memory *cache.Memory
	redis  *cache.Redis
}

// RegisterServices registers the fetcher chain and the snapshot service.
// With live data disabled the service resolves to nil.
func (m *Module) RegisterServices(c di.Container) error {
	// Fetcher chain: memory LRU -> redis -> api
	di.RegisterToken(c, orderbookDI.Fetcher, func(sr di.ServiceRegistry) app.Fetcher {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		recorder := sr.Get("recorder").(*metrics.Recorder)
		ob := cfg.Orderbook

		client, err := replay.NewClient(replay.Config{
			BaseURL:           ob.BaseURL,
			APIKey:            ob.APIKey,
			Timeout:           ob.Timeout,
			RequestsPerMinute: ob.RequestsPerMinute,
		}, log)
		if err != nil {
			panic("failed to create orderbook client: " + err.Error())
		}
		m.client = client

		var fetcher app.Fetcher = cache.NewCounting(client, recorder)

		if ob.RedisAddr != "" {
			ctx, cancel := context.WithTimeout(context.Background(), redisConnectTimeout)
			defer cancel()

			r, err := cache.NewRedis(ctx, fetcher, cache.RedisConfig{
				Addr:     ob.RedisAddr,
				Password: ob.RedisPassword,
				DB:       ob.RedisDB,
				TTL:      ob.RedisTTL,
			}, recorder, log)
			if err != nil {
				log.Warn(ctx, "redis orderbook cache disabled", "addr", ob.RedisAddr, "error", err)
			} else {
				m.redis = r
				fetcher = r
			}
		}

		if ob.CacheTTL > 0 {
			m.memory = cache.NewMemory(fetcher, ob.CacheTTL, ob.CacheSize, recorder, log)
			fetcher = m.memory
		}

		return fetcher
	})

	di.RegisterToken(c, orderbookDI.Service, func(sr di.ServiceRegistry) *app.Service {
		cfg := sr.Get("config").(*config.Config)
		if !cfg.Orderbook.Enabled {
			return nil
		}
		log := sr.Get("logger").(logger.LoggerInterface)
		return app.NewService(orderbookDI.GetFetcher(sr), app.NewNormalizer(), log)
	})

	return nil
}

// Startup builds the fetcher chain eagerly so configuration errors surface at boot.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()

	if orderbookDI.GetService(mono.Services()) == nil {
		log.Info(ctx, "orderbook module started", "live_data", false)
		return nil
	}

	mono.Health().RegisterCheck("orderbook_api", func(context.Context) (bool, string) {
		state := m.client.BreakerState()
		return state != gobreaker.StateOpen, fmt.Sprintf("circuit %s", state)
	})

	log.Info(ctx, "orderbook module started",
		"live_data", true,
		"memory_cache", m.memory != nil,
		"redis_cache", m.redis != nil,
	)
	return nil
}

// Close releases the caches.
func (m *Module) Close() error {
	if m.memory != nil {
		m.memory.Close()
	}
	if m.redis != nil {
		return m.redis.Close()
	}
	return nil
}
