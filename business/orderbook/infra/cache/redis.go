package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	feesDomain "github.com/sanketagarwal/replay-fee-oracle/business/fees/domain"
	"github.com/sanketagarwal/replay-fee-oracle/business/orderbook/app"
	"github.com/sanketagarwal/replay-fee-oracle/internal/apperror"
	"github.com/sanketagarwal/replay-fee-oracle/internal/logger"
	"github.com/sanketagarwal/replay-fee-oracle/internal/metrics"
)

// RedisConfig holds connection parameters.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// Redis is a shared read-through cache in front of another fetcher. Redis
// failures never fail a fetch; they fall through to the next fetcher.
type Redis struct {
	next     app.Fetcher
	rdb      *redis.Client
	ttl      time.Duration
	recorder *metrics.Recorder
	log      logger.LoggerInterface
}

var _ app.Fetcher = (*Redis)(nil)

// NewRedis connects to Redis and pings it. Cached payloads always expire,
// so a non-positive TTL is rejected.
func NewRedis(ctx context.Context, next app.Fetcher, cfg RedisConfig, recorder *metrics.Recorder, log logger.LoggerInterface) (*Redis, error) {
	if cfg.TTL <= 0 {
		return nil, apperror.New(apperror.CodeConfigurationError,
			apperror.WithContext(fmt.Sprintf("redis ttl %s must be positive", cfg.TTL)))
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}

	return newRedis(next, rdb, cfg.TTL, recorder, log), nil
}

func newRedis(next app.Fetcher, rdb *redis.Client, ttl time.Duration, recorder *metrics.Recorder, log logger.LoggerInterface) *Redis {
	return &Redis{next: next, rdb: rdb, ttl: ttl, recorder: recorder, log: log}
}

// FetchOrderbook serves a cached payload or fetches and stores a fresh one.
func (r *Redis) FetchOrderbook(ctx context.Context, venue feesDomain.Venue, marketID string) (*app.RawOrderbook, error) {
	k := key(venue, marketID)

	data, err := r.rdb.Get(ctx, k).Bytes()
	switch {
	case err == nil:
		var raw app.RawOrderbook
		if jsonErr := json.Unmarshal(data, &raw); jsonErr == nil {
			r.log.Debug(ctx, "orderbook cache hit", "venue", venue, "market_id", marketID, "source", SourceRedis)
			r.recorder.OrderbookFetch(ctx, venue.String(), SourceRedis)
			return &raw, nil
		}
		r.log.Warn(ctx, "discarding corrupt cached orderbook", "key", k)
	case !errors.Is(err, redis.Nil):
		r.log.Warn(ctx, "redis orderbook cache unavailable", "key", k, "error", err)
	}

	raw, err := r.next.FetchOrderbook(ctx, venue, marketID)
	if err != nil || raw == nil {
		return raw, err
	}

	if encoded, err := json.Marshal(raw); err == nil {
		if err := r.rdb.Set(ctx, k, encoded, r.ttl).Err(); err != nil {
			r.log.Warn(ctx, "failed to cache orderbook", "key", k, "error", err)
		}
	}

	return raw, nil
}

// Ping checks the connection.
func (r *Redis) Ping(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}

// Close closes the connection.
func (r *Redis) Close() error {
	return r.rdb.Close()
}
