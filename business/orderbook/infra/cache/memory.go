// Package cache decorates an orderbook fetcher with short-lived payload
// caches. Only raw payloads are cached; normalization runs on every call.
package cache

import (
	"context"
	"time"

	feesDomain "github.com/sanketagarwal/replay-fee-oracle/business/fees/domain"
	"github.com/sanketagarwal/replay-fee-oracle/business/orderbook/app"
	"github.com/sanketagarwal/replay-fee-oracle/internal/cache"
	"github.com/sanketagarwal/replay-fee-oracle/internal/logger"
	"github.com/sanketagarwal/replay-fee-oracle/internal/metrics"
)

// Sources reported to the orderbook_fetches_total counter.
const (
	SourceAPI    = "api"
	SourceMemory = "memory"
	SourceRedis  = "redis"
)

func key(venue feesDomain.Venue, marketID string) string {
	return "orderbook:" + venue.String() + ":" + marketID
}

// Memory is an in-process LRU in front of another fetcher.
type Memory struct {
	next     app.Fetcher
	items    *cache.Cache[string, *app.RawOrderbook]
	recorder *metrics.Recorder
	log      logger.LoggerInterface
}

var _ app.Fetcher = (*Memory)(nil)

// NewMemory caches up to size payloads for ttl.
func NewMemory(next app.Fetcher, ttl time.Duration, size int, recorder *metrics.Recorder, log logger.LoggerInterface) *Memory {
	return &Memory{
		next:     next,
		items:    cache.New[string, *app.RawOrderbook](ttl, cache.WithSize(size)),
		recorder: recorder,
		log:      log,
	}
}

// FetchOrderbook serves a cached payload or fetches and stores a fresh one.
func (m *Memory) FetchOrderbook(ctx context.Context, venue feesDomain.Venue, marketID string) (*app.RawOrderbook, error) {
	k := key(venue, marketID)
	if raw, ok := m.items.Get(ctx, k); ok {
		m.log.Debug(ctx, "orderbook cache hit", "venue", venue, "market_id", marketID, "source", SourceMemory)
		m.recorder.OrderbookFetch(ctx, venue.String(), SourceMemory)
		return clone(raw), nil
	}

	raw, err := m.next.FetchOrderbook(ctx, venue, marketID)
	if err != nil || raw == nil {
		return raw, err
	}

	m.items.Set(ctx, k, clone(raw))
	return raw, nil
}

// Counting records every payload that reaches the API.
type Counting struct {
	next     app.Fetcher
	recorder *metrics.Recorder
}

// NewCounting wraps the API fetcher.
func NewCounting(next app.Fetcher, recorder *metrics.Recorder) *Counting {
	return &Counting{next: next, recorder: recorder}
}

// FetchOrderbook delegates and counts successes.
func (c *Counting) FetchOrderbook(ctx context.Context, venue feesDomain.Venue, marketID string) (*app.RawOrderbook, error) {
	raw, err := c.next.FetchOrderbook(ctx, venue, marketID)
	if err == nil {
		c.recorder.OrderbookFetch(ctx, venue.String(), SourceAPI)
	}
	return raw, err
}

// Close drops every cached payload.
func (m *Memory) Close() {
	m.items.Close()
}

func clone(raw *app.RawOrderbook) *app.RawOrderbook {
	if raw == nil {
		return nil
	}
	c := *raw
	c.Data = append([]byte(nil), raw.Data...)
	return &c
}
