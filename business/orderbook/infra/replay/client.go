// Package replay fetches raw orderbooks from the Replay Labs market data API.
package replay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel/metric"

	feesDomain "github.com/sanketagarwal/replay-fee-oracle/business/fees/domain"
	"github.com/sanketagarwal/replay-fee-oracle/business/orderbook/app"
	"github.com/sanketagarwal/replay-fee-oracle/internal/apperror"
	"github.com/sanketagarwal/replay-fee-oracle/internal/circuitbreaker"
	"github.com/sanketagarwal/replay-fee-oracle/internal/httpclient"
	"github.com/sanketagarwal/replay-fee-oracle/internal/logger"
	"github.com/sanketagarwal/replay-fee-oracle/internal/ratelimit"
)

const (
	DefaultBaseURL = "https://api.replaylab.io"

	orderbookPath  = "/v1/orderbooks/"
	apiKeyHeader   = "X-API-Key"
	defaultTimeout = 10 * time.Second
)

// Config holds the client settings.
type Config struct {
	BaseURL           string
	APIKey            string
	Timeout           time.Duration
	RequestsPerMinute int
	MeterProvider     metric.MeterProvider
	Breaker           *circuitbreaker.Config
}

// envelope is the API response wrapping the venue payload.
type envelope struct {
	Venue     string          `json:"venue"`
	MarketID  string          `json:"market_id"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Client implements app.Fetcher over HTTP with an API key, a rate limiter
// and a circuit breaker.
type Client struct {
	http    httpclient.Client
	limiter *ratelimit.Limiter
	breaker *circuitbreaker.CircuitBreaker[*app.RawOrderbook]
	log     logger.LoggerInterface
}

var _ app.Fetcher = (*Client)(nil)

// NewClient creates a Client.
func NewClient(cfg Config, log logger.LoggerInterface) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, apperror.New(apperror.CodeConfigurationError, apperror.WithContext("orderbook api key is required"))
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	opts := []httpclient.ClientOption{
		httpclient.WithProviderName("replay"),
		httpclient.WithBaseURL(cfg.BaseURL),
		httpclient.WithRequestTimeout(cfg.Timeout),
		httpclient.WithHeaders(map[string]string{
			"Accept":     "application/json",
			apiKeyHeader: cfg.APIKey,
		}),
	}
	if cfg.MeterProvider != nil {
		opts = append(opts, httpclient.WithMeterProvider(cfg.MeterProvider))
	}

	client, err := httpclient.NewInstrumentedClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	breakerCfg := circuitbreaker.DefaultConfig("replay-orderbooks")
	if cfg.Breaker != nil {
		breakerCfg = *cfg.Breaker
	}
	breakerCfg.IsSuccessful = isSuccessful
	breakerCfg.OnStateChange = func(name string, from, to gobreaker.State) {
		log.Warn(context.Background(), "circuit breaker state changed",
			"breaker", name, "from", from.String(), "to", to.String())
	}

	return &Client{
		http:    client,
		limiter: ratelimit.New(cfg.RequestsPerMinute),
		breaker: circuitbreaker.New[*app.RawOrderbook](breakerCfg),
		log:     log,
	}, nil
}

// FetchOrderbook returns the raw book for marketID on venue.
func (c *Client) FetchOrderbook(ctx context.Context, venue feesDomain.Venue, marketID string) (*app.RawOrderbook, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, apperror.New(apperror.CodeRateLimitExceeded, apperror.WithCause(err))
	}

	raw, err := c.breaker.Execute(func() (*app.RawOrderbook, error) {
		return c.fetch(ctx, venue, marketID)
	})
	if err != nil {
		if circuitbreaker.IsRejection(err) {
			return nil, apperror.New(apperror.CodeCircuitOpen,
				apperror.WithContext("venue="+venue.String()), apperror.WithCause(err))
		}
		return nil, err
	}
	return raw, nil
}

// BreakerState exposes the breaker for health checks.
func (c *Client) BreakerState() gobreaker.State {
	return c.breaker.State()
}

func (c *Client) fetch(ctx context.Context, venue feesDomain.Venue, marketID string) (*app.RawOrderbook, error) {
	var env envelope
	_, err := c.http.NewRequest(
		httpclient.WithLabels(
			httpclient.Label{Key: "endpoint", Value: "orderbooks"},
			httpclient.Label{Key: "venue", Value: venue.String()},
		),
		httpclient.WithResponseErrorHandler(apiErrorHandler),
	).
		SetQueryParam("market_id", marketID).
		SetResult(&env).
		Get(ctx, orderbookPath+venue.String())
	if err != nil {
		if apperror.IsAppError(err) {
			return nil, err
		}
		return nil, apperror.External(apperror.CodeOrderbookFetchFailed,
			fmt.Sprintf("venue=%s market=%s", venue, marketID), err)
	}

	if len(env.Data) == 0 {
		return nil, apperror.New(apperror.CodeInvalidOrderbook,
			apperror.WithContext(fmt.Sprintf("venue=%s market=%s: empty data", venue, marketID)))
	}

	raw := &app.RawOrderbook{
		Venue:     venue,
		MarketID:  marketID,
		Timestamp: env.Timestamp,
		Data:      env.Data,
	}
	if env.Venue != "" {
		raw.Venue = feesDomain.ParseVenue(env.Venue)
	}
	if env.MarketID != "" {
		raw.MarketID = env.MarketID
	}

	c.log.Debug(ctx, "orderbook fetched", "venue", venue, "market_id", marketID, "bytes", len(env.Data))
	return raw, nil
}

func apiErrorHandler(statusCode int, body []byte) error {
	if statusCode < http.StatusBadRequest {
		return nil
	}

	msg := http.StatusText(statusCode)
	var payload apiError
	if json.Unmarshal(body, &payload) == nil {
		switch {
		case payload.Message != "":
			msg = payload.Message
		case payload.Error != "":
			msg = payload.Error
		}
	}

	return apperror.New(apperror.CodeOrderbookAPIError,
		apperror.WithStatusCode(statusCode),
		apperror.WithContext(fmt.Sprintf("HTTP %d: %s", statusCode, msg)))
}

// isSuccessful keeps client errors (unknown market, bad key) from tripping
// the breaker.
func isSuccessful(err error) bool {
	if err == nil {
		return true
	}
	var appErr *apperror.AppError
	if errors.As(err, &appErr) && appErr.Code == apperror.CodeOrderbookAPIError {
		return appErr.StatusCode < http.StatusInternalServerError && appErr.StatusCode != http.StatusTooManyRequests
	}
	return false
}
