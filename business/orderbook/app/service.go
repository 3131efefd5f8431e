package app

import (
	"context"

	feesDomain "github.com/sanketagarwal/replay-fee-oracle/business/fees/domain"
	"github.com/sanketagarwal/replay-fee-oracle/business/orderbook/domain"
	"github.com/sanketagarwal/replay-fee-oracle/internal/apm"
	"github.com/sanketagarwal/replay-fee-oracle/internal/apperror"
	"github.com/sanketagarwal/replay-fee-oracle/internal/logger"
	"go.opentelemetry.io/otel/attribute"
)

// Service fetches raw books and normalizes them into snapshots.
type Service struct {
	fetcher    Fetcher
	normalizer *Normalizer
	tracer     apm.Tracer
	log        logger.LoggerInterface
}

// NewService creates a Service. A nil normalizer uses NewNormalizer.
func NewService(fetcher Fetcher, normalizer *Normalizer, log logger.LoggerInterface) *Service {
	if normalizer == nil {
		normalizer = NewNormalizer()
	}
	return &Service{
		fetcher:    fetcher,
		normalizer: normalizer,
		tracer:     apm.NewTracer("orderbook"),
		log:        log,
	}
}

// Supports reports whether venue publishes a book this service can read.
func (s *Service) Supports(venue feesDomain.Venue) bool {
	return s.normalizer.Supports(venue)
}

// Snapshot fetches and normalizes the current book for a market.
func (s *Service) Snapshot(ctx context.Context, venue feesDomain.Venue, marketID string) (*domain.Snapshot, error) {
	ctx, span := s.tracer.StartSpanFromContext(ctx, "orderbook.fetch")
	defer span.End()
	span.SetAttributes(
		attribute.String("venue", venue.String()),
		attribute.String("market_id", marketID),
	)

	if !s.normalizer.Supports(venue) {
		err := apperror.New(apperror.CodeOrderbookUnsupported, apperror.WithContext("venue="+venue.String()))
		span.NoticeError(err)
		return nil, err
	}
	if marketID == "" {
		err := apperror.Validation(apperror.CodeRequiredField, "market_id")
		span.NoticeError(err)
		return nil, err
	}

	raw, err := s.fetcher.FetchOrderbook(ctx, venue, marketID)
	if err != nil {
		span.NoticeError(err)
		return nil, apperror.Wrap(err, apperror.CodeOrderbookFetchFailed, "venue="+venue.String())
	}
	if raw == nil {
		err := apperror.New(apperror.CodeInvalidOrderbook,
			apperror.WithContext("venue="+venue.String()+" market_id="+marketID),
			apperror.WithMessage("fetcher returned an empty payload"))
		span.NoticeError(err)
		return nil, err
	}

	if raw.Venue == "" {
		raw.Venue = venue
	}
	if raw.MarketID == "" {
		raw.MarketID = marketID
	}

	snapshot, err := s.normalizer.Normalize(raw)
	if err != nil {
		span.NoticeError(err)
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("bid_levels", len(snapshot.Bids)),
		attribute.Int("ask_levels", len(snapshot.Asks)),
	)
	s.log.Debug(ctx, "orderbook normalized",
		"venue", venue,
		"market_id", marketID,
		"best_bid", snapshot.BestBid.String(),
		"best_ask", snapshot.BestAsk.String(),
		"spread_bps", snapshot.SpreadBps.StringFixed(2),
	)

	return snapshot, nil
}
