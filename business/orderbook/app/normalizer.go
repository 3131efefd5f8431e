package app

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	feesDomain "github.com/sanketagarwal/replay-fee-oracle/business/fees/domain"
	"github.com/sanketagarwal/replay-fee-oracle/business/orderbook/domain"
	"github.com/sanketagarwal/replay-fee-oracle/internal/apperror"
	"github.com/shopspring/decimal"
)

var (
	one   = decimal.NewFromInt(1)
	cents = decimal.NewFromInt(100)
)

// parser decodes one venue's payload into unsorted bid and ask levels. A
// non-zero time overrides the envelope timestamp.
type parser func(data json.RawMessage) (bids, asks []domain.Level, ts time.Time, err error)

type venueFormat struct {
	parse   parser
	bounded bool
}

// Normalizer turns raw venue payloads into canonical snapshots. Every venue
// quirk lives here.
type Normalizer struct {
	formats map[feesDomain.Venue]venueFormat
	now     func() time.Time
}

// NewNormalizer returns a normalizer for the venues that publish a book.
func NewNormalizer() *Normalizer {
	return &Normalizer{
		formats: map[feesDomain.Venue]venueFormat{
			feesDomain.VenueKalshi:      {parse: parseKalshi, bounded: true},
			feesDomain.VenuePolymarket:  {parse: parsePolymarket, bounded: true},
			feesDomain.VenueHyperliquid: {parse: parseHyperliquid, bounded: false},
		},
		now: time.Now,
	}
}

// Supports reports whether venue has a known payload format.
func (n *Normalizer) Supports(venue feesDomain.Venue) bool {
	_, ok := n.formats[venue]
	return ok
}

// Normalize decodes raw into a sorted snapshot.
func (n *Normalizer) Normalize(raw *RawOrderbook) (*domain.Snapshot, error) {
	if raw == nil {
		return nil, apperror.New(apperror.CodeInvalidOrderbook, apperror.WithContext("empty payload"))
	}

	format, ok := n.formats[raw.Venue]
	if !ok {
		return nil, apperror.New(apperror.CodeOrderbookUnsupported, apperror.WithContext("venue="+raw.Venue.String()))
	}

	if len(raw.Data) == 0 {
		return nil, apperror.New(apperror.CodeInvalidOrderbook,
			apperror.WithContext(fmt.Sprintf("venue=%s market=%s: no data", raw.Venue, raw.MarketID)))
	}

	bids, asks, ts, err := format.parse(raw.Data)
	if err != nil {
		return nil, apperror.New(apperror.CodeInvalidOrderbook,
			apperror.WithContext(fmt.Sprintf("venue=%s market=%s", raw.Venue, raw.MarketID)),
			apperror.WithCause(err))
	}

	if ts.IsZero() {
		ts = raw.Timestamp
	}
	if ts.IsZero() {
		ts = n.now()
	}

	return domain.NewSnapshot(raw.Venue, raw.MarketID, ts.UTC(), bids, asks, format.bounded), nil
}

// kalshiBook carries resting bids for both outcomes. A NO bid at p is a YES
// ask at 1-p. Prices arrive either in cents or, in the *_dollars arrays, as
// decimal strings.
type kalshiBook struct {
	Orderbook struct {
		Yes        [][2]json.Number `json:"yes"`
		No         [][2]json.Number `json:"no"`
		YesDollars [][2]json.Number `json:"yes_dollars"`
		NoDollars  [][2]json.Number `json:"no_dollars"`
	} `json:"orderbook"`
}

func parseKalshi(data json.RawMessage) ([]domain.Level, []domain.Level, time.Time, error) {
	var book kalshiBook
	if err := json.Unmarshal(data, &book); err != nil {
		return nil, nil, time.Time{}, err
	}

	ob := book.Orderbook
	yes, yesScale := ob.YesDollars, one
	if len(yes) == 0 {
		yes, yesScale = ob.Yes, cents
	}
	no, noScale := ob.NoDollars, one
	if len(no) == 0 {
		no, noScale = ob.No, cents
	}

	bids := make([]domain.Level, 0, len(yes))
	for _, pair := range yes {
		price, size, err := pairValues(pair)
		if err != nil {
			return nil, nil, time.Time{}, err
		}
		bids = append(bids, domain.Level{Price: price.Div(yesScale), Size: size})
	}

	asks := make([]domain.Level, 0, len(no))
	for _, pair := range no {
		price, size, err := pairValues(pair)
		if err != nil {
			return nil, nil, time.Time{}, err
		}
		asks = append(asks, domain.Level{Price: one.Sub(price.Div(noScale)), Size: size})
	}

	return bids, asks, time.Time{}, nil
}

func pairValues(pair [2]json.Number) (decimal.Decimal, decimal.Decimal, error) {
	price, err := decimal.NewFromString(pair[0].String())
	if err != nil {
		return decimal.Decimal{}, decimal.Decimal{}, fmt.Errorf("price %q: %w", pair[0], err)
	}
	size, err := decimal.NewFromString(pair[1].String())
	if err != nil {
		return decimal.Decimal{}, decimal.Decimal{}, fmt.Errorf("size %q: %w", pair[1], err)
	}
	return price, size, nil
}

type polymarketLevel struct {
	Price decimal.Decimal `json:"price"`
	Size  decimal.Decimal `json:"size"`
}

type polymarketBook struct {
	Market    string            `json:"market"`
	AssetID   string            `json:"asset_id"`
	Timestamp string            `json:"timestamp"`
	Bids      []polymarketLevel `json:"bids"`
	Asks      []polymarketLevel `json:"asks"`
}

func parsePolymarket(data json.RawMessage) ([]domain.Level, []domain.Level, time.Time, error) {
	var book polymarketBook
	if err := json.Unmarshal(data, &book); err != nil {
		return nil, nil, time.Time{}, err
	}

	bids := make([]domain.Level, 0, len(book.Bids))
	for _, l := range book.Bids {
		bids = append(bids, domain.Level{Price: l.Price, Size: l.Size})
	}
	asks := make([]domain.Level, 0, len(book.Asks))
	for _, l := range book.Asks {
		asks = append(asks, domain.Level{Price: l.Price, Size: l.Size})
	}

	return bids, asks, millis(book.Timestamp), nil
}

type hyperliquidLevel struct {
	Px decimal.Decimal `json:"px"`
	Sz decimal.Decimal `json:"sz"`
	N  int             `json:"n"`
}

// hyperliquidBook is the l2Book shape: Levels[0] bids, Levels[1] asks.
type hyperliquidBook struct {
	Coin   string               `json:"coin"`
	Time   int64                `json:"time"`
	Levels [][]hyperliquidLevel `json:"levels"`
}

func parseHyperliquid(data json.RawMessage) ([]domain.Level, []domain.Level, time.Time, error) {
	var book hyperliquidBook
	if err := json.Unmarshal(data, &book); err != nil {
		return nil, nil, time.Time{}, err
	}
	if len(book.Levels) != 2 {
		return nil, nil, time.Time{}, fmt.Errorf("expected 2 level arrays, got %d", len(book.Levels))
	}

	convert := func(in []hyperliquidLevel) []domain.Level {
		out := make([]domain.Level, 0, len(in))
		for _, l := range in {
			out = append(out, domain.Level{Price: l.Px, Size: l.Sz})
		}
		return out
	}

	var ts time.Time
	if book.Time > 0 {
		ts = time.UnixMilli(book.Time)
	}
	return convert(book.Levels[0]), convert(book.Levels[1]), ts, nil
}

func millis(s string) time.Time {
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil || ms <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}
