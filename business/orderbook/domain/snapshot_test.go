package domain

import (
	"testing"
	"time"

	feesDomain "github.com/sanketagarwal/replay-fee-oracle/business/fees/domain"
	"github.com/shopspring/decimal"
)

var ts = time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)

func lvl(price, size string) Level {
	return Level{Price: decimal.RequireFromString(price), Size: decimal.RequireFromString(size)}
}

func TestNewSnapshot_SortsAndDerivesTopOfBook(t *testing.T) {
	s := NewSnapshot(feesDomain.VenuePolymarket, "m1", ts,
		[]Level{lvl("0.44", "200"), lvl("0.45", "100"), lvl("0", "50"), lvl("0.43", "-1")},
		[]Level{lvl("0.49", "100"), lvl("0.47", "150")},
		true,
	)

	if len(s.Bids) != 2 || len(s.Asks) != 2 {
		t.Fatalf("levels = %d bids / %d asks, want 2 / 2", len(s.Bids), len(s.Asks))
	}
	if !s.Bids[0].Price.Equal(decimal.RequireFromString("0.45")) {
		t.Errorf("bids not descending: %v", s.Bids)
	}
	if !s.Asks[0].Price.Equal(decimal.RequireFromString("0.47")) {
		t.Errorf("asks not ascending: %v", s.Asks)
	}
	for _, l := range s.Bids {
		if l.Side != LevelBid {
			t.Errorf("bid tagged %s", l.Side)
		}
	}

	checks := []struct {
		name string
		got  decimal.Decimal
		want string
	}{
		{"best bid", s.BestBid, "0.45"},
		{"best ask", s.BestAsk, "0.47"},
		{"mid", s.MidPrice, "0.46"},
		{"spread", s.Spread, "0.02"},
		{"bid depth", s.BidDepthUSD, "133"},
		{"ask depth", s.AskDepthUSD, "119.5"},
	}
	for _, c := range checks {
		if !c.got.Equal(decimal.RequireFromString(c.want)) {
			t.Errorf("%s = %s, want %s", c.name, c.got, c.want)
		}
	}

	if s.BestBid.GreaterThan(s.MidPrice) || s.MidPrice.GreaterThan(s.BestAsk) {
		t.Errorf("bid <= mid <= ask violated: %s %s %s", s.BestBid, s.MidPrice, s.BestAsk)
	}
	if got := s.SpreadBps.Round(2); !got.Equal(decimal.RequireFromString("434.78")) {
		t.Errorf("spread bps = %s, want 434.78", got)
	}
}

func TestNewSnapshot_EmptySides(t *testing.T) {
	tests := []struct {
		name              string
		bids, asks        []Level
		bounded           bool
		wantBid, wantAsk  string
		wantSpreadBpsZero bool
	}{
		{"bounded no asks", []Level{lvl("0.40", "10")}, nil, true, "0.40", "1", false},
		{"bounded no bids", nil, []Level{lvl("0.60", "10")}, true, "0", "0.60", false},
		{"bounded empty", nil, nil, true, "0", "1", false},
		{"unbounded no asks", []Level{lvl("2500", "1")}, nil, false, "2500", "2500", true},
		{"unbounded no bids", nil, []Level{lvl("2501", "1")}, false, "2501", "2501", true},
		{"unbounded empty", nil, nil, false, "0", "0", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSnapshot(feesDomain.VenueHyperliquid, "ETH", ts, tt.bids, tt.asks, tt.bounded)
			if !s.BestBid.Equal(decimal.RequireFromString(tt.wantBid)) {
				t.Errorf("best bid = %s, want %s", s.BestBid, tt.wantBid)
			}
			if !s.BestAsk.Equal(decimal.RequireFromString(tt.wantAsk)) {
				t.Errorf("best ask = %s, want %s", s.BestAsk, tt.wantAsk)
			}
			if tt.wantSpreadBpsZero && !s.SpreadBps.IsZero() {
				t.Errorf("spread bps = %s, want 0", s.SpreadBps)
			}
		})
	}
}

func TestSnapshot_Crossed(t *testing.T) {
	s := NewSnapshot(feesDomain.VenueKalshi, "m", ts, []Level{lvl("0.55", "1")}, []Level{lvl("0.50", "1")}, true)
	if !s.Crossed() {
		t.Error("expected crossed book")
	}
}
