package main

import (
	"flag"
	"testing"

	"github.com/shopspring/decimal"

	feesDomain "github.com/sanketagarwal/replay-fee-oracle/business/fees/domain"
	"github.com/sanketagarwal/replay-fee-oracle/internal/apperror"
)

func TestParseLeg(t *testing.T) {
	tests := []struct {
		name       string
		in         string
		wantVenue  feesDomain.Venue
		wantSide   feesDomain.Side
		wantSize   string
		wantPrice  string
		wantMarket string
		wantErr    bool
	}{
		{name: "minimal", in: "kalshi:buy:1000", wantVenue: "kalshi", wantSide: "BUY", wantSize: "1000"},
		{name: "with price", in: "Polymarket:SELL:250.5:0.525", wantVenue: "polymarket", wantSide: "SELL", wantSize: "250.5", wantPrice: "0.525"},
		{name: "with market", in: "kalshi:buy:1000:0.475:KXINX-25JAN15", wantVenue: "kalshi", wantSide: "BUY", wantSize: "1000", wantPrice: "0.475", wantMarket: "KXINX-25JAN15"},
		{name: "empty price", in: "kalshi:buy:1000::KXINX", wantVenue: "kalshi", wantSide: "BUY", wantSize: "1000", wantMarket: "KXINX"},
		{name: "too few fields", in: "kalshi:buy", wantErr: true},
		{name: "bad size", in: "kalshi:buy:lots", wantErr: true},
		{name: "bad price", in: "kalshi:buy:1000:half", wantErr: true},
		{name: "unknown side", in: "kalshi:foo:1000", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			leg, err := parseLeg(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatal("parseLeg() error = nil, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("parseLeg() error = %v", err)
			}
			if leg.Venue != tt.wantVenue || leg.Side != tt.wantSide || leg.MarketID != tt.wantMarket {
				t.Errorf("leg = %+v", leg)
			}
			if !leg.SizeUSD.Equal(decimal.RequireFromString(tt.wantSize)) {
				t.Errorf("size = %s, want %s", leg.SizeUSD, tt.wantSize)
			}
			if tt.wantPrice == "" {
				if leg.Price.Valid {
					t.Errorf("price = %s, want null", leg.Price.Decimal)
				}
			} else if !leg.Price.Valid || !leg.Price.Decimal.Equal(decimal.RequireFromString(tt.wantPrice)) {
				t.Errorf("price = %v, want %s", leg.Price, tt.wantPrice)
			}
		})
	}
}

func TestTradeFlags_Request(t *testing.T) {
	fs := flag.NewFlagSet("estimate", flag.ContinueOnError)
	var tf tradeFlags
	tf.register(fs)

	err := fs.Parse([]string{
		"-venue", "Aerodrome", "-size", "10000",
		"-pool-type", "Concentrated", "-tick-spacing", "200", "-impact", "0.3",
	})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	req, err := tf.request()
	if err != nil {
		t.Fatalf("request() error = %v", err)
	}
	if req.Venue != feesDomain.VenueAerodrome || req.OrderType != feesDomain.OrderTypeMarket {
		t.Errorf("req = %+v", req)
	}
	if req.Pool == nil || req.Pool.Type != feesDomain.PoolConcentrated || req.Pool.TickSpacing != 200 {
		t.Fatalf("pool = %+v", req.Pool)
	}
	if req.User != nil {
		t.Errorf("user = %+v, want nil", req.User)
	}

	var missing tradeFlags
	if _, err := missing.request(); err == nil {
		t.Error("request() without venue: error = nil")
	}
}

func TestTradeFlags_RejectsUnknownSideAndOrderType(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"side", []string{"-venue", "kalshi", "-size", "100", "-side", "FOO"}},
		{"order type", []string{"-venue", "kalshi", "-size", "100", "-order-type", "stop"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := flag.NewFlagSet("estimate", flag.ContinueOnError)
			var tf tradeFlags
			tf.register(fs)
			if err := fs.Parse(tt.args); err != nil {
				t.Fatalf("Parse() error = %v", err)
			}

			_, err := tf.request()
			if got := apperror.GetCode(err); got != apperror.CodeInvalidFormat {
				t.Errorf("request() code = %s, want %s (err %v)", got, apperror.CodeInvalidFormat, err)
			}
		})
	}
}
