package main

import (
	"flag"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	arbDomain "github.com/sanketagarwal/replay-fee-oracle/business/arbitrage/domain"
	feesDomain "github.com/sanketagarwal/replay-fee-oracle/business/fees/domain"
	"github.com/sanketagarwal/replay-fee-oracle/internal/apperror"
)

// decimalFlag is an optional decimal flag; unset stays null.
type decimalFlag struct {
	decimal.NullDecimal
}

func (f *decimalFlag) String() string {
	if !f.Valid {
		return ""
	}
	return f.Decimal.String()
}

func (f *decimalFlag) Set(s string) error {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return err
	}
	f.NullDecimal = decimal.NewNullDecimal(d)
	return nil
}

// tradeFlags are the flags shared by estimate and cost.
type tradeFlags struct {
	venue       string
	size        decimalFlag
	price       decimalFlag
	orderType   string
	side        string
	marketID    string
	poolType    string
	tickSpacing int
	impact      decimalFlag
	volume      decimalFlag
	staked      decimalFlag
	json        bool
}

func (t *tradeFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&t.venue, "venue", "", "venue (kalshi, polymarket, hyperliquid, aerodrome)")
	fs.Var(&t.size, "size", "trade size in USD")
	fs.Var(&t.price, "price", "contract price in [0,1] for prediction markets")
	fs.StringVar(&t.orderType, "order-type", string(feesDomain.OrderTypeMarket), "MARKET (taker) or LIMIT (maker)")
	fs.StringVar(&t.side, "side", "", "BUY or SELL")
	fs.StringVar(&t.marketID, "market", "", "market id, ticker or pool address")
	fs.StringVar(&t.poolType, "pool-type", "", "volatile, stable or concentrated")
	fs.IntVar(&t.tickSpacing, "tick-spacing", 0, "concentrated pool tick spacing")
	fs.Var(&t.impact, "impact", "quoted pool price impact in percent")
	fs.Var(&t.volume, "volume", "trailing 14-day volume in USD")
	fs.Var(&t.staked, "staked", "staked token balance")
	fs.BoolVar(&t.json, "json", false, "print JSON")
}

func (t *tradeFlags) request() (feesDomain.TradeRequest, error) {
	if t.venue == "" {
		return feesDomain.TradeRequest{}, fmt.Errorf("-venue is required")
	}
	if !t.size.Valid {
		return feesDomain.TradeRequest{}, fmt.Errorf("-size is required")
	}

	side, orderType, err := parseSideAndOrderType(t.side, t.orderType)
	if err != nil {
		return feesDomain.TradeRequest{}, err
	}

	req := feesDomain.TradeRequest{
		Venue:     feesDomain.ParseVenue(t.venue),
		SizeUSD:   t.size.Decimal,
		OrderType: orderType,
		Price:     t.price.NullDecimal,
		MarketID:  t.marketID,
		Side:      side,
	}

	if t.volume.Valid || t.staked.Valid {
		req.User = &feesDomain.UserContext{
			TrailingVolumeUSD: t.volume.Decimal,
			StakedBalance:     t.staked.Decimal,
		}
	}
	if t.poolType != "" || t.tickSpacing != 0 || t.impact.Valid {
		req = req.WithPool(feesDomain.PoolContext{
			Type:           feesDomain.PoolType(strings.ToLower(t.poolType)),
			TickSpacing:    t.tickSpacing,
			PriceImpactPct: t.impact.NullDecimal,
		})
	}

	return req, nil
}

// legsFlag collects repeated -leg venue:side:size[:price[:market]] values.
type legsFlag []arbDomain.TradeLeg

func (l *legsFlag) String() string {
	parts := make([]string, len(*l))
	for i, leg := range *l {
		parts[i] = fmt.Sprintf("%s:%s:%s", leg.Venue, leg.Side, leg.SizeUSD)
	}
	return strings.Join(parts, ",")
}

func (l *legsFlag) Set(s string) error {
	leg, err := parseLeg(s)
	if err != nil {
		return err
	}
	*l = append(*l, leg)
	return nil
}

func parseLeg(s string) (arbDomain.TradeLeg, error) {
	fields := strings.Split(s, ":")
	if len(fields) < 3 || len(fields) > 5 {
		return arbDomain.TradeLeg{}, fmt.Errorf("leg %q: want venue:side:size[:price[:market]]", s)
	}

	size, err := decimal.NewFromString(fields[2])
	if err != nil {
		return arbDomain.TradeLeg{}, fmt.Errorf("leg %q: size: %w", s, err)
	}

	side, ok := feesDomain.ParseSide(fields[1])
	if !ok {
		return arbDomain.TradeLeg{}, fmt.Errorf("leg %q: side must be BUY or SELL", s)
	}

	leg := arbDomain.TradeLeg{
		Venue:     feesDomain.ParseVenue(fields[0]),
		Side:      side,
		SizeUSD:   size,
		OrderType: feesDomain.OrderTypeMarket,
	}

	if len(fields) > 3 && fields[3] != "" {
		p, err := decimal.NewFromString(fields[3])
		if err != nil {
			return arbDomain.TradeLeg{}, fmt.Errorf("leg %q: price: %w", s, err)
		}
		leg.Price = decimal.NewNullDecimal(p)
	}
	if len(fields) > 4 {
		leg.MarketID = fields[4]
	}

	return leg, nil
}

// parseSideAndOrderType validates the optional side and order type inputs.
func parseSideAndOrderType(side, orderType string) (feesDomain.Side, feesDomain.OrderType, error) {
	s, ok := feesDomain.ParseSide(side)
	if !ok {
		return "", "", apperror.Validation(apperror.CodeInvalidFormat, "side="+side+" (want BUY or SELL)")
	}
	o, ok := feesDomain.ParseOrderType(orderType)
	if !ok {
		return "", "", apperror.Validation(apperror.CodeInvalidFormat, "order_type="+orderType+" (want MARKET or LIMIT)")
	}
	return s, o, nil
}
