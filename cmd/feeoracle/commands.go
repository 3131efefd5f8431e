package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"

	"github.com/shopspring/decimal"

	arbApp "github.com/sanketagarwal/replay-fee-oracle/business/arbitrage/app"
	feesDomain "github.com/sanketagarwal/replay-fee-oracle/business/fees/domain"
	"github.com/sanketagarwal/replay-fee-oracle/business/oracle/app"
)

func newFlagSet(name string) *flag.FlagSet {
	return flag.NewFlagSet(name, flag.ContinueOnError)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runSchedules(o *app.Oracle, args []string, w io.Writer) error {
	fs := newFlagSet("schedules")
	asJSON := fs.Bool("json", false, "print JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() > 0 {
		s, err := o.Schedule(feesDomain.ParseVenue(fs.Arg(0)))
		if err != nil {
			return err
		}
		if *asJSON {
			return printJSON(w, s)
		}
		return renderSchedule(w, s)
	}

	all := o.Schedules()
	if *asJSON {
		return printJSON(w, all)
	}
	return renderSchedules(w, all)
}

func runEstimate(ctx context.Context, o *app.Oracle, args []string, w io.Writer) error {
	fs := newFlagSet("estimate")
	var tf tradeFlags
	tf.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	req, err := tf.request()
	if err != nil {
		return err
	}

	est, err := o.Estimate(ctx, req)
	if err != nil {
		return err
	}
	if tf.json {
		return printJSON(w, est)
	}
	return renderEstimate(w, est)
}

func runCost(ctx context.Context, o *app.Oracle, args []string, w io.Writer) error {
	fs := newFlagSet("cost")
	var tf tradeFlags
	tf.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	req, err := tf.request()
	if err != nil {
		return err
	}

	cost, err := o.EstimateCost(ctx, req)
	if err != nil {
		return err
	}
	if tf.json {
		return printJSON(w, cost)
	}
	return renderCost(w, cost)
}

func runCompare(ctx context.Context, o *app.Oracle, args []string, w io.Writer) error {
	fs := newFlagSet("compare")
	var size, price decimalFlag
	fs.Var(&size, "size", "trade size in USD")
	fs.Var(&price, "price", "contract price for prediction markets")
	orderType := fs.String("order-type", string(feesDomain.OrderTypeMarket), "MARKET or LIMIT")
	side := fs.String("side", "", "BUY or SELL")
	asJSON := fs.Bool("json", false, "print JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if !size.Valid {
		return fmt.Errorf("-size is required")
	}

	parsedSide, parsedType, err := parseSideAndOrderType(*side, *orderType)
	if err != nil {
		return err
	}

	estimates, err := o.CompareVenues(ctx, size.Decimal, app.CompareOptions{
		Price:     price.NullDecimal,
		OrderType: parsedType,
		Side:      parsedSide,
	})
	if err != nil {
		return err
	}
	if *asJSON {
		return printJSON(w, estimates)
	}
	return renderCompare(w, estimates)
}

func runArb(ctx context.Context, o *app.Oracle, reporter arbApp.Reporter, args []string, w io.Writer) error {
	fs := newFlagSet("arb")
	var legs legsFlag
	var gross, minProfit decimalFlag
	fs.Var(&legs, "leg", "leg as venue:side:size[:price[:market]] (repeatable)")
	fs.Var(&gross, "gross", "expected gross profit in USD")
	fs.Var(&minProfit, "min-profit", "net profit threshold in percent of notional")
	asJSON := fs.Bool("json", false, "print JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if len(legs) == 0 {
		return fmt.Errorf("at least one -leg is required")
	}
	if !gross.Valid {
		gross.NullDecimal = decimal.NewNullDecimal(decimal.Zero)
	}

	analysis, err := o.AnalyzeArbitrage(ctx, legs, gross.Decimal, minProfit.NullDecimal)
	if err != nil {
		return err
	}
	if *asJSON {
		return printJSON(w, analysis)
	}
	return reporter.Report(w, analysis)
}
