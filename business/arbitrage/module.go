// Package arbitrage implements multi-leg arbitrage profitability analysis.
package arbitrage

import (
	"context"

	"github.com/sanketagarwal/replay-fee-oracle/business/arbitrage/app"
	arbDI "github.com/sanketagarwal/replay-fee-oracle/business/arbitrage/di"
	"github.com/sanketagarwal/replay-fee-oracle/business/arbitrage/infra"
	costsDI "github.com/sanketagarwal/replay-fee-oracle/business/costs/di"
	feesDI "github.com/sanketagarwal/replay-fee-oracle/business/fees/di"
	"github.com/sanketagarwal/replay-fee-oracle/internal/di"
	"github.com/sanketagarwal/replay-fee-oracle/internal/logger"
	"github.com/sanketagarwal/replay-fee-oracle/internal/metrics"
	"github.com/sanketagarwal/replay-fee-oracle/internal/monolith"
)

// Module implements the arbitrage bounded context.
type Module struct{}

// RegisterServices registers the analyzer and the console reporter.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, arbDI.Analyzer, func(sr di.ServiceRegistry) *app.Analyzer {
		log := sr.Get("logger").(logger.LoggerInterface)
		recorder := sr.Get("recorder").(*metrics.Recorder)

		return app.NewAnalyzer(feesDI.GetRegistry(sr),
			app.WithCostEstimator(costsDI.GetEstimator(sr)),
			app.WithRecorder(recorder),
			app.WithLogger(log),
		)
	})

	di.RegisterToken(c, arbDI.Reporter, func(di.ServiceRegistry) app.Reporter {
		return infra.NewConsoleReporter()
	})

	return nil
}

// Startup initializes the arbitrage module.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	arbDI.GetAnalyzer(mono.Services())
	mono.Logger().Info(ctx, "arbitrage module started",
		"min_profit_pct", mono.Config().Oracle.MinProfitPct,
	)
	return nil
}
