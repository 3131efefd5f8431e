// Package oracle wires the process-wide Oracle from the other contexts.
package oracle

import (
	"context"

	arbDI "github.com/sanketagarwal/replay-fee-oracle/business/arbitrage/di"
	costsDI "github.com/sanketagarwal/replay-fee-oracle/business/costs/di"
	feesDI "github.com/sanketagarwal/replay-fee-oracle/business/fees/di"
	"github.com/sanketagarwal/replay-fee-oracle/business/oracle/app"
	oracleDI "github.com/sanketagarwal/replay-fee-oracle/business/oracle/di"
	"github.com/sanketagarwal/replay-fee-oracle/internal/config"
	"github.com/sanketagarwal/replay-fee-oracle/internal/di"
	"github.com/sanketagarwal/replay-fee-oracle/internal/logger"
	"github.com/sanketagarwal/replay-fee-oracle/internal/metrics"
	"github.com/sanketagarwal/replay-fee-oracle/internal/monolith"
)

// Module implements the oracle façade.
type Module struct{}

// RegisterServices registers the oracle over the shared registry, cost
// estimator and analyzer.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, oracleDI.Oracle, func(sr di.ServiceRegistry) *app.Oracle {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		recorder := sr.Get("recorder").(*metrics.Recorder)

		return app.New(feesDI.GetRegistry(sr),
			app.WithEstimator(costsDI.GetEstimator(sr)),
			app.WithAnalyzer(arbDI.GetAnalyzer(sr)),
			app.WithMinProfitPct(cfg.Oracle.MinProfitPctDecimal()),
			app.WithRecorder(recorder),
			app.WithLogger(log),
		)
	})
	return nil
}

// Startup builds the oracle so wiring errors surface before serving.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	o := oracleDI.GetOracle(mono.Services())
	mono.Logger().Info(ctx, "oracle ready",
		"venues", len(o.Schedules()),
		"live", o.Live(),
		"min_profit_pct", o.MinProfitPct().String(),
	)
	return nil
}
