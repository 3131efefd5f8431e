// Package costs implements total trading cost estimation.
package costs

import (
	"context"

	"github.com/sanketagarwal/replay-fee-oracle/business/costs/app"
	costsDI "github.com/sanketagarwal/replay-fee-oracle/business/costs/di"
	feesDI "github.com/sanketagarwal/replay-fee-oracle/business/fees/di"
	orderbookDI "github.com/sanketagarwal/replay-fee-oracle/business/orderbook/di"
	"github.com/sanketagarwal/replay-fee-oracle/internal/config"
	"github.com/sanketagarwal/replay-fee-oracle/internal/di"
	"github.com/sanketagarwal/replay-fee-oracle/internal/logger"
	"github.com/sanketagarwal/replay-fee-oracle/internal/metrics"
	"github.com/sanketagarwal/replay-fee-oracle/internal/monolith"
)

// Module implements the costs bounded context.
type Module struct{}

// RegisterServices registers the cost estimator.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, costsDI.Estimator, func(sr di.ServiceRegistry) *app.Estimator {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		recorder := sr.Get("recorder").(*metrics.Recorder)

		opts := []app.Option{
			app.WithLogger(log),
			app.WithRecorder(recorder),
			app.WithLiveOnly(cfg.Oracle.LiveOnly),
		}
		if svc := orderbookDI.GetService(sr); svc != nil {
			opts = append(opts, app.WithSnapshots(svc))
		}

		return app.NewEstimator(feesDI.GetRegistry(sr), opts...)
	})

	return nil
}

// Startup initializes the costs module.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	estimator := costsDI.GetEstimator(mono.Services())
	mono.Logger().Info(ctx, "costs module started",
		"live_orderbook", estimator.Live(),
		"live_only", mono.Config().Oracle.LiveOnly,
	)
	return nil
}
