// Package fees implements the fee schedule store and the per-venue fee calculators.
package fees

import (
	"context"
	"fmt"
	"strings"

	"github.com/sanketagarwal/replay-fee-oracle/business/fees/app"
	feesDI "github.com/sanketagarwal/replay-fee-oracle/business/fees/di"
	"github.com/sanketagarwal/replay-fee-oracle/business/fees/infra/schedule"
	"github.com/sanketagarwal/replay-fee-oracle/internal/config"
	"github.com/sanketagarwal/replay-fee-oracle/internal/di"
	"github.com/sanketagarwal/replay-fee-oracle/internal/logger"
	"github.com/sanketagarwal/replay-fee-oracle/internal/monolith"
)

// Module implements the fees bounded context.
type Module struct{}

// RegisterServices loads the fee schedules once and registers the calculator registry.
func (m *Module) RegisterServices(c di.Container) error {
	cfg := c.Get("config").(*config.Config)
	log := c.Get("logger").(logger.LoggerInterface)

	loader := schedule.NewLoader(cfg.Fees.ScheduleDir, cfg.Fees.Venues, log)
	schedules, err := loader.Load(context.Background())
	if err != nil {
		return err
	}

	registry, err := app.NewRegistry(schedules)
	if err != nil {
		return err
	}

	di.RegisterToken(c, feesDI.Registry, func(di.ServiceRegistry) *app.Registry {
		return registry
	})

	return nil
}

// Startup reports the loaded schedules and registers their health check.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()
	registry := feesDI.GetRegistry(mono.Services())

	versions := make([]string, 0, registry.Len())
	for _, s := range registry.Schedules() {
		versions = append(versions, fmt.Sprintf("%s@%s", s.Venue, s.Version))
	}

	mono.Health().RegisterCheck("fee_schedules", func(context.Context) (bool, string) {
		n := registry.Len()
		return n > 0, fmt.Sprintf("%d schedules loaded", n)
	})

	log.Info(ctx, "fees module started", "schedules", strings.Join(versions, ","))
	return nil
}
