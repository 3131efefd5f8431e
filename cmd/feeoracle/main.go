// Package main is the entry point for the replay fee oracle.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/sanketagarwal/replay-fee-oracle/business/arbitrage"
	arbDI "github.com/sanketagarwal/replay-fee-oracle/business/arbitrage/di"
	"github.com/sanketagarwal/replay-fee-oracle/business/costs"
	"github.com/sanketagarwal/replay-fee-oracle/business/fees"
	"github.com/sanketagarwal/replay-fee-oracle/business/oracle"
	oracleDI "github.com/sanketagarwal/replay-fee-oracle/business/oracle/di"
	"github.com/sanketagarwal/replay-fee-oracle/business/orderbook"
	"github.com/sanketagarwal/replay-fee-oracle/internal/apm"
	"github.com/sanketagarwal/replay-fee-oracle/internal/config"
	"github.com/sanketagarwal/replay-fee-oracle/internal/logger"
	"github.com/sanketagarwal/replay-fee-oracle/internal/metrics"
	"github.com/sanketagarwal/replay-fee-oracle/internal/monolith"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

const usageText = `usage: feeoracle [-config file] <command> [flags]

commands:
  schedules [venue]   list loaded fee schedules, or show one
  estimate            explicit fee for one trade
  cost                fee plus spread and slippage for one trade
  compare             the same trade priced on every venue
  arb                 net profitability of a multi-leg arbitrage
  serve               run the JSON API

run "feeoracle <command> -h" for command flags
`

var errUsage = errors.New("unknown command")

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	configPath := flag.String("config", "", "Path to configuration file")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Usage = func() { fmt.Fprint(flag.CommandLine.Output(), usageText) }
	flag.Parse()

	if *showVersion {
		fmt.Printf("feeoracle %s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	if err := run(ctx, *configPath, flag.Args()); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		if errors.Is(err, errUsage) {
			flag.Usage()
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logLevel := logger.LevelInfo
	switch cfg.App.LogLevel {
	case "debug":
		logLevel = logger.LevelDebug
	case "warn":
		logLevel = logger.LevelWarn
	case "error":
		logLevel = logger.LevelError
	}
	// Command output goes to stdout; logs stay on stderr.
	log := logger.New(os.Stderr, logLevel, cfg.App.Name, nil)

	var recorder *metrics.Recorder
	if cfg.Telemetry.Enabled {
		traceProvider, err := apm.NewTraceProvider(log,
			apm.WithProvider(apm.ParseProvider(cfg.Telemetry.TraceProvider), cfg.Telemetry.OTLPEndpoint),
			apm.WithHeaders(cfg.Telemetry.OTLPHeaders),
			apm.WithServiceName(cfg.Telemetry.ServiceName),
		)
		if err != nil {
			return fmt.Errorf("failed to init tracing: %w", err)
		}
		defer traceProvider.Stop()

		meterProvider, err := metrics.NewMetricProvider(
			metrics.WithServiceName(cfg.Telemetry.ServiceName),
			metrics.WithProviderConfig(metrics.NewPrometheusConfig()),
		)
		if err != nil {
			return fmt.Errorf("failed to init metrics: %w", err)
		}
		defer meterProvider.Shutdown(context.Background())

		if recorder, err = metrics.NewRecorder(meterProvider.Meter(cfg.App.Name)); err != nil {
			return fmt.Errorf("failed to create metric instruments: %w", err)
		}
		log.Debug(ctx, "telemetry initialized", "trace_provider", cfg.Telemetry.TraceProvider)
	}

	mono := monolith.New(cfg, log, recorder, version)
	defer mono.Close()

	// Define modules in dependency order
	modules := []monolith.Module{
		&fees.Module{},
		&orderbook.Module{},
		&costs.Module{},
		&arbitrage.Module{},
		&oracle.Module{},
	}

	if err := mono.RegisterModules(modules...); err != nil {
		return fmt.Errorf("failed to register modules: %w", err)
	}
	if err := mono.StartModules(ctx, modules...); err != nil {
		return fmt.Errorf("failed to start modules: %w", err)
	}

	o := oracleDI.GetOracle(mono.Services())
	out := os.Stdout

	switch cmd, rest := args[0], args[1:]; cmd {
	case "schedules":
		return runSchedules(o, rest, out)
	case "estimate":
		return runEstimate(ctx, o, rest, out)
	case "cost":
		return runCost(ctx, o, rest, out)
	case "compare":
		return runCompare(ctx, o, rest, out)
	case "arb":
		return runArb(ctx, o, arbDI.GetReporter(mono.Services()), rest, out)
	case "serve":
		return runServe(ctx, o, mono, rest)
	default:
		return fmt.Errorf("%w: %s", errUsage, cmd)
	}
}
