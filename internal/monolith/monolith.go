// Package monolith provides the application container and module interface.
package monolith

import (
	"context"

	"github.com/sanketagarwal/replay-fee-oracle/internal/config"
	"github.com/sanketagarwal/replay-fee-oracle/internal/di"
	"github.com/sanketagarwal/replay-fee-oracle/internal/health"
	"github.com/sanketagarwal/replay-fee-oracle/internal/logger"
	"github.com/sanketagarwal/replay-fee-oracle/internal/metrics"
)

// Monolith is the main application container providing access to shared infrastructure.
type Monolith interface {
	Config() *config.Config
	Logger() logger.LoggerInterface
	Recorder() *metrics.Recorder
	Health() *health.Server
	Services() di.ServiceRegistry
}

// Module represents a bounded context module that can register services and start up.
type Module interface {
	RegisterServices(di.Container) error
	Startup(context.Context, Monolith) error
}

// Closer is implemented by modules holding connections.
type Closer interface {
	Close() error
}

// app implements the Monolith interface.
type app struct {
	config    *config.Config
	logger    logger.LoggerInterface
	recorder  *metrics.Recorder
	health    *health.Server
	container di.Container
	closers   []Closer
}

// New creates a new Monolith instance. A nil recorder records nothing.
func New(cfg *config.Config, log logger.LoggerInterface, recorder *metrics.Recorder, version string) *app {
	container := di.NewContainer()
	hs := health.NewServer(cfg.Server.HealthPort, version, log)

	// Register global services
	container.Register("config", cfg)
	container.Register("logger", log)
	container.Register("recorder", recorder)
	container.Register("health", hs)

	return &app{
		config:    cfg,
		logger:    log,
		recorder:  recorder,
		health:    hs,
		container: container,
	}
}

func (a *app) Config() *config.Config {
	return a.config
}

func (a *app) Logger() logger.LoggerInterface {
	return a.logger
}

func (a *app) Recorder() *metrics.Recorder {
	return a.recorder
}

func (a *app) Health() *health.Server {
	return a.health
}

func (a *app) Services() di.ServiceRegistry {
	return a.container
}

// Container returns the DI container for module registration.
func (a *app) Container() di.Container {
	return a.container
}

// RegisterModules registers all provided modules.
func (a *app) RegisterModules(modules ...Module) error {
	for _, m := range modules {
		if err := m.RegisterServices(a.container); err != nil {
			return err
		}
	}
	return nil
}

// StartModules starts all provided modules.
func (a *app) StartModules(ctx context.Context, modules ...Module) error {
	for _, m := range modules {
		if err := m.Startup(ctx, a); err != nil {
			return err
		}
		if c, ok := m.(Closer); ok {
			a.closers = append(a.closers, c)
		}
	}
	return nil
}

// Close closes module resources in reverse start order.
func (a *app) Close() error {
	var firstErr error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
