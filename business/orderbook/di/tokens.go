// Package di contains dependency injection tokens for the orderbook context.
package di

import (
	"github.com/sanketagarwal/replay-fee-oracle/business/orderbook/app"
	"github.com/sanketagarwal/replay-fee-oracle/internal/di"
)

// Public service tokens - exposed to other modules
var (
	Service = di.NewToken[*app.Service]("orderbook.Service")
)

// Private dependency tokens - internal to orderbook module
var (
	Fetcher = di.NewToken[app.Fetcher]("orderbook:fetcher")
)

// GetService returns the snapshot service, or nil when live data is disabled.
func GetService(c di.ServiceRegistry) *app.Service {
	return di.GetToken(c, Service)
}

func GetFetcher(c di.ServiceRegistry) app.Fetcher {
	return di.GetToken(c, Fetcher)
}
