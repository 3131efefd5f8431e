// Package di contains dependency injection tokens for the fees context.
package di

import (
	"github.com/sanketagarwal/replay-fee-oracle/business/fees/app"
	"github.com/sanketagarwal/replay-fee-oracle/internal/di"
)

// Public service tokens - exposed to other modules
var (
	Registry = di.NewToken[*app.Registry]("fees.Registry")
)

func GetRegistry(c di.ServiceRegistry) *app.Registry {
	return di.GetToken(c, Registry)
}
