// Package di contains dependency injection tokens for the oracle façade.
package di

import (
	"github.com/sanketagarwal/replay-fee-oracle/business/oracle/app"
	"github.com/sanketagarwal/replay-fee-oracle/internal/di"
)

// Public service tokens - exposed to other modules
var (
	Oracle = di.NewToken[*app.Oracle]("oracle.Oracle")
)

func GetOracle(c di.ServiceRegistry) *app.Oracle {
	return di.GetToken(c, Oracle)
}
