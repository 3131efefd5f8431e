// Package di contains dependency injection tokens for the arbitrage context.
package di

import (
	"github.com/sanketagarwal/replay-fee-oracle/business/arbitrage/app"
	"github.com/sanketagarwal/replay-fee-oracle/internal/di"
)

// Public service tokens - exposed to other modules
var (
	Analyzer = di.NewToken[*app.Analyzer]("arbitrage.Analyzer")
	Reporter = di.NewToken[app.Reporter]("arbitrage.Reporter")
)

func GetAnalyzer(c di.ServiceRegistry) *app.Analyzer {
	return di.GetToken(c, Analyzer)
}

func GetReporter(c di.ServiceRegistry) app.Reporter {
	return di.GetToken(c, Reporter)
}
