// Package di contains dependency injection tokens for the costs context.
package di

import (
	"github.com/sanketagarwal/replay-fee-oracle/business/costs/app"
	"github.com/sanketagarwal/replay-fee-oracle/internal/di"
)

// Public service tokens - exposed to other modules
var (
	Estimator = di.NewToken[*app.Estimator]("costs.Estimator")
)

func GetEstimator(c di.ServiceRegistry) *app.Estimator {
	return di.GetToken(c, Estimator)
}
