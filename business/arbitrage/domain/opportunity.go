package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	feesDomain "github.com/sanketagarwal/replay-fee-oracle/business/fees/domain"
	"github.com/sanketagarwal/replay-fee-oracle/internal/apperror"
)

// ArbitrageAnalysis is the verdict on one multi-leg arbitrage attempt.
type ArbitrageAnalysis struct {
	ID           uuid.UUID     `json:"id"`
	Timestamp    time.Time     `json:"timestamp"`
	Legs         []TradeLeg    `json:"legs"`
	LegEstimates []LegEstimate `json:"leg_estimates"`
	ProfitResult
}

// Confidence is the weakest leg confidence.
func (a *ArbitrageAnalysis) Confidence() feesDomain.Confidence {
	c := feesDomain.ConfidenceHigh
	for _, e := range a.LegEstimates {
		c = feesDomain.LowerConfidence(c, e.Confidence())
	}
	return c
}

// ValidateCompatibility checks every pair of distinct venues among legs.
// It fails on the first unknown venue or incompatible pair.
func ValidateCompatibility(legs []TradeLeg, categories feesDomain.VenueCategories) error {
	venues := DistinctVenues(legs)

	for _, v := range venues {
		if _, ok := categories.Category(v); !ok {
			return apperror.UnsupportedVenue(v.String())
		}
	}

	for i := 0; i < len(venues); i++ {
		for j := i + 1; j < len(venues); j++ {
			a, b := venues[i], venues[j]
			if categories.Compatible(a, b) {
				continue
			}
			ca, _ := categories.Category(a)
			cb, _ := categories.Category(b)
			return apperror.Validation(apperror.CodeIncompatibleVenues,
				fmt.Sprintf("%s (%s) and %s (%s) are in different categories", a, ca, b, cb))
		}
	}

	return nil
}
