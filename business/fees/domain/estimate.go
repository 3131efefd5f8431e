package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

var (
	hundred     = decimal.NewFromInt(100)
	tenThousand = decimal.NewFromInt(10000)
)

// Confidence grades how much an estimate can be trusted.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

func (c Confidence) rank() int {
	switch c {
	case ConfidenceHigh:
		return 2
	case ConfidenceMedium:
		return 1
	default:
		return 0
	}
}

// LowerConfidence returns the weaker of a and b.
func LowerConfidence(a, b Confidence) Confidence {
	if a.rank() <= b.rank() {
		return a
	}
	return b
}

// FeeBreakdown holds the named cost components of an estimate.
// The total is not clamped at zero: a rebate larger than the gross fee
// must stay visible.
type FeeBreakdown struct {
	ExchangeFee      decimal.Decimal `json:"exchange_fee"`
	GasFee           decimal.Decimal `json:"gas_fee"`
	SettlementFee    decimal.Decimal `json:"settlement_fee"`
	SlippageEstimate decimal.Decimal `json:"slippage_estimate"`
	Rebate           decimal.Decimal `json:"rebate"`
}

// Total = exchange + gas + settlement + slippage - rebate.
func (b FeeBreakdown) Total() decimal.Decimal {
	return b.Explicit().Add(b.SlippageEstimate)
}

// Explicit is the total without the slippage component.
func (b FeeBreakdown) Explicit() decimal.Decimal {
	return b.ExchangeFee.Add(b.GasFee).Add(b.SettlementFee).Sub(b.Rebate)
}

// FeeEstimate is the result of a single fee calculation. It is built fresh
// on every call.
type FeeEstimate struct {
	Venue           Venue           `json:"venue"`
	SizeUSD         decimal.Decimal `json:"size_usd"`
	TotalFeeUSD     decimal.Decimal `json:"total_fee_usd"`
	FeePct          decimal.Decimal `json:"fee_pct"`
	Breakdown       FeeBreakdown    `json:"breakdown"`
	Confidence      Confidence      `json:"confidence"`
	Assumptions     []string        `json:"assumptions"`
	Model           FeeModel        `json:"model"`
	ScheduleVersion string          `json:"schedule_version"`
	Timestamp       time.Time       `json:"timestamp"`
}

// NewFeeEstimate derives the total and percentage from the breakdown.
func NewFeeEstimate(
	schedule *FeeSchedule,
	size decimal.Decimal,
	breakdown FeeBreakdown,
	confidence Confidence,
	assumptions []string,
	now time.Time,
) *FeeEstimate {
	total := breakdown.Total()
	return &FeeEstimate{
		Venue:           schedule.Venue,
		SizeUSD:         size,
		TotalFeeUSD:     total,
		FeePct:          Percent(total, size),
		Breakdown:       breakdown,
		Confidence:      confidence,
		Assumptions:     assumptions,
		Model:           schedule.Model,
		ScheduleVersion: schedule.Version,
		Timestamp:       now,
	}
}

// Percent returns part/whole*100, or zero when whole is zero.
func Percent(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(hundred)
}

// Bps returns amount * bps / 10000.
func Bps(amount, bps decimal.Decimal) decimal.Decimal {
	return amount.Mul(bps).Div(tenThousand)
}
