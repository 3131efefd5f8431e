// Package infra contains infrastructure adapters for the arbitrage context.
package infra

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sanketagarwal/replay-fee-oracle/business/arbitrage/domain"
	"github.com/sanketagarwal/replay-fee-oracle/pkg/ui"
)

// ConsoleReporter renders an analysis as a leg table followed by the
// profit summary.
type ConsoleReporter struct{}

// NewConsoleReporter creates a new ConsoleReporter.
func NewConsoleReporter() *ConsoleReporter {
	return &ConsoleReporter{}
}

// Report writes analysis to w.
func (r *ConsoleReporter) Report(w io.Writer, analysis *domain.ArbitrageAnalysis) error {
	var sb strings.Builder

	sb.WriteString(ui.TitleStyle.Render("ARBITRAGE ANALYSIS"))
	sb.WriteString("\n")
	sb.WriteString(ui.MutedValue.Render(fmt.Sprintf("%s  %s",
		analysis.ID, analysis.Timestamp.UTC().Format(time.RFC3339))))
	sb.WriteString("\n\n")

	legs := ui.NewTable("Venue", "Side", "Size", "Price", "Estimate", "Cost", "Confidence")
	for _, e := range analysis.LegEstimates {
		price := "-"
		if e.Leg.Price.Valid {
			price = e.Leg.Price.Decimal.String()
		}
		legs.AddRow(
			e.Leg.Venue.String(),
			string(e.Leg.Side),
			ui.USD(e.Leg.SizeUSD),
			price,
			string(e.Kind),
			ui.USD(e.TotalUSD()),
			ui.Confidence(string(e.Confidence())),
		)
	}
	sb.WriteString(legs.Render())
	sb.WriteString("\n\n")

	p := analysis.ProfitResult
	summary := []string{
		fmt.Sprintf("Gross profit:   %s", ui.USD(p.GrossProfit)),
		fmt.Sprintf("Total costs:    %s", ui.USD(p.TotalCosts)),
		fmt.Sprintf("Net profit:     %s", ui.Signed(p.NetProfit, ui.USD(p.NetProfit))),
		fmt.Sprintf("Notional:       %s", ui.USD(p.TotalNotional)),
		fmt.Sprintf("Net / notional: %s (min %s)", ui.Signed(p.NetProfit, ui.Pct(p.NetProfitPct)), ui.Pct(p.MinProfitPct)),
		fmt.Sprintf("Confidence:     %s", ui.Confidence(string(analysis.Confidence()))),
		ui.Verdict(p.IsProfitable),
	}
	sb.WriteString(ui.BoxStyle.Render(strings.Join(summary, "\n")))
	sb.WriteString("\n")

	_, err := io.WriteString(w, sb.String())
	return err
}
