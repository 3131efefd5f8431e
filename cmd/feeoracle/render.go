package main

import (
	"fmt"
	"io"
	"slices"
	"strings"

	costsDomain "github.com/sanketagarwal/replay-fee-oracle/business/costs/domain"
	feesDomain "github.com/sanketagarwal/replay-fee-oracle/business/fees/domain"
	"github.com/sanketagarwal/replay-fee-oracle/pkg/ui"
)

func writeBlocks(w io.Writer, blocks ...string) error {
	_, err := io.WriteString(w, strings.Join(blocks, "\n\n")+"\n")
	return err
}

func assumptionList(assumptions []string) string {
	if len(assumptions) == 0 {
		return ""
	}
	lines := make([]string, len(assumptions))
	for i, a := range assumptions {
		lines[i] = "• " + a
	}
	return ui.MutedValue.Render(strings.Join(lines, "\n"))
}

func renderSchedules(w io.Writer, schedules []feesDomain.FeeSchedule) error {
	t := ui.NewTable("Venue", "Category", "Model", "Version", "Effective", "Spread %", "Slippage %")
	for _, s := range schedules {
		t.AddRow(
			s.Venue.String(),
			string(s.Category),
			string(s.Model),
			s.Version,
			s.EffectiveDate.Format("2006-01-02"),
			s.Heuristics.TypicalSpreadPct.String(),
			s.Heuristics.BaseSlippagePct.String(),
		)
	}
	return writeBlocks(w, ui.TitleStyle.Render("FEE SCHEDULES"), t.Render())
}

func renderSchedule(w io.Writer, s feesDomain.FeeSchedule) error {
	lines := []string{
		fmt.Sprintf("Venue:      %s", s.Venue),
		fmt.Sprintf("Category:   %s", s.Category),
		fmt.Sprintf("Model:      %s", s.Model),
		fmt.Sprintf("Version:    %s (effective %s)", s.Version, s.EffectiveDate.Format("2006-01-02")),
		fmt.Sprintf("Source:     %s", s.Source),
		fmt.Sprintf("Heuristics: spread %s%%, slippage %s%%", s.Heuristics.TypicalSpreadPct, s.Heuristics.BaseSlippagePct),
	}
	if s.Disclaimer != "" {
		lines = append(lines, ui.MutedValue.Render(s.Disclaimer))
	}
	return writeBlocks(w, ui.BoxStyle.Render(strings.Join(lines, "\n")))
}

func breakdownTable(b feesDomain.FeeBreakdown) *ui.Table {
	t := ui.NewTable("Component", "USD")
	t.AddRow("Exchange fee", ui.USD(b.ExchangeFee))
	t.AddRow("Gas", ui.USD(b.GasFee))
	t.AddRow("Settlement", ui.USD(b.SettlementFee))
	t.AddRow("Slippage (quoted)", ui.USD(b.SlippageEstimate))
	t.AddRow("Rebate", ui.USD(b.Rebate.Neg()))
	return t
}

func renderEstimate(w io.Writer, est *feesDomain.FeeEstimate) error {
	summary := []string{
		fmt.Sprintf("Total fee:  %s (%s)", ui.USD(est.TotalFeeUSD), ui.Pct(est.FeePct)),
		fmt.Sprintf("Confidence: %s", ui.Confidence(string(est.Confidence))),
		fmt.Sprintf("Schedule:   %s %s@%s", est.Model, est.Venue, est.ScheduleVersion),
	}

	blocks := []string{
		ui.TitleStyle.Render(fmt.Sprintf("FEE ESTIMATE  %s  %s", est.Venue, ui.USD(est.SizeUSD))),
		breakdownTable(est.Breakdown).Render(),
		ui.BoxStyle.Render(strings.Join(summary, "\n")),
	}
	if a := assumptionList(est.Assumptions); a != "" {
		blocks = append(blocks, a)
	}
	return writeBlocks(w, blocks...)
}

func renderCost(w io.Writer, cost *costsDomain.TradingCost) error {
	t := ui.NewTable("Component", "USD")
	t.AddRow("Explicit fees", ui.USD(cost.ExplicitCostUSD))
	t.AddRow("Spread", ui.USD(cost.SpreadCostUSD))
	t.AddRow("Slippage", ui.USD(cost.SlippageUSD))
	t.AddRow(ui.HeaderStyle.Render("Total"), ui.HeaderStyle.Render(ui.USD(cost.TotalCostUSD)))

	summary := []string{
		fmt.Sprintf("Total cost: %s (%s)", ui.USD(cost.TotalCostUSD), ui.Pct(cost.TotalCostPct)),
		fmt.Sprintf("Mode:       %s", cost.Mode),
		fmt.Sprintf("Confidence: %s", ui.Confidence(string(cost.Confidence))),
	}
	if cost.Fallback != "" {
		summary = append(summary, fmt.Sprintf("Fallback:   %s", ui.WarningValue.Render(string(cost.Fallback))))
	}
	if cost.Fill != nil {
		summary = append(summary, fmt.Sprintf("Book walk:  %d levels, avg %s, impact %s",
			cost.Fill.LevelsConsumed, cost.Fill.AvgPrice.StringFixed(4), ui.Pct(cost.Fill.PriceImpactPct)))
	}

	blocks := []string{
		ui.TitleStyle.Render(fmt.Sprintf("TRADING COST  %s %s  %s", cost.Venue, cost.Side, ui.USD(cost.SizeUSD))),
		t.Render(),
		ui.BoxStyle.Render(strings.Join(summary, "\n")),
	}
	if a := assumptionList(cost.Assumptions); a != "" {
		blocks = append(blocks, a)
	}
	return writeBlocks(w, blocks...)
}

// renderCompare ranks estimates cheapest first.
func renderCompare(w io.Writer, estimates []*feesDomain.FeeEstimate) error {
	ranked := slices.Clone(estimates)
	slices.SortStableFunc(ranked, func(a, b *feesDomain.FeeEstimate) int {
		if c := a.TotalFeeUSD.Cmp(b.TotalFeeUSD); c != 0 {
			return c
		}
		return strings.Compare(a.Venue.String(), b.Venue.String())
	})

	t := ui.NewTable("#", "Venue", "Fee", "Fee %", "Model", "Confidence")
	for i, est := range ranked {
		t.AddRow(
			fmt.Sprintf("%d", i+1),
			est.Venue.String(),
			ui.USD(est.TotalFeeUSD),
			ui.Pct(est.FeePct),
			string(est.Model),
			ui.Confidence(string(est.Confidence)),
		)
	}

	title := "VENUE COMPARISON"
	if len(ranked) > 0 {
		title = fmt.Sprintf("VENUE COMPARISON  %s", ui.USD(ranked[0].SizeUSD))
	}
	return writeBlocks(w, ui.TitleStyle.Render(title), t.Render())
}
