package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// Table is a box-drawn table. Cells may carry ANSI styling; widths are
// measured with lipgloss.Width.
type Table struct {
	headers []string
	rows    [][]string
}

// NewTable creates a table with the given column headers.
func NewTable(headers ...string) *Table {
	return &Table{headers: headers}
}

// AddRow appends a row. Missing cells render empty; extra cells are dropped.
func (t *Table) AddRow(cells ...string) {
	row := make([]string, len(t.headers))
	copy(row, cells)
	t.rows = append(t.rows, row)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Render draws the table.
func (t *Table) Render() string {
	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if w := lipgloss.Width(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var sb strings.Builder
	sb.WriteString(rule("┌", "┬", "┐", widths))

	headers := make([]string, len(t.headers))
	for i, h := range t.headers {
		headers[i] = HeaderStyle.Render(h)
	}
	sb.WriteString(line(headers, widths))
	sb.WriteString(rule("├", "┼", "┤", widths))

	for _, row := range t.rows {
		sb.WriteString(line(row, widths))
	}
	sb.WriteString(strings.TrimSuffix(rule("└", "┴", "┘", widths), "\n"))

	return sb.String()
}

func rule(left, mid, right string, widths []int) string {
	parts := make([]string, len(widths))
	for i, w := range widths {
		parts[i] = strings.Repeat("─", w+2)
	}
	return left + strings.Join(parts, mid) + right + "\n"
}

func line(cells []string, widths []int) string {
	var sb strings.Builder
	sb.WriteString("│")
	for i, cell := range cells {
		sb.WriteString(" ")
		sb.WriteString(cell)
		sb.WriteString(strings.Repeat(" ", widths[i]-lipgloss.Width(cell)))
		sb.WriteString(" │")
	}
	sb.WriteString("\n")
	return sb.String()
}

// USD formats an amount as dollars with 2 decimals, or 4 when the amount
// is below one cent and non-zero.
func USD(d decimal.Decimal) string {
	if !d.IsZero() && d.Abs().LessThan(decimal.RequireFromString("0.01")) {
		return "$" + d.StringFixed(4)
	}
	return "$" + d.StringFixed(2)
}

// Pct formats a percentage with 4 decimals.
func Pct(d decimal.Decimal) string {
	return d.StringFixed(4) + "%"
}

// Signed colors d green when non-negative and red otherwise.
func Signed(d decimal.Decimal, text string) string {
	if d.IsNegative() {
		return NegativeValue.Render(text)
	}
	return PositiveValue.Render(text)
}
