// Package report renders performance reports as text for the CLI. It
// writes to an injected io.Writer so tests can capture output.
package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/olekukonko/tablewriter"

	"github.com/Rosewood1985/ai-sports-edge-sub010/internal/recommend"
	"github.com/Rosewood1985/ai-sports-edge-sub010/pkg/models"
)

// Console prints reports to a writer.
type Console struct {
	out io.Writer
}

// NewConsole creates a console renderer.
func NewConsole(out io.Writer) *Console {
	return &Console{out: out}
}

// PrintReport renders the overall metrics block and, for segmented
// reports, a per-segment table.
func (c *Console) PrintReport(rep recommend.Report) {
	switch {
	case rep.Segmented != nil:
		c.printSnapshot(rep.Segmented.Overall)
		c.printSegments(rep.Segmented)
	case rep.Snapshot != nil:
		c.printSnapshot(*rep.Snapshot)
	}
}

// printSnapshot prints the whole-ledger metrics block.
func (c *Console) printSnapshot(snap models.PerformanceSnapshot) {
	fmt.Fprintf(c.out, "\nWagers: %d total, %d settled (%dW/%dL/%dP/%dV), %d pending\n",
		snap.TotalCount, snap.SettledCount,
		snap.WonCount, snap.LostCount, snap.PushedCount, snap.VoidedCount,
		snap.PendingCount)
	fmt.Fprintf(c.out, "Staked: $%.2f   Profit: $%.2f\n", snap.TotalStaked, snap.TotalProfit)
	fmt.Fprintf(c.out, "ROI: %s   Win rate: %s\n", pct(snap.ROI), pct(snap.WinRate))

	sharpe := num(snap.Sharpe)
	if snap.SharpeDegenerate {
		sharpe += " (degenerate)"
	}
	fmt.Fprintf(c.out, "Sharpe: %s   Calmar: %s   Annualized ROI: %s\n",
		sharpe, num(snap.Calmar), pct(snap.AnnualizedROI))
	fmt.Fprintf(c.out, "Max drawdown: $%.2f (%s)   VaR95: %s\n",
		snap.MaxDrawdown, pct(snap.MaxDrawdownPct), pct(snap.VaR95))

	if snap.FirstSettledAt != nil && snap.LastSettledAt != nil {
		fmt.Fprintf(c.out, "Settled span: %s to %s\n",
			snap.FirstSettledAt.Format("2006-01-02"), snap.LastSettledAt.Format("2006-01-02"))
	}
}

// printSegments prints one table row per segment value, sorted by name
// so output is stable.
func (c *Console) printSegments(seg *models.SegmentedSnapshot) {
	names := make([]string, 0, len(seg.Segments))
	for name := range seg.Segments {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintf(c.out, "\nBy %s:\n", seg.SegmentKey)

	table := tablewriter.NewWriter(c.out)
	table.Header("Segment", "Settled", "Staked", "Profit", "ROI", "Win rate", "Sharpe", "Calmar", "Max DD", "VaR95")

	for _, name := range names {
		s := seg.Segments[name]
		table.Append(
			name,
			fmt.Sprintf("%d", s.SettledCount),
			fmt.Sprintf("$%.2f", s.TotalStaked),
			fmt.Sprintf("$%.2f", s.TotalProfit),
			pct(s.ROI),
			pct(s.WinRate),
			num(s.Sharpe),
			num(s.Calmar),
			fmt.Sprintf("$%.2f", s.MaxDrawdown),
			pct(s.VaR95),
		)
	}

	table.Render()
}

// pct formats a ratio pointer as a percentage, "--" when undefined.
func pct(v *float64) string {
	if v == nil {
		return "--"
	}
	return fmt.Sprintf("%.2f%%", *v*100)
}

// num formats a ratio pointer, "--" when undefined.
func num(v *float64) string {
	if v == nil {
		return "--"
	}
	return fmt.Sprintf("%.2f", *v)
}
