// Package analytics computes risk-adjusted performance statistics over a
// wager ledger snapshot: ROI, win rate, Sharpe ratio, Calmar ratio, max
// drawdown, and historical Value-at-Risk, overall or segmented by sport,
// market, or book.
package analytics

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/Rosewood1985/ai-sports-edge-sub010/internal/ledger"
	"github.com/Rosewood1985/ai-sports-edge-sub010/pkg/models"
)

// Config tunes snapshot computation. The zero value is usable: no
// risk-free offset, 365-day annualization, staked-amount drawdown basis.
type Config struct {
	// RiskFreeRate is subtracted from the mean per-wager return in the
	// Sharpe numerator. Expressed per wager, not annualized. Default 0.
	RiskFreeRate float64 `yaml:"risk_free_rate"`

	// AnnualizationDays scales the observed settlement span to a year for
	// annualized ROI. Default 365.
	AnnualizationDays float64 `yaml:"annualization_days"`

	// Bankroll, when set and positive, is the reference for the drawdown
	// percentage. When absent the peak cumulative staked amount is used.
	Bankroll *float64 `yaml:"bankroll,omitempty"`
}

// DefaultConfig returns the standard analytics parameters.
func DefaultConfig() Config {
	return Config{RiskFreeRate: 0, AnnualizationDays: 365}
}

// ComputeSnapshot aggregates the snapshot into a PerformanceSnapshot.
//
// ROI = totalProfit / totalStaked (settled wagers only)
// Win rate = won / settled
// Sharpe = (mean(r) - riskFree) / popStdDev(r), r_i = profit_i / stake_i
// Max drawdown = max over t of (peakProfit(t) - cumulativeProfit(t))
// Calmar = annualizedROI / maxDrawdownPct
// VaR95 = 5th percentile of r (historical, interpolated)
//
// Pending wagers are excluded from every ratio and reported only as a
// count. With zero settled wagers the returned snapshot carries counts
// with nil ratio fields and the error wraps models.ErrInsufficientData,
// so callers can tell "no data" from "zero performance".
func ComputeSnapshot(snap *ledger.Snapshot, cfg Config) (models.PerformanceSnapshot, error) {
	if cfg.AnnualizationDays <= 0 {
		cfg.AnnualizationDays = 365
	}

	out := models.PerformanceSnapshot{
		TotalCount:   snap.Len(),
		PendingCount: snap.PendingCount(),
	}

	settled := snap.Settled()
	out.SettledCount = len(settled)
	for _, w := range settled {
		switch w.Outcome {
		case models.OutcomeWon:
			out.WonCount++
		case models.OutcomeLost:
			out.LostCount++
		case models.OutcomePushed:
			out.PushedCount++
		case models.OutcomeVoided:
			out.VoidedCount++
		}
	}

	if len(settled) == 0 {
		return out, fmt.Errorf("performance snapshot needs settled wagers: %w", models.ErrInsufficientData)
	}

	// Per-wager return series in settlement order. Stake and profit
	// totals cover settled wagers only, so an all-losing ledger lands at
	// ROI -1.0 exactly.
	returns := make([]float64, len(settled))
	for i, w := range settled {
		profit := w.Profit()
		out.TotalStaked += w.Stake
		out.TotalProfit += profit
		returns[i] = profit / w.Stake
	}

	if out.TotalStaked > 0 {
		out.ROI = models.Float64Ptr(out.TotalProfit / out.TotalStaked)
	}
	out.WinRate = models.Float64Ptr(float64(out.WonCount) / float64(out.SettledCount))

	mean := stat.Mean(returns, nil)
	stdDev := stat.PopStdDev(returns, nil)
	if stdDev == 0 {
		// Zero-variance series: report 0 and flag instead of dividing.
		out.Sharpe = models.Float64Ptr(0)
		out.SharpeDegenerate = true
	} else {
		out.Sharpe = models.Float64Ptr((mean - cfg.RiskFreeRate) / stdDev)
	}

	out.MaxDrawdown, out.MaxDrawdownPct = maxDrawdown(settled, cfg.Bankroll, out.TotalStaked)

	first := *settled[0].SettledAt
	last := *settled[len(settled)-1].SettledAt
	out.FirstSettledAt = &first
	out.LastSettledAt = &last

	spanDays := last.Sub(first).Hours() / 24
	if spanDays >= 1 && out.ROI != nil {
		annualized := *out.ROI * cfg.AnnualizationDays / spanDays
		out.AnnualizedROI = models.Float64Ptr(annualized)
		if out.MaxDrawdownPct != nil && *out.MaxDrawdownPct > 0 {
			out.Calmar = models.Float64Ptr(annualized / *out.MaxDrawdownPct)
		}
	}

	out.VaR95 = models.Float64Ptr(percentile(returns, 0.05))

	return out, nil
}

// ComputeSegmented runs the snapshot computation once per distinct segment
// value plus once for the whole ledger. A segment with no settled wagers
// still appears, carrying counts and nil ratios; only whole-ledger
// insufficiency is reported as an error.
func ComputeSegmented(snap *ledger.Snapshot, key models.SegmentKey, cfg Config) (models.SegmentedSnapshot, error) {
	buckets, err := snap.Segments(key)
	if err != nil {
		return models.SegmentedSnapshot{}, err
	}

	out := models.SegmentedSnapshot{
		SegmentKey: key,
		Segments:   make(map[string]models.PerformanceSnapshot, len(buckets)),
	}

	overall, overallErr := ComputeSnapshot(snap, cfg)
	out.Overall = overall

	for value, wagers := range buckets {
		sub, err := ledger.NewSnapshot(wagers)
		if err != nil {
			return models.SegmentedSnapshot{}, fmt.Errorf("segment %q: %w", value, err)
		}
		segment, err := ComputeSnapshot(sub, cfg)
		if err != nil && !IsInsufficientData(err) {
			return models.SegmentedSnapshot{}, fmt.Errorf("segment %q: %w", value, err)
		}
		out.Segments[value] = segment
	}

	return out, overallErr
}

// IsInsufficientData reports whether err marks a degenerate input set
// rather than malformed data.
func IsInsufficientData(err error) bool {
	return errors.Is(err, models.ErrInsufficientData)
}

// maxDrawdown walks the cumulative-profit curve in settlement order and
// returns the largest peak-to-trough drop, in absolute terms and as a
// fraction of the bankroll reference (supplied bankroll, or peak
// cumulative staked when absent).
func maxDrawdown(settled []models.Wager, bankroll *float64, totalStaked float64) (float64, *float64) {
	var cum, peak, maxDD float64
	for _, w := range settled {
		cum += w.Profit()
		if cum > peak {
			peak = cum
		}
		if dd := peak - cum; dd > maxDD {
			maxDD = dd
		}
	}

	basis := totalStaked
	if bankroll != nil && *bankroll > 0 {
		basis = *bankroll
	}
	if basis <= 0 {
		return maxDD, nil
	}
	return maxDD, models.Float64Ptr(maxDD / basis)
}

// percentile returns the q-th quantile (q in [0,1]) of the series by
// linear interpolation between order statistics:
//
//	h = (n-1) * q
//	value = x[floor(h)] + (h - floor(h)) * (x[floor(h)+1] - x[floor(h)])
//
// A single-element series returns that element for every q.
func percentile(series []float64, q float64) float64 {
	sorted := make([]float64, len(series))
	copy(sorted, series)
	sort.Float64s(sorted)

	h := float64(len(sorted)-1) * q
	lo := int(math.Floor(h))
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	frac := h - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}
