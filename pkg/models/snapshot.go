package models

import "time"

// PerformanceSnapshot is a point-in-time aggregate over a wager ledger.
// Ratio fields are pointers where nil means undefined, so callers can
// tell "no data" apart from "zero performance". VaR95 is a historical,
// sample-based estimate (5th percentile of observed per-wager returns),
// not a distributional guarantee.
type PerformanceSnapshot struct {
	TotalCount   int `json:"total_count"`
	PendingCount int `json:"pending_count"`
	SettledCount int `json:"settled_count"`
	WonCount     int `json:"won_count"`
	LostCount    int `json:"lost_count"`
	PushedCount  int `json:"pushed_count"`
	VoidedCount  int `json:"voided_count"`

	TotalStaked float64 `json:"total_staked"`
	TotalProfit float64 `json:"total_profit"`

	ROI              *float64 `json:"roi,omitempty"`
	WinRate          *float64 `json:"win_rate,omitempty"`
	Sharpe           *float64 `json:"sharpe,omitempty"`
	SharpeDegenerate bool     `json:"sharpe_degenerate,omitempty"`
	AnnualizedROI    *float64 `json:"annualized_roi,omitempty"`
	Calmar           *float64 `json:"calmar,omitempty"`
	MaxDrawdown      float64  `json:"max_drawdown"`
	MaxDrawdownPct   *float64 `json:"max_drawdown_pct,omitempty"`
	VaR95            *float64 `json:"var_95,omitempty"`

	FirstSettledAt *time.Time `json:"first_settled_at,omitempty"`
	LastSettledAt  *time.Time `json:"last_settled_at,omitempty"`
}

// SegmentedSnapshot pairs the whole-ledger snapshot with one snapshot per
// distinct segment value (sport key, market key, or book name).
type SegmentedSnapshot struct {
	SegmentKey SegmentKey                     `json:"segment_key"`
	Overall    PerformanceSnapshot            `json:"overall"`
	Segments   map[string]PerformanceSnapshot `json:"segments"`
}

// OptimizationDeltas quantifies the movement between an original card and
// its optimized replacement. Values are optimized minus original.
type OptimizationDeltas struct {
	CombinedOdds        float64 `json:"combined_odds"`
	ExpectedValue       float64 `json:"expected_value"`
	RiskScore           float64 `json:"risk_score"`
	AdjustedProbability float64 `json:"adjusted_probability"`
}

// OptimizationResult is the terminal state of an optimizer pass. A
// no_improvement status returns the original card unchanged and is a
// valid outcome, not an error.
type OptimizationResult struct {
	Original   ParlayCard         `json:"original"`
	Optimized  ParlayCard         `json:"optimized"`
	Status     OptimizationStatus `json:"status"`
	Iterations int                `json:"iterations"`
	Deltas     OptimizationDeltas `json:"deltas"`
	Rationale  []string           `json:"rationale,omitempty"`
}

// Improved reports whether the pass accepted at least one substitution.
func (r OptimizationResult) Improved() bool {
	return r.Status == OptimizationImproved
}

// Float64Ptr returns a pointer to v. Helper for the pointer-valued
// ratio fields on snapshots and request payloads.
func Float64Ptr(v float64) *float64 {
	return &v
}
