// Package recommend assembles analytics, risk scoring, staking, and
// optimization output into the report and recommendation structures
// callers consume. It is the boundary where ids and timestamps attach;
// the stages underneath stay pure.
package recommend

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/Rosewood1985/ai-sports-edge-sub010/internal/analytics"
	"github.com/Rosewood1985/ai-sports-edge-sub010/internal/correlation"
	"github.com/Rosewood1985/ai-sports-edge-sub010/internal/kelly"
	"github.com/Rosewood1985/ai-sports-edge-sub010/internal/ledger"
	"github.com/Rosewood1985/ai-sports-edge-sub010/internal/optimizer"
	"github.com/Rosewood1985/ai-sports-edge-sub010/internal/risk"
	"github.com/Rosewood1985/ai-sports-edge-sub010/pkg/models"
)

// OptimizerTuning is the deployment-level slice of the optimizer
// configuration; the strategy itself arrives with each request.
type OptimizerTuning struct {
	Lambda        float64 `yaml:"lambda"`
	MaxIterations int     `yaml:"max_iterations"`
}

// EngineConfig bundles the tunables of every engine stage.
type EngineConfig struct {
	Analytics   analytics.Config   `yaml:"analytics"`
	Correlation correlation.Config `yaml:"correlation"`
	Risk        risk.Config        `yaml:"risk"`
	Kelly       kelly.Config       `yaml:"kelly"`
	Optimizer   OptimizerTuning    `yaml:"optimizer"`
}

// DefaultEngineConfig returns the standard parameters for every stage.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Analytics:   analytics.DefaultConfig(),
		Correlation: correlation.DefaultConfig(),
		Risk:        risk.DefaultConfig(),
		Kelly:       kelly.DefaultConfig(),
		Optimizer:   OptimizerTuning{Lambda: 0.01},
	}
}

// Preferences carries caller-supplied staking and strategy choices.
// Bankroll figures are always passed explicitly, never held as session
// state, so the engine stays usable from batch jobs and tests alike.
type Preferences struct {
	Bankroll     *float64        `json:"bankroll,omitempty"`
	BankrollCap  *float64        `json:"bankroll_cap,omitempty"`
	Conservatism *float64        `json:"conservatism,omitempty"`
	Strategy     models.Strategy `json:"strategy,omitempty"`
}

// Report is the performance-path output: one snapshot, or a segmented set
// when a segment key was requested.
type Report struct {
	ReportID    string                      `json:"report_id"`
	GeneratedAt time.Time                   `json:"generated_at"`
	UserID      string                      `json:"user_id,omitempty"`
	Snapshot    *models.PerformanceSnapshot `json:"snapshot,omitempty"`
	Segmented   *models.SegmentedSnapshot   `json:"segmented,omitempty"`
}

// Recommendation is the parlay-path output.
type Recommendation struct {
	RecommendationID string                     `json:"recommendation_id"`
	GeneratedAt      time.Time                  `json:"generated_at"`
	Card             models.ParlayCard          `json:"card"`
	Evaluation       risk.Evaluation            `json:"evaluation"`
	Tier             models.Tier                `json:"tier"`
	StakeFraction    float64                    `json:"stake_fraction"`
	StakeAmount      *float64                   `json:"stake_amount,omitempty"`
	Optimization     *models.OptimizationResult `json:"optimization,omitempty"`
	Rationale        []string                   `json:"rationale,omitempty"`
}

// PerformanceReport runs the performance path over a wager ledger. With a
// zero-settled ledger the report still carries counts and the error wraps
// models.ErrInsufficientData, mirroring the analytics contract.
func PerformanceReport(wagers []models.Wager, segmentBy models.SegmentKey, userID string, cfg EngineConfig) (Report, error) {
	snap, err := ledger.NewSnapshot(wagers)
	if err != nil {
		return Report{}, err
	}

	report := Report{
		ReportID:    uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		UserID:      userID,
	}

	if segmentBy == "" {
		snapshot, err := analytics.ComputeSnapshot(snap, cfg.Analytics)
		report.Snapshot = &snapshot
		return report, err
	}

	segmented, err := analytics.ComputeSegmented(snap, segmentBy, cfg.Analytics)
	report.Segmented = &segmented
	return report, err
}

// ParlayRecommendation runs the parlay path: score the card, size the
// stake, and, when a strategy is requested, search the candidate pool for
// improving substitutions. Per-request preference overrides apply on top
// of the engine defaults.
func ParlayRecommendation(legs []models.Leg, pool []models.Leg, prefs Preferences, cfg EngineConfig) (Recommendation, error) {
	card, err := models.NewParlayCard(legs)
	if err != nil {
		return Recommendation{}, err
	}

	evaluated, eval, err := risk.EvaluateCard(card, cfg.Correlation, cfg.Risk)
	if err != nil {
		return Recommendation{}, err
	}

	var optimization *models.OptimizationResult
	if prefs.Strategy != "" {
		result, err := optimizer.Optimize(evaluated, pool, optimizer.Config{
			Strategy:      prefs.Strategy,
			Lambda:        cfg.Optimizer.Lambda,
			MaxIterations: cfg.Optimizer.MaxIterations,
			Correlation:   cfg.Correlation,
			Risk:          cfg.Risk,
		})
		if err != nil {
			return Recommendation{}, err
		}
		optimization = &result

		if result.Improved() {
			evaluated = result.Optimized
			eval, err = risk.ScoreParlay(evaluated.Legs, cfg.Correlation, cfg.Risk)
			if err != nil {
				return Recommendation{}, err
			}
		}
	}

	kellyCfg := cfg.Kelly
	if prefs.BankrollCap != nil {
		kellyCfg.BankrollCap = *prefs.BankrollCap
	}
	if prefs.Conservatism != nil {
		kellyCfg.Conservatism = *prefs.Conservatism
	}

	sized, err := kelly.ForCard(evaluated, kellyCfg)
	if err != nil {
		return Recommendation{}, err
	}

	rationale := []string{tierLine(eval)}
	if optimization != nil {
		rationale = append(rationale, optimization.Rationale...)
	}

	rec := Recommendation{
		RecommendationID: uuid.NewString(),
		GeneratedAt:      time.Now().UTC(),
		Card:             sized,
		Evaluation:       eval,
		Tier:             eval.Tier,
		StakeFraction:    sized.KellyFraction,
		Optimization:     optimization,
		Rationale:        rationale,
	}

	if prefs.Bankroll != nil && *prefs.Bankroll > 0 {
		amount := roundCents(sized.KellyFraction * *prefs.Bankroll)
		rec.StakeAmount = &amount
	}

	return rec, nil
}

// tierLine summarizes the evaluation as the first rationale entry.
func tierLine(eval risk.Evaluation) string {
	return fmt.Sprintf("%s: risk score %.1f, adjusted win probability %.1f%%",
		eval.Tier, eval.RiskScore, eval.AdjustedProbability*100)
}

// roundCents rounds a currency amount to 2 decimal places.
func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
