// Package optimizer searches a candidate pool for leg substitutions that
// improve a parlay under a chosen strategy. The search is greedy local
// search, not exhaustive enumeration: each iteration re-scores every legal
// single-leg substitution through the correlation and risk pipeline and
// accepts the one best strictly-improving swap, so cost stays
// O(legs * poolSize) per iteration and termination is deterministic.
package optimizer

import (
	"errors"
	"fmt"

	"github.com/Rosewood1985/ai-sports-edge-sub010/internal/correlation"
	"github.com/Rosewood1985/ai-sports-edge-sub010/internal/risk"
	"github.com/Rosewood1985/ai-sports-edge-sub010/pkg/models"
)

// Config selects the objective and bounds the search.
type Config struct {
	// Strategy picks the objective: value maximizes expected value,
	// safety minimizes risk score among non-negative-EV cards, balanced
	// maximizes EV - Lambda*riskScore.
	Strategy models.Strategy `yaml:"strategy"`

	// Lambda is the risk weight in the balanced objective.
	Lambda float64 `yaml:"lambda"`

	// MaxIterations caps the swap loop. Zero defaults to the card's leg
	// count, enough for one accepted swap per slot.
	MaxIterations int `yaml:"max_iterations"`

	Correlation correlation.Config `yaml:"correlation"`
	Risk        risk.Config        `yaml:"risk"`
}

// DefaultConfig returns a balanced-strategy configuration with the
// standard scoring parameters.
func DefaultConfig() Config {
	return Config{
		Strategy:    models.StrategyBalanced,
		Lambda:      0.01,
		Correlation: correlation.DefaultConfig(),
		Risk:        risk.DefaultConfig(),
	}
}

// Optimize runs the greedy substitution search and reports the outcome.
// An empty pool, or a card no substitution strictly improves, returns the
// original card with status no_improvement; that is a valid terminal
// state, not an error. Ties keep the earliest (slot, candidate) pair, so
// results are deterministic for a given input order.
func Optimize(card models.ParlayCard, pool []models.Leg, cfg Config) (models.OptimizationResult, error) {
	if !cfg.Strategy.Valid() {
		return models.OptimizationResult{}, fmt.Errorf("unknown strategy %q", cfg.Strategy)
	}

	original, _, err := risk.EvaluateCard(card, cfg.Correlation, cfg.Risk)
	if err != nil {
		return models.OptimizationResult{}, err
	}

	maxIterations := cfg.MaxIterations
	if maxIterations <= 0 {
		maxIterations = len(original.Legs)
	}

	current := original
	var rationale []string
	iterations := 0

	for iterations < maxIterations {
		iterations++

		swap, found, err := bestSwap(current, pool, cfg)
		if err != nil {
			return models.OptimizationResult{}, err
		}
		if !found {
			break
		}

		rationale = append(rationale, fmt.Sprintf(
			"swapped %s for %s: EV %+.1f%%, risk %+.1f",
			current.Legs[swap.slot].Label(), swap.leg.Label(),
			(swap.card.ExpectedValue-current.ExpectedValue)*100,
			swap.card.RiskScore-current.RiskScore,
		))
		current = swap.card
	}

	status := models.OptimizationNoImprovement
	if len(rationale) > 0 {
		status = models.OptimizationImproved
	}

	return models.OptimizationResult{
		Original:   original,
		Optimized:  current,
		Status:     status,
		Iterations: iterations,
		Deltas: models.OptimizationDeltas{
			CombinedOdds:        current.CombinedOddsDecimal - original.CombinedOddsDecimal,
			ExpectedValue:       current.ExpectedValue - original.ExpectedValue,
			RiskScore:           current.RiskScore - original.RiskScore,
			AdjustedProbability: current.CorrelationAdjustedProbability - original.CorrelationAdjustedProbability,
		},
		Rationale: rationale,
	}, nil
}

// candidateSwap is one evaluated substitution.
type candidateSwap struct {
	slot int
	leg  models.Leg
	card models.ParlayCard
}

// bestSwap scans every legal (slot, candidate) substitution and returns
// the highest-objective one that strictly beats the current card.
// Duplicate-leg collisions are skipped; malformed pool legs are raised,
// never skipped, since a bad candidate means an upstream data bug.
func bestSwap(current models.ParlayCard, pool []models.Leg, cfg Config) (candidateSwap, bool, error) {
	currentObjective := objective(current, cfg)
	best := candidateSwap{}
	bestObjective := currentObjective
	found := false

	for slot := range current.Legs {
		outgoing := current.Legs[slot].Key()
		for _, candidate := range pool {
			if candidate.Key() == outgoing {
				continue
			}

			swapped, err := current.SwapLeg(slot, candidate)
			if err != nil {
				if errors.Is(err, models.ErrDuplicateLeg) {
					continue
				}
				return candidateSwap{}, false, fmt.Errorf("candidate %s: %w", candidate.Label(), err)
			}

			evaluated, _, err := risk.EvaluateCard(swapped, cfg.Correlation, cfg.Risk)
			if err != nil {
				return candidateSwap{}, false, err
			}

			if cfg.Strategy == models.StrategySafety && evaluated.ExpectedValue < 0 {
				continue
			}

			if o := objective(evaluated, cfg); o > bestObjective {
				best = candidateSwap{slot: slot, leg: candidate, card: evaluated}
				bestObjective = o
				found = true
			}
		}
	}

	return best, found, nil
}

// objective scores a card under the configured strategy. Higher is better
// for every strategy; safety negates the risk score so minimization fits
// the same comparison.
func objective(card models.ParlayCard, cfg Config) float64 {
	switch cfg.Strategy {
	case models.StrategySafety:
		return -card.RiskScore
	case models.StrategyBalanced:
		return card.ExpectedValue - cfg.Lambda*card.RiskScore
	default:
		return card.ExpectedValue
	}
}
