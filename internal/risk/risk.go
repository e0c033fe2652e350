// Package risk combines per-leg variance, the correlation matrix, and
// parlay size into a 0-100 composite risk score with a categorical
// recommendation tier, and derives the correlation-adjusted joint win
// probability a parlay's expected value is priced from.
package risk

import (
	"math"

	"github.com/Rosewood1985/ai-sports-edge-sub010/internal/correlation"
	"github.com/Rosewood1985/ai-sports-edge-sub010/pkg/models"
	"github.com/Rosewood1985/ai-sports-edge-sub010/pkg/oddsmath"
)

// Config holds the composite weights, size penalty parameters, and tier
// boundaries. Weights apply to, in order: 100*(1-adjustedProbability),
// the variance score scaled to 0-100, and the raw size penalty points.
type Config struct {
	ProbabilityWeight float64 `yaml:"probability_weight"`
	VarianceWeight    float64 `yaml:"variance_weight"`
	SizeWeight        float64 `yaml:"size_weight"`

	// SizePenaltyPerLeg risk points accrue for every leg beyond
	// SizePenaltyFreeLegs.
	SizePenaltyPerLeg   float64 `yaml:"size_penalty_per_leg"`
	SizePenaltyFreeLegs int     `yaml:"size_penalty_free_legs"`

	// Tier boundaries, inclusive-exclusive: a score equal to a bound
	// falls in the band above it.
	StrongBelow float64 `yaml:"strong_below"`
	GoodBelow   float64 `yaml:"good_below"`
	FairBelow   float64 `yaml:"fair_below"`
}

// DefaultConfig returns the standard scoring parameters.
func DefaultConfig() Config {
	return Config{
		ProbabilityWeight:   0.6,
		VarianceWeight:      0.3,
		SizeWeight:          0.1,
		SizePenaltyPerLeg:   5,
		SizePenaltyFreeLegs: 2,
		StrongBelow:         30,
		GoodBelow:           50,
		FairBelow:           75,
	}
}

// Evaluation is the full scoring breakdown for one parlay.
type Evaluation struct {
	CorrelationMatrix   [][]float64 `json:"correlation_matrix"`
	AdjustedProbability float64     `json:"correlation_adjusted_probability"`
	VarianceScore       float64     `json:"variance_score"`
	SizePenalty         float64     `json:"size_penalty"`
	RiskScore           float64     `json:"risk_score"`
	Tier                models.Tier `json:"tier"`
}

// ScoreParlay validates the legs and returns the correlation matrix,
// adjusted probability, composite risk score, and recommendation tier.
func ScoreParlay(legs []models.Leg, corrCfg correlation.Config, cfg Config) (Evaluation, error) {
	card, err := models.NewParlayCard(legs)
	if err != nil {
		return Evaluation{}, err
	}
	return scoreLegs(card.Legs, corrCfg, cfg), nil
}

// EvaluateCard scores the card and returns a new card with the adjusted
// probability, expected value, and risk score populated. The input card
// is left untouched.
func EvaluateCard(card models.ParlayCard, corrCfg correlation.Config, cfg Config) (models.ParlayCard, Evaluation, error) {
	eval, err := ScoreParlay(card.Legs, corrCfg, cfg)
	if err != nil {
		return models.ParlayCard{}, Evaluation{}, err
	}

	out := card
	out.CorrelationAdjustedProbability = eval.AdjustedProbability
	out.ExpectedValue = oddsmath.ExpectedValue(eval.AdjustedProbability, card.CombinedOddsDecimal)
	out.RiskScore = eval.RiskScore
	return out, eval, nil
}

func scoreLegs(legs []models.Leg, corrCfg correlation.Config, cfg Config) Evaluation {
	matrix := correlation.Matrix(legs, corrCfg)
	joint := AdjustedProbability(legs, matrix)
	variance := VarianceScore(legs)
	penalty := SizePenalty(len(legs), cfg)

	score := cfg.ProbabilityWeight*100*(1-joint) +
		cfg.VarianceWeight*100*variance +
		cfg.SizeWeight*penalty
	score = math.Max(0, math.Min(100, score))

	return Evaluation{
		CorrelationMatrix:   matrix,
		AdjustedProbability: joint,
		VarianceScore:       variance,
		SizePenalty:         penalty,
		RiskScore:           score,
		Tier:                TierFor(score, cfg),
	}
}

// AdjustedProbability folds the legs' win probabilities into a joint win
// probability using the pairwise adjustment
//
//	p_adj(i,j) = p_i*p_j + rho(i,j) * sqrt(p_i*(1-p_i) * p_j*(1-p_j))
//
// applied sequentially in leg input order: the running joint starts at
// p_1, and folding leg k uses the mean of rho(j,k) over j < k as the pair
// coefficient, clamping to [0,1] after each fold. For two legs this is
// the pairwise formula exactly. For more it is an approximation: the true
// joint law of several correlated binary outcomes needs a full joint
// model, which is out of scope here.
func AdjustedProbability(legs []models.Leg, matrix [][]float64) float64 {
	if len(legs) == 0 {
		return 0
	}

	joint := legs[0].WinProbability
	for k := 1; k < len(legs); k++ {
		rho := 0.0
		for j := 0; j < k; j++ {
			rho += matrix[j][k]
		}
		rho /= float64(k)

		p := legs[k].WinProbability
		joint = joint*p + rho*math.Sqrt(joint*(1-joint)*p*(1-p))
		joint = math.Max(0, math.Min(1, joint))
	}
	return joint
}

// VarianceScore returns the average of the legs' variance hints weighted
// by 1/oddsDecimal, in [0,1].
func VarianceScore(legs []models.Leg) float64 {
	var weighted, weights float64
	for _, leg := range legs {
		w := 1.0 / leg.OddsDecimal
		weighted += w * leg.Variance()
		weights += w
	}
	if weights == 0 {
		return 0
	}
	return weighted / weights
}

// SizePenalty returns the risk points accrued from parlay size. Every leg
// beyond the free allowance compounds settlement and line-movement risk
// even when the probability math is favorable.
func SizePenalty(legCount int, cfg Config) float64 {
	extra := legCount - cfg.SizePenaltyFreeLegs
	if extra <= 0 {
		return 0
	}
	return cfg.SizePenaltyPerLeg * float64(extra)
}

// TierFor maps a composite score to its recommendation tier. Boundaries
// are inclusive-exclusive: a score sitting exactly on a bound falls in
// the band above it, so 30 is good_play and 75 is avoid.
func TierFor(score float64, cfg Config) models.Tier {
	switch {
	case score < cfg.StrongBelow:
		return models.TierStrongPlay
	case score < cfg.GoodBelow:
		return models.TierGoodPlay
	case score < cfg.FairBelow:
		return models.TierFairPlay
	default:
		return models.TierAvoid
	}
}
