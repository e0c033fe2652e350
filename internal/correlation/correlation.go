// Package correlation estimates pairwise dependence between parlay legs
// from shared-entity heuristics. The coefficients are fixed rules, not a
// fitted statistical model; they capture that same-game legs settle on one
// event and that the same athlete can drive outcomes across games.
package correlation

import "github.com/Rosewood1985/ai-sports-edge-sub010/pkg/models"

// Config holds the heuristic coefficients. All values are additive
// magnitudes except MaxMagnitude, which caps the absolute result; full
// correlation is never assumed.
type Config struct {
	// SameGame applies when both legs settle on the same game.
	SameGame float64 `yaml:"same_game"`

	// SameMarketFamily applies on top of SameGame when both legs are in
	// the same market family (e.g. two totals markets).
	SameMarketFamily float64 `yaml:"same_market_family"`

	// CrossGameSharedEntity applies when legs in different games share a
	// team or player identifier (e.g. the same athlete twice in one day).
	CrossGameSharedEntity float64 `yaml:"cross_game_shared_entity"`

	// MaxMagnitude caps the absolute coefficient.
	MaxMagnitude float64 `yaml:"max_magnitude"`
}

// DefaultConfig returns the standard heuristic coefficients.
func DefaultConfig() Config {
	return Config{
		SameGame:              0.4,
		SameMarketFamily:      0.2,
		CrossGameSharedEntity: 0.15,
		MaxMagnitude:          0.9,
	}
}

// Estimate returns the heuristic correlation between two legs in [-1, 1].
//
// Same game: +0.4. Same game and same market family: +0.2 more. Different
// games sharing an entity: +0.15. Magnitude capped at 0.9. The sign turns
// negative when the legs take opposed sides of the same market in the
// same game (e.g. over and under on one total).
func Estimate(a, b models.Leg, cfg Config) float64 {
	magnitude := 0.0

	if a.GameID == b.GameID {
		magnitude += cfg.SameGame
		if a.Market.Family() == b.Market.Family() {
			magnitude += cfg.SameMarketFamily
		}
	} else if a.SharesEntity(b) {
		magnitude += cfg.CrossGameSharedEntity
	}

	if magnitude > cfg.MaxMagnitude {
		magnitude = cfg.MaxMagnitude
	}

	if a.GameID == b.GameID && a.Market == b.Market && a.Side.OpposedTo(b.Side) {
		return -magnitude
	}
	return magnitude
}

// Matrix returns the full pairwise correlation matrix over the legs.
// The matrix is symmetric and the diagonal is exactly 1.
func Matrix(legs []models.Leg, cfg Config) [][]float64 {
	n := len(legs)
	matrix := make([][]float64, n)
	for i := range matrix {
		matrix[i] = make([]float64, n)
		matrix[i][i] = 1.0
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			coeff := Estimate(legs[i], legs[j], cfg)
			matrix[i][j] = coeff
			matrix[j][i] = coeff
		}
	}
	return matrix
}
