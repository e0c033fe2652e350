package oddsmath

import "fmt"

// RemoveVigTwoWay removes vig from a two-outcome market using the
// multiplicative method, the standard for spreads, totals, and two-way
// moneylines.
//
// Formula:
// 1. Convert both sides to implied probabilities
// 2. Calculate overround: totalProb = prob1 + prob2 (typically > 1.0)
// 3. Normalize: fairProb1 = prob1 / totalProb, fairProb2 = prob2 / totalProb
// 4. Fair probabilities now sum to 1.0
//
// Example:
// Side A: 1.91 (52.36% implied) | Side B: 1.91 (52.36% implied)
// Overround: 104.71% (4.71% vig)
// Fair: 50% / 50% (after normalization)
func RemoveVigTwoWay(prob1, prob2 float64) (fair1, fair2 float64, err error) {
	if prob1 <= 0 || prob1 >= 1 || prob2 <= 0 || prob2 >= 1 {
		return 0, 0, fmt.Errorf("probabilities must be between 0 and 1")
	}

	totalProb := prob1 + prob2

	if totalProb <= 1.0 {
		return 0, 0, fmt.Errorf("no vig detected: probabilities sum to <= 1.0")
	}

	// Normalize by dividing each probability by the total
	fair1 = prob1 / totalProb
	fair2 = prob2 / totalProb

	return fair1, fair2, nil
}

// FairProbabilityFromPrices devigs a two-way market quoted as decimal
// prices and returns the fair win probability of the first side.
//
// Example:
// Price A: 1.91, Price B: 1.91 → 0.50
func FairProbabilityFromPrices(price1, price2 float64) (float64, error) {
	prob1, err := ImpliedProbability(price1)
	if err != nil {
		return 0, fmt.Errorf("side 1: %w", err)
	}

	prob2, err := ImpliedProbability(price2)
	if err != nil {
		return 0, fmt.Errorf("side 2: %w", err)
	}

	fair1, _, err := RemoveVigTwoWay(prob1, prob2)
	if err != nil {
		return 0, err
	}

	return fair1, nil
}
