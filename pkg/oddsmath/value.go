package oddsmath

// ExpectedValue returns the expected profit per unit staked on a wager
// with the given win probability and decimal price.
//
// EV = p * decimal - 1
//
// Example:
// p = 0.55, decimal = 2.00 → EV = 0.10 (10 cents per dollar staked)
//
// Positive EV = +EV bet
// Negative EV = -EV bet
func ExpectedValue(probability, decimal float64) float64 {
	return probability*decimal - 1.0
}

// ExpectedValueDollar returns the expected profit in currency for a stake
// at the given win probability and decimal price.
//
// EV$ = (WinProb × WinAmount) - (LoseProb × StakeAmount)
func ExpectedValueDollar(stake, probability, decimal float64) float64 {
	winAmount := stake*decimal - stake
	loseProb := 1.0 - probability

	return probability*winAmount - loseProb*stake
}
