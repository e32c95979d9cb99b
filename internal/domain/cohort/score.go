package cohort

import "math"

// Composite score weights. Hard-coded policy carried over from the
// dashboard; the three metric scores are each in [0,1] so the composite is
// too.
const (
	icuWeight       = 0.4
	mortalityWeight = 0.3
	bloodLossWeight = 0.3
)

// Score rates a guess against an actual outcome on [0,1] using exponential
// decay of the relative error. Both zero is a perfect match; exactly one
// zero is maximally wrong.
func Score(guess, actual float64) float64 {
	if guess == 0 && actual == 0 {
		return 1
	}
	if guess == 0 || actual == 0 {
		return 0
	}
	relErr := math.Abs(guess-actual) / math.Max(actual, 1)
	return math.Exp(-relErr)
}

// Composite combines the three per-metric scores with the fixed weights.
func Composite(icuScore, mortalityScore, bloodLossScore float64) float64 {
	return icuWeight*icuScore + mortalityWeight*mortalityScore + bloodLossWeight*bloodLossScore
}

// ScoreGuesses rates a full guess set against an aggregate outcome.
func ScoreGuesses(g Guesses, actual AggregateOutcome) ScoreResult {
	r := ScoreResult{
		ICUScore:       Score(g.ICUStay, actual.AvgICUStay),
		MortalityScore: Score(g.Mortality, actual.MortalityRate),
		BloodLossScore: Score(g.BloodLoss, actual.AvgBloodLoss),
		Actual:         actual,
	}
	r.Composite = Composite(r.ICUScore, r.MortalityScore, r.BloodLossScore)
	return r
}
