package cohort

import (
	"math"
	"testing"
)

func TestScore_Boundaries(t *testing.T) {
	tests := []struct {
		guess, actual, want float64
	}{
		{0, 0, 1},   // nothing predicted, nothing to predict
		{5, 0, 0},   // actual zero, guess not
		{0, 10, 0},  // guess zero, actual not
		{10, 10, 1}, // zero relative error
	}
	for _, tt := range tests {
		if got := Score(tt.guess, tt.actual); got != tt.want {
			t.Errorf("Score(%v, %v) = %v, want %v", tt.guess, tt.actual, got, tt.want)
		}
	}
}

func TestScore_ExponentialDecay(t *testing.T) {
	// relative error 0.5 against actual 10 → exp(-0.5)
	got := Score(5, 10)
	want := math.Exp(-0.5)
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("Score(5,10) = %v, want %v", got, want)
	}
	// small actuals divide by max(actual, 1)
	got = Score(0.4, 0.2)
	want = math.Exp(-0.2)
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("Score(0.4,0.2) = %v, want %v", got, want)
	}
}

func TestScore_InUnitInterval(t *testing.T) {
	pairs := [][2]float64{{1, 1000}, {50, 1}, {3, 7}, {0.01, 0.02}}
	for _, p := range pairs {
		s := Score(p[0], p[1])
		if s <= 0 || s > 1 {
			t.Errorf("Score(%v, %v) = %v, want in (0,1]", p[0], p[1], s)
		}
	}
}

func TestComposite_Weights(t *testing.T) {
	got := Composite(1, 0, 0)
	if got != 0.4 {
		t.Errorf("Composite(1,0,0) = %v, want 0.4", got)
	}
	got = Composite(0, 1, 0)
	if got != 0.3 {
		t.Errorf("Composite(0,1,0) = %v, want 0.3", got)
	}
	got = Composite(0, 0, 1)
	if got != 0.3 {
		t.Errorf("Composite(0,0,1) = %v, want 0.3", got)
	}
	if got := Composite(1, 1, 1); math.Abs(got-1) > 1e-12 {
		t.Errorf("Composite(1,1,1) = %v, want 1", got)
	}
}

func TestComposite_StaysInUnitInterval(t *testing.T) {
	for _, triple := range [][3]float64{{0.5, 0.2, 0.9}, {1, 0, 1}, {0.1, 0.1, 0.1}} {
		got := Composite(triple[0], triple[1], triple[2])
		if got < 0 || got > 1 {
			t.Errorf("Composite(%v) = %v, out of [0,1]", triple, got)
		}
	}
}

func TestScoreGuesses(t *testing.T) {
	actual := AggregateOutcome{AvgICUStay: 2, MortalityRate: 0, AvgBloodLoss: 300, CohortSize: 12}
	r := ScoreGuesses(Guesses{ICUStay: 2, Mortality: 0, BloodLoss: 300}, actual)
	if r.ICUScore != 1 || r.MortalityScore != 1 || r.BloodLossScore != 1 {
		t.Errorf("perfect guesses should score 1 each: %+v", r)
	}
	if math.Abs(r.Composite-1) > 1e-12 {
		t.Errorf("composite = %v, want 1", r.Composite)
	}
	if r.Actual != actual {
		t.Error("expected the actual outcome echoed in the result")
	}
}
