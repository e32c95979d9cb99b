package cohort

// Profile is a synthetic patient built by the dashboard's sliders. It is
// transient request state, never persisted.
type Profile struct {
	Age       float64 `json:"age"`
	BMI       float64 `json:"bmi"`
	ASA       float64 `json:"asa"`
	Height    float64 `json:"height"`
	Emergency bool    `json:"emergency"`
}

// Tolerances are the per-attribute matching bands. Age and BMI in their own
// units, height in the dataset's length unit, ASA in classification steps.
type Tolerances struct {
	Age    float64 `json:"age"`
	BMI    float64 `json:"bmi"`
	Height float64 `json:"height"`
	ASA    float64 `json:"asa"`
}

// DefaultTolerances is the canonical band set. The historical dashboard
// components each carried their own drifted copies; this is the set the
// risk estimator shipped with.
var DefaultTolerances = Tolerances{Age: 10, BMI: 8, Height: 4, ASA: 3}

// IQR holds nearest-rank first and third quartiles.
type IQR struct {
	Q1 float64 `json:"q1"`
	Q3 float64 `json:"q3"`
}

// AggregateOutcome summarizes a matched cohort. All numeric fields are zero
// when the cohort is empty; CohortSize distinguishes "no data" from a
// genuine zero outcome.
type AggregateOutcome struct {
	AvgICUStay    float64 `json:"avg_icu_stay"`
	MortalityRate float64 `json:"mortality_rate"`
	AvgBloodLoss  float64 `json:"avg_blood_loss"`
	ICUIQR        IQR     `json:"icu_iqr"`
	BloodLossIQR  IQR     `json:"blood_loss_iqr"`
	CohortSize    int     `json:"cohort_size"`
}

// Guesses are the user's predictions for the three outcome metrics.
type Guesses struct {
	ICUStay   float64 `json:"icu_stay"`
	Mortality float64 `json:"mortality"`
	BloodLoss float64 `json:"blood_loss"`
}

// ScoreResult reports per-metric accuracy scores and the weighted composite.
type ScoreResult struct {
	ICUScore       float64          `json:"icu_score"`
	MortalityScore float64          `json:"mortality_score"`
	BloodLossScore float64          `json:"blood_loss_score"`
	Composite      float64          `json:"composite"`
	Actual         AggregateOutcome `json:"actual"`
}
