package explore

import "github.com/casedash/casedash/internal/dataset"

// Filter narrows the dataset before a summary is computed. Zero values mean
// "no constraint".
type Filter struct {
	Department string
	Sex        string
	Emergency  *bool
}

func (f Filter) match(sc *dataset.SurgeryCase) bool {
	if f.Department != "" && sc.Department != f.Department {
		return false
	}
	if f.Sex != "" && sc.Sex != f.Sex {
		return false
	}
	if f.Emergency != nil && sc.Emergency() != *f.Emergency {
		return false
	}
	return true
}

// Bucket is one histogram bar: [Lo, Hi) except the last bucket, which is
// closed on both ends.
type Bucket struct {
	Lo    float64 `json:"lo"`
	Hi    float64 `json:"hi"`
	Count int     `json:"count"`
}

// Histogram is the binned distribution of one numeric field.
type Histogram struct {
	Field   string   `json:"field"`
	Bin     float64  `json:"bin"`
	Count   int      `json:"count"`
	Mean    float64  `json:"mean"`
	StdDev  float64  `json:"stddev"`
	Buckets []Bucket `json:"buckets"`
}

// TimelineEntry summarizes mean phase durations for one department.
type TimelineEntry struct {
	Department      string  `json:"department"`
	Cases           int     `json:"cases"`
	AvgOpMinutes    float64 `json:"avg_op_minutes"`
	AvgAneMinutes   float64 `json:"avg_ane_minutes"`
	AvgCaseMinutes  float64 `json:"avg_case_minutes"`
	AvgICUDays      float64 `json:"avg_icu_days"`
	AvgHospitalDays float64 `json:"avg_hospital_days"`
}

// Point is one scatter-plot observation.
type Point struct {
	CaseID int     `json:"caseid"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

// Regression is an ordinary-least-squares line over the scatter points.
type Regression struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	R         float64 `json:"r"`
}

// Scatter pairs two numeric fields across the filtered dataset.
type Scatter struct {
	XField     string      `json:"x_field"`
	YField     string      `json:"y_field"`
	Count      int         `json:"count"`
	Points     []Point     `json:"points"`
	Regression *Regression `json:"regression,omitempty"`
}

// RadarAxis compares a department's mean for one risk factor against the
// whole dataset's mean. Ratio is department/overall, zero when the overall
// mean is zero.
type RadarAxis struct {
	Name       string  `json:"name"`
	Department float64 `json:"department"`
	Overall    float64 `json:"overall"`
	Ratio      float64 `json:"ratio"`
}

// Radar is the normalized risk-factor profile of one department.
type Radar struct {
	Department string      `json:"department"`
	Cases      int         `json:"cases"`
	Axes       []RadarAxis `json:"axes"`
}
