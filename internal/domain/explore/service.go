package explore

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/montanaflynn/stats"

	"github.com/casedash/casedash/internal/dataset"
)

// summaryFields bounds the field names a histogram or scatter request may
// ask for; preop_* lab columns are allowed through as-is.
var summaryFields = map[string]bool{
	"age": true, "height": true, "weight": true, "bmi": true, "asa": true,
	"icu_days": true, "intraop_ebl": true,
}

func validField(name string) error {
	if summaryFields[name] || strings.HasPrefix(name, "preop_") {
		return nil
	}
	return fmt.Errorf("unknown field %q", name)
}

// Service computes chart-feeding summaries over the loaded dataset. Every
// summary is recomputed in full from the current snapshot on each call;
// with a few thousand records a scan is cheap and there is nothing to
// invalidate.
type Service struct {
	store *dataset.Store
}

func NewService(store *dataset.Store) *Service {
	return &Service{store: store}
}

func (s *Service) filtered(f Filter) []*dataset.SurgeryCase {
	var out []*dataset.SurgeryCase
	for _, sc := range s.store.Cases() {
		if f.match(sc) {
			out = append(out, sc)
		}
	}
	return out
}

// Departments lists the distinct department names in the dataset, sorted.
func (s *Service) Departments() []string {
	seen := map[string]bool{}
	for _, sc := range s.store.Cases() {
		if sc.Department != "" {
			seen[sc.Department] = true
		}
	}
	names := make([]string, 0, len(seen))
	for d := range seen {
		names = append(names, d)
	}
	sort.Strings(names)
	return names
}

// Histogram bins one numeric field of the filtered dataset.
func (s *Service) Histogram(field string, bin float64, f Filter) (Histogram, error) {
	if err := validField(field); err != nil {
		return Histogram{}, err
	}
	if bin <= 0 {
		return Histogram{}, fmt.Errorf("bin width must be positive")
	}

	var vals []float64
	for _, sc := range s.filtered(f) {
		if v, ok := sc.Num(field); ok {
			vals = append(vals, v)
		}
	}
	h := Histogram{Field: field, Bin: bin, Count: len(vals)}
	if len(vals) == 0 {
		return h, nil
	}

	h.Mean, _ = stats.Mean(vals)
	h.StdDev, _ = stats.StandardDeviation(vals)

	min, _ := stats.Min(vals)
	max, _ := stats.Max(vals)
	lo := math.Floor(min/bin) * bin
	n := int((max-lo)/bin) + 1
	buckets := make([]Bucket, n)
	for i := range buckets {
		buckets[i] = Bucket{Lo: lo + float64(i)*bin, Hi: lo + float64(i+1)*bin}
	}
	for _, v := range vals {
		i := int((v - lo) / bin)
		if i >= n {
			i = n - 1
		}
		buckets[i].Count++
	}
	h.Buckets = buckets
	return h, nil
}

// Timeline averages phase durations per department over the filtered
// dataset, sorted by department name.
func (s *Service) Timeline(f Filter) []TimelineEntry {
	type acc struct {
		cases                  int
		op, ane, cs, icu, hosp avgAcc
	}
	byDept := map[string]*acc{}
	for _, sc := range s.filtered(f) {
		if sc.Department == "" {
			continue
		}
		a := byDept[sc.Department]
		if a == nil {
			a = &acc{}
			byDept[sc.Department] = a
		}
		a.cases++
		a.op.addOk(sc.OpDuration())
		a.ane.addOk(sc.AneDuration())
		a.cs.addOk(sc.CaseDuration())
		a.icu.addPtr(sc.ICUDays)
		a.hosp.addOk(sc.HospitalStay())
	}

	entries := make([]TimelineEntry, 0, len(byDept))
	for dept, a := range byDept {
		entries = append(entries, TimelineEntry{
			Department:      dept,
			Cases:           a.cases,
			AvgOpMinutes:    a.op.mean(),
			AvgAneMinutes:   a.ane.mean(),
			AvgCaseMinutes:  a.cs.mean(),
			AvgICUDays:      a.icu.mean(),
			AvgHospitalDays: a.hosp.mean(),
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Department < entries[j].Department })
	return entries
}

// Scatter pairs two fields and fits an OLS regression line when the points
// admit one.
func (s *Service) Scatter(xField, yField string, f Filter) (Scatter, error) {
	if err := validField(xField); err != nil {
		return Scatter{}, err
	}
	if err := validField(yField); err != nil {
		return Scatter{}, err
	}
	if xField == yField {
		return Scatter{}, fmt.Errorf("x and y must differ")
	}

	sc := Scatter{XField: xField, YField: yField}
	var series stats.Series
	var xs, ys []float64
	for _, rec := range s.filtered(f) {
		x, ok := rec.Num(xField)
		if !ok {
			continue
		}
		y, ok := rec.Num(yField)
		if !ok {
			continue
		}
		sc.Points = append(sc.Points, Point{CaseID: rec.CaseID, X: x, Y: y})
		series = append(series, stats.Coordinate{X: x, Y: y})
		xs = append(xs, x)
		ys = append(ys, y)
	}
	sc.Count = len(sc.Points)
	sc.Regression = fitLine(series, xs, ys)
	return sc, nil
}

// fitLine derives slope/intercept from the fitted series montanaflynn
// returns, plus the correlation coefficient. Nil when the points are too
// few or x is constant.
func fitLine(series stats.Series, xs, ys []float64) *Regression {
	if len(series) < 2 {
		return nil
	}
	xsd, err := stats.StandardDeviation(xs)
	if err != nil || xsd == 0 {
		return nil
	}
	fitted, err := stats.LinearRegression(series)
	if err != nil || len(fitted) < 2 {
		return nil
	}
	var a, b stats.Coordinate
	a = fitted[0]
	for _, c := range fitted[1:] {
		if c.X != a.X {
			b = c
			break
		}
	}
	if b.X == a.X {
		return nil
	}
	slope := (b.Y - a.Y) / (b.X - a.X)
	r, _ := stats.Correlation(xs, ys)
	return &Regression{Slope: slope, Intercept: a.Y - slope*a.X, R: r}
}

// radarAxes are the risk factors the dashboard's radar chart compares.
var radarAxes = []string{"age", "bmi", "asa", "icu_days", "intraop_ebl", "mortality"}

// Radar profiles one department's mean risk factors against the whole
// dataset.
func (s *Service) Radar(department string) (Radar, error) {
	if department == "" {
		return Radar{}, fmt.Errorf("department is required")
	}
	all := s.store.Cases()
	dept := s.filtered(Filter{Department: department})
	if len(dept) == 0 {
		return Radar{}, fmt.Errorf("no cases for department %q", department)
	}

	r := Radar{Department: department, Cases: len(dept)}
	for _, axis := range radarAxes {
		ax := RadarAxis{
			Name:       axis,
			Department: axisMean(dept, axis),
			Overall:    axisMean(all, axis),
		}
		if ax.Overall != 0 {
			ax.Ratio = ax.Department / ax.Overall
		}
		r.Axes = append(r.Axes, ax)
	}
	return r, nil
}

func axisMean(cases []*dataset.SurgeryCase, axis string) float64 {
	if axis == "mortality" {
		if len(cases) == 0 {
			return 0
		}
		deaths := 0
		for _, sc := range cases {
			if sc.Died() {
				deaths++
			}
		}
		return float64(deaths) / float64(len(cases))
	}
	var a avgAcc
	for _, sc := range cases {
		a.addOk(sc.Num(axis))
	}
	return a.mean()
}

// avgAcc is a tiny present-value mean accumulator.
type avgAcc struct {
	sum float64
	n   int
}

func (a *avgAcc) addOk(v float64, ok bool) {
	if !ok {
		return
	}
	a.sum += v
	a.n++
}

func (a *avgAcc) addPtr(p *float64) {
	if p == nil || math.IsNaN(*p) || math.IsInf(*p, 0) {
		return
	}
	a.sum += *p
	a.n++
}

func (a *avgAcc) mean() float64 {
	if a.n == 0 {
		return 0
	}
	return a.sum / float64(a.n)
}
