package cohort

import (
	"math"
	"sort"

	"github.com/casedash/casedash/internal/dataset"
)

// Aggregate summarizes the outcome fields of a cohort. ICU-stay and
// blood-loss statistics consider only finite values; the mortality rate is
// the mean of the death flag over the entire cohort, with a missing flag
// counting as alive. An empty cohort degrades to all zeros.
func Aggregate(cohort []*dataset.SurgeryCase) AggregateOutcome {
	out := AggregateOutcome{CohortSize: len(cohort)}
	if len(cohort) == 0 {
		return out
	}

	icu := collect(cohort, func(sc *dataset.SurgeryCase) *float64 { return sc.ICUDays })
	ebl := collect(cohort, func(sc *dataset.SurgeryCase) *float64 { return sc.IntraopEBL })

	out.AvgICUStay = mean(icu)
	out.ICUIQR = quartiles(icu)
	out.AvgBloodLoss = mean(ebl)
	out.BloodLossIQR = quartiles(ebl)

	deaths := 0
	for _, sc := range cohort {
		if sc.Died() {
			deaths++
		}
	}
	out.MortalityRate = float64(deaths) / float64(len(cohort))

	return out
}

func collect(cohort []*dataset.SurgeryCase, field func(*dataset.SurgeryCase) *float64) []float64 {
	vals := make([]float64, 0, len(cohort))
	for _, sc := range cohort {
		v := field(sc)
		if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
			continue
		}
		vals = append(vals, *v)
	}
	sort.Float64s(vals)
	return vals
}

func mean(sorted []float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range sorted {
		sum += v
	}
	return sum / float64(len(sorted))
}

// quartiles picks sorted[floor(n*0.25)] and sorted[floor(n*0.75)]. The
// nearest-rank convention is load-bearing: the dashboard's existing numbers
// were produced this way and interpolated quartiles disagree on small
// cohorts.
func quartiles(sorted []float64) IQR {
	n := len(sorted)
	if n == 0 {
		return IQR{}
	}
	return IQR{
		Q1: sorted[int(math.Floor(float64(n)*0.25))],
		Q3: sorted[int(math.Floor(float64(n)*0.75))],
	}
}
