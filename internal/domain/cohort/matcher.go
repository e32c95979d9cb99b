package cohort

import (
	"math"

	"github.com/casedash/casedash/internal/dataset"
)

// Match filters cases to those within every tolerance band of the profile.
// Each attribute contributes an independent test; a case with a missing
// attribute fails that test (it cannot match on a dimension it lacks data
// for). Input order is preserved and an empty result is a normal outcome.
func Match(p Profile, cases []*dataset.SurgeryCase, tol Tolerances) []*dataset.SurgeryCase {
	matched := make([]*dataset.SurgeryCase, 0, len(cases)/8)
	for _, sc := range cases {
		if !within(sc.Age, p.Age, tol.Age) {
			continue
		}
		if !within(sc.BMI, p.BMI, tol.BMI) {
			continue
		}
		if !within(sc.Height, p.Height, tol.Height) {
			continue
		}
		if !within(sc.ASA, p.ASA, tol.ASA) {
			continue
		}
		matched = append(matched, sc)
	}
	return matched
}

func within(attr *float64, target, tol float64) bool {
	if attr == nil || math.IsNaN(*attr) || math.IsInf(*attr, 0) {
		return false
	}
	return math.Abs(*attr-target) <= tol
}
