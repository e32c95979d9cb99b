package dataset

import "math"

// Value is a single decoded CSV cell. Cells that look numeric are carried as
// float64; everything else stays a string. An empty cell is a present,
// empty string — not a null.
type Value struct {
	Raw     string
	Num     float64
	Numeric bool
}

// SurgeryCase is one historical surgical case record. Every numeric field is
// optional: a nil pointer means the column was absent, empty, or not numeric
// in the source row. Consumers must treat nil defensively; a record cannot
// match or contribute on a dimension it lacks data for.
type SurgeryCase struct {
	CaseID    int    `json:"caseid"`
	SubjectID string `json:"subjectid,omitempty"`

	// Demographics
	Age    *float64 `json:"age,omitempty"`
	Sex    string   `json:"sex,omitempty"`
	Height *float64 `json:"height,omitempty"`
	Weight *float64 `json:"weight,omitempty"`
	BMI    *float64 `json:"bmi,omitempty"`
	ASA    *float64 `json:"asa,omitempty"`
	EmOp   *float64 `json:"emop,omitempty"`

	// Case description
	Department     string `json:"department,omitempty"`
	OpType         string `json:"optype,omitempty"`
	OpName         string `json:"opname,omitempty"`
	Diagnosis      string `json:"dx,omitempty"`
	AnesthesiaType string `json:"ane_type,omitempty"`
	Approach       string `json:"approach,omitempty"`

	// Timestamps, epoch-seconds-like offsets from the source dataset.
	CaseStart *float64 `json:"casestart,omitempty"`
	CaseEnd   *float64 `json:"caseend,omitempty"`
	AneStart  *float64 `json:"anestart,omitempty"`
	AneEnd    *float64 `json:"aneend,omitempty"`
	OpStart   *float64 `json:"opstart,omitempty"`
	OpEnd     *float64 `json:"opend,omitempty"`
	AdmTime   *float64 `json:"adm,omitempty"`
	DisTime   *float64 `json:"dis,omitempty"`

	// Outcomes
	ICUDays     *float64 `json:"icu_days,omitempty"`
	DeathInHosp *float64 `json:"death_inhosp,omitempty"`
	IntraopEBL  *float64 `json:"intraop_ebl,omitempty"`

	// Optional preoperative labs and any other numeric columns not mapped
	// above, keyed by the CSV header name.
	Labs map[string]float64 `json:"labs,omitempty"`
}

// Emergency reports whether the case was an emergency operation. A missing
// flag counts as non-emergency.
func (sc *SurgeryCase) Emergency() bool {
	return sc.EmOp != nil && *sc.EmOp != 0
}

// Died reports the in-hospital death flag. A missing flag counts as alive.
func (sc *SurgeryCase) Died() bool {
	return sc.DeathInHosp != nil && *sc.DeathInHosp != 0
}

// Num returns the named numeric field and whether it is present and finite.
// Recognized names are the well-known columns; anything else is looked up in
// the lab map.
func (sc *SurgeryCase) Num(field string) (float64, bool) {
	var p *float64
	switch field {
	case "age":
		p = sc.Age
	case "height":
		p = sc.Height
	case "weight":
		p = sc.Weight
	case "bmi":
		p = sc.BMI
	case "asa":
		p = sc.ASA
	case "emop":
		p = sc.EmOp
	case "icu_days":
		p = sc.ICUDays
	case "death_inhosp":
		p = sc.DeathInHosp
	case "intraop_ebl":
		p = sc.IntraopEBL
	case "casestart":
		p = sc.CaseStart
	case "caseend":
		p = sc.CaseEnd
	case "anestart":
		p = sc.AneStart
	case "aneend":
		p = sc.AneEnd
	case "opstart":
		p = sc.OpStart
	case "opend":
		p = sc.OpEnd
	case "adm":
		p = sc.AdmTime
	case "dis":
		p = sc.DisTime
	default:
		v, ok := sc.Labs[field]
		if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return v, true
	}
	if p == nil || math.IsNaN(*p) || math.IsInf(*p, 0) {
		return 0, false
	}
	return *p, true
}

// OpDuration returns the operation duration in minutes, when both endpoints
// are present and ordered.
func (sc *SurgeryCase) OpDuration() (float64, bool) {
	return duration(sc.OpStart, sc.OpEnd)
}

// AneDuration returns the anesthesia duration in minutes.
func (sc *SurgeryCase) AneDuration() (float64, bool) {
	return duration(sc.AneStart, sc.AneEnd)
}

// CaseDuration returns the whole-case duration in minutes.
func (sc *SurgeryCase) CaseDuration() (float64, bool) {
	return duration(sc.CaseStart, sc.CaseEnd)
}

// HospitalStay returns admission-to-discharge length in days.
func (sc *SurgeryCase) HospitalStay() (float64, bool) {
	mins, ok := duration(sc.AdmTime, sc.DisTime)
	if !ok {
		return 0, false
	}
	return mins / (60 * 24), true
}

func duration(start, end *float64) (float64, bool) {
	if start == nil || end == nil {
		return 0, false
	}
	d := *end - *start
	if d < 0 || math.IsNaN(d) || math.IsInf(d, 0) {
		return 0, false
	}
	return d / 60, true
}
