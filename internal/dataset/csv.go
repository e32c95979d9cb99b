package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
)

// numericCellRe decides whether a CSV cell is carried as a number. The rule
// is deliberately narrow (no exponents, no leading/trailing spaces) so that
// decoding stays byte-for-byte compatible with the existing dataset files.
var numericCellRe = regexp.MustCompile(`^[+-]?\d+(\.\d+)?$`)

// CoerceCell applies the dataset's cell coercion rule: numeric-looking
// strings become numbers, everything else stays a string, and an empty cell
// stays an empty string.
func CoerceCell(s string) Value {
	if s != "" && numericCellRe.MatchString(s) {
		n, err := strconv.ParseFloat(s, 64)
		if err == nil {
			return Value{Raw: s, Num: n, Numeric: true}
		}
	}
	return Value{Raw: s}
}

// DecodeStats reports what a decode pass saw, for the validate command and
// startup logging.
type DecodeStats struct {
	Rows       int // data rows read
	Decoded    int // rows that produced a record
	SkippedRow int // rows with no usable caseid
	Columns    int // header columns
}

// Decoder streams SurgeryCase records from a CSV file. Rows shorter than the
// header simply leave the trailing fields absent; rows without a numeric
// caseid are skipped rather than failing the whole load.
type Decoder struct {
	csv    *csv.Reader
	header map[string]int
	stats  DecodeStats
}

// NewDecoder reads the header row and prepares a streaming decoder.
func NewDecoder(r io.Reader) (*Decoder, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	head, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	idx := make(map[string]int, len(head))
	for i, name := range head {
		idx[name] = i
	}
	if _, ok := idx["caseid"]; !ok {
		return nil, fmt.Errorf("csv header has no caseid column")
	}
	return &Decoder{csv: cr, header: idx, stats: DecodeStats{Columns: len(head)}}, nil
}

// Next decodes the next record. It returns io.EOF when the file is done.
func (d *Decoder) Next() (*SurgeryCase, error) {
	for {
		rec, err := d.csv.Read()
		if err != nil {
			return nil, err
		}
		d.stats.Rows++

		sc, ok := d.decodeRow(rec)
		if !ok {
			d.stats.SkippedRow++
			continue
		}
		d.stats.Decoded++
		return sc, nil
	}
}

// Stats returns counters for the rows read so far.
func (d *Decoder) Stats() DecodeStats { return d.stats }

// wellKnown lists the columns decoded into typed SurgeryCase fields; every
// other numeric column lands in the lab map.
var wellKnown = map[string]bool{
	"caseid": true, "subjectid": true,
	"age": true, "sex": true, "height": true, "weight": true, "bmi": true,
	"asa": true, "emop": true,
	"department": true, "optype": true, "opname": true, "dx": true,
	"ane_type": true, "approach": true,
	"casestart": true, "caseend": true, "anestart": true, "aneend": true,
	"opstart": true, "opend": true, "adm": true, "dis": true,
	"icu_days": true, "death_inhosp": true, "intraop_ebl": true,
}

func (d *Decoder) decodeRow(rec []string) (*SurgeryCase, bool) {
	cell := func(name string) (Value, bool) {
		i, ok := d.header[name]
		if !ok || i >= len(rec) {
			return Value{}, false
		}
		return CoerceCell(rec[i]), true
	}
	num := func(name string) *float64 {
		v, ok := cell(name)
		if !ok || !v.Numeric {
			return nil
		}
		n := v.Num
		return &n
	}
	str := func(name string) string {
		v, _ := cell(name)
		return v.Raw
	}

	id, ok := cell("caseid")
	if !ok || !id.Numeric {
		return nil, false
	}

	sc := &SurgeryCase{
		CaseID:    int(id.Num),
		SubjectID: str("subjectid"),

		Age:    num("age"),
		Sex:    str("sex"),
		Height: num("height"),
		Weight: num("weight"),
		BMI:    num("bmi"),
		ASA:    num("asa"),
		EmOp:   num("emop"),

		Department:     str("department"),
		OpType:         str("optype"),
		OpName:         str("opname"),
		Diagnosis:      str("dx"),
		AnesthesiaType: str("ane_type"),
		Approach:       str("approach"),

		CaseStart: num("casestart"),
		CaseEnd:   num("caseend"),
		AneStart:  num("anestart"),
		AneEnd:    num("aneend"),
		OpStart:   num("opstart"),
		OpEnd:     num("opend"),
		AdmTime:   num("adm"),
		DisTime:   num("dis"),

		ICUDays:     num("icu_days"),
		DeathInHosp: num("death_inhosp"),
		IntraopEBL:  num("intraop_ebl"),
	}

	for name, i := range d.header {
		if wellKnown[name] || i >= len(rec) {
			continue
		}
		if v := CoerceCell(rec[i]); v.Numeric {
			if sc.Labs == nil {
				sc.Labs = make(map[string]float64)
			}
			sc.Labs[name] = v.Num
		}
	}

	return sc, true
}

// DecodeAll drains the decoder into a slice, preserving file order.
func (d *Decoder) DecodeAll() ([]*SurgeryCase, error) {
	var out []*SurgeryCase
	for {
		sc, err := d.Next()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
}

// DecodeFile reads and decodes a whole CSV file.
func DecodeFile(path string) ([]*SurgeryCase, DecodeStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, DecodeStats{}, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	dec, err := NewDecoder(f)
	if err != nil {
		return nil, DecodeStats{}, err
	}
	cases, err := dec.DecodeAll()
	if err != nil {
		return nil, dec.Stats(), fmt.Errorf("decode dataset: %w", err)
	}
	return cases, dec.Stats(), nil
}
