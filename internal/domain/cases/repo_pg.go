package cases

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/casedash/casedash/internal/dataset"
)

// pgRepo serves case records from the surgery_case table. Lab columns are
// not persisted; the Postgres path exists for record browsing, the
// statistical core always runs over the in-memory snapshot.
type pgRepo struct {
	pool *pgxpool.Pool
}

func NewPGRepo(pool *pgxpool.Pool) Repository {
	return &pgRepo{pool: pool}
}

const caseCols = `caseid, subjectid, age, sex, height, weight, bmi, asa, emop,
	department, optype, opname, dx, ane_type, approach,
	case_start, case_end, ane_start, ane_end, op_start, op_end, adm_time, dis_time,
	icu_days, death_inhosp, intraop_ebl`

func scanCase(row pgx.Row) (*dataset.SurgeryCase, error) {
	var sc dataset.SurgeryCase
	err := row.Scan(&sc.CaseID, &sc.SubjectID, &sc.Age, &sc.Sex, &sc.Height, &sc.Weight, &sc.BMI, &sc.ASA, &sc.EmOp,
		&sc.Department, &sc.OpType, &sc.OpName, &sc.Diagnosis, &sc.AnesthesiaType, &sc.Approach,
		&sc.CaseStart, &sc.CaseEnd, &sc.AneStart, &sc.AneEnd, &sc.OpStart, &sc.OpEnd, &sc.AdmTime, &sc.DisTime,
		&sc.ICUDays, &sc.DeathInHosp, &sc.IntraopEBL)
	return &sc, err
}

func (r *pgRepo) List(ctx context.Context, f Filter, limit, offset int) ([]*dataset.SurgeryCase, int, error) {
	query := `SELECT ` + caseCols + ` FROM surgery_case WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM surgery_case WHERE 1=1`
	var args []interface{}
	idx := 1

	addClause := func(clause string, arg interface{}) {
		cond := fmt.Sprintf(clause, idx)
		query += cond
		countQuery += cond
		args = append(args, arg)
		idx++
	}

	if f.Department != "" {
		addClause(` AND department = $%d`, f.Department)
	}
	if f.Sex != "" {
		addClause(` AND sex = $%d`, f.Sex)
	}
	if f.Emergency != nil {
		if *f.Emergency {
			query += ` AND emop <> 0`
			countQuery += ` AND emop <> 0`
		} else {
			query += ` AND (emop = 0 OR emop IS NULL)`
			countQuery += ` AND (emop = 0 OR emop IS NULL)`
		}
	}
	if f.ASA != nil {
		addClause(` AND asa = $%d`, *f.ASA)
	}
	if f.AgeMin != nil {
		addClause(` AND age >= $%d`, *f.AgeMin)
	}
	if f.AgeMax != nil {
		addClause(` AND age <= $%d`, *f.AgeMax)
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(` ORDER BY caseid LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*dataset.SurgeryCase
	for rows.Next() {
		sc, err := scanCase(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, sc)
	}
	return items, total, rows.Err()
}

func (r *pgRepo) GetByCaseID(ctx context.Context, caseID int) (*dataset.SurgeryCase, error) {
	sc, err := scanCase(r.pool.QueryRow(ctx, `SELECT `+caseCols+` FROM surgery_case WHERE caseid = $1`, caseID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("case %d: %w", caseID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return sc, nil
}

// BulkInsert copies a decoded dataset into the surgery_case table. Existing
// rows are replaced wholesale; the table mirrors one CSV file, it is not an
// accumulating store.
func BulkInsert(ctx context.Context, pool *pgxpool.Pool, recs []*dataset.SurgeryCase) (int64, error) {
	if _, err := pool.Exec(ctx, `TRUNCATE surgery_case`); err != nil {
		return 0, fmt.Errorf("truncate surgery_case: %w", err)
	}
	cols := []string{"caseid", "subjectid", "age", "sex", "height", "weight", "bmi", "asa", "emop",
		"department", "optype", "opname", "dx", "ane_type", "approach",
		"case_start", "case_end", "ane_start", "ane_end", "op_start", "op_end", "adm_time", "dis_time",
		"icu_days", "death_inhosp", "intraop_ebl"}
	n, err := pool.CopyFrom(ctx, pgx.Identifier{"surgery_case"}, cols,
		pgx.CopyFromSlice(len(recs), func(i int) ([]interface{}, error) {
			sc := recs[i]
			return []interface{}{sc.CaseID, sc.SubjectID, sc.Age, sc.Sex, sc.Height, sc.Weight, sc.BMI, sc.ASA, sc.EmOp,
				sc.Department, sc.OpType, sc.OpName, sc.Diagnosis, sc.AnesthesiaType, sc.Approach,
				sc.CaseStart, sc.CaseEnd, sc.AneStart, sc.AneEnd, sc.OpStart, sc.OpEnd, sc.AdmTime, sc.DisTime,
				sc.ICUDays, sc.DeathInHosp, sc.IntraopEBL}, nil
		}))
	if err != nil {
		return n, fmt.Errorf("copy surgery_case: %w", err)
	}
	return n, nil
}
