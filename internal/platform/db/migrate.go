package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema is the surgery_case table backing the Postgres case repository.
// One table mirrors one CSV file; caseid is the dataset's own identifier.
const Schema = `
CREATE TABLE IF NOT EXISTS surgery_case (
    caseid        INTEGER PRIMARY KEY,
    subjectid     TEXT,
    age           DOUBLE PRECISION,
    sex           TEXT,
    height        DOUBLE PRECISION,
    weight        DOUBLE PRECISION,
    bmi           DOUBLE PRECISION,
    asa           DOUBLE PRECISION,
    emop          DOUBLE PRECISION,
    department    TEXT,
    optype        TEXT,
    opname        TEXT,
    dx            TEXT,
    ane_type      TEXT,
    approach      TEXT,
    case_start    DOUBLE PRECISION,
    case_end      DOUBLE PRECISION,
    ane_start     DOUBLE PRECISION,
    ane_end       DOUBLE PRECISION,
    op_start      DOUBLE PRECISION,
    op_end        DOUBLE PRECISION,
    adm_time      DOUBLE PRECISION,
    dis_time      DOUBLE PRECISION,
    icu_days      DOUBLE PRECISION,
    death_inhosp  DOUBLE PRECISION,
    intraop_ebl   DOUBLE PRECISION
);
CREATE INDEX IF NOT EXISTS idx_surgery_case_department ON surgery_case (department);
CREATE INDEX IF NOT EXISTS idx_surgery_case_age ON surgery_case (age);
`

// Status reports whether the schema is in place and how many rows it holds.
type Status struct {
	TableExists bool
	Rows        int
}

// Migrate applies the schema. It is idempotent.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Inspect reports the current schema status.
func Inspect(ctx context.Context, pool *pgxpool.Pool) (Status, error) {
	var st Status
	err := pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = 'surgery_case')`).
		Scan(&st.TableExists)
	if err != nil {
		return st, fmt.Errorf("inspect schema: %w", err)
	}
	if !st.TableExists {
		return st, nil
	}
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM surgery_case`).Scan(&st.Rows); err != nil {
		return st, fmt.Errorf("count surgery_case: %w", err)
	}
	return st, nil
}
