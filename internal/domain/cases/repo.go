package cases

import (
	"context"
	"errors"

	"github.com/casedash/casedash/internal/dataset"
)

// ErrNotFound reports that no case record carries the requested caseid.
var ErrNotFound = errors.New("case not found")

// Filter narrows a case listing. Nil/zero values mean "no constraint".
type Filter struct {
	Department string
	Sex        string
	Emergency  *bool
	ASA        *float64
	AgeMin     *float64
	AgeMax     *float64
}

// Repository reads case records. The in-memory implementation serves the
// loaded CSV snapshot; the Postgres implementation serves a table populated
// by `dataset load`.
type Repository interface {
	List(ctx context.Context, f Filter, limit, offset int) ([]*dataset.SurgeryCase, int, error)
	GetByCaseID(ctx context.Context, caseID int) (*dataset.SurgeryCase, error)
}
