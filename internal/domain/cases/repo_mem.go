package cases

import (
	"context"
	"fmt"

	"github.com/casedash/casedash/internal/dataset"
)

// memRepo serves case records straight from the dataset store snapshot.
type memRepo struct {
	store *dataset.Store
}

func NewMemRepo(store *dataset.Store) Repository {
	return &memRepo{store: store}
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
	if f.ASA != nil && (sc.ASA == nil || *sc.ASA != *f.ASA) {
		return false
	}
	if f.AgeMin != nil && (sc.Age == nil || *sc.Age < *f.AgeMin) {
		return false
	}
	if f.AgeMax != nil && (sc.Age == nil || *sc.Age > *f.AgeMax) {
		return false
	}
	return true
}

func (r *memRepo) List(_ context.Context, f Filter, limit, offset int) ([]*dataset.SurgeryCase, int, error) {
	var matched []*dataset.SurgeryCase
	for _, sc := range r.store.Cases() {
		if f.match(sc) {
			matched = append(matched, sc)
		}
	}
	total := len(matched)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func (r *memRepo) GetByCaseID(_ context.Context, caseID int) (*dataset.SurgeryCase, error) {
	for _, sc := range r.store.Cases() {
		if sc.CaseID == caseID {
			return sc, nil
		}
	}
	return nil, fmt.Errorf("case %d: %w", caseID, ErrNotFound)
}
