package cohort

import (
	"fmt"

	"github.com/casedash/casedash/internal/dataset"
)

// Service exposes the cohort operations over the loaded dataset. All
// methods are pure over the current snapshot: identical inputs against the
// same snapshot produce identical outputs.
type Service struct {
	store *dataset.Store
	tol   Tolerances
}

func NewService(store *dataset.Store, tol Tolerances) *Service {
	return &Service{store: store, tol: tol}
}

// Tolerances returns the canonical band set the service matches with.
func (s *Service) Tolerances() Tolerances { return s.tol }

func validateProfile(p Profile) error {
	if p.Age <= 0 {
		return fmt.Errorf("age must be positive")
	}
	if p.BMI <= 0 {
		return fmt.Errorf("bmi must be positive")
	}
	if p.Height <= 0 {
		return fmt.Errorf("height must be positive")
	}
	if p.ASA < 1 || p.ASA > 5 {
		return fmt.Errorf("asa must be between 1 and 5")
	}
	return nil
}

// Match returns the cases within tolerance of the profile, in dataset order.
func (s *Service) Match(p Profile) ([]*dataset.SurgeryCase, error) {
	if err := validateProfile(p); err != nil {
		return nil, err
	}
	return Match(p, s.store.Cases(), s.tol), nil
}

// Estimate matches a cohort and aggregates its outcomes. An empty cohort is
// not an error; the result reports CohortSize zero with zeroed fields.
func (s *Service) Estimate(p Profile) (AggregateOutcome, error) {
	cohort, err := s.Match(p)
	if err != nil {
		return AggregateOutcome{}, err
	}
	return Aggregate(cohort), nil
}

// ScoreGuesses estimates the profile's outcomes and rates the guesses
// against them.
func (s *Service) ScoreGuesses(p Profile, g Guesses) (ScoreResult, error) {
	actual, err := s.Estimate(p)
	if err != nil {
		return ScoreResult{}, err
	}
	return ScoreGuesses(g, actual), nil
}
