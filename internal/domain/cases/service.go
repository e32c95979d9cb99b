package cases

import (
	"context"

	"github.com/casedash/casedash/internal/dataset"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, f Filter, limit, offset int) ([]*dataset.SurgeryCase, int, error) {
	return s.repo.List(ctx, f, limit, offset)
}

func (s *Service) GetByCaseID(ctx context.Context, caseID int) (*dataset.SurgeryCase, error) {
	return s.repo.GetByCaseID(ctx, caseID)
}
