package service

import (
	"context"

	"github.com/spec-kit/incident-service/internal/domain"
	"github.com/spec-kit/incident-service/internal/repository"
	apperrors "github.com/spec-kit/incident-service/pkg/util"
)

// OHSService is a read-only hazard view over the case store: hazards are
// cases with type HAZARD.
type OHSService struct {
	cases repository.CaseStore
}

// NewOHSService constructs the service.
func NewOHSService(cases repository.CaseStore) *OHSService {
	return &OHSService{cases: cases}
}

// HazardStats summarizes hazard cases by lifecycle bucket.
type HazardStats struct {
	Total  int64
	Open   int64
	Closed int64
}

// ListHazards returns hazard cases, newest first.
func (s *OHSService) ListHazards(ctx context.Context, take, skip int) ([]domain.Case, int64, error) {
	hazard := domain.CaseTypeHazard
	cases, total, err := s.cases.List(ctx, repository.CaseFilter{
		Type: &hazard,
		Take: take,
		Skip: skip,
	})
	if err != nil {
		return nil, 0, apperrors.MapError(err)
	}
	return cases, total, nil
}

// Stats counts hazards overall, still raised, and completed or closed.
func (s *OHSService) Stats(ctx context.Context) (*HazardStats, error) {
	total, err := s.cases.CountByTypeStatus(ctx, domain.CaseTypeHazard, nil)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	open, err := s.cases.CountByTypeStatus(ctx, domain.CaseTypeHazard, []domain.CaseStatus{domain.CaseStatusRaised})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	closed, err := s.cases.CountByTypeStatus(ctx, domain.CaseTypeHazard, []domain.CaseStatus{
		domain.CaseStatusCompleted,
		domain.CaseStatusClosed,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &HazardStats{Total: total, Open: open, Closed: closed}, nil
}
