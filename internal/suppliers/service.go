package suppliers

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/alima/supply/internal/shared"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// ListUnits returns the units of a supplier business.
func (s *Service) ListUnits(ctx context.Context, businessID uuid.UUID) ([]Unit, error) {
	if businessID == uuid.Nil {
		return nil, fmt.Errorf("%w: supplier business required", shared.ErrValidation)
	}
	return s.repo.ListUnits(ctx, businessID)
}

// ValidateScope checks that every unit exists and belongs to the business
// and that every branch exists.
func (s *Service) ValidateScope(ctx context.Context, businessID uuid.UUID, unitIDs, branchIDs []uuid.UUID) error {
	if len(unitIDs) == 0 {
		return fmt.Errorf("%w: at least one supplier unit is required", shared.ErrValidation)
	}
	units, err := s.repo.UnitsByIDs(ctx, unitIDs)
	if err != nil {
		return fmt.Errorf("load supplier units: %w", err)
	}
	found := make(map[uuid.UUID]Unit, len(units))
	for _, u := range units {
		found[u.ID] = u
	}
	for _, id := range unitIDs {
		u, ok := found[id]
		if !ok || u.BusinessID != businessID {
			return fmt.Errorf("%w: supplier unit %s", shared.ErrNotFound, id)
		}
	}
	if len(branchIDs) == 0 {
		return nil
	}
	branches, err := s.repo.BranchesByIDs(ctx, branchIDs)
	if err != nil {
		return fmt.Errorf("load restaurant branches: %w", err)
	}
	known := make(map[uuid.UUID]struct{}, len(branches))
	for _, b := range branches {
		known[b.ID] = struct{}{}
	}
	for _, id := range branchIDs {
		if _, ok := known[id]; !ok {
			return fmt.Errorf("%w: restaurant branch %s", shared.ErrNotFound, id)
		}
	}
	return nil
}
