package usecases

import (
	"context"
	"errors"
	"fmt"

	"github.com/dhifafaz/tactical-monitor/internal/core/domain"
	"github.com/dhifafaz/tactical-monitor/internal/core/ports"
)

// ErrIDNumberExists is returned when a profile duplicates a national ID.
var ErrIDNumberExists = errors.New("id number already exists")

// OffenderService handles offender profile business logic.
type OffenderService struct {
	offenders ports.OffenderRepository
}

// NewOffenderService creates a new OffenderService.
func NewOffenderService(offenders ports.OffenderRepository) *OffenderService {
	return &OffenderService{offenders: offenders}
}

// Create registers an offender profile. The national ID number must be
// unique across all profiles.
func (s *OffenderService) Create(ctx context.Context, o *domain.Offender) error {
	if o.Name == "" || o.IDNumber == "" {
		return fmt.Errorf("name and id_number are required")
	}
	if o.ID == "" {
		o.ID = newID()
	}

	existing, err := s.offenders.List(ctx)
	if err != nil {
		return fmt.Errorf("list offenders: %w", err)
	}
	for _, prev := range existing {
		if prev.IDNumber == o.IDNumber {
			return ErrIDNumberExists
		}
	}

	if err := s.offenders.Create(ctx, o); err != nil {
		return fmt.Errorf("create offender: %w", err)
	}
	return nil
}

// Update replaces an offender profile.
func (s *OffenderService) Update(ctx context.Context, o *domain.Offender) error {
	return s.offenders.Update(ctx, o)
}

// Delete removes an offender profile.
func (s *OffenderService) Delete(ctx context.Context, id string) error {
	return s.offenders.Delete(ctx, id)
}

// GetByID returns a single offender profile.
func (s *OffenderService) GetByID(ctx context.Context, id string) (*domain.Offender, error) {
	return s.offenders.GetByID(ctx, id)
}

// List returns all offender profiles.
func (s *OffenderService) List(ctx context.Context) ([]domain.Offender, error) {
	return s.offenders.List(ctx)
}
