package usecases

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dhifafaz/tactical-monitor/internal/core/domain"
	"github.com/dhifafaz/tactical-monitor/internal/core/ports"
)

const activePOICacheKey = "pois:active"

// POIService handles point-of-interest business logic. The active-POI
// list is read on every location sample, so it is cached aggressively
// and invalidated on every mutation.
type POIService struct {
	pois  ports.POIRepository
	cache ports.CacheService
}

// NewPOIService creates a new POIService.
func NewPOIService(pois ports.POIRepository, cache ports.CacheService) *POIService {
	return &POIService{pois: pois, cache: cache}
}

// Create stores a POI.
func (s *POIService) Create(ctx context.Context, p *domain.POI) error {
	if p.Name == "" {
		return fmt.Errorf("poi name is required")
	}
	if p.RadiusMeters < 0 {
		return fmt.Errorf("radius_meters must not be negative")
	}
	if p.ID == "" {
		p.ID = newID()
	}
	if err := s.pois.Create(ctx, p); err != nil {
		return fmt.Errorf("create poi: %w", err)
	}
	s.invalidate(ctx)
	return nil
}

// Update replaces a POI, including activation toggling.
func (s *POIService) Update(ctx context.Context, p *domain.POI) error {
	if p.RadiusMeters < 0 {
		return fmt.Errorf("radius_meters must not be negative")
	}
	if err := s.pois.Update(ctx, p); err != nil {
		return fmt.Errorf("update poi: %w", err)
	}
	s.invalidate(ctx)
	return nil
}

// Delete removes a POI.
func (s *POIService) Delete(ctx context.Context, id string) error {
	if err := s.pois.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// GetByID returns a single POI.
func (s *POIService) GetByID(ctx context.Context, id string) (*domain.POI, error) {
	return s.pois.GetByID(ctx, id)
}

// List returns every POI, active or not.
func (s *POIService) List(ctx context.Context) ([]domain.POI, error) {
	return s.pois.List(ctx)
}

// ListActive returns the POIs eligible for proximity checks, through the
// cache when one is configured.
func (s *POIService) ListActive(ctx context.Context) ([]domain.POI, error) {
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, activePOICacheKey); err == nil {
			var pois []domain.POI
			if err := json.Unmarshal(data, &pois); err == nil {
				return pois, nil
			}
		}
	}

	pois, err := s.pois.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(pois); err == nil {
			_ = s.cache.Set(ctx, activePOICacheKey, data, 60)
		}
	}
	return pois, nil
}

func (s *POIService) invalidate(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.Delete(ctx, activePOICacheKey)
	}
}
