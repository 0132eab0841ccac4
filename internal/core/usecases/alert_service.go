package usecases

import (
	"context"
	"fmt"

	"github.com/dhifafaz/tactical-monitor/internal/core/domain"
	"github.com/dhifafaz/tactical-monitor/internal/core/ports"
)

// AlertService exposes the alert log and acknowledgement.
type AlertService struct {
	alerts ports.AlertRepository
}

// NewAlertService creates a new AlertService.
func NewAlertService(alerts ports.AlertRepository) *AlertService {
	return &AlertService{alerts: alerts}
}

// List returns all alerts, newest first.
func (s *AlertService) List(ctx context.Context) ([]domain.Alert, error) {
	return s.alerts.List(ctx)
}

// GetByID returns a single alert.
func (s *AlertService) GetByID(ctx context.Context, id string) (*domain.Alert, error) {
	return s.alerts.GetByID(ctx, id)
}

// Acknowledge flips an alert's acknowledged flag. The transition happens
// at most once; repeat acknowledgements are no-ops.
func (s *AlertService) Acknowledge(ctx context.Context, id string) error {
	if err := s.alerts.Acknowledge(ctx, id); err != nil {
		return fmt.Errorf("acknowledge alert %s: %w", id, err)
	}
	return nil
}
