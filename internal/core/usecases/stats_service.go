package usecases

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dhifafaz/tactical-monitor/internal/core/domain"
	"github.com/dhifafaz/tactical-monitor/internal/core/ports"
)

const statsCacheKey = "stats:dashboard"

// DashboardStats summarizes the monitoring estate for the overview panel.
type DashboardStats struct {
	TotalOffenders       int            `json:"total_offenders"`
	TotalDevices         int            `json:"total_devices"`
	ActiveDevices        int            `json:"active_devices"`
	UnacknowledgedAlerts int            `json:"unacknowledged_alerts"`
	TotalPOIs            int            `json:"total_pois"`
	RiskDistribution     map[string]int `json:"risk_distribution"`
}

// StatsService aggregates dashboard statistics with a short-TTL cache.
type StatsService struct {
	offenders ports.OffenderRepository
	devices   ports.DeviceRepository
	pois      ports.POIRepository
	alerts    ports.AlertRepository
	cache     ports.CacheService
}

// NewStatsService creates a new StatsService.
func NewStatsService(
	offenders ports.OffenderRepository,
	devices ports.DeviceRepository,
	pois ports.POIRepository,
	alerts ports.AlertRepository,
	cache ports.CacheService,
) *StatsService {
	return &StatsService{offenders: offenders, devices: devices, pois: pois, alerts: alerts, cache: cache}
}

// Dashboard computes the overview numbers. Cached for 15 seconds: the
// panel polls frequently but tolerates slightly stale counts.
func (s *StatsService) Dashboard(ctx context.Context) (*DashboardStats, error) {
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, statsCacheKey); err == nil {
			var stats DashboardStats
			if err := json.Unmarshal(data, &stats); err == nil {
				return &stats, nil
			}
		}
	}

	offenders, err := s.offenders.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list offenders: %w", err)
	}
	devices, err := s.devices.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}
	pois, err := s.pois.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pois: %w", err)
	}
	unacked, err := s.alerts.CountUnacknowledged(ctx)
	if err != nil {
		return nil, fmt.Errorf("count alerts: %w", err)
	}

	stats := &DashboardStats{
		TotalOffenders:       len(offenders),
		TotalDevices:         len(devices),
		UnacknowledgedAlerts: unacked,
		TotalPOIs:            len(pois),
		RiskDistribution: map[string]int{
			string(domain.RiskCritical): 0,
			string(domain.RiskHigh):     0,
			string(domain.RiskMedium):   0,
			string(domain.RiskLow):      0,
		},
	}
	for _, d := range devices {
		if d.Status == domain.DeviceOnline {
			stats.ActiveDevices++
		}
	}
	for _, o := range offenders {
		stats.RiskDistribution[string(o.RiskLevel)]++
	}

	if s.cache != nil {
		if data, err := json.Marshal(stats); err == nil {
			_ = s.cache.Set(ctx, statsCacheKey, data, 15)
		}
	}
	return stats, nil
}
