package ports

import (
	"context"

	"github.com/dhifafaz/tactical-monitor/internal/core/domain"
)

// OffenderRepository persists offender profiles.
type OffenderRepository interface {
	Create(ctx context.Context, o *domain.Offender) error
	Update(ctx context.Context, o *domain.Offender) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Offender, error)
	// GetByDeviceID resolves the offender currently wearing a device.
	// When the one-device-per-offender invariant has been violated
	// upstream, the first match wins.
	GetByDeviceID(ctx context.Context, deviceID string) (*domain.Offender, error)
	List(ctx context.Context) ([]domain.Offender, error)
	// UpdateLocation writes only the current location, so concurrent
	// relay tasks never clobber unrelated profile fields.
	UpdateLocation(ctx context.Context, id string, loc *domain.LocationSample) error
}

// DeviceRepository persists tracking devices.
type DeviceRepository interface {
	Create(ctx context.Context, d *domain.Device) error
	Update(ctx context.Context, d *domain.Device) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Device, error)
	List(ctx context.Context) ([]domain.Device, error)
	// UpdateStatus transitions status and, when loc is non-nil, records
	// the device's last known location and update time.
	UpdateStatus(ctx context.Context, id string, status domain.DeviceStatus, loc *domain.LocationSample) error
}

// POIRepository persists points of interest.
type POIRepository interface {
	Create(ctx context.Context, p *domain.POI) error
	Update(ctx context.Context, p *domain.POI) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.POI, error)
	List(ctx context.Context) ([]domain.POI, error)
	// ListActive returns only POIs eligible for proximity evaluation.
	ListActive(ctx context.Context) ([]domain.POI, error)
}

// AlertRepository persists alerts. Alerts are append-only: the only
// mutation is acknowledgement.
type AlertRepository interface {
	Create(ctx context.Context, a *domain.Alert) error
	GetByID(ctx context.Context, id string) (*domain.Alert, error)
	// List returns alerts newest first.
	List(ctx context.Context) ([]domain.Alert, error)
	Acknowledge(ctx context.Context, id string) error
	CountUnacknowledged(ctx context.Context) (int, error)
}
