package usecases

import (
	"context"
	"errors"
	"fmt"

	"github.com/dhifafaz/tactical-monitor/internal/core/domain"
	"github.com/dhifafaz/tactical-monitor/internal/core/ports"
)

// ErrOffenderAlreadyAssigned is returned when a registration would give
// one offender a second device.
var ErrOffenderAlreadyAssigned = errors.New("offender is already assigned to another device")

// DeviceService handles tracking-device registration and lifecycle.
type DeviceService struct {
	devices   ports.DeviceRepository
	offenders ports.OffenderRepository
}

// NewDeviceService creates a new DeviceService.
func NewDeviceService(devices ports.DeviceRepository, offenders ports.OffenderRepository) *DeviceService {
	return &DeviceService{devices: devices, offenders: offenders}
}

// Register creates a device, enforcing that an offender wears at most
// one device. When an offender is named, their profile gets the back
// reference.
func (s *DeviceService) Register(ctx context.Context, d *domain.Device) error {
	if d.ID == "" {
		d.ID = newID()
	}
	if d.Status == "" {
		d.Status = domain.DeviceOffline
	}

	if d.OffenderID != "" {
		if err := s.checkAssignment(ctx, d.OffenderID, d.ID); err != nil {
			return err
		}
	}

	if err := s.devices.Create(ctx, d); err != nil {
		return fmt.Errorf("create device: %w", err)
	}

	if d.OffenderID != "" {
		s.linkOffender(ctx, d.OffenderID, d.ID)
	}
	return nil
}

// Update replaces a device record, re-checking the assignment invariant.
func (s *DeviceService) Update(ctx context.Context, d *domain.Device) error {
	if d.OffenderID != "" {
		if err := s.checkAssignment(ctx, d.OffenderID, d.ID); err != nil {
			return err
		}
	}
	if err := s.devices.Update(ctx, d); err != nil {
		return fmt.Errorf("update device: %w", err)
	}
	if d.OffenderID != "" {
		s.linkOffender(ctx, d.OffenderID, d.ID)
	}
	return nil
}

// Delete removes a device.
func (s *DeviceService) Delete(ctx context.Context, id string) error {
	return s.devices.Delete(ctx, id)
}

// GetByID returns a single device.
func (s *DeviceService) GetByID(ctx context.Context, id string) (*domain.Device, error) {
	return s.devices.GetByID(ctx, id)
}

// List returns all devices.
func (s *DeviceService) List(ctx context.Context) ([]domain.Device, error) {
	return s.devices.List(ctx)
}

func (s *DeviceService) checkAssignment(ctx context.Context, offenderID, deviceID string) error {
	existing, err := s.devices.List(ctx)
	if err != nil {
		return fmt.Errorf("list devices: %w", err)
	}
	for _, dev := range existing {
		if dev.ID != deviceID && dev.OffenderID == offenderID {
			return fmt.Errorf("%w: device %s", ErrOffenderAlreadyAssigned, dev.ID)
		}
	}
	return nil
}

func (s *DeviceService) linkOffender(ctx context.Context, offenderID, deviceID string) {
	off, err := s.offenders.GetByID(ctx, offenderID)
	if err != nil || off == nil {
		return
	}
	off.DeviceID = deviceID
	_ = s.offenders.Update(ctx, off)
}
