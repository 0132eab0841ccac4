package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/dhifafaz/tactical-monitor/internal/core/domain"
)

// DeviceRepo implements ports.DeviceRepository.
type DeviceRepo struct {
	db *DB
}

func NewDeviceRepo(db *DB) *DeviceRepo {
	return &DeviceRepo{db: db}
}

const deviceColumns = `
	id, device_type, case_id, COALESCE(offender_id, ''), status,
	battery_level, last_location, last_update, tamper_detected`

func (r *DeviceRepo) Create(ctx context.Context, d *domain.Device) error {
	loc, err := marshalSample(d.LastLocation)
	if err != nil {
		return err
	}
	_, err = r.db.Pool.Exec(ctx, `
		INSERT INTO devices (id, device_type, case_id, offender_id, status,
			battery_level, last_location, last_update, tamper_detected)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, d.ID, d.DeviceType, d.CaseID, nilIfEmpty(d.OffenderID), d.Status,
		d.BatteryLevel, loc, d.LastUpdate, d.TamperDetected)
	return err
}

func (r *DeviceRepo) Update(ctx context.Context, d *domain.Device) error {
	loc, err := marshalSample(d.LastLocation)
	if err != nil {
		return err
	}
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE devices SET device_type = $2, case_id = $3, offender_id = $4,
			status = $5, battery_level = $6, last_location = $7,
			last_update = $8, tamper_detected = $9
		WHERE id = $1
	`, d.ID, d.DeviceType, d.CaseID, nilIfEmpty(d.OffenderID), d.Status,
		d.BatteryLevel, loc, d.LastUpdate, d.TamperDetected)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *DeviceRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM devices WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *DeviceRepo) GetByID(ctx context.Context, id string) (*domain.Device, error) {
	row := r.db.Pool.QueryRow(ctx,
		`SELECT `+deviceColumns+` FROM devices WHERE id = $1`, id)
	return scanDevice(row)
}

func (r *DeviceRepo) List(ctx context.Context) ([]domain.Device, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+deviceColumns+` FROM devices ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var devices []domain.Device
	for rows.Next() {
		d, err := scanDevice(rows)
		if err != nil {
			return nil, err
		}
		devices = append(devices, *d)
	}
	return devices, rows.Err()
}

func (r *DeviceRepo) UpdateStatus(ctx context.Context, id string, status domain.DeviceStatus, loc *domain.LocationSample) error {
	if loc == nil {
		tag, err := r.db.Pool.Exec(ctx,
			`UPDATE devices SET status = $2, last_update = now() WHERE id = $1`, id, status)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return pgx.ErrNoRows
		}
		return nil
	}

	data, err := marshalSample(loc)
	if err != nil {
		return err
	}
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE devices SET status = $2, last_location = $3, last_update = $4
		WHERE id = $1
	`, id, status, data, loc.CapturedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanDevice(row pgx.Row) (*domain.Device, error) {
	d := &domain.Device{}
	var loc []byte
	err := row.Scan(&d.ID, &d.DeviceType, &d.CaseID, &d.OffenderID, &d.Status,
		&d.BatteryLevel, &loc, &d.LastUpdate, &d.TamperDetected)
	if err != nil {
		return nil, err
	}
	if len(loc) > 0 {
		d.LastLocation = &domain.LocationSample{}
		if err := json.Unmarshal(loc, d.LastLocation); err != nil {
			return nil, fmt.Errorf("unmarshal location: %w", err)
		}
	}
	return d, nil
}
