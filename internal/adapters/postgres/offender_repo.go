package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/dhifafaz/tactical-monitor/internal/core/domain"
)

// OffenderRepo implements ports.OffenderRepository.
type OffenderRepo struct {
	db *DB
}

func NewOffenderRepo(db *DB) *OffenderRepo {
	return &OffenderRepo{db: db}
}

const offenderColumns = `
	id, name, id_number, crime_type, risk_level, COALESCE(photo_url, ''),
	date_of_birth, address, phone, case_officer, monitoring_start,
	monitoring_end, COALESCE(device_id, ''), current_location,
	geofence_zones, COALESCE(notes, '')`

func (r *OffenderRepo) Create(ctx context.Context, o *domain.Offender) error {
	zones, err := json.Marshal(o.GeofenceZones)
	if err != nil {
		return fmt.Errorf("marshal zones: %w", err)
	}
	loc, err := marshalSample(o.CurrentLocation)
	if err != nil {
		return err
	}
	_, err = r.db.Pool.Exec(ctx, `
		INSERT INTO offenders (id, name, id_number, crime_type, risk_level, photo_url,
			date_of_birth, address, phone, case_officer, monitoring_start,
			monitoring_end, device_id, current_location, geofence_zones, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`, o.ID, o.Name, o.IDNumber, o.CrimeType, o.RiskLevel, nilIfEmpty(o.PhotoURL),
		o.DateOfBirth, o.Address, o.Phone, o.CaseOfficer, o.MonitoringStart,
		o.MonitoringEnd, nilIfEmpty(o.DeviceID), loc, zones, nilIfEmpty(o.Notes))
	return err
}

func (r *OffenderRepo) Update(ctx context.Context, o *domain.Offender) error {
	zones, err := json.Marshal(o.GeofenceZones)
	if err != nil {
		return fmt.Errorf("marshal zones: %w", err)
	}
	loc, err := marshalSample(o.CurrentLocation)
	if err != nil {
		return err
	}
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE offenders SET name = $2, id_number = $3, crime_type = $4,
			risk_level = $5, photo_url = $6, date_of_birth = $7, address = $8,
			phone = $9, case_officer = $10, monitoring_start = $11,
			monitoring_end = $12, device_id = $13, current_location = $14,
			geofence_zones = $15, notes = $16
		WHERE id = $1
	`, o.ID, o.Name, o.IDNumber, o.CrimeType, o.RiskLevel, nilIfEmpty(o.PhotoURL),
		o.DateOfBirth, o.Address, o.Phone, o.CaseOfficer, o.MonitoringStart,
		o.MonitoringEnd, nilIfEmpty(o.DeviceID), loc, zones, nilIfEmpty(o.Notes))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *OffenderRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM offenders WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *OffenderRepo) GetByID(ctx context.Context, id string) (*domain.Offender, error) {
	row := r.db.Pool.QueryRow(ctx,
		`SELECT `+offenderColumns+` FROM offenders WHERE id = $1`, id)
	return scanOffender(row)
}

// GetByDeviceID orders by id so duplicate assignments resolve to the
// same profile every time (first match wins).
func (r *OffenderRepo) GetByDeviceID(ctx context.Context, deviceID string) (*domain.Offender, error) {
	row := r.db.Pool.QueryRow(ctx,
		`SELECT `+offenderColumns+` FROM offenders WHERE device_id = $1 ORDER BY id LIMIT 1`, deviceID)
	return scanOffender(row)
}

func (r *OffenderRepo) List(ctx context.Context) ([]domain.Offender, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+offenderColumns+` FROM offenders ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var offenders []domain.Offender
	for rows.Next() {
		o, err := scanOffender(rows)
		if err != nil {
			return nil, err
		}
		offenders = append(offenders, *o)
	}
	return offenders, rows.Err()
}

func (r *OffenderRepo) UpdateLocation(ctx context.Context, id string, loc *domain.LocationSample) error {
	data, err := marshalSample(loc)
	if err != nil {
		return err
	}
	tag, err := r.db.Pool.Exec(ctx,
		`UPDATE offenders SET current_location = $2 WHERE id = $1`, id, data)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanOffender(row pgx.Row) (*domain.Offender, error) {
	o := &domain.Offender{}
	var loc, zones []byte
	err := row.Scan(&o.ID, &o.Name, &o.IDNumber, &o.CrimeType, &o.RiskLevel,
		&o.PhotoURL, &o.DateOfBirth, &o.Address, &o.Phone, &o.CaseOfficer,
		&o.MonitoringStart, &o.MonitoringEnd, &o.DeviceID, &loc, &zones, &o.Notes)
	if err != nil {
		return nil, err
	}
	if len(loc) > 0 {
		o.CurrentLocation = &domain.LocationSample{}
		if err := json.Unmarshal(loc, o.CurrentLocation); err != nil {
			return nil, fmt.Errorf("unmarshal location: %w", err)
		}
	}
	if len(zones) > 0 {
		if err := json.Unmarshal(zones, &o.GeofenceZones); err != nil {
			return nil, fmt.Errorf("unmarshal zones: %w", err)
		}
	}
	return o, nil
}

// marshalSample serializes a location sample for a jsonb column; nil
// maps to SQL NULL.
func marshalSample(s *domain.LocationSample) (interface{}, error) {
	if s == nil {
		return nil, nil
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal location: %w", err)
	}
	return data, nil
}
