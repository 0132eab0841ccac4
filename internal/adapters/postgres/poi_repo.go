package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/dhifafaz/tactical-monitor/internal/core/domain"
)

// POIRepo implements ports.POIRepository.
type POIRepo struct {
	db *DB
}

func NewPOIRepo(db *DB) *POIRepo {
	return &POIRepo{db: db}
}

const poiColumns = `
	id, name, COALESCE(address, ''), lat, lon, radius_meters, category,
	COALESCE(description, ''), active, created_at`

func (r *POIRepo) Create(ctx context.Context, p *domain.POI) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO pois (id, name, address, lat, lon, radius_meters,
			category, description, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, p.ID, p.Name, nilIfEmpty(p.Address), p.Center.Lat, p.Center.Lon,
		p.RadiusMeters, p.Category, nilIfEmpty(p.Description), p.Active, p.CreatedAt)
	return err
}

func (r *POIRepo) Update(ctx context.Context, p *domain.POI) error {
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE pois SET name = $2, address = $3, lat = $4, lon = $5,
			radius_meters = $6, category = $7, description = $8, active = $9
		WHERE id = $1
	`, p.ID, p.Name, nilIfEmpty(p.Address), p.Center.Lat, p.Center.Lon,
		p.RadiusMeters, p.Category, nilIfEmpty(p.Description), p.Active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *POIRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM pois WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *POIRepo) GetByID(ctx context.Context, id string) (*domain.POI, error) {
	row := r.db.Pool.QueryRow(ctx, `SELECT `+poiColumns+` FROM pois WHERE id = $1`, id)
	return scanPOI(row)
}

func (r *POIRepo) List(ctx context.Context) ([]domain.POI, error) {
	return r.query(ctx, `SELECT `+poiColumns+` FROM pois ORDER BY created_at`)
}

func (r *POIRepo) ListActive(ctx context.Context) ([]domain.POI, error) {
	return r.query(ctx, `SELECT `+poiColumns+` FROM pois WHERE active ORDER BY created_at`)
}

func (r *POIRepo) query(ctx context.Context, sql string) ([]domain.POI, error) {
	rows, err := r.db.Pool.Query(ctx, sql)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pois []domain.POI
	for rows.Next() {
		p, err := scanPOI(rows)
		if err != nil {
			return nil, err
		}
		pois = append(pois, *p)
	}
	return pois, rows.Err()
}

func scanPOI(row pgx.Row) (*domain.POI, error) {
	p := &domain.POI{}
	err := row.Scan(&p.ID, &p.Name, &p.Address, &p.Center.Lat, &p.Center.Lon,
		&p.RadiusMeters, &p.Category, &p.Description, &p.Active, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}
