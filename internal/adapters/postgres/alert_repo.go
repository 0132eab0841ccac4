package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/dhifafaz/tactical-monitor/internal/core/domain"
)

// AlertRepo implements ports.AlertRepository.
type AlertRepo struct {
	db *DB
}

func NewAlertRepo(db *DB) *AlertRepo {
	return &AlertRepo{db: db}
}

const alertColumns = `id, offender_id, kind, severity, message, ts, acknowledged`

func (r *AlertRepo) Create(ctx context.Context, a *domain.Alert) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO alerts (id, offender_id, kind, severity, message, ts, acknowledged)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, a.ID, a.OffenderID, a.Kind, a.Severity, a.Message, a.Timestamp, a.Acknowledged)
	return err
}

func (r *AlertRepo) GetByID(ctx context.Context, id string) (*domain.Alert, error) {
	row := r.db.Pool.QueryRow(ctx, `SELECT `+alertColumns+` FROM alerts WHERE id = $1`, id)
	return scanAlert(row)
}

func (r *AlertRepo) List(ctx context.Context) ([]domain.Alert, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT `+alertColumns+` FROM alerts ORDER BY ts DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var alerts []domain.Alert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, *a)
	}
	return alerts, rows.Err()
}

func (r *AlertRepo) Acknowledge(ctx context.Context, id string) error {
	tag, err := r.db.Pool.Exec(ctx, `UPDATE alerts SET acknowledged = true WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *AlertRepo) CountUnacknowledged(ctx context.Context) (int, error) {
	var n int
	err := r.db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM alerts WHERE NOT acknowledged`).Scan(&n)
	return n, err
}

func scanAlert(row pgx.Row) (*domain.Alert, error) {
	a := &domain.Alert{}
	err := row.Scan(&a.ID, &a.OffenderID, &a.Kind, &a.Severity,
		&a.Message, &a.Timestamp, &a.Acknowledged)
	if err != nil {
		return nil, err
	}
	return a, nil
}
