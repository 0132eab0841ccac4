package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dhifafaz/tactical-monitor/internal/pkg/config"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: migrate <up|seed>")
	}

	cfg, err := config.Load("tacmon-migrate")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	switch os.Args[1] {
	case "up":
		runMigrations(ctx, pool)
	case "seed":
		runSeed(ctx, pool)
	default:
		log.Fatalf("unknown command: %s", os.Args[1])
	}
}

func runMigrations(ctx context.Context, pool *pgxpool.Pool) {
	files := []string{
		"migrations/001_core_tables.sql",
		"migrations/002_indexes.sql",
	}

	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			log.Fatalf("read %s: %v", f, err)
		}

		_, err = pool.Exec(ctx, string(data))
		if err != nil {
			log.Fatalf("exec %s: %v", f, err)
		}

		fmt.Printf("OK  %s\n", f)
	}

	log.Println("all migrations applied")
}

// runSeed loads the demo monitoring estate: two ankle monitors, two
// offenders wearing them, and one watched school. Safe to re-run.
func runSeed(ctx context.Context, pool *pgxpool.Pool) {
	stmts := []string{
		`INSERT INTO devices (id, device_type, case_id, status, battery_level)
		 VALUES ('device-001', 'ankle-monitor', 'case-2024-001', 'online', 85)
		 ON CONFLICT (id) DO NOTHING`,
		`INSERT INTO devices (id, device_type, case_id, status, battery_level)
		 VALUES ('device-002', 'ankle-monitor', 'case-2024-002', 'online', 92)
		 ON CONFLICT (id) DO NOTHING`,
		`INSERT INTO offenders (id, name, id_number, crime_type, risk_level,
			date_of_birth, address, phone, case_officer,
			monitoring_start, monitoring_end, device_id, current_location, notes)
		 VALUES ('offender-001', 'Ahmad Wijaya', '3174051980120001', 'sexual_offense', 'high',
			'1980-12-15', 'Jl. Sudirman No. 123, Jakarta Selatan', '021-555-0123', 'Officer Budi Santoso',
			now(), now() + interval '365 days', 'device-001',
			'{"lat": -6.2088, "lon": 106.8456, "alt": 0}',
			'High-risk sexual offender. Requires 24/7 monitoring.')
		 ON CONFLICT (id) DO NOTHING`,
		`INSERT INTO offenders (id, name, id_number, crime_type, risk_level,
			date_of_birth, address, phone, case_officer,
			monitoring_start, monitoring_end, device_id, current_location, notes)
		 VALUES ('offender-002', 'Budi Setiawan', '3175021975080002', 'drug_offense', 'medium',
			'1975-08-20', 'Jl. Thamrin No. 45, Jakarta Pusat', '021-555-0456', 'Officer Siti Nurhaliza',
			now(), now() + interval '180 days', 'device-002',
			'{"lat": -6.1751, "lon": 106.8650, "alt": 0}',
			'Drug trafficking case. Curfew from 22:00 to 06:00.')
		 ON CONFLICT (id) DO NOTHING`,
		`INSERT INTO pois (id, name, address, lat, lon, radius_meters, category, description, active)
		 VALUES ('poi-001', 'Sekolah Islam Amelia',
			'Jl. Raya Kampung Ambon, Serpong, Tangerang Selatan',
			-6.2786615, 106.6919076, 2500, 'school',
			'Elementary school - restricted area for high-risk offenders', true)
		 ON CONFLICT (id) DO NOTHING`,
	}

	for i, s := range stmts {
		if _, err := pool.Exec(ctx, s); err != nil {
			log.Fatalf("seed stmt %d: %v", i+1, err)
		}
	}

	log.Println("sample data seeded")
}
