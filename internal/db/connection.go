package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

func Connect(dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	cfg.MaxConns = 10
	cfg.MinConns = 1
	cfg.MaxConnIdleTime = 30 * time.Second
	cfg.MaxConnLifetime = 5 * time.Minute

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	p, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := p.Ping(ctx); err != nil {
		p.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	return p, nil
}

// Migrate creates the calibration table when it does not exist yet. The
// backend owns its single table, so a migration tool would be overkill.
func Migrate(ctx context.Context, p *pgxpool.Pool) error {
	_, err := p.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS calibration_history (
			calibration_date DATE PRIMARY KEY,
			slv_ratio        DOUBLE PRECISION NOT NULL,
			gld_ratio        DOUBLE PRECISION NOT NULL,
			slv_price        DOUBLE PRECISION NOT NULL,
			gld_price        DOUBLE PRECISION NOT NULL,
			gold_spot        DOUBLE PRECISION NOT NULL,
			silver_spot      DOUBLE PRECISION NOT NULL,
			updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	if err != nil {
		return fmt.Errorf("create calibration_history: %w", err)
	}
	return nil
}

func TestConnection(p *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	var now time.Time
	err := p.QueryRow(ctx, "SELECT NOW()").Scan(&now)
	if err != nil {
		return fmt.Errorf("test query: %w", err)
	}
	fmt.Printf("[DB] Connection successful at %s\n", now.Format(time.RFC3339))
	return nil
}
