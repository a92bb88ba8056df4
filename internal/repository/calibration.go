package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kingleosgold/stack-tracker-pro/internal/models"
)

// CalibrationStore persists one calibration record per calendar date.
// Implementations must treat Upsert as insert-or-replace on the date key, and
// GetAsOf must return the record that was in effect on the given date — the
// most recent one on or before it, never a later one.
type CalibrationStore interface {
	Upsert(ctx context.Context, rec *models.CalibrationRecord) error
	GetAsOf(ctx context.Context, date string) (*models.CalibrationRecord, error)
	GetLatest(ctx context.Context) (*models.CalibrationRecord, error)
}

type CalibrationRepo struct {
	pool *pgxpool.Pool
}

func NewCalibrationRepo(pool *pgxpool.Pool) *CalibrationRepo {
	return &CalibrationRepo{pool: pool}
}

func (r *CalibrationRepo) Upsert(ctx context.Context, rec *models.CalibrationRecord) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO calibration_history
		 (calibration_date, slv_ratio, gld_ratio, slv_price, gld_price, gold_spot, silver_spot, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		 ON CONFLICT (calibration_date) DO UPDATE SET
		   slv_ratio = EXCLUDED.slv_ratio,
		   gld_ratio = EXCLUDED.gld_ratio,
		   slv_price = EXCLUDED.slv_price,
		   gld_price = EXCLUDED.gld_price,
		   gold_spot = EXCLUDED.gold_spot,
		   silver_spot = EXCLUDED.silver_spot,
		   updated_at = EXCLUDED.updated_at`,
		rec.Date, rec.SLVRatio, rec.GLDRatio, rec.SLVPrice, rec.GLDPrice,
		rec.GoldSpot, rec.SilverSpot, rec.UpdatedAt,
	)
	return err
}

func (r *CalibrationRepo) GetAsOf(ctx context.Context, date string) (*models.CalibrationRecord, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT calibration_date, slv_ratio, gld_ratio, slv_price, gld_price,
		        gold_spot, silver_spot, updated_at
		 FROM calibration_history
		 WHERE calibration_date <= $1
		 ORDER BY calibration_date DESC
		 LIMIT 1`,
		date,
	)
	return scanCalibration(row)
}

func (r *CalibrationRepo) GetLatest(ctx context.Context) (*models.CalibrationRecord, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT calibration_date, slv_ratio, gld_ratio, slv_price, gld_price,
		        gold_spot, silver_spot, updated_at
		 FROM calibration_history
		 ORDER BY calibration_date DESC
		 LIMIT 1`,
	)
	return scanCalibration(row)
}

// --- scan helpers ---

type scannable interface {
	Scan(dest ...any) error
}

func scanCalibration(row scannable) (*models.CalibrationRecord, error) {
	var rec models.CalibrationRecord
	var day time.Time
	err := row.Scan(&day, &rec.SLVRatio, &rec.GLDRatio, &rec.SLVPrice, &rec.GLDPrice,
		&rec.GoldSpot, &rec.SilverSpot, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	rec.Date = day.Format("2006-01-02")
	return &rec, nil
}
