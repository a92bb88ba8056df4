package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/kingleosgold/stack-tracker-pro/internal/db"
	"github.com/kingleosgold/stack-tracker-pro/internal/models"
	"github.com/kingleosgold/stack-tracker-pro/internal/repository"
	"github.com/kingleosgold/stack-tracker-pro/internal/testutil"
)

func sampleRecord(date string) *models.CalibrationRecord {
	return &models.CalibrationRecord{
		Date:       date,
		SLVRatio:   0.9213,
		GLDRatio:   0.09317,
		SLVPrice:   28.10,
		GLDPrice:   246.90,
		GoldSpot:   2650.00,
		SilverSpot: 30.50,
		UpdatedAt:  time.Now().UTC(),
	}
}

// ---------- MemoryCalibrationStore ----------

func TestMemoryStore_UpsertReplacesSameDate(t *testing.T) {
	store := repository.NewMemoryCalibrationStore()
	ctx := context.Background()

	if err := store.Upsert(ctx, sampleRecord("2024-04-19")); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	updated := sampleRecord("2024-04-19")
	updated.SLVRatio = 0.9300
	if err := store.Upsert(ctx, updated); err != nil {
		t.Fatalf("Upsert (replace): %v", err)
	}

	if store.Len() != 1 {
		t.Fatalf("expected 1 record after same-date upsert, got %d", store.Len())
	}

	rec, err := store.GetLatest(ctx)
	if err != nil {
		t.Fatalf("GetLatest: %v", err)
	}
	if rec.SLVRatio != 0.9300 {
		t.Fatalf("expected replaced ratio, got %f", rec.SLVRatio)
	}
}

func TestMemoryStore_GetAsOf(t *testing.T) {
	store := repository.NewMemoryCalibrationStore()
	ctx := context.Background()

	store.Upsert(ctx, sampleRecord("2024-04-10"))
	store.Upsert(ctx, sampleRecord("2024-04-19"))

	// A query between the two records returns the earlier one.
	rec, err := store.GetAsOf(ctx, "2024-04-15")
	if err != nil {
		t.Fatalf("GetAsOf: %v", err)
	}
	if rec == nil || rec.Date != "2024-04-10" {
		t.Fatalf("expected 2024-04-10, got %+v", rec)
	}

	// A later calibration must never apply retroactively.
	rec, err = store.GetAsOf(ctx, "2024-04-09")
	if err != nil {
		t.Fatalf("GetAsOf: %v", err)
	}
	if rec != nil {
		t.Fatalf("expected no record before first calibration, got %+v", rec)
	}

	// On or after the newest record, the newest wins.
	rec, _ = store.GetAsOf(ctx, "2024-05-01")
	if rec == nil || rec.Date != "2024-04-19" {
		t.Fatalf("expected 2024-04-19, got %+v", rec)
	}
}

func TestMemoryStore_EmptyLatest(t *testing.T) {
	store := repository.NewMemoryCalibrationStore()
	rec, err := store.GetLatest(context.Background())
	if err != nil {
		t.Fatalf("GetLatest: %v", err)
	}
	if rec != nil {
		t.Fatalf("expected nil on empty store, got %+v", rec)
	}
}

// ---------- CalibrationRepo (Postgres) ----------

func TestCalibrationRepo(t *testing.T) {
	pool := testutil.SetupPool(t)
	ctx := context.Background()

	if err := db.Migrate(ctx, pool); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	repo := repository.NewCalibrationRepo(pool)

	rec := sampleRecord("2024-04-19")
	if err := repo.Upsert(ctx, rec); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	t.Logf("Upserted calibration for %s", rec.Date)

	// Same-date upsert replaces, not appends.
	rec.GLDRatio = 0.09400
	if err := repo.Upsert(ctx, rec); err != nil {
		t.Fatalf("Upsert (replace): %v", err)
	}

	got, err := repo.GetAsOf(ctx, "2024-04-19")
	if err != nil {
		t.Fatalf("GetAsOf: %v", err)
	}
	if got == nil {
		t.Fatal("expected record")
	}
	if got.Date != "2024-04-19" {
		t.Fatalf("date mismatch: %s", got.Date)
	}
	if got.GLDRatio != 0.09400 {
		t.Fatalf("expected replaced ratio, got %f", got.GLDRatio)
	}
	t.Logf("GetAsOf: slv=%.4f gld=%.5f", got.SLVRatio, got.GLDRatio)

	latest, err := repo.GetLatest(ctx)
	if err != nil {
		t.Fatalf("GetLatest: %v", err)
	}
	if latest == nil {
		t.Fatal("expected latest record")
	}
	t.Logf("Latest: %s", latest.Date)
}
