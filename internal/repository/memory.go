package repository

import (
	"context"
	"sync"

	"github.com/kingleosgold/stack-tracker-pro/internal/models"
)

// MemoryCalibrationStore keeps calibration records in a process-local map.
// It is the fallback when no database is configured, and doubles as the test
// store. Records do not survive a restart, which is acceptable: the
// calibrator falls back to default ratios and recalibrates on the next cycle.
type MemoryCalibrationStore struct {
	mu      sync.RWMutex
	records map[string]models.CalibrationRecord
}

func NewMemoryCalibrationStore() *MemoryCalibrationStore {
	return &MemoryCalibrationStore{records: make(map[string]models.CalibrationRecord)}
}

func (s *MemoryCalibrationStore) Upsert(_ context.Context, rec *models.CalibrationRecord) error {
	s.mu.Lock()
	s.records[rec.Date] = *rec
	s.mu.Unlock()
	return nil
}

func (s *MemoryCalibrationStore) GetAsOf(_ context.Context, date string) (*models.CalibrationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	best := ""
	for d := range s.records {
		if d <= date && d > best {
			best = d
		}
	}
	if best == "" {
		return nil, nil
	}
	rec := s.records[best]
	return &rec, nil
}

func (s *MemoryCalibrationStore) GetLatest(_ context.Context) (*models.CalibrationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	best := ""
	for d := range s.records {
		if d > best {
			best = d
		}
	}
	if best == "" {
		return nil, nil
	}
	rec := s.records[best]
	return &rec, nil
}

// Len is a test helper.
func (s *MemoryCalibrationStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

var _ CalibrationStore = (*MemoryCalibrationStore)(nil)
var _ CalibrationStore = (*CalibrationRepo)(nil)
