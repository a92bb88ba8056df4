package prices

import "sync"

// HistoricalStore holds the daily gold price table and the gold/silver ratio
// table, both keyed by YYYY-MM-DD. Tables are only ever swapped wholesale by
// the refresh cycle, never mutated entry by entry, so readers can safely hold
// a snapshot reference after the lock is released.
type HistoricalStore struct {
	mu    sync.RWMutex
	gold  map[string]float64
	ratio map[string]float64
}

func NewHistoricalStore() *HistoricalStore {
	return &HistoricalStore{
		gold:  make(map[string]float64),
		ratio: make(map[string]float64),
	}
}

// ReplaceGold swaps the gold price table for a new one.
func (s *HistoricalStore) ReplaceGold(table map[string]float64) {
	if table == nil {
		table = make(map[string]float64)
	}
	s.mu.Lock()
	s.gold = table
	s.mu.Unlock()
}

// ReplaceRatios swaps the gold/silver ratio table for a new one.
func (s *HistoricalStore) ReplaceRatios(table map[string]float64) {
	if table == nil {
		table = make(map[string]float64)
	}
	s.mu.Lock()
	s.ratio = table
	s.mu.Unlock()
}

// GoldOn returns the exact gold price recorded for the given date.
func (s *HistoricalStore) GoldOn(date string) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.gold[date]
	return v, ok
}

// RatioOn returns the exact gold/silver ratio recorded for the given date.
func (s *HistoricalStore) RatioOn(date string) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.ratio[date]
	return v, ok
}

// goldSnapshot returns the current gold table. The returned map must be
// treated as read-only.
func (s *HistoricalStore) goldSnapshot() map[string]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gold
}

func (s *HistoricalStore) ratioSnapshot() map[string]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ratio
}

// Counts returns the number of entries in each table, for the health endpoint.
func (s *HistoricalStore) Counts() (goldRecords, ratioRecords int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.gold), len(s.ratio)
}

// Loaded reports whether both historical tables have been populated.
func (s *HistoricalStore) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.gold) > 0 && len(s.ratio) > 0
}
