package prices

import (
	"math"
	"time"
)

const dateLayout = "2006-01-02"

// DefaultNearestWindowDays bounds how far a nearest-date match may sit from
// the queried date. Records farther out are treated as "no data".
const DefaultNearestWindowDays = 30

// DefaultGoldSilverRatio is the fallback gold/silver ratio used when no
// recorded ratio is near enough. Roughly the long-run historical average.
const DefaultGoldSilverRatio = 80.0

// ParseDay parses a strict YYYY-MM-DD date.
func ParseDay(s string) (time.Time, error) {
	return time.Parse(dateLayout, s)
}

// daysBetween returns the absolute calendar-day distance between two dates.
func daysBetween(a, b time.Time) int {
	d := a.Sub(b) / (24 * time.Hour)
	return int(math.Abs(float64(d)))
}

// nearestWithin finds the entry whose date key is chronologically closest to
// target, ignoring anything farther than windowDays away. The table is small
// (decades of daily records at most), so a linear scan is fine. Ties go to the
// lexicographically smaller date so results are deterministic regardless of
// map iteration order.
func nearestWithin(table map[string]float64, target string, windowDays int) (matched string, value float64, ok bool) {
	targetDay, err := ParseDay(target)
	if err != nil {
		return "", 0, false
	}

	best := windowDays + 1
	for key, v := range table {
		day, err := ParseDay(key)
		if err != nil {
			continue
		}
		dist := daysBetween(day, targetDay)
		if dist < best || (dist == best && ok && key < matched) {
			best, matched, value, ok = dist, key, v, true
		}
	}
	return matched, value, ok
}
