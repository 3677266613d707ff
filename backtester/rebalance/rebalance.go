// Package rebalance computes the calendar dates a portfolio is rebalanced on.
package rebalance

import (
	"fmt"
	"time"

	"github.com/BaptisteZloch/Crypto-momentum-portfolios/common/cache"
)

// NewScheduler returns a Scheduler caching up to size schedules, a size
// below one uses DefaultCacheSize
func NewScheduler(size int) *Scheduler {
	if size < 1 {
		size = DefaultCacheSize
	}
	return &Scheduler{cache: cache.NewLRUCache[scheduleKey, []time.Time](size)}
}

// Schedule returns the cached schedule for the range and frequency, computing
// it on first use. The returned slice is owned by the caller.
func (s *Scheduler) Schedule(start, end time.Time, f Frequency) ([]time.Time, error) {
	start, end = truncate(start), truncate(end)
	key := scheduleKey{start: start.Unix(), end: end.Unix(), frequency: f}
	if dates, ok := s.cache.Get(key); ok {
		return append([]time.Time(nil), dates...), nil
	}
	dates, err := Schedule(start, end, f)
	if err != nil {
		return nil, err
	}
	s.cache.Add(key, dates)
	return append([]time.Time(nil), dates...), nil
}

// CacheStats returns the schedule cache hit and miss counters
func (s *Scheduler) CacheStats() (hits, misses uint64) {
	return s.cache.Stats()
}

// Schedule returns the ordered, unique calendar days within [start, end]
// selected by the frequency, always including start. Days are midnight UTC.
func Schedule(start, end time.Time, f Frequency) ([]time.Time, error) {
	if start.IsZero() || end.IsZero() {
		return nil, errZeroDate
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	start, end = truncate(start), truncate(end)
	if end.Before(start) {
		return nil, fmt.Errorf("%w: %v before %v", errEndBeforeStart, end.Format(time.DateOnly), start.Format(time.DateOnly))
	}
	dates := []time.Time{start}
	if f.kind == everyNDays {
		for d := start.AddDate(0, 0, f.n); !d.After(end); d = d.AddDate(0, 0, f.n) {
			dates = append(dates, d)
		}
		return dates, nil
	}
	for d := start.AddDate(0, 0, 1); !d.After(end); d = d.AddDate(0, 0, 1) {
		if f.includes(d) {
			dates = append(dates, d)
		}
	}
	return dates, nil
}

func truncate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Flags marks the positions of dates whose calendar day is in schedule.
// Scheduled days without a matching date are skipped.
func Flags(dates, schedule []time.Time) []bool {
	days := make(map[time.Time]struct{}, len(schedule))
	for i := range schedule {
		days[truncate(schedule[i])] = struct{}{}
	}
	out := make([]bool, len(dates))
	for i := range dates {
		_, out[i] = days[truncate(dates[i])]
	}
	return out
}
