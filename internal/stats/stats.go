// Package stats keeps rolling-window statistics about parse runs.
package stats

import (
	"sort"
	"sync"
	"time"
)

// Sample is one parse run.
type Sample struct {
	Duration time.Duration
	Bytes    int
	Items    int
	Drops    int
}

type entry struct {
	at time.Time
	Sample
}

// Snapshot aggregates the samples currently inside the window.
type Snapshot struct {
	Count      int     `json:"count"`
	MinMs      float64 `json:"min_ms"`
	MaxMs      float64 `json:"max_ms"`
	AvgMs      float64 `json:"avg_ms"`
	P50Ms      float64 `json:"p50_ms"`
	P95Ms      float64 `json:"p95_ms"`
	P99Ms      float64 `json:"p99_ms"`
	Bytes      int64   `json:"bytes"`
	Items      int64   `json:"items"`
	Drops      int64   `json:"drops"`
	MBPerSec   float64 `json:"mb_per_sec"`
	WindowSecs float64 `json:"window_secs"`
}

// ParseStats tracks recent parse runs within a rolling window.
type ParseStats struct {
	mu      sync.Mutex
	entries []entry
	maxAge  time.Duration
	now     func() time.Time
}

func NewParseStats(maxAge time.Duration) *ParseStats {
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	return &ParseStats{
		entries: make([]entry, 0, 256),
		maxAge:  maxAge,
		now:     time.Now,
	}
}

func (s *ParseStats) Record(sm Sample) {
	if sm.Duration < 0 {
		sm.Duration = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.pruneLocked(now)
	s.entries = append(s.entries, entry{at: now, Sample: sm})
}

func (s *ParseStats) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(s.now())
	snap := Snapshot{WindowSecs: s.maxAge.Seconds()}
	if len(s.entries) == 0 {
		return snap
	}

	values := make([]float64, 0, len(s.entries))
	var total time.Duration
	for _, e := range s.entries {
		values = append(values, ms(e.Duration))
		total += e.Duration
		snap.Bytes += int64(e.Bytes)
		snap.Items += int64(e.Items)
		snap.Drops += int64(e.Drops)
	}
	sort.Float64s(values)

	snap.Count = len(values)
	snap.MinMs = values[0]
	snap.MaxMs = values[len(values)-1]
	snap.AvgMs = ms(total) / float64(len(values))
	snap.P50Ms = percentile(values, 50)
	snap.P95Ms = percentile(values, 95)
	snap.P99Ms = percentile(values, 99)
	if total > 0 {
		snap.MBPerSec = float64(snap.Bytes) / (1 << 20) / total.Seconds()
	}
	return snap
}

func ms(d time.Duration) float64 { return float64(d) / float64(time.Millisecond) }

func (s *ParseStats) pruneLocked(now time.Time) {
	cutoff := now.Add(-s.maxAge)
	keep := 0
	for _, e := range s.entries {
		if !e.at.Before(cutoff) {
			s.entries[keep] = e
			keep++
		}
	}
	s.entries = s.entries[:keep]
}

// percentile interpolates linearly between the two nearest ranks.
func percentile(sorted []float64, pct float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if pct <= 0 {
		return sorted[0]
	}
	if pct >= 100 {
		return sorted[len(sorted)-1]
	}

	index := float64(len(sorted)-1) * pct / 100.0
	lower := int(index)
	upper := lower + 1
	if upper >= len(sorted) {
		return sorted[lower]
	}
	weight := index - float64(lower)
	return sorted[lower] + (sorted[upper]-sorted[lower])*weight
}
