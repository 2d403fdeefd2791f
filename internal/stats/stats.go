// Package stats aggregates byte-reduction counters across a batch run.
package stats

import "sync"

// Stats tracks the processed image count and byte totals of one run.
// It is shared by pointer across workers; all three fields change together
// under mu so no reader can observe a count without its byte sums.
type Stats struct {
	mu             sync.Mutex
	count          int
	originalBytes  int64
	optimizedBytes int64
}

// New returns an empty aggregate.
func New() *Stats {
	return &Stats{}
}

// Update folds one successfully optimized image into the totals.
// Safe for concurrent use.
func (s *Stats) Update(originalBytes, optimizedBytes int64) {
	s.mu.Lock()
	s.count++
	s.originalBytes += originalBytes
	s.optimizedBytes += optimizedBytes
	s.mu.Unlock()
}

// Snapshot returns a consistent copy of the current totals.
func (s *Stats) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Count:          s.count,
		OriginalBytes:  s.originalBytes,
		OptimizedBytes: s.optimizedBytes,
	}
}

// Snapshot is an immutable view of Stats.
type Snapshot struct {
	Count          int
	OriginalBytes  int64
	OptimizedBytes int64
}

// SpaceSaved returns the aggregate byte difference between inputs and outputs.
// Positive means outputs are smaller; negative means they grew.
func (s Snapshot) SpaceSaved() int64 {
	return s.OriginalBytes - s.OptimizedBytes
}

// Reduction returns the overall percentage reduction. ok is false when
// nothing was processed, in which case no division is performed.
func (s Snapshot) Reduction() (pct float64, ok bool) {
	if s.Count == 0 {
		return 0, false
	}
	return Reduction(s.OriginalBytes, s.OptimizedBytes)
}

// Reduction returns 100 - optimized/original*100. ok is false for a zero
// original size.
func Reduction(originalBytes, optimizedBytes int64) (pct float64, ok bool) {
	if originalBytes <= 0 {
		return 0, false
	}
	return 100 - float64(optimizedBytes)/float64(originalBytes)*100, true
}
