package logging

import (
	"strings"
	"sync"
)

// ProgressSampler thins progress logs from concurrent tasks. Each task is
// tracked separately and emits only when it enters a new percentage bucket.
type ProgressSampler struct {
	bucketSize float64

	mu      sync.Mutex
	buckets map[string]int
}

// NewProgressSampler constructs a sampler with the given bucket width in
// percent (default 5).
func NewProgressSampler(bucketSize float64) *ProgressSampler {
	if bucketSize <= 0 {
		bucketSize = 5
	}
	return &ProgressSampler{bucketSize: bucketSize, buckets: make(map[string]int)}
}

// ShouldLog reports whether a progress event for task should be logged. The
// first event of a task always logs; a negative percent means "unknown" and
// never advances the bucket.
func (s *ProgressSampler) ShouldLog(percent float64, task string) bool {
	if s == nil {
		return true
	}
	task = strings.TrimSpace(task)

	s.mu.Lock()
	defer s.mu.Unlock()

	last, seen := s.buckets[task]
	if !seen {
		last = -1
	}
	if percent < 0 {
		s.buckets[task] = last
		return !seen
	}
	bucket := int(min(percent, 100) / s.bucketSize)
	if bucket > last {
		s.buckets[task] = bucket
		return true
	}
	if !seen {
		s.buckets[task] = last
	}
	return !seen
}

// Forget drops the state kept for task, e.g. once it has finished.
func (s *ProgressSampler) Forget(task string) {
	if s == nil {
		return
	}
	s.mu.Lock()
	delete(s.buckets, strings.TrimSpace(task))
	s.mu.Unlock()
}

// Reset clears the state of every task.
func (s *ProgressSampler) Reset() {
	if s == nil {
		return
	}
	s.mu.Lock()
	clear(s.buckets)
	s.mu.Unlock()
}
