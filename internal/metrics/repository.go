package metrics

import (
	"sync/atomic"
	"time"
)

type Counter struct {
	value uint64
}

func (c *Counter) Inc() {
	atomic.AddUint64(&c.value, 1)
}

func (c *Counter) Add(n uint64) {
	atomic.AddUint64(&c.value, n)
}

func (c *Counter) Load() uint64 {
	return atomic.LoadUint64(&c.value)
}

type Timer struct {
	start time.Time
}

func StartTimer() *Timer {
	return &Timer{start: time.Now()}
}

func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

// Lookup counts suggestion traffic.
type Lookup struct {
	Searches Counter
	Failures Counter
	Stale    Counter
}

// Submission counts order submissions and keeps the last round-trip latency.
type Submission struct {
	Attempts  Counter
	Succeeded Counter
	Failed    Counter
	Rejected  Counter

	lastLatency atomic.Int64
}

func (s *Submission) Observe(t *Timer) {
	s.lastLatency.Store(int64(t.Duration()))
}

func (s *Submission) LastLatency() time.Duration {
	return time.Duration(s.lastLatency.Load())
}

// Snapshot is a point-in-time copy suitable for JSON output.
type Snapshot struct {
	LookupSearches   uint64 `json:"lookupSearches"`
	LookupFailures   uint64 `json:"lookupFailures"`
	LookupStale      uint64 `json:"lookupStale"`
	SubmitAttempts   uint64 `json:"submitAttempts"`
	SubmitSucceeded  uint64 `json:"submitSucceeded"`
	SubmitFailed     uint64 `json:"submitFailed"`
	SubmitRejected   uint64 `json:"submitRejected"`
	SubmitLastMillis int64  `json:"submitLastMillis"`
}

func Take(l *Lookup, s *Submission) Snapshot {
	return Snapshot{
		LookupSearches:   l.Searches.Load(),
		LookupFailures:   l.Failures.Load(),
		LookupStale:      l.Stale.Load(),
		SubmitAttempts:   s.Attempts.Load(),
		SubmitSucceeded:  s.Succeeded.Load(),
		SubmitFailed:     s.Failed.Load(),
		SubmitRejected:   s.Rejected.Load(),
		SubmitLastMillis: s.LastLatency().Milliseconds(),
	}
}
