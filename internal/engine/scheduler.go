package engine

import (
	"sync"
	"time"
)

// Scheduler runs fn once after d. Delayed companion work (typing delays,
// staggered comments) goes through it.
type Scheduler interface {
	After(d time.Duration, fn func())
}

// WallClock schedules on real timers.
type WallClock struct{}

func (WallClock) After(d time.Duration, fn func()) { time.AfterFunc(d, fn) }

// ManualScheduler queues work until the caller flushes it. It starts no
// goroutines.
type ManualScheduler struct {
	mu      sync.Mutex
	pending []scheduled
	delays  []time.Duration

	// Reverse runs queued work newest first.
	Reverse bool
}

type scheduled struct {
	d  time.Duration
	fn func()
}

func (m *ManualScheduler) After(d time.Duration, fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = append(m.pending, scheduled{d: d, fn: fn})
	m.delays = append(m.delays, d)
}

// Pending reports how much work is queued.
func (m *ManualScheduler) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

// Delays lists every delay requested so far.
func (m *ManualScheduler) Delays() []time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]time.Duration(nil), m.delays...)
}

// Step runs the queued work once, without work it schedules in turn. It
// returns how many tasks ran.
func (m *ManualScheduler) Step() int {
	m.mu.Lock()
	batch := m.pending
	m.pending = nil
	m.mu.Unlock()

	if m.Reverse {
		for i := len(batch) - 1; i >= 0; i-- {
			batch[i].fn()
		}
	} else {
		for _, t := range batch {
			t.fn()
		}
	}
	return len(batch)
}

// Flush runs queued work until none is left, including work scheduled by
// work that ran.
func (m *ManualScheduler) Flush() int {
	total := 0
	for {
		n := m.Step()
		if n == 0 {
			return total
		}
		total += n
	}
}
