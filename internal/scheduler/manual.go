package scheduler

import (
	"sync"
	"time"
)

// Manual is a tick source driven by Advance. It stands in for Ticker when
// time must be controlled, as in tests and headless replays.
type Manual struct {
	mu       sync.Mutex
	fn       func()
	interval time.Duration
	running  bool
	starts   int
	stops    int
}

func NewManual() *Manual {
	return &Manual{}
}

func (m *Manual) Start(interval time.Duration, fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fn = fn
	m.interval = interval
	m.running = true
	m.starts++
}

func (m *Manual) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		m.stops++
	}
	m.running = false
}

// Advance delivers up to n ticks and returns how many were delivered. It
// stops early once the source is stopped.
func (m *Manual) Advance(n int) int {
	delivered := 0
	for i := 0; i < n; i++ {
		m.mu.Lock()
		if !m.running {
			m.mu.Unlock()
			break
		}
		fn := m.fn
		m.mu.Unlock()
		fn()
		delivered++
	}
	return delivered
}

// AdvanceBy delivers one tick per elapsed interval.
func (m *Manual) AdvanceBy(d time.Duration) int {
	m.mu.Lock()
	interval := m.interval
	m.mu.Unlock()
	if interval <= 0 {
		interval = time.Second
	}
	return m.Advance(int(d / interval))
}

func (m *Manual) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// Counts reports how many times the source was started and stopped.
func (m *Manual) Counts() (starts, stops int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.starts, m.stops
}
