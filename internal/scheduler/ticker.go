// Package scheduler provides the tick sources that drive the focus timer and
// the debouncer used for persistence.
package scheduler

import (
	"sync"
	"sync/atomic"
	"time"
)

// Ticker calls fn on its own goroutine every interval until stopped. Each
// Start disposes of the previous loop first, so at most one loop is live.
type Ticker struct {
	mu      sync.Mutex
	stopCh  chan struct{}
	doneCh  chan struct{}
	running bool
	ticks   uint64
}

func NewTicker() *Ticker {
	return &Ticker{}
}

func (t *Ticker) Start(interval time.Duration, fn func()) {
	if interval <= 0 {
		interval = time.Second
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
	t.stopCh = make(chan struct{})
	t.doneCh = make(chan struct{})
	t.running = true
	go t.loop(interval, fn, t.stopCh, t.doneCh)
}

// Stop does not wait for the loop to exit, so fn may call it.
func (t *Ticker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
}

func (t *Ticker) stopLocked() {
	if !t.running {
		return
	}
	t.running = false
	close(t.stopCh)
}

// Wait blocks until the most recent loop has exited. It must not be called
// from fn.
func (t *Ticker) Wait() {
	t.mu.Lock()
	done := t.doneCh
	t.mu.Unlock()
	if done != nil {
		<-done
	}
}

func (t *Ticker) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

func (t *Ticker) Ticks() uint64 {
	return atomic.LoadUint64(&t.ticks)
}

func (t *Ticker) loop(interval time.Duration, fn func(), stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	timer := time.NewTimer(interval)
	defer stopTimer(timer)
	next := time.Now().Add(interval)
	for {
		select {
		case <-timer.C:
			select {
			case <-stopCh:
				return
			default:
			}
			atomic.AddUint64(&t.ticks, 1)
			fn()
			next = next.Add(interval)
			wait := time.Until(next)
			if wait < 0 {
				next = time.Now()
				wait = 0
			}
			timer = resetTimer(timer, wait)
		case <-stopCh:
			return
		}
	}
}

func resetTimer(timer *time.Timer, d time.Duration) *time.Timer {
	if timer == nil {
		return time.NewTimer(d)
	}
	stopTimer(timer)
	timer.Reset(d)
	return timer
}

func stopTimer(timer *time.Timer) {
	if timer == nil {
		return
	}
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
}
