package scheduler

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestTickerStressConcurrentRestarts(t *testing.T) {
	ticker := NewTicker()
	var ticks int64

	const workers = 8
	const perWorker = 50
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				ticker.Start(time.Millisecond, func() { atomic.AddInt64(&ticks, 1) })
				if i%3 == 0 {
					ticker.Stop()
				}
			}
		}()
	}
	wg.Wait()
	ticker.Stop()
	ticker.Wait()
	time.Sleep(10 * time.Millisecond)

	settled := atomic.LoadInt64(&ticks)
	time.Sleep(20 * time.Millisecond)
	if got := atomic.LoadInt64(&ticks); got != settled {
		t.Fatalf("ticks continued after final stop: %d -> %d", settled, got)
	}
}

func TestDebouncerStressConcurrentTriggers(t *testing.T) {
	var calls int64
	d := NewDebouncer(20*time.Millisecond, func() { atomic.AddInt64(&calls, 1) })
	d.Start()

	var wg sync.WaitGroup
	wg.Add(8)
	for w := 0; w < 8; w++ {
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				d.Trigger()
			}
		}()
	}
	wg.Wait()
	d.Stop()

	if got := atomic.LoadInt64(&calls); got < 1 || got > 10 {
		t.Fatalf("expected the burst to collapse to a few calls, got %d", got)
	}
}
