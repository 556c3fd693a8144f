package scheduler

import (
	"sync"
	"sync/atomic"
	"time"
)

// Debouncer coalesces bursts of Trigger calls into one fn call delay after
// the last trigger. Stop runs any pending call before returning.
type Debouncer struct {
	delay time.Duration
	fn    func()

	mu      sync.Mutex
	kick    chan struct{}
	flush   chan chan struct{}
	stopCh  chan struct{}
	doneCh  chan struct{}
	started bool
	stopped bool
	runs    uint64
}

func NewDebouncer(delay time.Duration, fn func()) *Debouncer {
	return &Debouncer{
		delay:  delay,
		fn:     fn,
		kick:   make(chan struct{}, 1),
		flush:  make(chan chan struct{}),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

func (d *Debouncer) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started {
		return
	}
	d.started = true
	go d.loop()
}

// Trigger schedules fn. A non-positive delay runs fn synchronously.
func (d *Debouncer) Trigger() {
	if d.delay <= 0 {
		d.run()
		return
	}
	select {
	case d.kick <- struct{}{}:
	default:
	}
}

// Flush runs a pending call now and waits for it.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	live := d.started && !d.stopped
	d.mu.Unlock()
	if !live {
		return
	}
	ack := make(chan struct{})
	select {
	case d.flush <- ack:
		<-ack
	case <-d.doneCh:
	}
}

func (d *Debouncer) Stop() {
	d.mu.Lock()
	if !d.started || d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	close(d.stopCh)
	d.mu.Unlock()
	<-d.doneCh
}

func (d *Debouncer) Runs() uint64 {
	return atomic.LoadUint64(&d.runs)
}

func (d *Debouncer) run() {
	atomic.AddUint64(&d.runs, 1)
	d.fn()
}

func (d *Debouncer) loop() {
	defer close(d.doneCh)

	var timer *time.Timer
	var timerC <-chan time.Time
	pending := false
	drainKick := func() {
		select {
		case <-d.kick:
			pending = true
		default:
		}
	}

	for {
		select {
		case <-d.kick:
			timer = resetTimer(timer, d.delay)
			timerC = timer.C
			pending = true
		case <-timerC:
			timerC = nil
			pending = false
			d.run()
		case ack := <-d.flush:
			drainKick()
			if pending {
				stopTimer(timer)
				timerC = nil
				pending = false
				d.run()
			}
			close(ack)
		case <-d.stopCh:
			drainKick()
			stopTimer(timer)
			if pending {
				d.run()
			}
			return
		}
	}
}
