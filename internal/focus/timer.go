// Package focus implements the countdown state machine behind a focus
// session: Idle, Running, Paused and a short Completed hold before Idle.
package focus

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/elicat001/ai-smart-pomodoro-timer/internal/logging"
)

type State string

const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StatePaused    State = "paused"
	StateCompleted State = "completed"
)

const (
	TickInterval         = time.Second
	DefaultCompletedHold = 3
)

var (
	ErrInvalidDuration = errors.New("focus: duration must be positive")
	ErrNoTarget        = errors.New("focus: target is required")
	ErrNotRunning      = errors.New("focus: timer is not running")
	ErrNotPaused       = errors.New("focus: timer is not paused")
)

// TickSource delivers ticks to fn until stopped. Stop must not block, since
// the timer calls it from inside fn.
type TickSource interface {
	Start(interval time.Duration, fn func())
	Stop()
}

// Target is what a countdown is bound to: a task, or one subtask of it.
type Target struct {
	TaskID       string `json:"taskId"`
	SubtaskID    string `json:"subtaskId,omitempty"`
	TaskLabel    string `json:"taskLabel"`
	SubtaskLabel string `json:"subtaskLabel,omitempty"`
}

// ID is the subtask id when set, otherwise the task id.
func (t Target) ID() string {
	if t.SubtaskID != "" {
		return t.SubtaskID
	}
	return t.TaskID
}

func (t Target) Label() string {
	if t.SubtaskLabel != "" {
		return t.TaskLabel + " / " + t.SubtaskLabel
	}
	return t.TaskLabel
}

// SessionFinished is emitted once per countdown that reaches zero.
type SessionFinished struct {
	Target                  Target
	OriginalDurationSeconds int
	FinishedAt              time.Time
}

func (e SessionFinished) DurationMinutes() int {
	return (e.OriginalDurationSeconds + 59) / 60
}

type Snapshot struct {
	State            State   `json:"state"`
	Target           Target  `json:"target"`
	RemainingSeconds int     `json:"remainingSeconds"`
	OriginalSeconds  int     `json:"originalSeconds"`
	Progress         float64 `json:"progress"`
}

type Options struct {
	Source TickSource
	// CompletedHold is the number of ticks spent in Completed before Idle.
	CompletedHold int
	Now           func() time.Time
	Logger        *logging.Logger
	OnFinished    func(SessionFinished)
}

// Timer is safe for concurrent use. OnFinished runs after the timer's lock
// is released, on the goroutine that delivered the final tick.
type Timer struct {
	mu         sync.Mutex
	source     TickSource
	state      State
	target     Target
	remaining  int
	original   int
	holdLeft   int
	hold       int
	generation uint64
	now        func() time.Time
	onFinished func(SessionFinished)
	logger     *logging.Logger
}

func New(opts Options) (*Timer, error) {
	if opts.Source == nil {
		return nil, errors.New("focus: tick source is required")
	}
	hold := opts.CompletedHold
	if hold <= 0 {
		hold = DefaultCompletedHold
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Timer{
		source:     opts.Source,
		state:      StateIdle,
		hold:       hold,
		now:        now,
		onFinished: opts.OnFinished,
		logger:     opts.Logger.WithComponent("focus"),
	}, nil
}

// SetOnFinished replaces the completion listener.
func (t *Timer) SetOnFinished(fn func(SessionFinished)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onFinished = fn
}

// Start begins a countdown of minutes for target. An active countdown is
// stopped first, without emitting.
func (t *Timer) Start(target Target, minutes int) error {
	if minutes <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidDuration, minutes)
	}
	if target.ID() == "" {
		return ErrNoTarget
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != StateIdle {
		t.logger.Info("replacing active countdown", "previous", t.target.ID(), "state", string(t.state))
		t.source.Stop()
	}
	t.generation++
	gen := t.generation
	t.state = StateRunning
	t.target = target
	t.original = minutes * 60
	t.remaining = t.original
	t.holdLeft = 0
	t.source.Start(TickInterval, func() { t.tick(gen) })
	t.logger.Debug("countdown started", "target", target.ID(), "minutes", minutes)
	return nil
}

func (t *Timer) Pause() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != StateRunning {
		return ErrNotRunning
	}
	t.source.Stop()
	t.generation++
	t.state = StatePaused
	return nil
}

func (t *Timer) Resume() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != StatePaused {
		return ErrNotPaused
	}
	t.generation++
	gen := t.generation
	t.state = StateRunning
	t.source.Start(TickInterval, func() { t.tick(gen) })
	return nil
}

// Stop discards the countdown. It never emits SessionFinished and reports
// whether anything was stopped.
func (t *Timer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == StateIdle {
		return false
	}
	t.resetLocked()
	return true
}

func (t *Timer) resetLocked() {
	t.source.Stop()
	t.generation++
	t.state = StateIdle
	t.target = Target{}
	t.remaining = 0
	t.original = 0
	t.holdLeft = 0
}

func (t *Timer) tick(gen uint64) {
	t.mu.Lock()
	if gen != t.generation {
		t.mu.Unlock()
		return
	}

	switch t.state {
	case StateRunning:
		if t.remaining > 1 {
			t.remaining--
			t.mu.Unlock()
			return
		}
		t.remaining = 0
		t.state = StateCompleted
		t.holdLeft = t.hold
		ev := SessionFinished{Target: t.target, OriginalDurationSeconds: t.original, FinishedAt: t.now()}
		listener := t.onFinished
		t.mu.Unlock()
		t.emit(listener, ev)
	case StateCompleted:
		t.holdLeft--
		if t.holdLeft <= 0 {
			t.resetLocked()
		}
		t.mu.Unlock()
	default:
		t.mu.Unlock()
	}
}

func (t *Timer) emit(listener func(SessionFinished), ev SessionFinished) {
	t.logger.Info("countdown finished", "target", ev.Target.ID(), "seconds", ev.OriginalDurationSeconds)
	if listener == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			t.logger.Error("session listener panicked", "target", ev.Target.ID(), "panic", fmt.Sprint(r))
		}
	}()
	listener(ev)
}

func (t *Timer) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	snap := Snapshot{
		State:            t.state,
		Target:           t.target,
		RemainingSeconds: t.remaining,
		OriginalSeconds:  t.original,
	}
	if t.original > 0 {
		snap.Progress = 1 - float64(t.remaining)/float64(t.original)
	}
	return snap
}

func (t *Timer) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// IsBoundTo reports whether an active countdown targets the task or subtask.
func (t *Timer) IsBoundTo(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state != StateIdle && (t.target.TaskID == id || t.target.SubtaskID == id)
}
