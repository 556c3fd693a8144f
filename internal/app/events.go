package app

import (
	"time"

	"github.com/elicat001/ai-smart-pomodoro-timer/internal/analysis"
	"github.com/elicat001/ai-smart-pomodoro-timer/internal/model"
)

type EventKind string

const (
	EventSessionRecorded   EventKind = "session_recorded"
	EventSessionSuppressed EventKind = "session_suppressed"
	EventGoalReached       EventKind = "goal_reached"
	EventAnalysisDone      EventKind = "analysis_done"
	EventPersistFailed     EventKind = "persist_failed"
)

// Event reports something that happened off the caller's goroutine.
type Event struct {
	Kind    EventKind
	At      time.Time
	Session *model.FocusSession
	TaskID  string
	Outcome *analysis.Outcome
	Err     error
}

// Events is never closed. Slow consumers lose events; see Dropped.
func (w *Workspace) Events() <-chan Event {
	return w.events
}

func (w *Workspace) Dropped() uint64 {
	return w.dropped.Load()
}

func (w *Workspace) publish(ev Event) {
	if ev.At.IsZero() {
		ev.At = w.now()
	}
	select {
	case w.events <- ev:
	default:
		w.dropped.Add(1)
		w.logger.Warn("event dropped", "kind", string(ev.Kind))
	}
}
