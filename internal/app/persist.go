package app

import (
	"context"
	"time"

	"github.com/elicat001/ai-smart-pomodoro-timer/internal/backup"
)

const persistTimeout = 5 * time.Second

// markDirty queues keys for the next write.
func (w *Workspace) markDirty(keys ...string) {
	for _, k := range keys {
		w.dirty.Add(k)
	}
	w.persister.Trigger()
}

// Flush writes pending changes now.
func (w *Workspace) Flush() {
	w.persister.Flush()
}

func (w *Workspace) persist() {
	keys := w.dirty.Drain()
	if len(keys) == 0 {
		return
	}

	w.mu.Lock()
	values := make(map[string]any, len(keys))
	for _, k := range keys {
		switch k {
		case backup.EntryTasks:
			values[k] = cloneTasks(w.tasks)
		case backup.EntryHistory:
			values[k] = w.ledger.Entries()
		case backup.EntryDailyGoal:
			values[k] = w.settings.DailyGoalSessions
		case backup.EntrySettings:
			values[k] = w.settings.Preferences()
		case backup.EntryAppStats:
			values[k] = w.settings.Usage
		}
	}
	w.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	for _, k := range keys {
		v, ok := values[k]
		if !ok {
			continue
		}
		if err := w.store.Save(ctx, k, v); err != nil {
			w.publish(Event{Kind: EventPersistFailed, Err: err})
		}
	}
}
