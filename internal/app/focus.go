package app

import (
	"fmt"

	"github.com/elicat001/ai-smart-pomodoro-timer/internal/backup"
	"github.com/elicat001/ai-smart-pomodoro-timer/internal/focus"
	"github.com/elicat001/ai-smart-pomodoro-timer/internal/model"
	"github.com/elicat001/ai-smart-pomodoro-timer/internal/notify"
)

// StartFocus starts a countdown on a task, or on one of its subtasks when
// subtaskID is set. minutes <= 0 uses the subtask duration, then the task
// estimate, then the configured default. A running countdown is replaced.
func (w *Workspace) StartFocus(taskID, subtaskID string, minutes int) (focus.Snapshot, error) {
	w.mu.Lock()
	task, err := w.taskLocked(taskID)
	if err != nil {
		w.mu.Unlock()
		return focus.Snapshot{}, err
	}
	target := focus.Target{TaskID: task.ID, TaskLabel: task.Text}
	if subtaskID != "" {
		sub, ok := task.Subtask(subtaskID)
		if !ok {
			w.mu.Unlock()
			return focus.Snapshot{}, fmt.Errorf("%w: %q", model.ErrSubtaskNotFound, subtaskID)
		}
		target.SubtaskID = sub.ID
		target.SubtaskLabel = sub.Text
	}
	if minutes <= 0 {
		minutes = task.FocusMinutes(subtaskID)
	}
	if minutes <= 0 {
		minutes = w.defaultMinutes
	}
	if err := w.timer.Start(target, minutes); err != nil {
		w.mu.Unlock()
		return focus.Snapshot{}, err
	}
	if subtaskID != "" {
		_ = task.MarkSubtaskStarted(subtaskID, w.now())
	}
	w.mu.Unlock()

	if subtaskID != "" {
		w.markDirty(backup.EntryTasks)
	}
	w.notify("Focus started", fmt.Sprintf("%s (%d min)", target.Label(), minutes), notify.LevelInfo)
	return w.timer.Snapshot(), nil
}

func (w *Workspace) PauseFocus() error { return w.timer.Pause() }

func (w *Workspace) ResumeFocus() error { return w.timer.Resume() }

// StopFocus discards the countdown without recording a session.
func (w *Workspace) StopFocus() bool { return w.timer.Stop() }

func (w *Workspace) FocusSnapshot() focus.Snapshot { return w.timer.Snapshot() }

func (w *Workspace) onSessionFinished(ev focus.SessionFinished) {
	target := ev.Target
	session := model.FocusSession{
		ID:              w.newID(),
		TaskID:          target.TaskID,
		SubtaskID:       target.SubtaskID,
		TaskLabel:       target.TaskLabel,
		SubtaskLabel:    target.SubtaskLabel,
		DurationMinutes: ev.DurationMinutes(),
		CompletedAt:     ev.FinishedAt,
	}

	w.mu.Lock()
	tasksChanged := false
	if task, err := w.taskLocked(target.TaskID); err == nil {
		session.TaskLabel = task.Text
		if target.SubtaskID != "" {
			if sub, ok := task.Subtask(target.SubtaskID); ok {
				session.SubtaskLabel = sub.Text
				if !sub.Completed {
					_ = task.SetSubtaskCompleted(sub.ID, true, ev.FinishedAt)
					tasksChanged = true
				}
			}
		}
	} else {
		w.logger.Info("session finished for a deleted task", "task", target.TaskID)
	}

	kept := w.ledger.Record(session)
	if kept {
		w.settings.Usage.TotalSessionsEverSeen++
		w.settings.FocusStreakDays = w.ledger.StreakDays()
	}
	today := w.ledger.TodayStats()
	goal := w.settings.DailyGoalSessions
	w.mu.Unlock()

	if tasksChanged {
		w.markDirty(backup.EntryTasks)
	}
	if !kept {
		w.publish(Event{Kind: EventSessionSuppressed, At: ev.FinishedAt, Session: &session, TaskID: target.TaskID})
		return
	}
	w.markDirty(backup.EntryHistory, backup.EntrySettings, backup.EntryAppStats)

	w.notify("Focus complete", fmt.Sprintf("%s: %d min", target.Label(), session.DurationMinutes), notify.LevelSuccess)
	w.publish(Event{Kind: EventSessionRecorded, At: ev.FinishedAt, Session: &session, TaskID: target.TaskID})
	if today.Sessions == goal {
		w.notify("Daily goal reached", fmt.Sprintf("%d of %d sessions today", today.Sessions, goal), notify.LevelSuccess)
		w.publish(Event{Kind: EventGoalReached, At: ev.FinishedAt})
	}
}

func (w *Workspace) notify(title, body string, level notify.Level) {
	err := w.notifier.Send(notify.Notification{Title: title, Body: body, Level: level, At: w.now()})
	if err != nil {
		w.logger.Warn("notification failed", "title", title, "error", err)
	}
}
