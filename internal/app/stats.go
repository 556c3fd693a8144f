package app

import (
	"github.com/elicat001/ai-smart-pomodoro-timer/internal/backup"
	"github.com/elicat001/ai-smart-pomodoro-timer/internal/ledger"
	"github.com/elicat001/ai-smart-pomodoro-timer/internal/model"
)

// AdjustDailyGoal moves the daily goal by delta, never below 1.
func (w *Workspace) AdjustDailyGoal(delta int) int {
	w.mu.Lock()
	goal := w.settings.AdjustDailyGoal(delta)
	w.mu.Unlock()
	w.markDirty(backup.EntryDailyGoal)
	return goal
}

func (w *Workspace) TodayStats() ledger.DayStats {
	return w.currentLedger().TodayStats()
}

func (w *Workspace) WeeklySeries() []ledger.DayPoint {
	return w.currentLedger().WeeklySeries()
}

func (w *Workspace) StreakDays() int {
	return w.currentLedger().StreakDays()
}

func (w *Workspace) Achievements() []ledger.Badge {
	w.mu.Lock()
	l, goal := w.ledger, w.settings.DailyGoalSessions
	w.mu.Unlock()
	return l.Achievements(goal, l.StreakDays())
}

// Sessions returns the ledger, most recent first.
func (w *Workspace) Sessions() []model.FocusSession {
	return w.currentLedger().Entries()
}

func (w *Workspace) DeduplicateLedger() int {
	removed := w.currentLedger().Deduplicate()
	if removed > 0 {
		w.markDirty(backup.EntryHistory)
	}
	return removed
}

// ResetLedger clears every recorded session. confirm must be true.
func (w *Workspace) ResetLedger(confirm bool) error {
	if !confirm {
		return ErrConfirmationRequired
	}
	w.mu.Lock()
	w.ledger.Clear()
	w.settings.FocusStreakDays = 0
	w.mu.Unlock()
	w.markDirty(backup.EntryHistory, backup.EntrySettings)
	return nil
}

func (w *Workspace) currentLedger() *ledger.Ledger {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.ledger
}
