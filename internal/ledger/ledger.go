// Package ledger keeps the most-recent-first log of completed focus sessions
// and derives daily, weekly, streak and badge statistics from it.
package ledger

import (
	"slices"
	"sync"
	"time"

	"github.com/elicat001/ai-smart-pomodoro-timer/internal/logging"
	"github.com/elicat001/ai-smart-pomodoro-timer/internal/model"
)

const (
	DefaultWindow = 5 * time.Second
	// ExactOnly suppresses a completion only when an entry with the same
	// labels finished at the same instant.
	ExactOnly = time.Nanosecond
)

type Options struct {
	// Window is how close two completions of the same labels may be before
	// the later one is dropped. Zero means DefaultWindow; negative disables.
	Window   time.Duration
	Now      func() time.Time
	Location *time.Location
	Logger   *logging.Logger
}

type Ledger struct {
	mu      sync.RWMutex
	entries []model.FocusSession
	window  time.Duration
	now     func() time.Time
	loc     *time.Location
	logger  *logging.Logger
}

type DayStats struct {
	Sessions int `json:"sessions"`
	Minutes  int `json:"minutes"`
}

type DayPoint struct {
	DayLabel string `json:"day"`
	Date     string `json:"date"`
	Count    int    `json:"count"`
	Minutes  int    `json:"minutes"`
}

// New builds a ledger over entries in any order. They are kept most recent
// first.
func New(entries []model.FocusSession, opts Options) *Ledger {
	window := opts.Window
	if window == 0 {
		window = DefaultWindow
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	sorted := append([]model.FocusSession(nil), entries...)
	slices.SortStableFunc(sorted, func(a, b model.FocusSession) int {
		return b.CompletedAt.Compare(a.CompletedAt)
	})
	return &Ledger{
		entries: sorted,
		window:  window,
		now:     now,
		loc:     loc,
		logger:  opts.Logger.WithComponent("ledger"),
	}
}

// Record prepends s unless an entry with the same task and subtask labels
// completed within the window. It reports whether s was kept.
func (l *Ledger) Record(s model.FocusSession) bool {
	if s.CompletedAt.IsZero() {
		s.CompletedAt = l.now()
	}
	if s.CalendarDate == "" {
		s.CalendarDate = model.CalendarDateOf(s.CompletedAt, l.loc)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.window >= 0 {
		for _, existing := range l.entries {
			if existing.TaskLabel != s.TaskLabel || existing.SubtaskLabel != s.SubtaskLabel {
				continue
			}
			gap := s.CompletedAt.Sub(existing.CompletedAt)
			if gap < 0 {
				gap = -gap
			}
			if gap <= l.window {
				l.logger.Info("duplicate session suppressed",
					"task", s.TaskLabel, "subtask", s.SubtaskLabel, "gap", gap.String())
				return false
			}
		}
	}
	l.entries = append([]model.FocusSession{s}, l.entries...)
	return true
}

// Entries returns a copy, most recent first.
func (l *Ledger) Entries() []model.FocusSession {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]model.FocusSession(nil), l.entries...)
}

func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

func (l *Ledger) today() string {
	return model.CalendarDateOf(l.now(), l.loc)
}

func (l *Ledger) TodayStats() DayStats {
	return l.DayStats(l.today())
}

func (l *Ledger) DayStats(date string) DayStats {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out DayStats
	for _, e := range l.entries {
		if e.CalendarDate == date {
			out.Sessions++
			out.Minutes += e.DurationMinutes
		}
	}
	return out
}

// WeeklySeries covers the trailing seven days, oldest first, today last.
func (l *Ledger) WeeklySeries() []DayPoint {
	now := l.now().In(l.loc)
	byDate := l.totalsByDate()

	out := make([]DayPoint, 0, 7)
	for i := 6; i >= 0; i-- {
		day := now.AddDate(0, 0, -i)
		date := day.Format(model.DateLayout)
		totals := byDate[date]
		out = append(out, DayPoint{
			DayLabel: day.Format("Mon"),
			Date:     date,
			Count:    totals.Sessions,
			Minutes:  totals.Minutes,
		})
	}
	return out
}

// StreakDays counts consecutive days with a session, ending today, or
// yesterday when nothing has been completed yet today.
func (l *Ledger) StreakDays() int {
	byDate := l.totalsByDate()
	day := l.now().In(l.loc)
	if byDate[day.Format(model.DateLayout)].Sessions == 0 {
		day = day.AddDate(0, 0, -1)
	}
	streak := 0
	for byDate[day.Format(model.DateLayout)].Sessions > 0 {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}

func (l *Ledger) totalsByDate() map[string]DayStats {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make(map[string]DayStats)
	for _, e := range l.entries {
		d := out[e.CalendarDate]
		d.Sessions++
		d.Minutes += e.DurationMinutes
		out[e.CalendarDate] = d
	}
	return out
}

// Achievements evaluates the badge thresholds against this ledger.
func (l *Ledger) Achievements(dailyGoal, streakDays int) []Badge {
	return Achievements(l.Len(), l.TodayStats().Sessions, dailyGoal, streakDays)
}

// Deduplicate collapses entries sharing date, labels, hour and minute,
// keeping the most recent one. It returns how many entries were removed.
func (l *Ledger) Deduplicate() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	seen := make(map[string]struct{}, len(l.entries))
	kept := make([]model.FocusSession, 0, len(l.entries))
	for _, e := range l.entries {
		sig := e.CalendarDate + "\x00" + e.TaskLabel + "\x00" + e.SubtaskLabel + "\x00" + e.CompletedAt.In(l.loc).Format("15:04")
		if _, dup := seen[sig]; dup {
			continue
		}
		seen[sig] = struct{}{}
		kept = append(kept, e)
	}
	removed := len(l.entries) - len(kept)
	l.entries = kept
	if removed > 0 {
		l.logger.Info("ledger deduplicated", "removed", removed, "remaining", len(kept))
	}
	return removed
}

// Clear empties the ledger. Callers confirm with the user first.
func (l *Ledger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
	l.logger.Warn("ledger cleared")
}
