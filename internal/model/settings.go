package model

import (
	"errors"
	"time"
)

const (
	DefaultDailyGoal   = 4
	backupReminderDays = 3
	backupReminderTask = 5
	backupReminderRuns = 10
)

type ProviderSettings struct {
	Provider string `json:"provider"`
	APIKey   string `json:"apiKey,omitempty"`
	Model    string `json:"model,omitempty"`
	Enabled  bool   `json:"enabled"`
}

type UsageStats struct {
	DaysUsed              int        `json:"daysUsed"`
	TotalTasksEverSeen    int        `json:"totalTasks"`
	TotalSessionsEverSeen int        `json:"totalSessions"`
	FirstUseAt            *time.Time `json:"firstUse,omitempty"`
}

// Touch stamps the first use and refreshes DaysUsed.
func (u *UsageStats) Touch(now time.Time) {
	if u.FirstUseAt == nil {
		at := now
		u.FirstUseAt = &at
	}
	u.DaysUsed = u.DaysUsedAt(now)
}

// DaysUsedAt is the number of whole days since first use, at least 1.
func (u UsageStats) DaysUsedAt(now time.Time) int {
	if u.FirstUseAt == nil {
		return 1
	}
	days := int(now.Sub(*u.FirstUseAt) / (24 * time.Hour))
	if days < 1 {
		return 1
	}
	return days
}

func (u UsageStats) ShouldRemindBackup() bool {
	return u.DaysUsed >= backupReminderDays ||
		u.TotalTasksEverSeen >= backupReminderTask ||
		u.TotalSessionsEverSeen >= backupReminderRuns
}

// Preferences is what persists under the settings key.
type Preferences struct {
	FocusStreakDays int              `json:"focusStreak"`
	Provider        ProviderSettings `json:"aiSettings"`
}

type AppSettings struct {
	DailyGoalSessions int
	FocusStreakDays   int
	Provider          ProviderSettings
	Usage             UsageStats
}

func DefaultSettings() AppSettings {
	return AppSettings{
		DailyGoalSessions: DefaultDailyGoal,
		Provider:          ProviderSettings{Provider: string(SourceLocal)},
	}
}

func (s AppSettings) Validate() error {
	if s.DailyGoalSessions < 1 {
		return errors.New("model: daily goal must be at least 1")
	}
	if s.FocusStreakDays < 0 {
		return errors.New("model: focus streak cannot be negative")
	}
	return nil
}

// AdjustDailyGoal moves the goal by delta, never below 1.
func (s *AppSettings) AdjustDailyGoal(delta int) int {
	s.DailyGoalSessions += delta
	if s.DailyGoalSessions < 1 {
		s.DailyGoalSessions = 1
	}
	return s.DailyGoalSessions
}

func (s AppSettings) Preferences() Preferences {
	return Preferences{FocusStreakDays: s.FocusStreakDays, Provider: s.Provider}
}
