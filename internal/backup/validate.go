package backup

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/elicat001/ai-smart-pomodoro-timer/internal/model"
)

// Validator checks that a raw entry has the shape its key expects.
type Validator func(raw json.RawMessage) error

var errNullEntry = errors.New("value is null")

func DefaultValidators() map[string]Validator {
	return map[string]Validator{
		EntryTasks:     rejectNull(validateTasks),
		EntryHistory:   rejectNull(validateHistory),
		EntryDailyGoal: rejectNull(validateDailyGoal),
		EntrySettings:  rejectNull(validateSettings),
		EntryAppStats:  rejectNull(validateAppStats),
	}
}

// rejectNull fails a missing or null value before v sees it; json.Unmarshal
// would accept null into any of the entry shapes.
func rejectNull(v Validator) Validator {
	return func(raw json.RawMessage) error {
		trimmed := bytes.TrimSpace(raw)
		if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
			return errNullEntry
		}
		return v(raw)
	}
}

func validateTasks(raw json.RawMessage) error {
	var tasks []model.Task
	if err := json.Unmarshal(raw, &tasks); err != nil {
		return err
	}
	seen := make(map[string]struct{}, len(tasks))
	for i, task := range tasks {
		if err := task.Validate(); err != nil {
			return fmt.Errorf("task %d: %w", i, err)
		}
		if _, dup := seen[task.ID]; dup {
			return fmt.Errorf("task %d: duplicate id %q", i, task.ID)
		}
		seen[task.ID] = struct{}{}
	}
	return nil
}

func validateHistory(raw json.RawMessage) error {
	var sessions []model.FocusSession
	if err := json.Unmarshal(raw, &sessions); err != nil {
		return err
	}
	for i, s := range sessions {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("session %d: %w", i, err)
		}
	}
	return nil
}

func validateDailyGoal(raw json.RawMessage) error {
	var goal int
	if err := json.Unmarshal(raw, &goal); err != nil {
		return err
	}
	if goal < 1 {
		return errors.New("daily goal must be at least 1")
	}
	return nil
}

func validateSettings(raw json.RawMessage) error {
	var prefs model.Preferences
	if err := json.Unmarshal(raw, &prefs); err != nil {
		return err
	}
	if prefs.FocusStreakDays < 0 {
		return errors.New("focus streak cannot be negative")
	}
	return nil
}

func validateAppStats(raw json.RawMessage) error {
	var usage model.UsageStats
	if err := json.Unmarshal(raw, &usage); err != nil {
		return err
	}
	if usage.DaysUsed < 0 || usage.TotalTasksEverSeen < 0 || usage.TotalSessionsEverSeen < 0 {
		return errors.New("usage counters cannot be negative")
	}
	return nil
}
