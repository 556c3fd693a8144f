package config

import (
	"fmt"
	"slices"
	"strings"
)

// ValidationError is a single invalid field.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d validation errors:\n", len(e))
	for i, err := range e {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, err.Error())
	}
	return sb.String()
}

func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

func ValidProviders() []string {
	return []string{"local", "openai", "deepseek"}
}

// Validate returns every invalid field.
func (c *Config) Validate() []ValidationError {
	var errs []ValidationError
	add := func(field string, value any, msg string) {
		errs = append(errs, ValidationError{Field: field, Value: value, Message: msg})
	}

	if strings.TrimSpace(c.Namespace) == "" {
		add("namespace", c.Namespace, "must not be empty")
	}
	if strings.TrimSpace(c.DataPath) == "" {
		add("data_path", c.DataPath, "must not be empty")
	}
	if c.Storage.QuotaBytes < 0 {
		add("storage.quota_bytes", c.Storage.QuotaBytes, "must be zero or positive")
	}
	if c.Storage.Secret == "" {
		add("storage.secret", c.Storage.Secret, "must not be empty")
	}
	if c.Focus.DefaultMinutes <= 0 {
		add("focus.default_minutes", c.Focus.DefaultMinutes, "must be positive")
	}
	if c.Focus.CompletedHoldSeconds <= 0 {
		add("focus.completed_hold_seconds", c.Focus.CompletedHoldSeconds, "must be positive")
	}
	if c.Goal.DailySessions < 1 {
		add("goal.daily_sessions", c.Goal.DailySessions, "must be at least 1")
	}
	if !slices.Contains(ValidProviders(), strings.ToLower(c.Analysis.Provider)) {
		add("analysis.provider", c.Analysis.Provider, "must be one of "+strings.Join(ValidProviders(), ", "))
	}
	if c.Analysis.TimeoutSeconds <= 0 {
		add("analysis.timeout_seconds", c.Analysis.TimeoutSeconds, "must be positive")
	}
	if c.Persist.DebounceMs < 0 {
		add("persist.debounce_ms", c.Persist.DebounceMs, "must be zero or positive")
	}
	if c.UI.StatusDismissSeconds <= 0 {
		add("ui.status_dismiss_seconds", c.UI.StatusDismissSeconds, "must be positive")
	}
	if !slices.Contains(ValidLogLevels(), strings.ToLower(c.Logging.Level)) {
		add("logging.level", c.Logging.Level, "must be one of "+strings.Join(ValidLogLevels(), ", "))
	}
	return errs
}
