package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestLoadDefaultsWithoutConfigFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	v := viper.New()
	if err := Init(v, ""); err != nil {
		t.Fatalf("init: %v", err)
	}
	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Namespace != "aipomodoro" || cfg.Goal.DailySessions != 4 || cfg.Focus.DefaultMinutes != 25 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.DedupWindow() != 5*time.Second || cfg.AnalysisTimeout() != 15*time.Second || cfg.StatusDismiss() != 4*time.Second {
		t.Fatalf("unexpected durations: %v %v %v", cfg.DedupWindow(), cfg.AnalysisTimeout(), cfg.StatusDismiss())
	}
}

func TestEnvOverridesDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("AIPOMODORO_GOAL_DAILY_SESSIONS", "8")
	t.Setenv("AIPOMODORO_ANALYSIS_PROVIDER", "deepseek")
	t.Setenv("AIPOMODORO_NOTIFICATIONS_DESKTOP", "true")

	v := viper.New()
	if err := Init(v, ""); err != nil {
		t.Fatalf("init: %v", err)
	}
	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Goal.DailySessions != 8 || cfg.Analysis.Provider != "deepseek" || !cfg.Notifications.Desktop {
		t.Fatalf("env not applied: %+v", cfg)
	}
}

func TestConfigFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "goal:\n  daily_sessions: 6\nledger:\n  dedup_window_seconds: -1\nlogging:\n  level: debug\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	v := viper.New()
	if err := Init(v, path); err != nil {
		t.Fatalf("init: %v", err)
	}
	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Goal.DailySessions != 6 || cfg.DedupWindow() >= 0 || cfg.Logging.Level != "debug" {
		t.Fatalf("file not applied: %+v", cfg)
	}
	if cfg.Focus.DefaultMinutes != 25 {
		t.Fatalf("expected untouched default, got %d", cfg.Focus.DefaultMinutes)
	}
}

func TestExplicitMissingConfigFileFails(t *testing.T) {
	v := viper.New()
	if err := Init(v, filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := Default()
	cfg.Goal.DailySessions = 0
	cfg.Focus.DefaultMinutes = -5
	cfg.Analysis.Provider = "gemini"
	cfg.Logging.Level = "loud"

	errs := cfg.Validate()
	if len(errs) != 4 {
		t.Fatalf("expected 4 errors, got %d: %v", len(errs), ValidationErrors(errs))
	}
	msg := ValidationErrors(errs).Error()
	for _, field := range []string{"goal.daily_sessions", "focus.default_minutes", "analysis.provider", "logging.level"} {
		if !strings.Contains(msg, field) {
			t.Fatalf("expected %s in %q", field, msg)
		}
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.Set("ui.status_dismiss_seconds", 0)
	_, err := Load(v)
	var verrs ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) != 1 || verrs[0].Field != "ui.status_dismiss_seconds" {
		t.Fatalf("expected one validation error, got %v", err)
	}
}

func TestWriteDefaultRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aipomodoro", "config.yaml")
	if err := WriteDefault(path); err != nil {
		t.Fatalf("write default: %v", err)
	}
	if err := WriteDefault(path); err == nil {
		t.Fatal("expected second write to refuse overwriting")
	}

	v := viper.New()
	if err := Init(v, path); err != nil {
		t.Fatalf("init: %v", err)
	}
	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := Default()
	if cfg.Storage != want.Storage || cfg.Analysis != want.Analysis || cfg.Persist != want.Persist {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", cfg, want)
	}
}
