// Package config loads aipomodoro settings from defaults, a YAML config file
// and AIPOMODORO_* environment variables through viper.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	AppName   = "aipomodoro"
	EnvPrefix = "AIPOMODORO"
)

// Config is the complete application configuration.
type Config struct {
	Namespace     string              `mapstructure:"namespace" yaml:"namespace"`
	DataPath      string              `mapstructure:"data_path" yaml:"data_path"`
	Storage       StorageConfig       `mapstructure:"storage" yaml:"storage"`
	Focus         FocusConfig         `mapstructure:"focus" yaml:"focus"`
	Ledger        LedgerConfig        `mapstructure:"ledger" yaml:"ledger"`
	Goal          GoalConfig          `mapstructure:"goal" yaml:"goal"`
	Analysis      AnalysisConfig      `mapstructure:"analysis" yaml:"analysis"`
	Notifications NotificationsConfig `mapstructure:"notifications" yaml:"notifications"`
	Persist       PersistConfig       `mapstructure:"persist" yaml:"persist"`
	UI            UIConfig            `mapstructure:"ui" yaml:"ui"`
	Logging       LoggingConfig       `mapstructure:"logging" yaml:"logging"`
}

// StorageConfig controls the local key-value medium.
type StorageConfig struct {
	// QuotaBytes caps the summed key+value size. 0 disables the cap.
	QuotaBytes int64 `mapstructure:"quota_bytes" yaml:"quota_bytes"`
	// Obfuscate applies the XOR transform to stored values.
	Obfuscate bool `mapstructure:"obfuscate" yaml:"obfuscate"`
	// Secret is the XOR key and the owner key of exported backups.
	Secret string `mapstructure:"secret" yaml:"secret"`
	// Sealed switches stored values to authenticated encryption.
	Sealed bool `mapstructure:"sealed" yaml:"sealed"`
}

type FocusConfig struct {
	// DefaultMinutes is used when a task has no estimate.
	DefaultMinutes       int `mapstructure:"default_minutes" yaml:"default_minutes"`
	CompletedHoldSeconds int `mapstructure:"completed_hold_seconds" yaml:"completed_hold_seconds"`
}

type LedgerConfig struct {
	// DedupWindowSeconds drops repeat completions of the same target inside
	// the window. Zero drops only completions at the same instant; negative
	// disables the check.
	DedupWindowSeconds int `mapstructure:"dedup_window_seconds" yaml:"dedup_window_seconds"`
}

type GoalConfig struct {
	DailySessions int `mapstructure:"daily_sessions" yaml:"daily_sessions"`
}

// AnalysisConfig selects the task decomposition provider.
// Provider is one of: local, openai, deepseek.
type AnalysisConfig struct {
	Provider       string `mapstructure:"provider" yaml:"provider"`
	APIKey         string `mapstructure:"api_key" yaml:"api_key"`
	Model          string `mapstructure:"model" yaml:"model"`
	Endpoint       string `mapstructure:"endpoint" yaml:"endpoint"`
	Enabled        bool   `mapstructure:"enabled" yaml:"enabled"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
}

type NotificationsConfig struct {
	Desktop bool `mapstructure:"desktop" yaml:"desktop"`
}

type PersistConfig struct {
	// DebounceMs coalesces bursts of writes. 0 writes synchronously.
	DebounceMs int `mapstructure:"debounce_ms" yaml:"debounce_ms"`
}

type UIConfig struct {
	StatusDismissSeconds int `mapstructure:"status_dismiss_seconds" yaml:"status_dismiss_seconds"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	// File is the log destination. Empty means <data dir>/aipomodoro.log.
	File string `mapstructure:"file" yaml:"file"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Namespace: AppName,
		DataPath:  filepath.Join(DataDir(), "store.db"),
		Storage: StorageConfig{
			QuotaBytes: 5 * 1024 * 1024,
			Obfuscate:  true,
			Secret:     "aipomodoro-local-key",
		},
		Focus: FocusConfig{
			DefaultMinutes:       25,
			CompletedHoldSeconds: 3,
		},
		Ledger:        LedgerConfig{DedupWindowSeconds: 5},
		Goal:          GoalConfig{DailySessions: 4},
		Analysis:      AnalysisConfig{Provider: "local", TimeoutSeconds: 15},
		Notifications: NotificationsConfig{Desktop: false},
		Persist:       PersistConfig{DebounceMs: 300},
		UI:            UIConfig{StatusDismissSeconds: 4},
		Logging:       LoggingConfig{Level: "info"},
	}
}

func (c *Config) DedupWindow() time.Duration {
	return time.Duration(c.Ledger.DedupWindowSeconds) * time.Second
}

func (c *Config) AnalysisTimeout() time.Duration {
	return time.Duration(c.Analysis.TimeoutSeconds) * time.Second
}

func (c *Config) PersistDebounce() time.Duration {
	return time.Duration(c.Persist.DebounceMs) * time.Millisecond
}

func (c *Config) StatusDismiss() time.Duration {
	return time.Duration(c.UI.StatusDismissSeconds) * time.Second
}

// LogFile resolves the log destination.
func (c *Config) LogFile() string {
	if strings.TrimSpace(c.Logging.File) != "" {
		return c.Logging.File
	}
	return filepath.Join(filepath.Dir(c.DataPath), AppName+".log")
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("namespace", d.Namespace)
	v.SetDefault("data_path", d.DataPath)

	v.SetDefault("storage.quota_bytes", d.Storage.QuotaBytes)
	v.SetDefault("storage.obfuscate", d.Storage.Obfuscate)
	v.SetDefault("storage.secret", d.Storage.Secret)
	v.SetDefault("storage.sealed", d.Storage.Sealed)

	v.SetDefault("focus.default_minutes", d.Focus.DefaultMinutes)
	v.SetDefault("focus.completed_hold_seconds", d.Focus.CompletedHoldSeconds)

	v.SetDefault("ledger.dedup_window_seconds", d.Ledger.DedupWindowSeconds)
	v.SetDefault("goal.daily_sessions", d.Goal.DailySessions)

	v.SetDefault("analysis.provider", d.Analysis.Provider)
	v.SetDefault("analysis.api_key", d.Analysis.APIKey)
	v.SetDefault("analysis.model", d.Analysis.Model)
	v.SetDefault("analysis.endpoint", d.Analysis.Endpoint)
	v.SetDefault("analysis.enabled", d.Analysis.Enabled)
	v.SetDefault("analysis.timeout_seconds", d.Analysis.TimeoutSeconds)

	v.SetDefault("notifications.desktop", d.Notifications.Desktop)
	v.SetDefault("persist.debounce_ms", d.Persist.DebounceMs)
	v.SetDefault("ui.status_dismiss_seconds", d.UI.StatusDismissSeconds)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.file", d.Logging.File)
}

// Init prepares v: defaults, config file search paths and the environment.
// cfgFile, when set, replaces the search. A missing config file is not an
// error.
func Init(v *viper.Viper, cfgFile string) error {
	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(ConfigDir())
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	// AIPOMODORO_ANALYSIS_API_KEY for analysis.api_key
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// Load unmarshals v into a Config and validates it.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}
	return &cfg, nil
}

// ConfigDir is $XDG_CONFIG_HOME/aipomodoro, falling back to ~/.config/aipomodoro.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "." + AppName
	}
	return filepath.Join(home, ".config", AppName)
}

func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// DataDir is $XDG_DATA_HOME/aipomodoro, falling back to ~/.local/share/aipomodoro.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "." + AppName
	}
	return filepath.Join(home, ".local", "share", AppName)
}

// Marshal renders cfg as YAML.
func Marshal(cfg *Config) ([]byte, error) {
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return out, nil
}

// WriteDefault writes the default configuration to path. An existing file is
// left alone and reported as an error.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	body, err := Marshal(Default())
	if err != nil {
		return err
	}
	header := "# aipomodoro configuration\n# Environment overrides: AIPOMODORO_<SECTION>_<KEY>, e.g. AIPOMODORO_ANALYSIS_API_KEY\n\n"
	if err := os.WriteFile(path, append([]byte(header), body...), 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}
