package app

import (
	"context"
	"fmt"
	"time"

	"github.com/elicat001/ai-smart-pomodoro-timer/internal/analysis"
	"github.com/elicat001/ai-smart-pomodoro-timer/internal/backup"
	"github.com/elicat001/ai-smart-pomodoro-timer/internal/config"
	"github.com/elicat001/ai-smart-pomodoro-timer/internal/focus"
	"github.com/elicat001/ai-smart-pomodoro-timer/internal/ledger"
	"github.com/elicat001/ai-smart-pomodoro-timer/internal/logging"
	"github.com/elicat001/ai-smart-pomodoro-timer/internal/model"
	"github.com/elicat001/ai-smart-pomodoro-timer/internal/notify"
	"github.com/elicat001/ai-smart-pomodoro-timer/internal/storage"
)

// Runtime is a workspace plus the resources opened for it.
type Runtime struct {
	*Workspace
	Config *config.Config
	medium *storage.SQLiteMedium
}

// RuntimeOptions overrides parts of what Open builds from the config.
type RuntimeOptions struct {
	TickSource focus.TickSource
	Notifier   notify.Notifier
	Now        func() time.Time
}

// Open builds a workspace from cfg: SQLite medium, value transform, store,
// backup codec, analysis provider and notifier. The workspace is loaded
// before it is returned; load problems are logged and do not fail Open.
func Open(cfg *config.Config, logger *logging.Logger, ro RuntimeOptions) (*Runtime, error) {
	medium, err := storage.OpenSQLite(cfg.DataPath, cfg.Storage.QuotaBytes)
	if err != nil {
		return nil, err
	}
	rt, err := openWith(cfg, medium, logger, ro)
	if err != nil {
		_ = medium.Close()
		return nil, err
	}
	rt.medium = medium
	return rt, nil
}

func openWith(cfg *config.Config, medium storage.Medium, logger *logging.Logger, ro RuntimeOptions) (*Runtime, error) {
	transform, err := TransformFor(cfg)
	if err != nil {
		return nil, err
	}
	store, err := storage.NewStore(medium, storage.Options{
		Namespace: cfg.Namespace,
		Transform: transform,
		Logger:    logger,
	})
	if err != nil {
		return nil, err
	}
	codec, err := backup.New(backup.Options{
		Store:    store,
		OwnerKey: cfg.Storage.Secret,
		Now:      ro.Now,
		Logger:   logger,
	})
	if err != nil {
		return nil, err
	}

	settings := model.ProviderSettings{
		Provider: cfg.Analysis.Provider,
		APIKey:   cfg.Analysis.APIKey,
		Model:    cfg.Analysis.Model,
		Enabled:  cfg.Analysis.Enabled,
	}
	var chatOpts []analysis.ChatOption
	if cfg.Analysis.Endpoint != "" {
		chatOpts = append(chatOpts, analysis.WithEndpoint(cfg.Analysis.Endpoint))
	}
	chatOpts = append(chatOpts, analysis.WithTimeout(cfg.AnalysisTimeout()))
	provider, err := analysis.NewFromSettings(settings, chatOpts...)
	if err != nil {
		return nil, err
	}
	service := analysis.NewService(analysis.ServiceOptions{
		Primary: provider,
		Timeout: cfg.AnalysisTimeout(),
		Logger:  logger,
	})

	notifier := ro.Notifier
	if notifier == nil {
		notifier = notify.Noop{}
		if cfg.Notifications.Desktop {
			notifier = notify.Exec{}
		}
	}

	ws, err := New(Options{
		Store:               store,
		Codec:               codec,
		Analysis:            service,
		Notifier:            notifier,
		TickSource:          ro.TickSource,
		DefaultFocusMinutes: cfg.Focus.DefaultMinutes,
		CompletedHold:       cfg.Focus.CompletedHoldSeconds,
		DedupWindow:         DedupWindowFor(cfg),
		DailyGoal:           cfg.Goal.DailySessions,
		PersistDelay:        cfg.PersistDebounce(),
		Now:                 ro.Now,
		Logger:              logger,
	})
	if err != nil {
		return nil, err
	}
	_ = ws.Load(context.Background())
	return &Runtime{Workspace: ws, Config: cfg}, nil
}

// DedupWindowFor maps ledger.dedup_window_seconds to a ledger window. Zero
// keeps only exact repeats out, which ledger.Options spells ExactOnly.
func DedupWindowFor(cfg *config.Config) time.Duration {
	if cfg.Ledger.DedupWindowSeconds == 0 {
		return ledger.ExactOnly
	}
	return cfg.DedupWindow()
}

// TransformFor picks the value transform named by the storage config.
func TransformFor(cfg *config.Config) (storage.Transform, error) {
	switch {
	case cfg.Storage.Sealed:
		return storage.NewSealed(cfg.Storage.Secret, cfg.Namespace)
	case cfg.Storage.Obfuscate:
		return storage.NewXOR(cfg.Storage.Secret)
	default:
		return storage.Identity{}, nil
	}
}

// Close flushes the workspace and closes the medium.
func (r *Runtime) Close() error {
	err := r.Workspace.Close()
	if r.medium != nil {
		if cerr := r.medium.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close store: %w", cerr)
		}
	}
	return err
}
