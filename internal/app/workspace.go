// Package app is the workspace behind both the TUI and the CLI. It owns the
// task list and settings, and wires the store, ledger, focus timer, analysis
// service and notifier together.
package app

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/elicat001/ai-smart-pomodoro-timer/internal/analysis"
	"github.com/elicat001/ai-smart-pomodoro-timer/internal/backup"
	"github.com/elicat001/ai-smart-pomodoro-timer/internal/focus"
	"github.com/elicat001/ai-smart-pomodoro-timer/internal/idset"
	"github.com/elicat001/ai-smart-pomodoro-timer/internal/ledger"
	"github.com/elicat001/ai-smart-pomodoro-timer/internal/logging"
	"github.com/elicat001/ai-smart-pomodoro-timer/internal/model"
	"github.com/elicat001/ai-smart-pomodoro-timer/internal/notify"
	"github.com/elicat001/ai-smart-pomodoro-timer/internal/scheduler"
	"github.com/elicat001/ai-smart-pomodoro-timer/internal/storage"
)

const (
	DefaultFocusMinutes = 25
	DefaultEventBuffer  = 64
)

var (
	ErrTaskNotFound         = errors.New("app: task not found")
	ErrConfirmationRequired = errors.New("app: confirmation required")
)

type Options struct {
	Store      *storage.Store
	Codec      *backup.Codec
	Analysis   *analysis.Service
	Notifier   notify.Notifier
	TickSource focus.TickSource

	DefaultFocusMinutes int
	CompletedHold       int
	DedupWindow         time.Duration
	DailyGoal           int
	// PersistDelay debounces writes. Zero writes synchronously.
	PersistDelay time.Duration
	EventBuffer  int

	Now      func() time.Time
	Location *time.Location
	NewID    func() string
	Logger   *logging.Logger
}

// Workspace is safe for concurrent use.
type Workspace struct {
	store    *storage.Store
	codec    *backup.Codec
	analysis *analysis.Service
	notifier notify.Notifier
	timer    *focus.Timer

	defaultMinutes int
	defaultGoal    int
	dedupWindow    time.Duration
	now            func() time.Time
	loc            *time.Location
	newID          func() string
	logger         *logging.Logger

	mu       sync.Mutex
	tasks    []model.Task
	settings model.AppSettings
	ledger   *ledger.Ledger

	dirty     *idset.Set[string]
	persister *scheduler.Debouncer

	events  chan Event
	dropped atomic.Uint64
}

func New(opts Options) (*Workspace, error) {
	if opts.Store == nil {
		return nil, errors.New("app: store is required")
	}
	if opts.TickSource == nil {
		opts.TickSource = scheduler.NewTicker()
	}
	if opts.Notifier == nil {
		opts.Notifier = notify.Noop{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.NewID == nil {
		opts.NewID = func() string { return uuid.NewString() }
	}
	if opts.DefaultFocusMinutes <= 0 {
		opts.DefaultFocusMinutes = DefaultFocusMinutes
	}
	if opts.DailyGoal <= 0 {
		opts.DailyGoal = model.DefaultDailyGoal
	}
	if opts.EventBuffer <= 0 {
		opts.EventBuffer = DefaultEventBuffer
	}
	if opts.Analysis == nil {
		opts.Analysis = analysis.NewService(analysis.ServiceOptions{Logger: opts.Logger})
	}
	if opts.Codec == nil {
		codec, err := backup.New(backup.Options{Store: opts.Store, OwnerKey: opts.Store.Namespace(), Now: opts.Now, Logger: opts.Logger})
		if err != nil {
			return nil, err
		}
		opts.Codec = codec
	}

	w := &Workspace{
		store:          opts.Store,
		codec:          opts.Codec,
		analysis:       opts.Analysis,
		notifier:       opts.Notifier,
		defaultMinutes: opts.DefaultFocusMinutes,
		defaultGoal:    opts.DailyGoal,
		dedupWindow:    opts.DedupWindow,
		now:            opts.Now,
		loc:            opts.Location,
		newID:          opts.NewID,
		logger:         opts.Logger.WithComponent("app"),
		settings:       model.DefaultSettings(),
		dirty:          idset.New[string](),
		events:         make(chan Event, opts.EventBuffer),
	}
	w.settings.DailyGoalSessions = opts.DailyGoal
	w.ledger = w.newLedger(nil)

	timer, err := focus.New(focus.Options{
		Source:        opts.TickSource,
		CompletedHold: opts.CompletedHold,
		Now:           opts.Now,
		Logger:        opts.Logger,
		OnFinished:    w.onSessionFinished,
	})
	if err != nil {
		return nil, err
	}
	w.timer = timer

	w.persister = scheduler.NewDebouncer(opts.PersistDelay, w.persist)
	w.persister.Start()
	return w, nil
}

func (w *Workspace) newLedger(entries []model.FocusSession) *ledger.Ledger {
	return ledger.New(entries, ledger.Options{
		Window:   w.dedupWindow,
		Now:      w.now,
		Location: w.loc,
		Logger:   w.logger,
	})
}

// Load replaces the in-memory state with what the store holds. Missing or
// undecodable entries fall back to defaults; the problems are returned
// joined, and the workspace stays usable either way.
func (w *Workspace) Load(ctx context.Context) error {
	var problems []error
	keep := func(err error) {
		if err != nil {
			problems = append(problems, err)
		}
	}

	tasks, err := storage.GetOr(ctx, w.store, backup.EntryTasks, []model.Task{})
	keep(err)
	history, err := storage.GetOr(ctx, w.store, backup.EntryHistory, []model.FocusSession{})
	keep(err)
	goal, err := storage.GetOr(ctx, w.store, backup.EntryDailyGoal, w.defaultGoal)
	keep(err)
	prefs, err := storage.GetOr(ctx, w.store, backup.EntrySettings, model.DefaultSettings().Preferences())
	keep(err)
	usage, err := storage.GetOr(ctx, w.store, backup.EntryAppStats, model.UsageStats{})
	keep(err)

	if goal < 1 {
		goal = w.defaultGoal
	}
	now := w.now()

	w.mu.Lock()
	w.tasks = tasks
	w.ledger = w.newLedger(history)
	w.settings = model.AppSettings{
		DailyGoalSessions: goal,
		FocusStreakDays:   w.ledger.StreakDays(),
		Provider:          prefs.Provider,
		Usage:             usage,
	}
	w.settings.Usage.Touch(now)
	w.settings.Usage.TotalTasksEverSeen = max(w.settings.Usage.TotalTasksEverSeen, len(tasks))
	w.settings.Usage.TotalSessionsEverSeen = max(w.settings.Usage.TotalSessionsEverSeen, len(history))
	w.mu.Unlock()
	w.markDirty(backup.EntryAppStats)

	for _, p := range problems {
		w.logger.Warn("load fell back to defaults", "error", p)
	}
	w.logger.Info("workspace loaded", "tasks", len(tasks), "sessions", len(history))
	return errors.Join(problems...)
}

func (w *Workspace) Settings() model.AppSettings {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.settings
}

func (w *Workspace) ProviderName() model.Source {
	return w.analysis.ProviderName()
}

func (w *Workspace) BackupReminderDue() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.settings.Usage.ShouldRemindBackup()
}

// Close cancels analyses, discards any countdown and flushes pending writes.
func (w *Workspace) Close() error {
	w.analysis.CancelAll()
	w.timer.Stop()
	w.persister.Stop()
	w.logger.Info("workspace closed", "events_dropped", w.dropped.Load())
	return nil
}

func (w *Workspace) today() string {
	return model.CalendarDateOf(w.now(), w.loc)
}
