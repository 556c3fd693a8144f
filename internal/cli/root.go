// Package cli wires the cobra command tree to the workspace.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/elicat001/ai-smart-pomodoro-timer/internal/app"
	"github.com/elicat001/ai-smart-pomodoro-timer/internal/config"
	"github.com/elicat001/ai-smart-pomodoro-timer/internal/logging"
)

// env is the state shared by one command tree.
type env struct {
	v       *viper.Viper
	cfgFile string
	cfg     *config.Config
	ro      app.RuntimeOptions
}

// NewRootCmd builds a fresh command tree with its own viper instance.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&env{v: viper.New()})
}

func newRootCmd(e *env) *cobra.Command {
	root := &cobra.Command{
		Use:   config.AppName,
		Short: "Pomodoro focus timer with AI task planning",
		Long: `aipomodoro keeps a prioritized task list, breaks tasks into timed steps
with a local or remote analyzer, and runs focus countdowns that feed a
session history with streaks and daily goals.

Run without a subcommand to open the terminal UI.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return e.loadConfig()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd, e)
		},
	}
	root.PersistentFlags().StringVarP(&e.cfgFile, "config", "c", "", "config file (default is $XDG_CONFIG_HOME/aipomodoro/config.yaml)")

	root.AddCommand(
		newTUICmd(e),
		newTaskCmd(e),
		newFocusCmd(e),
		newStatsCmd(e),
		newLedgerCmd(e),
		newExportCmd(e),
		newImportCmd(e),
		newFootprintCmd(e),
		newConfigCmd(e),
	)
	return root
}

// Execute runs the command tree against os.Args.
func Execute() error {
	return NewRootCmd().Execute()
}

func (e *env) loadConfig() error {
	if err := config.Init(e.v, e.cfgFile); err != nil {
		return err
	}
	cfg, err := config.Load(e.v)
	if err != nil {
		return err
	}
	e.cfg = cfg
	return nil
}

// session is an opened runtime plus the logger it writes to.
type session struct {
	*app.Runtime
	logger *logging.Logger
}

func (s *session) Close() error {
	err := s.Runtime.Close()
	if lerr := s.logger.Close(); lerr != nil && err == nil {
		err = lerr
	}
	return err
}

func (e *env) open() (*session, error) {
	logger, err := logging.New(e.cfg.LogFile(), e.cfg.Logging.Level)
	if err != nil {
		return nil, err
	}
	rt, err := app.Open(e.cfg, logger, e.ro)
	if err != nil {
		_ = logger.Close()
		return nil, fmt.Errorf("open workspace: %w", err)
	}
	return &session{Runtime: rt, logger: logger}, nil
}

// withSession opens the workspace for the duration of fn.
func (e *env) withSession(fn func(*session) error) (err error) {
	s, err := e.open()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(s)
}
