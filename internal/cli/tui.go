package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/elicat001/ai-smart-pomodoro-timer/internal/update"
)

func newTUICmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the terminal UI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd, e)
		},
	}
}

func runTUI(cmd *cobra.Command, e *env) error {
	return e.withSession(func(s *session) error {
		m := update.NewModel(s.Workspace, update.Options{StatusTTL: e.cfg.StatusDismiss()})
		program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithInput(cmd.InOrStdin()), tea.WithOutput(cmd.OutOrStdout()))
		if _, err := program.Run(); err != nil {
			return fmt.Errorf("tui: %w", err)
		}
		return nil
	})
}
