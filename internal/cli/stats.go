package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/elicat001/ai-smart-pomodoro-timer/internal/app"
)

func newStatsCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show today's progress, streak and the last seven days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.withSession(func(s *session) error {
				out := cmd.OutOrStdout()
				today := s.TodayStats()
				settings := s.Settings()
				tasks := s.TaskStats()

				fmt.Fprintf(out, "Today:    %d/%d sessions, %d min\n", today.Sessions, settings.DailyGoalSessions, today.Minutes)
				fmt.Fprintf(out, "Streak:   %d days\n", s.StreakDays())
				fmt.Fprintf(out, "Lifetime: %d sessions\n", settings.Usage.TotalSessionsEverSeen)
				fmt.Fprintf(out, "Tasks:    %d total, %d done, %d pending\n", tasks.Total, tasks.Completed, tasks.Pending)
				fmt.Fprintln(out)
				for _, p := range s.WeeklySeries() {
					fmt.Fprintf(out, "%-4s %s %3d sessions %4d min\n", p.DayLabel, p.Date, p.Count, p.Minutes)
				}
				if badges := s.Achievements(); len(badges) > 0 {
					fmt.Fprintln(out)
					fmt.Fprintln(out, "Achievements:")
					for _, b := range badges {
						fmt.Fprintf(out, "  - %s\n", b.Title)
					}
				}
				if s.BackupReminderDue() {
					fmt.Fprintln(out)
					fmt.Fprintln(out, "Tip: run `aipomodoro export` to back up your data.")
				}
				return nil
			})
		},
	}
}

func newLedgerCmd(e *env) *cobra.Command {
	ledgerCmd := &cobra.Command{
		Use:   "ledger",
		Short: "Inspect or maintain the session history",
	}

	var limit int
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded sessions, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.withSession(func(s *session) error {
				sessions := s.Sessions()
				if len(sessions) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No sessions.")
					return nil
				}
				if limit > 0 && len(sessions) > limit {
					sessions = sessions[:limit]
				}
				for _, fs := range sessions {
					label := fs.TaskLabel
					if fs.SubtaskLabel != "" {
						label += " / " + fs.SubtaskLabel
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s %s %3d min  %s\n",
						fs.CalendarDate, fs.CompletedAt.Format("15:04"), fs.DurationMinutes, label)
				}
				return nil
			})
		},
	}
	listCmd.Flags().IntVarP(&limit, "limit", "n", 20, "show at most n sessions (0 for all)")

	dedupeCmd := &cobra.Command{
		Use:   "dedupe",
		Short: "Remove duplicate sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.withSession(func(s *session) error {
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d duplicate sessions.\n", s.DeduplicateLedger())
				return nil
			})
		},
	}

	var yes bool
	resetCmd := &cobra.Command{
		Use:   "reset",
		Short: "Clear all recorded sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.withSession(func(s *session) error {
				if err := s.ResetLedger(yes); err != nil {
					if errors.Is(err, app.ErrConfirmationRequired) {
						return fmt.Errorf("%w: pass --yes", err)
					}
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Session history cleared.")
				return nil
			})
		},
	}
	resetCmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm the reset")

	var delta int
	goalCmd := &cobra.Command{
		Use:   "goal",
		Short: "Show or adjust the daily session goal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.withSession(func(s *session) error {
				goal := s.Settings().DailyGoalSessions
				if delta != 0 {
					goal = s.AdjustDailyGoal(delta)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Daily goal: %d sessions\n", goal)
				return nil
			})
		},
	}
	goalCmd.Flags().IntVar(&delta, "adjust", 0, "change the goal by this many sessions")

	ledgerCmd.AddCommand(listCmd, dedupeCmd, resetCmd, goalCmd)
	return ledgerCmd
}
