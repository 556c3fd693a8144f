package cli

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/elicat001/ai-smart-pomodoro-timer/internal/app"
	"github.com/elicat001/ai-smart-pomodoro-timer/internal/model"
)

func newFocusCmd(e *env) *cobra.Command {
	var step int
	cmd := &cobra.Command{
		Use:   "focus <n> [minutes]",
		Short: "Run a focus countdown on task n and wait for it",
		Long: `Run a focus countdown on task n. The length comes from the minutes
argument, else the subtask duration (--step), else the task estimate, else
focus.default_minutes. Interrupting stops the countdown without recording.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			minutes := 0
			if len(args) == 2 {
				n, err := strconv.Atoi(args[1])
				if err != nil || n <= 0 {
					return fmt.Errorf("minutes must be a positive integer, got %q", args[1])
				}
				minutes = n
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			return e.withTask(args[0], func(s *session, task model.Task) error {
				subID := ""
				if step > 0 {
					if step > len(task.Subtasks) {
						return fmt.Errorf("task has %d subtasks, no step %d", len(task.Subtasks), step)
					}
					subID = task.Subtasks[step-1].ID
				}
				snap, err := s.StartFocus(task.ID, subID, minutes)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Focusing on %s for %d min. Ctrl+C stops without recording.\n",
					snap.Target.Label(), snap.OriginalSeconds/60)

				for {
					select {
					case <-ctx.Done():
						s.StopFocus()
						fmt.Fprintln(out, "Stopped; nothing recorded.")
						return nil
					case ev := <-s.Events():
						switch ev.Kind {
						case app.EventSessionRecorded:
							fmt.Fprintf(out, "Session recorded: %d min. Today: %d/%d.\n",
								ev.Session.DurationMinutes, s.TodayStats().Sessions, s.Settings().DailyGoalSessions)
							return nil
						case app.EventSessionSuppressed:
							fmt.Fprintln(out, "Session matched a recent one and was not recorded.")
							return nil
						case app.EventPersistFailed:
							fmt.Fprintf(cmd.ErrOrStderr(), "warning: save failed: %v\n", ev.Err)
						}
					}
				}
			})
		},
	}
	cmd.Flags().IntVar(&step, "step", 0, "focus on subtask k of the task")
	return cmd
}
