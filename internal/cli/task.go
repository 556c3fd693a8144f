package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/elicat001/ai-smart-pomodoro-timer/internal/app"
	"github.com/elicat001/ai-smart-pomodoro-timer/internal/commands"
	"github.com/elicat001/ai-smart-pomodoro-timer/internal/model"
	"github.com/elicat001/ai-smart-pomodoro-timer/internal/views"
)

func newTaskCmd(e *env) *cobra.Command {
	taskCmd := &cobra.Command{
		Use:   "task",
		Short: "Manage tasks",
	}

	addCmd := &cobra.Command{
		Use:   "add <text> [!priority] [@HH:MM] [~minutes]",
		Short: "Add a task",
		Long: `Add a task. Inline modifiers set its attributes:
  !low|!medium|!high   priority (default medium)
  @HH:MM               scheduled time of day
  ~N                   estimated minutes`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := commands.Parse("add " + strings.Join(args, " "))
			if err != nil {
				return err
			}
			a := parsed.Add
			return e.withSession(func(s *session) error {
				task, err := s.AddTask(app.NewTask{
					Text:             a.Text,
					Priority:         a.Priority,
					ScheduledTime:    a.ScheduledTime,
					EstimatedMinutes: a.EstimatedMinutes,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added %s [%s]\n", task.Text, task.Priority)
				return nil
			})
		},
	}

	var filter string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks in display order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := model.ParseFilter(filter)
			if err != nil {
				return err
			}
			return e.withSession(func(s *session) error {
				printTasks(cmd.OutOrStdout(), s.Tasks(f))
				return nil
			})
		},
	}
	listCmd.Flags().StringVarP(&filter, "filter", "f", string(model.FilterAll), "all, pending or completed")

	doneCmd := &cobra.Command{
		Use:   "done <n>",
		Short: "Toggle completion of task n",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withTask(args[0], func(s *session, task model.Task) error {
				done, err := s.ToggleTask(task.ID)
				if err != nil {
					return err
				}
				state := "Reopened"
				if done {
					state = "Completed"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", state, task.Text)
				return nil
			})
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete <n>",
		Short: "Delete task n",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withTask(args[0], func(s *session, task model.Task) error {
				if err := s.DeleteTask(task.ID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", task.Text)
				return nil
			})
		},
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze <n>",
		Short: "Break task n into timed steps",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withTask(args[0], func(s *session, task model.Task) error {
				out, err := s.Analyze(cmd.Context(), task.ID)
				if err != nil {
					return err
				}
				if out.FellBack {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s analysis failed (%v); used local rules\n", s.ProviderName(), out.ProviderErr)
				}
				fmt.Fprintln(cmd.OutOrStdout(), views.DecompositionMarkdown(views.DecompositionOf(out.Decomposition)))
				return nil
			})
		},
	}

	stepsCmd := &cobra.Command{
		Use:   "steps <n>",
		Short: "Turn the plan of task n into subtasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withTask(args[0], func(s *session, task model.Task) error {
				updated, err := s.ConvertToSubtasks(task.ID)
				if err != nil {
					return err
				}
				for _, sub := range updated.Subtasks {
					fmt.Fprintf(cmd.OutOrStdout(), "%d. %s (%d min)\n", sub.Order, sub.Text, sub.DurationMinutes)
				}
				return nil
			})
		},
	}

	taskCmd.AddCommand(addCmd, listCmd, doneCmd, deleteCmd, analyzeCmd, stepsCmd)
	return taskCmd
}

// withTask resolves a 1-based position in the full task list.
func (e *env) withTask(arg string, fn func(*session, model.Task) error) error {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		return fmt.Errorf("task number must be a positive integer, got %q", arg)
	}
	return e.withSession(func(s *session) error {
		tasks := s.Tasks(model.FilterAll)
		if n > len(tasks) {
			return fmt.Errorf("no task #%d (%d tasks)", n, len(tasks))
		}
		return fn(s, tasks[n-1])
	})
}

func printTasks(w io.Writer, tasks []model.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, "No tasks.")
		return
	}
	for i, t := range tasks {
		check := " "
		if t.Completed {
			check = "x"
		}
		line := fmt.Sprintf("%2d. [%s] %-6s %s", i+1, check, t.Priority, t.Text)
		if t.ScheduledTime != "" {
			line += " @" + t.ScheduledTime
		}
		if t.EstimatedMinutes > 0 {
			line += fmt.Sprintf(" ~%dm", t.EstimatedMinutes)
		}
		if done, total := t.SubtaskProgress(); total > 0 {
			line += fmt.Sprintf(" (%d/%d steps)", done, total)
		}
		fmt.Fprintln(w, line)
	}
}
