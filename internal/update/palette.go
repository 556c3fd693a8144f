package update

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/elicat001/ai-smart-pomodoro-timer/internal/app"
	"github.com/elicat001/ai-smart-pomodoro-timer/internal/commands"
	"github.com/elicat001/ai-smart-pomodoro-timer/internal/model"
)

func (m Model) handlePaletteKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.Palette.Active = false
		m.Palette.Input = ""
		m.commandInput.SetValue("")
		m.commandInput.Blur()
		return m.setStatus("command palette closed", false)
	case "enter":
		m.Palette.Input = m.commandInput.Value()
		return m.executePaletteCommand()
	default:
		if msg.Type == tea.KeyRunes {
			m.commandInput.SetValue(m.commandInput.Value() + string(msg.Runes))
			m.Palette.Input = m.commandInput.Value()
			return m, nil
		}
		var cmd tea.Cmd
		m.commandInput, cmd = m.commandInput.Update(msg)
		m.Palette.Input = m.commandInput.Value()
		return m, cmd
	}
}

func (m Model) executePaletteCommand() (Model, tea.Cmd) {
	raw := strings.TrimSpace(m.Palette.Input)
	m.Palette.Active = false
	m.Palette.Input = ""
	m.commandInput.SetValue("")
	m.commandInput.Blur()

	cmd, err := commands.Parse(raw)
	if err != nil {
		return m.setStatus(err.Error(), true)
	}
	return m.runCommand(cmd)
}

// runCommand executes a parsed command against the workspace. Task numbers
// are positions in the currently visible list.
func (m Model) runCommand(cmd commands.Command) (Model, tea.Cmd) {
	var follow tea.Cmd
	ctx := context.Background()

	res, err := commands.Execute(cmd, commands.Handlers{
		Add: func(a commands.AddArgs) (commands.Result, error) {
			task, err := m.addTask(a)
			if err != nil {
				return commands.Result{}, err
			}
			m.CurrentView = ViewTasks
			m.selectTask(task.ID)
			return commands.Result{Message: fmt.Sprintf("added: %s", task.Text)}, nil
		},
		Edit: func(e commands.EditArgs) (commands.Result, error) {
			task, err := m.taskAt(e.Index)
			if err != nil {
				return commands.Result{}, err
			}
			text := e.Text
			if _, err := m.ws.EditTask(task.ID, app.TaskEdit{Text: &text}); err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("updated #%d", e.Index)}, nil
		},
		Done: func(a commands.TaskArgs) (commands.Result, error) {
			task, err := m.taskAt(a.Index)
			if err != nil {
				return commands.Result{}, err
			}
			done, err := m.ws.ToggleTask(task.ID)
			if err != nil {
				return commands.Result{}, err
			}
			if done {
				return commands.Result{Message: fmt.Sprintf("completed: %s", task.Text)}, nil
			}
			return commands.Result{Message: fmt.Sprintf("reopened: %s", task.Text)}, nil
		},
		Delete: func(a commands.TaskArgs) (commands.Result, error) {
			task, err := m.taskAt(a.Index)
			if err != nil {
				return commands.Result{}, err
			}
			if err := m.ws.DeleteTask(task.ID); err != nil {
				return commands.Result{}, err
			}
			delete(m.Analyzing, task.ID)
			m.refreshFocus()
			return commands.Result{Message: fmt.Sprintf("deleted: %s", task.Text)}, nil
		},
		Analyze: func(a commands.TaskArgs) (commands.Result, error) {
			task, err := m.taskAt(a.Index)
			if err != nil {
				return commands.Result{}, err
			}
			m.Analyzing[task.ID] = true
			follow = tea.Batch(analyzeCmd(m.ws, task.ID), m.analysisSpinner.Tick)
			return commands.Result{Message: fmt.Sprintf("analyzing with %s: %s", m.ws.ProviderName(), task.Text)}, nil
		},
		Steps: func(a commands.TaskArgs) (commands.Result, error) {
			task, err := m.taskAt(a.Index)
			if err != nil {
				return commands.Result{}, err
			}
			updated, err := m.ws.ConvertToSubtasks(task.ID)
			if err != nil {
				return commands.Result{}, err
			}
			m.selectTask(task.ID)
			return commands.Result{Message: fmt.Sprintf("%d subtasks created", len(updated.Subtasks))}, nil
		},
		Sub: func(s commands.SubArgs) (commands.Result, error) {
			task, err := m.taskAt(s.Index)
			if err != nil {
				return commands.Result{}, err
			}
			subID, err := subtaskAt(task.Subtasks, s.Subtask)
			if err != nil {
				return commands.Result{}, err
			}
			done, err := m.ws.ToggleSubtask(task.ID, subID)
			if err != nil {
				return commands.Result{}, err
			}
			state := "reopened"
			if done {
				state = "completed"
			}
			return commands.Result{Message: fmt.Sprintf("subtask %d %s", s.Subtask, state)}, nil
		},
		Focus: func(f commands.FocusArgs) (commands.Result, error) {
			task, err := m.taskAt(f.Index)
			if err != nil {
				return commands.Result{}, err
			}
			subID := ""
			if f.Subtask > 0 {
				if subID, err = subtaskAt(task.Subtasks, f.Subtask); err != nil {
					return commands.Result{}, err
				}
			}
			snap, err := m.ws.StartFocus(task.ID, subID, 0)
			if err != nil {
				return commands.Result{}, err
			}
			m.Focus = snap
			m.CurrentView = ViewFocus
			return commands.Result{Message: fmt.Sprintf("focus started: %s (%s)", snap.Target.Label(), formatDuration(snap.OriginalSeconds))}, nil
		},
		Pause: func() (commands.Result, error) {
			if err := m.ws.PauseFocus(); err != nil {
				return commands.Result{}, err
			}
			m.refreshFocus()
			return commands.Result{Message: "focus paused"}, nil
		},
		Resume: func() (commands.Result, error) {
			if err := m.ws.ResumeFocus(); err != nil {
				return commands.Result{}, err
			}
			m.refreshFocus()
			return commands.Result{Message: "focus resumed"}, nil
		},
		Stop: func() (commands.Result, error) {
			if !m.ws.StopFocus() {
				return commands.Result{Message: "no countdown to stop"}, nil
			}
			m.refreshFocus()
			return commands.Result{Message: "focus stopped; nothing recorded"}, nil
		},
		Goal: func(g commands.GoalArgs) (commands.Result, error) {
			goal := m.ws.AdjustDailyGoal(g.Delta)
			return commands.Result{Message: fmt.Sprintf("daily goal: %d", goal)}, nil
		},
		Export: func(p commands.PathArgs) (commands.Result, error) {
			pkg, err := m.ws.Export(ctx)
			if err != nil {
				return commands.Result{}, err
			}
			path := p.Path
			if path == "" {
				path = pkg.FilenameHint
			}
			if err := os.WriteFile(path, []byte(pkg.Text), 0o600); err != nil {
				return commands.Result{}, fmt.Errorf("write backup: %w", err)
			}
			return commands.Result{Message: fmt.Sprintf("exported %d entries to %s", len(pkg.Entries), path)}, nil
		},
		Import: func(p commands.PathArgs) (commands.Result, error) {
			raw, err := os.ReadFile(p.Path)
			if err != nil {
				return commands.Result{}, fmt.Errorf("read backup: %w", err)
			}
			res, err := m.ws.Import(ctx, string(raw))
			if err != nil {
				return commands.Result{}, err
			}
			m.Cursor = 0
			msg := fmt.Sprintf("imported %s", strings.Join(res.Imported, ", "))
			if len(res.Warnings) > 0 {
				msg += fmt.Sprintf(" (%d warnings)", len(res.Warnings))
			}
			return commands.Result{Message: msg}, nil
		},
		Dedupe: func() (commands.Result, error) {
			removed := m.ws.DeduplicateLedger()
			return commands.Result{Message: fmt.Sprintf("removed %d duplicate sessions", removed)}, nil
		},
		Reset: func(r commands.ResetArgs) (commands.Result, error) {
			if err := m.ws.ResetLedger(r.Confirmed); err != nil {
				if errors.Is(err, app.ErrConfirmationRequired) {
					return commands.Result{}, fmt.Errorf("%w: run /reset confirm", err)
				}
				return commands.Result{}, err
			}
			return commands.Result{Message: "session history cleared"}, nil
		},
		Filter: func(f commands.FilterArgs) (commands.Result, error) {
			m.Filter = f.Filter
			m.Cursor = 0
			m.CurrentView = ViewTasks
			return commands.Result{Message: fmt.Sprintf("filter: %s", f.Filter)}, nil
		},
	})
	m.refresh()
	if err != nil {
		m.LastError = err
		return m.setStatus(err.Error(), true)
	}
	next, statusCmd := m.setStatus(res.Message, false)
	return next, tea.Batch(statusCmd, follow)
}

func subtaskAt(subs []model.Subtask, ordinal int) (string, error) {
	if ordinal < 1 || ordinal > len(subs) {
		return "", &commands.CommandError{
			Code:    commands.ErrCodeInvalidArgument,
			Message: fmt.Sprintf("no subtask #%d (%d available)", ordinal, len(subs)),
		}
	}
	return subs[ordinal-1].ID, nil
}
