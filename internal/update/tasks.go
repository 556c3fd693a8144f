package update

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/elicat001/ai-smart-pomodoro-timer/internal/app"
	"github.com/elicat001/ai-smart-pomodoro-timer/internal/commands"
	"github.com/elicat001/ai-smart-pomodoro-timer/internal/model"
)

var filterCycle = []model.Filter{model.FilterAll, model.FilterPending, model.FilterCompleted}

func (m Model) visibleTasks() []model.Task {
	return m.ws.Tasks(m.Filter)
}

// taskAt resolves a 1-based position in the visible list.
func (m Model) taskAt(index int) (model.Task, error) {
	tasks := m.visibleTasks()
	if index < 1 || index > len(tasks) {
		return model.Task{}, &commands.CommandError{
			Code:    commands.ErrCodeInvalidArgument,
			Message: fmt.Sprintf("no task #%d (%d visible)", index, len(tasks)),
		}
	}
	return tasks[index-1], nil
}

func (m Model) selectedTask() (model.Task, bool) {
	if m.SelectedTaskID == "" {
		return model.Task{}, false
	}
	task, err := m.ws.Task(m.SelectedTaskID)
	if err != nil {
		return model.Task{}, false
	}
	return task, true
}

func (m Model) handleTasksKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	keyStr := msg.String()
	if keyStr != "d" {
		m.pendingDelete = ""
	}
	tasks := m.visibleTasks()
	switch keyStr {
	case "j", "down":
		if m.Cursor < len(tasks)-1 {
			m.Cursor++
		}
		m.refresh()
		return m, nil
	case "k", "up":
		if m.Cursor > 0 {
			m.Cursor--
		}
		m.refresh()
		return m, nil
	case "tab":
		m.Filter = nextFilter(m.Filter)
		m.Cursor = 0
		m.refresh()
		return m.setStatus(fmt.Sprintf("filter: %s", m.Filter), false)
	case "a":
		m.QuickAdd = true
		m.quickAddInput.SetValue("")
		m.quickAddInput.Focus()
		return m, nil
	}

	task, ok := m.selectedTask()
	if !ok {
		return m, nil
	}
	switch keyStr {
	case "x", " ":
		done, err := m.ws.ToggleTask(task.ID)
		if err != nil {
			return m.setStatus(err.Error(), true)
		}
		m.refresh()
		if done {
			return m.setStatus(fmt.Sprintf("completed: %s", task.Text), false)
		}
		return m.setStatus(fmt.Sprintf("reopened: %s", task.Text), false)
	case "z":
		return m.startAnalysis(task)
	case "s":
		updated, err := m.ws.ConvertToSubtasks(task.ID)
		if err != nil {
			return m.setStatus(err.Error(), true)
		}
		m.refresh()
		return m.setStatus(fmt.Sprintf("%d subtasks created", len(updated.Subtasks)), false)
	case "f", "enter":
		return m.startFocus(task, "", 0)
	case "d":
		if m.pendingDelete != task.ID {
			m.pendingDelete = task.ID
			return m.setStatus(fmt.Sprintf("press d again to delete %q", task.Text), false)
		}
		m.pendingDelete = ""
		if err := m.ws.DeleteTask(task.ID); err != nil {
			return m.setStatus(err.Error(), true)
		}
		delete(m.Analyzing, task.ID)
		m.refresh()
		m.refreshFocus()
		return m.setStatus(fmt.Sprintf("deleted: %s", task.Text), false)
	}
	return m, nil
}

func (m Model) handleQuickAddKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.QuickAdd = false
		m.quickAddInput.Blur()
		m.quickAddInput.SetValue("")
		return m, nil
	case "enter":
		raw := m.quickAddInput.Value()
		m.QuickAdd = false
		m.quickAddInput.Blur()
		m.quickAddInput.SetValue("")
		// Quick add shares the palette's inline modifiers.
		cmd, err := commands.Parse("add " + raw)
		if err != nil {
			return m.setStatus(err.Error(), true)
		}
		return m.runCommand(cmd)
	}
	if msg.Type == tea.KeyRunes {
		m.quickAddInput.SetValue(m.quickAddInput.Value() + string(msg.Runes))
		return m, nil
	}
	var cmd tea.Cmd
	m.quickAddInput, cmd = m.quickAddInput.Update(msg)
	return m, cmd
}

func (m Model) addTask(a commands.AddArgs) (model.Task, error) {
	task, err := m.ws.AddTask(app.NewTask{
		Text:             a.Text,
		Priority:         a.Priority,
		ScheduledTime:    a.ScheduledTime,
		EstimatedMinutes: a.EstimatedMinutes,
	})
	if err != nil {
		return model.Task{}, err
	}
	return task, nil
}

func (m Model) startAnalysis(task model.Task) (Model, tea.Cmd) {
	m.Analyzing[task.ID] = true
	next, statusCmd := m.setStatus(fmt.Sprintf("analyzing with %s: %s", m.ws.ProviderName(), task.Text), false)
	return next, tea.Batch(statusCmd, analyzeCmd(m.ws, task.ID), next.analysisSpinner.Tick)
}

func analyzeCmd(ws *app.Workspace, taskID string) tea.Cmd {
	return func() tea.Msg {
		out, err := ws.Analyze(context.Background(), taskID)
		return AnalysisDoneMsg{TaskID: taskID, Outcome: out, Err: err}
	}
}

func nextFilter(f model.Filter) model.Filter {
	for i, candidate := range filterCycle {
		if candidate == f {
			return filterCycle[(i+1)%len(filterCycle)]
		}
	}
	return model.FilterAll
}
