package update

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/elicat001/ai-smart-pomodoro-timer/internal/analysis"
	"github.com/elicat001/ai-smart-pomodoro-timer/internal/app"
)

func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForEventCmd(m.ws.Events()), focusTickCmd())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(typed)
	case tea.WindowSizeMsg:
		m.Width = typed.Width
		return m, nil
	case SwitchViewMsg:
		if isValidView(typed.View) {
			m.CurrentView = typed.View
		}
		return m, nil
	case SetStatusMsg:
		return m.setStatus(typed.Text, typed.IsError)
	case ClearStatusMsg:
		if typed.Seq == m.statusSeq {
			m.Status = StatusBar{}
		}
		return m, nil
	case AppErrorMsg:
		m.LastError = typed.Err
		if typed.Err == nil {
			return m, nil
		}
		return m.setStatus(typed.Err.Error(), true)
	case EventMsg:
		next, cmd := m.handleEvent(typed.Event)
		return next, tea.Batch(cmd, waitForEventCmd(m.ws.Events()))
	case FocusTickMsg:
		m.refreshFocus()
		return m, focusTickCmd()
	case AnalysisDoneMsg:
		return m.onAnalysisDone(typed)
	case spinner.TickMsg:
		if len(m.Analyzing) == 0 {
			return m, nil
		}
		var cmd tea.Cmd
		m.analysisSpinner, cmd = m.analysisSpinner.Update(typed)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.Palette.Active {
		if msg.String() == m.Keys.Help {
			m.HelpVisible = !m.HelpVisible
			return m, nil
		}
		return m.handlePaletteKey(msg)
	}
	if m.QuickAdd {
		return m.handleQuickAddKey(msg)
	}

	switch msg.String() {
	case "ctrl+c", m.Keys.Quit:
		m.Quitting = true
		return m, tea.Quit
	case "/":
		m.Palette.Active = true
		m.Palette.Input = ""
		m.commandInput.SetValue("")
		m.commandInput.Focus()
		return m.setStatus("command palette active", false)
	case m.Keys.Tasks:
		m.CurrentView = ViewTasks
		return m, nil
	case m.Keys.Focus:
		m.CurrentView = ViewFocus
		m.refreshFocus()
		return m, nil
	case m.Keys.Stats:
		m.CurrentView = ViewStats
		m.refresh()
		return m, nil
	case m.Keys.Help:
		m.HelpVisible = !m.HelpVisible
		return m, nil
	}

	switch m.CurrentView {
	case ViewTasks:
		return m.handleTasksKey(msg)
	case ViewFocus:
		return m.handleFocusKey(msg)
	case ViewStats:
		return m.handleStatsKey(msg)
	}
	return m, nil
}

func (m Model) handleEvent(ev app.Event) (Model, tea.Cmd) {
	m.refresh()
	switch ev.Kind {
	case app.EventSessionRecorded:
		if ev.Session == nil {
			return m, nil
		}
		label := ev.Session.TaskLabel
		if ev.Session.SubtaskLabel != "" {
			label += " / " + ev.Session.SubtaskLabel
		}
		return m.setStatus(fmt.Sprintf("focus complete: %s (%d min)", label, ev.Session.DurationMinutes), false)
	case app.EventSessionSuppressed:
		return m.setStatus("duplicate session ignored", false)
	case app.EventGoalReached:
		return m.setStatus(fmt.Sprintf("daily goal reached: %d sessions", m.ws.Settings().DailyGoalSessions), false)
	case app.EventPersistFailed:
		m.LastError = ev.Err
		return m.setStatus(fmt.Sprintf("save failed: %v", ev.Err), true)
	}
	return m, nil
}

func (m Model) onAnalysisDone(msg AnalysisDoneMsg) (Model, tea.Cmd) {
	if errors.Is(msg.Err, analysis.ErrCanceled) {
		// A newer request for the same task owns the spinner.
		if !m.ws.AnalysisPending(msg.TaskID) {
			delete(m.Analyzing, msg.TaskID)
		}
		return m, nil
	}
	delete(m.Analyzing, msg.TaskID)
	m.refresh()
	if msg.Err != nil {
		m.LastError = msg.Err
		return m.setStatus(fmt.Sprintf("analysis failed: %v", msg.Err), true)
	}
	d := msg.Outcome.Decomposition
	text := fmt.Sprintf("plan ready: %d steps, %d min (%s)", len(d.Steps), d.TotalMinutes, d.TaskType)
	if msg.Outcome.FellBack {
		text += "; remote analysis failed, used local rules"
	}
	return m.setStatus(text, false)
}

// setStatus shows a banner and schedules its dismissal.
func (m Model) setStatus(text string, isError bool) (Model, tea.Cmd) {
	m.statusSeq++
	m.Status = StatusBar{Text: text, IsError: isError}
	return m, clearStatusCmd(m.statusSeq, m.statusTTL)
}
