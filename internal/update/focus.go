package update

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/elicat001/ai-smart-pomodoro-timer/internal/focus"
	"github.com/elicat001/ai-smart-pomodoro-timer/internal/model"
)

func (m Model) handleFocusKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case " ", "p":
		switch m.Focus.State {
		case focus.StateRunning:
			if err := m.ws.PauseFocus(); err != nil {
				return m.setStatus(err.Error(), true)
			}
			m.refreshFocus()
			return m.setStatus("focus paused", false)
		case focus.StatePaused:
			if err := m.ws.ResumeFocus(); err != nil {
				return m.setStatus(err.Error(), true)
			}
			m.refreshFocus()
			return m.setStatus("focus resumed", false)
		}
		return m, nil
	case "s":
		if !m.ws.StopFocus() {
			return m, nil
		}
		m.refreshFocus()
		return m.setStatus("focus stopped; nothing recorded", false)
	}
	return m, nil
}

func (m Model) startFocus(task model.Task, subtaskID string, minutes int) (Model, tea.Cmd) {
	snap, err := m.ws.StartFocus(task.ID, subtaskID, minutes)
	if err != nil {
		return m.setStatus(err.Error(), true)
	}
	m.Focus = snap
	m.CurrentView = ViewFocus
	m.refresh()
	return m.setStatus(fmt.Sprintf("focus started: %s (%s)", snap.Target.Label(), formatDuration(snap.OriginalSeconds)), false)
}

func (m *Model) refreshFocus() {
	m.Focus = m.ws.FocusSnapshot()
}

func focusTickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg { return FocusTickMsg{} })
}
