package update

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

func (m Model) handleStatsKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "+", "=":
		goal := m.ws.AdjustDailyGoal(1)
		m.refresh()
		return m.setStatus(fmt.Sprintf("daily goal: %d", goal), false)
	case "-":
		goal := m.ws.AdjustDailyGoal(-1)
		m.refresh()
		return m.setStatus(fmt.Sprintf("daily goal: %d", goal), false)
	}
	return m, nil
}
