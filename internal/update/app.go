package update

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/elicat001/ai-smart-pomodoro-timer/internal/app"
	"github.com/elicat001/ai-smart-pomodoro-timer/internal/focus"
	"github.com/elicat001/ai-smart-pomodoro-timer/internal/views"
)

func (m Model) View() string {
	if m.Quitting {
		return ""
	}
	status := ""
	if m.Status.Text != "" {
		if m.Status.IsError {
			status = fmt.Sprintf("status: error: %s", m.Status.Text)
		} else {
			status = fmt.Sprintf("status: %s", m.Status.Text)
		}
	}

	var left, right string
	switch m.CurrentView {
	case ViewTasks:
		left = m.renderTasksView()
		right = m.renderTaskDetail()
	case ViewFocus:
		left = m.renderFocusView()
		right = m.renderTaskDetailFor(m.Focus.Target.TaskID)
	case ViewStats:
		left = m.renderStatsView()
	}
	if palette := views.RenderCommandPalette(m.Palette.Active, m.Palette.Input); palette != "" {
		right = strings.TrimSpace(right + "\n\n" + palette)
	}
	if m.HelpVisible {
		right = strings.TrimSpace(right + "\n\n" + m.renderHelpView())
	}

	notification := ""
	if len(m.Analyzing) > 0 {
		notification = fmt.Sprintf("%s analyzing %d task(s)", m.analysisSpinner.View(), len(m.Analyzing))
	}

	today := m.ws.TodayStats()
	return views.RenderApp(views.AppData{
		Header:       fmt.Sprintf("%s | %s | today %d/%d", m.header, m.CurrentView, today.Sessions, m.ws.Settings().DailyGoalSessions),
		FocusState:   string(m.Focus.State),
		LeftPane:     left,
		RightPane:    right,
		StatusLine:   status,
		StatusError:  m.Status.IsError,
		Footer:       "1 tasks | 2 focus | 3 stats | / command | ? help | q quit",
		Notification: notification,
		Width:        m.Width,
	})
}

func (m *Model) initBubbleComponents() {
	m.quickAddInput = textinput.New()
	m.quickAddInput.Prompt = "add> "
	m.quickAddInput.Placeholder = "text !high @09:30 ~45"
	m.quickAddInput.CharLimit = 256
	m.quickAddInput.Width = 42

	m.commandInput = textinput.New()
	m.commandInput.Prompt = "/"
	m.commandInput.CharLimit = 256
	m.commandInput.Width = 48

	m.focusProgress = progress.New(progress.WithDefaultGradient())
	m.focusProgress.Width = 40

	m.analysisSpinner = spinner.New()
	m.analysisSpinner.Spinner = spinner.Dot

	m.helpModel = help.New()

	cols := []table.Column{
		{Title: "Day", Width: 5},
		{Title: "Date", Width: 12},
		{Title: "Sessions", Width: 9},
		{Title: "Minutes", Width: 8},
	}
	m.weekTable = table.New(table.WithColumns(cols), table.WithRows([]table.Row{}), table.WithHeight(8))
}

// refresh clamps the cursor to the visible list and re-reads derived data.
func (m *Model) refresh() {
	tasks := m.visibleTasks()
	if m.Cursor >= len(tasks) {
		m.Cursor = len(tasks) - 1
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}
	m.SelectedTaskID = ""
	if len(tasks) > 0 {
		m.SelectedTaskID = tasks[m.Cursor].ID
	}
	m.syncBubbleData()
}

func (m *Model) selectTask(id string) {
	for i, t := range m.visibleTasks() {
		if t.ID == id {
			m.Cursor = i
			return
		}
	}
}

func (m *Model) syncBubbleData() {
	series := m.ws.WeeklySeries()
	rows := make([]table.Row, 0, len(series))
	for _, p := range series {
		rows = append(rows, table.Row{p.DayLabel, p.Date, fmt.Sprintf("%d", p.Count), fmt.Sprintf("%d", p.Minutes)})
	}
	m.weekTable.SetRows(rows)
}

func (m Model) renderTasksView() string {
	tasks := m.visibleTasks()
	stats := m.ws.TaskStats()
	items := make([]views.TaskItemData, 0, len(tasks))
	for i, t := range tasks {
		done, total := t.SubtaskProgress()
		items = append(items, views.TaskItemData{
			Index:            i + 1,
			ID:               t.ID,
			Text:             t.Text,
			Priority:         string(t.Priority),
			ScheduledTime:    t.ScheduledTime,
			EstimatedMinutes: t.EstimatedMinutes,
			Completed:        t.Completed,
			AutoCompleted:    t.AutoCompleted,
			Analyzing:        m.Analyzing[t.ID],
			Analyzed:         t.Analysis != nil,
			SubtasksDone:     done,
			SubtasksTotal:    total,
		})
	}
	return views.RenderTasksPanel(views.TasksPanelData{
		Filter:         string(m.Filter),
		Items:          items,
		SelectedID:     m.SelectedTaskID,
		Total:          stats.Total,
		Completed:      stats.Completed,
		Pending:        stats.Pending,
		QuickAddActive: m.QuickAdd,
		QuickAddView:   m.quickAddInput.View(),
	})
}

func (m Model) renderTaskDetail() string {
	return m.renderTaskDetailFor(m.SelectedTaskID)
}

func (m Model) renderTaskDetailFor(id string) string {
	if id == "" {
		return views.RenderTaskDetail(views.TaskDetailData{})
	}
	task, err := m.ws.Task(id)
	if err != nil {
		return views.RenderTaskDetail(views.TaskDetailData{})
	}
	data := views.TaskDetailData{
		Title:         task.Text,
		Priority:      string(task.Priority),
		ScheduledTime: task.ScheduledTime,
		Estimate:      task.EstimatedMinutes,
		Analyzing:     m.Analyzing[task.ID],
		SpinnerView:   m.analysisSpinner.View(),
	}
	active := ""
	if m.Focus.State == focus.StateRunning || m.Focus.State == focus.StatePaused {
		active = m.Focus.Target.SubtaskID
	}
	for _, sub := range task.Subtasks {
		data.Subtasks = append(data.Subtasks, views.SubtaskItemData{
			Ordinal:   sub.Order,
			Text:      sub.Text,
			Minutes:   sub.DurationMinutes,
			Completed: sub.Completed,
			Active:    sub.ID == active,
		})
	}
	if task.Analysis != nil {
		d := views.DecompositionOf(*task.Analysis)
		data.Decomposition = &d
	}
	return views.RenderTaskDetail(data)
}

func (m Model) renderFocusView() string {
	snap := m.Focus
	today := m.ws.TodayStats()
	return views.RenderFocusPanel(views.FocusPanelData{
		Label:         snap.Target.Label(),
		State:         string(snap.State),
		Timer:         formatDuration(snap.RemainingSeconds),
		ProgressView:  m.focusProgress.ViewAs(snap.Progress),
		ProgressPct:   int(snap.Progress * 100),
		TodaySessions: today.Sessions,
		DailyGoal:     m.ws.Settings().DailyGoalSessions,
	})
}

func (m Model) renderStatsView() string {
	today := m.ws.TodayStats()
	settings := m.ws.Settings()
	badges := m.ws.Achievements()
	titles := make([]string, 0, len(badges))
	for _, b := range badges {
		titles = append(titles, b.Title)
	}
	return views.RenderStatsPanel(views.StatsPanelData{
		TodaySessions:  today.Sessions,
		TodayMinutes:   today.Minutes,
		DailyGoal:      settings.DailyGoalSessions,
		StreakDays:     m.ws.StreakDays(),
		Lifetime:       settings.Usage.TotalSessionsEverSeen,
		TableView:      m.weekTable.View(),
		Badges:         titles,
		BackupReminder: m.ws.BackupReminderDue(),
		Provider:       string(m.ws.ProviderName()),
	})
}

func formatDuration(totalSec int) string {
	if totalSec < 0 {
		totalSec = 0
	}
	return fmt.Sprintf("%02d:%02d", totalSec/60, totalSec%60)
}

// waitForEventCmd blocks on the workspace event stream. Update re-arms it
// after every EventMsg.
func waitForEventCmd(ch <-chan app.Event) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		return EventMsg{Event: <-ch}
	}
}

func clearStatusCmd(seq int, ttl time.Duration) tea.Cmd {
	return tea.Tick(ttl, func(time.Time) tea.Msg { return ClearStatusMsg{Seq: seq} })
}
