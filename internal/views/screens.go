package views

import (
	"fmt"
	"strings"

	"github.com/elicat001/ai-smart-pomodoro-timer/internal/model"
)

type TaskItemData struct {
	Index            int
	ID               string
	Text             string
	Priority         string
	ScheduledTime    string
	EstimatedMinutes int
	Completed        bool
	AutoCompleted    bool
	Analyzing        bool
	Analyzed         bool
	SubtasksDone     int
	SubtasksTotal    int
}

type TasksPanelData struct {
	Filter         string
	Items          []TaskItemData
	SelectedID     string
	Total          int
	Completed      int
	Pending        int
	QuickAddActive bool
	QuickAddView   string
}

type SubtaskItemData struct {
	Ordinal   int
	Text      string
	Minutes   int
	Completed bool
	Active    bool
}

type StepData struct {
	Order   int
	Text    string
	Minutes int
}

type DecompositionData struct {
	TaskType     string
	Summary      string
	TotalMinutes int
	Steps        []StepData
	Tips         []string
	Source       string
}

// DecompositionOf flattens a plan for rendering, steps in order.
func DecompositionOf(d model.Decomposition) DecompositionData {
	out := DecompositionData{
		TaskType:     string(d.TaskType),
		Summary:      d.Summary,
		TotalMinutes: d.TotalMinutes,
		Tips:         d.Tips,
		Source:       string(d.Source),
	}
	for _, step := range d.OrderedSteps() {
		out.Steps = append(out.Steps, StepData{Order: step.Order, Text: step.Text, Minutes: step.DurationMinutes})
	}
	return out
}

type TaskDetailData struct {
	Title         string
	Priority      string
	ScheduledTime string
	Estimate      int
	Analyzing     bool
	SpinnerView   string
	Decomposition *DecompositionData
	Subtasks      []SubtaskItemData
}

type FocusPanelData struct {
	Label         string
	State         string
	Timer         string
	ProgressView  string
	ProgressPct   int
	TodaySessions int
	DailyGoal     int
}

type StatsPanelData struct {
	TodaySessions  int
	TodayMinutes   int
	DailyGoal      int
	StreakDays     int
	Lifetime       int
	TableView      string
	Badges         []string
	BackupReminder bool
	Provider       string
}

type HelpPanelData struct {
	CurrentView string
	Bindings    []string
	HelpView    string
}

func RenderTasksPanel(data TasksPanelData) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("tasks (%s): %d total | %d done | %d pending\n", data.Filter, data.Total, data.Completed, data.Pending))
	b.WriteString("actions: [a]add [x]done [z]analyze [s]steps [f]focus [d]delete [tab]filter\n")
	if data.QuickAddActive {
		b.WriteString(data.QuickAddView + "\n")
	}
	if len(data.Items) == 0 {
		b.WriteString("(no tasks)")
		return b.String()
	}
	for _, item := range data.Items {
		cursor := " "
		if item.ID == data.SelectedID {
			cursor = ">"
		}
		check := "[ ]"
		if item.Completed {
			check = "[x]"
		}
		b.WriteString(fmt.Sprintf("%s %2d. %s %s %s", cursor, item.Index, check, priorityBadge(item.Priority), item.Text))
		var meta []string
		if item.ScheduledTime != "" {
			meta = append(meta, "@"+item.ScheduledTime)
		}
		if item.EstimatedMinutes > 0 {
			meta = append(meta, fmt.Sprintf("~%dm", item.EstimatedMinutes))
		}
		if item.SubtasksTotal > 0 {
			meta = append(meta, fmt.Sprintf("%d/%d steps", item.SubtasksDone, item.SubtasksTotal))
		}
		switch {
		case item.Analyzing:
			meta = append(meta, "analyzing")
		case item.Analyzed:
			meta = append(meta, "planned")
		}
		if len(meta) > 0 {
			b.WriteString(" (" + strings.Join(meta, ", ") + ")")
		}
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String())
}

func RenderTaskDetail(data TaskDetailData) string {
	if data.Title == "" {
		return "details:\n(select a task)"
	}
	var b strings.Builder
	b.WriteString("details:\n")
	b.WriteString(fmt.Sprintf("task: %s\n", data.Title))
	b.WriteString(fmt.Sprintf("priority: %s\n", data.Priority))
	if data.ScheduledTime != "" {
		b.WriteString(fmt.Sprintf("scheduled: %s\n", data.ScheduledTime))
	}
	if data.Estimate > 0 {
		b.WriteString(fmt.Sprintf("estimate: %d min\n", data.Estimate))
	}
	if data.Analyzing {
		b.WriteString(fmt.Sprintf("%s analyzing...\n", data.SpinnerView))
	}
	if len(data.Subtasks) > 0 {
		b.WriteString("\nsubtasks:\n")
		for _, sub := range data.Subtasks {
			check := "[ ]"
			if sub.Completed {
				check = "[x]"
			}
			marker := " "
			if sub.Active {
				marker = "*"
			}
			b.WriteString(fmt.Sprintf("%s %d. %s %s (%dm)\n", marker, sub.Ordinal, check, sub.Text, sub.Minutes))
		}
	}
	if data.Decomposition != nil {
		b.WriteString("\n")
		b.WriteString(RenderMarkdown(DecompositionMarkdown(*data.Decomposition)))
	}
	return strings.TrimSpace(b.String())
}

// DecompositionMarkdown lays out a plan as markdown for glamour.
func DecompositionMarkdown(d DecompositionData) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("## Plan: %s (%d min)\n\n", d.TaskType, d.TotalMinutes))
	if d.Summary != "" {
		b.WriteString(d.Summary + "\n\n")
	}
	for _, step := range d.Steps {
		b.WriteString(fmt.Sprintf("%d. %s (%d min)\n", step.Order, step.Text, step.Minutes))
	}
	if len(d.Tips) > 0 {
		b.WriteString("\n**Tips**\n\n")
		for _, tip := range d.Tips {
			b.WriteString("- " + tip + "\n")
		}
	}
	if d.Source != "" {
		b.WriteString(fmt.Sprintf("\n_source: %s_\n", d.Source))
	}
	return b.String()
}

func RenderFocusPanel(data FocusPanelData) string {
	var b strings.Builder
	b.WriteString("focus:\n")
	if data.Label != "" {
		b.WriteString(fmt.Sprintf("task: %s\n", data.Label))
	} else {
		b.WriteString("task: (none)\n")
	}
	b.WriteString(fmt.Sprintf("state: %s\n", strings.ToUpper(data.State)))
	b.WriteString(fmt.Sprintf("timer: %s\n", data.Timer))
	b.WriteString(fmt.Sprintf("progress: %s %d%%\n", data.ProgressView, data.ProgressPct))
	b.WriteString(fmt.Sprintf("today: %d/%d sessions\n", data.TodaySessions, data.DailyGoal))
	b.WriteString("actions: [space]pause/resume [s]stop")
	return b.String()
}

func RenderStatsPanel(data StatsPanelData) string {
	var b strings.Builder
	b.WriteString("stats:\n")
	b.WriteString(fmt.Sprintf("today: %d sessions, %d min (goal %d)\n", data.TodaySessions, data.TodayMinutes, data.DailyGoal))
	b.WriteString(fmt.Sprintf("streak: %d days | lifetime: %d sessions\n", data.StreakDays, data.Lifetime))
	b.WriteString(fmt.Sprintf("analysis: %s\n", data.Provider))
	b.WriteString("actions: [+/-]goal\n")
	if data.TableView != "" {
		b.WriteString("\n" + data.TableView + "\n")
	}
	if len(data.Badges) > 0 {
		b.WriteString("\nachievements:\n")
		for _, badge := range data.Badges {
			b.WriteString("- " + badge + "\n")
		}
	}
	if data.BackupReminder {
		b.WriteString("\nreminder: export a backup with /export <file>")
	}
	return strings.TrimSpace(b.String())
}

func RenderCommandPalette(active bool, input string) string {
	if !active {
		return ""
	}
	return fmt.Sprintf("command: /%s", input)
}

func RenderNotification(level string, body string) string {
	if strings.TrimSpace(body) == "" {
		return ""
	}
	return fmt.Sprintf("notification: [%s] %s", strings.ToUpper(level), body)
}

func RenderHelpPanel(data HelpPanelData) string {
	return fmt.Sprintf("help:\n%s view:\n%s\n%s",
		strings.ToLower(data.CurrentView),
		strings.Join(data.Bindings, "\n"),
		data.HelpView,
	)
}

func priorityBadge(p string) string {
	switch p {
	case "high":
		return "!!!"
	case "medium":
		return "!! "
	default:
		return "!  "
	}
}
