package views

import (
	"strings"
	"testing"
)

func TestRenderTasksPanel(t *testing.T) {
	out := RenderTasksPanel(TasksPanelData{
		Filter: "all",
		Items: []TaskItemData{
			{Index: 1, ID: "a", Text: "Write report", Priority: "high", ScheduledTime: "09:30", EstimatedMinutes: 40},
			{Index: 2, ID: "b", Text: "Reply to email", Priority: "low", Completed: true, SubtasksDone: 2, SubtasksTotal: 4},
		},
		SelectedID: "b",
		Total:      2,
		Completed:  1,
		Pending:    1,
	})
	for _, want := range []string{"2 total", "1. [ ] !!! Write report (@09:30, ~40m)", ">  2. [x]", "2/4 steps"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in:\n%s", want, out)
		}
	}
}

func TestRenderTasksPanelEmpty(t *testing.T) {
	out := RenderTasksPanel(TasksPanelData{Filter: "pending"})
	if !strings.Contains(out, "(no tasks)") {
		t.Fatalf("unexpected empty panel: %q", out)
	}
}

func TestDecompositionMarkdown(t *testing.T) {
	md := DecompositionMarkdown(DecompositionData{
		TaskType:     "writing",
		Summary:      "Draft then polish.",
		TotalMinutes: 60,
		Steps:        []StepData{{Order: 1, Text: "Outline", Minutes: 15}, {Order: 2, Text: "Draft", Minutes: 45}},
		Tips:         []string{"Edit later"},
		Source:       "local",
	})
	for _, want := range []string{"## Plan: writing (60 min)", "1. Outline (15 min)", "2. Draft (45 min)", "- Edit later", "_source: local_"} {
		if !strings.Contains(md, want) {
			t.Fatalf("expected %q in:\n%s", want, md)
		}
	}
}

func TestRenderFocusAndStats(t *testing.T) {
	focus := RenderFocusPanel(FocusPanelData{Label: "Write report", State: "running", Timer: "24:59", ProgressPct: 1, TodaySessions: 2, DailyGoal: 4})
	if !strings.Contains(focus, "RUNNING") || !strings.Contains(focus, "today: 2/4") {
		t.Fatalf("unexpected focus panel:\n%s", focus)
	}
	stats := RenderStatsPanel(StatsPanelData{TodaySessions: 4, DailyGoal: 4, StreakDays: 3, Badges: []string{"Daily goal reached"}, BackupReminder: true, Provider: "local"})
	for _, want := range []string{"streak: 3 days", "- Daily goal reached", "reminder: export"} {
		if !strings.Contains(stats, want) {
			t.Fatalf("expected %q in:\n%s", want, stats)
		}
	}
}

func TestRenderCommandPaletteAndNotification(t *testing.T) {
	if RenderCommandPalette(false, "x") != "" {
		t.Fatal("inactive palette should render nothing")
	}
	if got := RenderCommandPalette(true, "focus 1"); got != "command: /focus 1" {
		t.Fatalf("unexpected palette: %q", got)
	}
	if RenderNotification("info", "  ") != "" {
		t.Fatal("blank notification should render nothing")
	}
	if got := RenderNotification("error", "boom"); got != "notification: [ERROR] boom" {
		t.Fatalf("unexpected notification: %q", got)
	}
}

func TestRenderAppMarksErrors(t *testing.T) {
	out := RenderApp(AppData{Header: "aipomodoro", LeftPane: "left", RightPane: "right", StatusLine: "error: nope", Footer: "q quit"})
	for _, want := range []string{"aipomodoro", "left", "right", "error: nope", "q quit"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in:\n%s", want, out)
		}
	}
}

func TestRenderAppFocusBadgeAndWidth(t *testing.T) {
	out := RenderApp(AppData{Header: "aipomodoro", FocusState: "running", LeftPane: "l", RightPane: "r", Width: 100})
	if !strings.Contains(out, "RUNNING") {
		t.Fatalf("expected running badge in:\n%s", out)
	}
	if strings.Contains(RenderApp(AppData{Header: "aipomodoro", FocusState: "idle"}), "IDLE") {
		t.Fatal("idle should not render a badge")
	}
	if got := paneWidth(0); got != defaultPaneWidth {
		t.Fatalf("paneWidth(0) = %d", got)
	}
	if got := paneWidth(100); got != 46 {
		t.Fatalf("paneWidth(100) = %d", got)
	}
	if got := paneWidth(20); got != minPaneWidth {
		t.Fatalf("paneWidth(20) = %d", got)
	}
}
