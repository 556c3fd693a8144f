package update

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/elicat001/ai-smart-pomodoro-timer/internal/app"
	"github.com/elicat001/ai-smart-pomodoro-timer/internal/focus"
	"github.com/elicat001/ai-smart-pomodoro-timer/internal/logging"
	"github.com/elicat001/ai-smart-pomodoro-timer/internal/model"
	"github.com/elicat001/ai-smart-pomodoro-timer/internal/scheduler"
	"github.com/elicat001/ai-smart-pomodoro-timer/internal/storage"
)

func newTestModel(t *testing.T) (Model, *app.Workspace, *scheduler.Manual) {
	t.Helper()
	store, err := storage.NewStore(storage.NewMemoryMedium(0), storage.Options{Logger: logging.NewNop()})
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	src := scheduler.NewManual()
	now := time.Date(2026, 3, 11, 10, 0, 0, 0, time.UTC)
	ws, err := app.New(app.Options{
		Store:      store,
		TickSource: src,
		Now:        func() time.Time { return now },
		Location:   time.UTC,
		Logger:     logging.NewNop(),
	})
	if err != nil {
		t.Fatalf("new workspace: %v", err)
	}
	if err := ws.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	t.Cleanup(func() { _ = ws.Close() })
	return NewModel(ws, Options{}), ws, src
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func press(m Model, keys ...string) Model {
	for _, k := range keys {
		updated, _ := m.Update(keyMsg(k))
		m = updated.(Model)
	}
	return m
}

// palette opens the command palette, types line and submits it.
func palette(m Model, line string) Model {
	return press(m, "/", line, "enter")
}

func nextEvent(t *testing.T, ws *app.Workspace, kind app.EventKind) app.Event {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-ws.Events():
			if ev.Kind == kind {
				return ev
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s event", kind)
		}
	}
}

func TestNewModelDefaults(t *testing.T) {
	m, _, _ := newTestModel(t)
	if m.CurrentView != ViewTasks {
		t.Fatalf("expected default view %q, got %q", ViewTasks, m.CurrentView)
	}
	if m.Filter != model.FilterAll {
		t.Fatalf("expected filter all, got %q", m.Filter)
	}
	if m.Keys.Quit != "q" {
		t.Fatalf("expected quit key q, got %q", m.Keys.Quit)
	}
	if m.statusTTL != DefaultStatusTTL {
		t.Fatalf("expected default status ttl, got %s", m.statusTTL)
	}
}

func TestUpdateKeySwitchesView(t *testing.T) {
	m, _, _ := newTestModel(t)
	m = press(m, "2")
	if m.CurrentView != ViewFocus {
		t.Fatalf("expected focus view, got %q", m.CurrentView)
	}
	m = press(m, "3")
	if m.CurrentView != ViewStats {
		t.Fatalf("expected stats view, got %q", m.CurrentView)
	}
	m = press(m, "1")
	if m.CurrentView != ViewTasks {
		t.Fatalf("expected tasks view, got %q", m.CurrentView)
	}
}

func TestUpdateSwitchViewMsg(t *testing.T) {
	m, _, _ := newTestModel(t)
	updated, _ := m.Update(SwitchViewMsg{View: ViewStats})
	next := updated.(Model)
	if next.CurrentView != ViewStats {
		t.Fatalf("expected stats view, got %q", next.CurrentView)
	}
	updated, _ = next.Update(SwitchViewMsg{View: View("Calendar")})
	next = updated.(Model)
	if next.CurrentView != ViewStats {
		t.Fatalf("expected view unchanged for unknown view, got %q", next.CurrentView)
	}
}

func TestStatusDismissIgnoresStaleTimers(t *testing.T) {
	m, _, _ := newTestModel(t)
	updated, cmd := m.Update(SetStatusMsg{Text: "first"})
	if cmd == nil {
		t.Fatal("expected a dismissal command")
	}
	firstSeq := updated.(Model).statusSeq
	updated, _ = updated.Update(SetStatusMsg{Text: "second", IsError: true})

	updated, _ = updated.Update(ClearStatusMsg{Seq: firstSeq})
	next := updated.(Model)
	if next.Status.Text != "second" || !next.Status.IsError {
		t.Fatalf("stale dismissal cleared newer status: %+v", next.Status)
	}

	updated, _ = next.Update(ClearStatusMsg{Seq: next.statusSeq})
	next = updated.(Model)
	if next.Status.Text != "" {
		t.Fatalf("expected cleared status, got %+v", next.Status)
	}
}

func TestAppErrorMsgSetsErrorStatus(t *testing.T) {
	m, _, _ := newTestModel(t)
	updated, _ := m.Update(AppErrorMsg{Err: context.DeadlineExceeded})
	next := updated.(Model)
	if next.LastError != context.DeadlineExceeded || !next.Status.IsError {
		t.Fatalf("unexpected error state: %v %+v", next.LastError, next.Status)
	}
}

func TestPaletteAddFocusAndRecord(t *testing.T) {
	m, ws, src := newTestModel(t)

	m = palette(m, "add Write report !high ~30")
	if m.Palette.Active {
		t.Fatal("palette should close after submit")
	}
	if !strings.HasPrefix(m.Status.Text, "added: Write report") {
		t.Fatalf("unexpected status: %+v", m.Status)
	}
	tasks := ws.Tasks(model.FilterAll)
	if len(tasks) != 1 || tasks[0].Priority != model.PriorityHigh || tasks[0].EstimatedMinutes != 30 {
		t.Fatalf("unexpected tasks: %+v", tasks)
	}
	if m.SelectedTaskID != tasks[0].ID {
		t.Fatalf("expected new task selected, got %q", m.SelectedTaskID)
	}

	m = palette(m, "focus 1")
	if m.CurrentView != ViewFocus {
		t.Fatalf("expected focus view, got %q", m.CurrentView)
	}
	if m.Focus.State != focus.StateRunning || m.Focus.OriginalSeconds != 30*60 {
		t.Fatalf("unexpected snapshot: %+v", m.Focus)
	}
	if !strings.Contains(m.Status.Text, "30:00") {
		t.Fatalf("expected duration in status, got %q", m.Status.Text)
	}

	src.Advance(30 * 60)
	ev := nextEvent(t, ws, app.EventSessionRecorded)
	updated, cmd := m.Update(EventMsg{Event: ev})
	if cmd == nil {
		t.Fatal("expected the event listener to be re-armed")
	}
	m = updated.(Model)
	if m.Status.Text != "focus complete: Write report (30 min)" {
		t.Fatalf("unexpected status: %q", m.Status.Text)
	}
	if ws.TodayStats().Sessions != 1 {
		t.Fatalf("expected one session today, got %+v", ws.TodayStats())
	}
}

func TestQuickAddUsesInlineModifiers(t *testing.T) {
	m, ws, _ := newTestModel(t)
	m = press(m, "a")
	if !m.QuickAdd {
		t.Fatal("expected quick add mode")
	}
	// Keys typed while adding must not switch views.
	m = press(m, "Reply to email @09:30 3", "enter")
	if m.QuickAdd {
		t.Fatal("quick add should close on enter")
	}
	if m.CurrentView != ViewTasks {
		t.Fatalf("view changed during quick add: %q", m.CurrentView)
	}
	tasks := ws.Tasks(model.FilterAll)
	if len(tasks) != 1 || tasks[0].Text != "Reply to email 3" || tasks[0].ScheduledTime != "09:30" {
		t.Fatalf("unexpected tasks: %+v", tasks)
	}

	m = press(m, "a", "esc")
	if m.QuickAdd || len(ws.Tasks(model.FilterAll)) != 1 {
		t.Fatal("esc should cancel quick add")
	}
}

func TestAnalyzeThenConvertToSubtasks(t *testing.T) {
	m, ws, _ := newTestModel(t)
	m = palette(m, "add Fix login bug ~40")
	id := m.SelectedTaskID

	m = palette(m, "analyze 1")
	if !m.Analyzing[id] {
		t.Fatal("expected task marked as analyzing")
	}
	if !strings.Contains(m.View(), "analyzing 1 task(s)") {
		t.Fatal("expected spinner line while analyzing")
	}

	msg := analyzeCmd(ws, id)()
	updated, _ := m.Update(msg)
	m = updated.(Model)
	if m.Analyzing[id] {
		t.Fatal("analysis flag should clear")
	}
	if m.Status.Text != "plan ready: 4 steps, 40 min (coding)" {
		t.Fatalf("unexpected status: %q", m.Status.Text)
	}

	m = press(m, "s")
	task, err := ws.Task(id)
	if err != nil {
		t.Fatalf("task: %v", err)
	}
	if len(task.Subtasks) != 4 || m.Status.Text != "4 subtasks created" {
		t.Fatalf("unexpected subtasks %d, status %q", len(task.Subtasks), m.Status.Text)
	}

	m = palette(m, "sub 1 2")
	task, _ = ws.Task(id)
	if !task.Subtasks[1].Completed {
		t.Fatalf("expected subtask 2 completed, status %q", m.Status.Text)
	}
	if task.Analysis == nil || !strings.Contains(m.View(), "subtasks:") {
		t.Fatal("expected plan and subtasks in detail pane")
	}
}

func TestDeleteNeedsSecondPress(t *testing.T) {
	m, ws, _ := newTestModel(t)
	m = palette(m, "add one")
	m = press(m, "d")
	if len(ws.Tasks(model.FilterAll)) != 1 {
		t.Fatal("first press must not delete")
	}
	m = press(m, "j", "d")
	if len(ws.Tasks(model.FilterAll)) != 1 {
		t.Fatal("another key in between must reset the confirmation")
	}
	m = press(m, "d")
	if len(ws.Tasks(model.FilterAll)) != 0 {
		t.Fatalf("expected task deleted, status %q", m.Status.Text)
	}
	if m.SelectedTaskID != "" {
		t.Fatalf("selection should clear, got %q", m.SelectedTaskID)
	}
}

func TestPaletteErrorsSurfaceInStatus(t *testing.T) {
	m, _, _ := newTestModel(t)
	m = palette(m, "done 3")
	if !m.Status.IsError || !strings.Contains(m.Status.Text, "no task #3") {
		t.Fatalf("unexpected status: %+v", m.Status)
	}
	m = palette(m, "reset")
	if !m.Status.IsError || !strings.Contains(m.Status.Text, "/reset confirm") {
		t.Fatalf("unexpected status: %+v", m.Status)
	}
	m = palette(m, "launch rockets")
	if !m.Status.IsError || !strings.Contains(m.Status.Text, "unknown_command") {
		t.Fatalf("unexpected status: %+v", m.Status)
	}
	m = palette(m, "reset confirm")
	if m.Status.IsError || m.Status.Text != "session history cleared" {
		t.Fatalf("unexpected status: %+v", m.Status)
	}
}

func TestFocusKeysPauseResumeStop(t *testing.T) {
	m, ws, src := newTestModel(t)
	m = palette(m, "add Study chapter")
	m = press(m, "f")
	if m.CurrentView != ViewFocus || m.Focus.OriginalSeconds != app.DefaultFocusMinutes*60 {
		t.Fatalf("unexpected focus start: %q %+v", m.CurrentView, m.Focus)
	}
	src.Advance(5)

	m = press(m, " ")
	if m.Focus.State != focus.StatePaused || m.Focus.RemainingSeconds != 25*60-5 {
		t.Fatalf("expected paused with 5s elapsed, got %+v", m.Focus)
	}
	m = press(m, " ")
	if m.Focus.State != focus.StateRunning {
		t.Fatalf("expected running, got %+v", m.Focus)
	}
	m = press(m, "s")
	if m.Focus.State != focus.StateIdle {
		t.Fatalf("expected idle after stop, got %+v", m.Focus)
	}
	if len(ws.Sessions()) != 0 {
		t.Fatal("stopping must not record a session")
	}
}

func TestStatsKeysAdjustGoal(t *testing.T) {
	m, ws, _ := newTestModel(t)
	m = press(m, "3", "+", "+")
	if ws.Settings().DailyGoalSessions != model.DefaultDailyGoal+2 {
		t.Fatalf("unexpected goal %d", ws.Settings().DailyGoalSessions)
	}
	m = press(m, "-", "-", "-", "-", "-", "-", "-")
	if ws.Settings().DailyGoalSessions != 1 {
		t.Fatalf("goal must not drop below 1, got %d", ws.Settings().DailyGoalSessions)
	}
	if !strings.Contains(m.View(), "today: 0 sessions, 0 min (goal 1)") {
		t.Fatalf("unexpected stats view:\n%s", m.View())
	}
}

func TestTabCyclesFilter(t *testing.T) {
	m, ws, _ := newTestModel(t)
	m = palette(m, "add open task")
	m = palette(m, "add finished task")
	if _, err := ws.ToggleTask(m.SelectedTaskID); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	m = press(m, "tab")
	if m.Filter != model.FilterPending || len(m.visibleTasks()) != 1 {
		t.Fatalf("expected one pending task, filter %q", m.Filter)
	}
	m = press(m, "tab")
	if m.Filter != model.FilterCompleted || m.visibleTasks()[0].Text != "finished task" {
		t.Fatalf("unexpected completed list under %q", m.Filter)
	}
	m = press(m, "tab")
	if m.Filter != model.FilterAll {
		t.Fatalf("expected filter to wrap to all, got %q", m.Filter)
	}
}

func TestPaletteExportImportRoundTrip(t *testing.T) {
	m, ws, _ := newTestModel(t)
	m = palette(m, "add keep me")
	path := filepath.Join(t.TempDir(), "backup.json")

	m = palette(m, "export "+path)
	if m.Status.IsError {
		t.Fatalf("export failed: %s", m.Status.Text)
	}
	m = palette(m, "delete 1")
	if len(ws.Tasks(model.FilterAll)) != 0 {
		t.Fatal("expected task deleted")
	}
	m = palette(m, "import "+path)
	if m.Status.IsError || !strings.HasPrefix(m.Status.Text, "imported") {
		t.Fatalf("unexpected import status: %+v", m.Status)
	}
	tasks := ws.Tasks(model.FilterAll)
	if len(tasks) != 1 || tasks[0].Text != "keep me" {
		t.Fatalf("unexpected tasks after import: %+v", tasks)
	}
}

func TestQuitKey(t *testing.T) {
	m, _, _ := newTestModel(t)
	updated, cmd := m.Update(keyMsg("q"))
	if !updated.(Model).Quitting || cmd == nil {
		t.Fatal("expected quit")
	}
	if updated.(Model).View() != "" {
		t.Fatal("expected empty view after quit")
	}
}

func TestFormatDuration(t *testing.T) {
	cases := map[int]string{0: "00:00", 59: "00:59", 1500: "25:00", -3: "00:00"}
	for in, want := range cases {
		if got := formatDuration(in); got != want {
			t.Fatalf("formatDuration(%d) = %q, want %q", in, got, want)
		}
	}
}
