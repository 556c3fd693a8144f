package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"

	"github.com/elicat001/ai-smart-pomodoro-timer/internal/app"
	"github.com/elicat001/ai-smart-pomodoro-timer/internal/scheduler"
)

// writeConfig points the app at a private data directory.
func writeConfig(t *testing.T, extra string) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("XDG_DATA_HOME", dir)
	path := filepath.Join(dir, "config.yaml")
	body := fmt.Sprintf("data_path: %s\nlogging:\n  file: %s\npersist:\n  debounce_ms: 0\n%s",
		filepath.Join(dir, "store.db"), filepath.Join(dir, "app.log"), extra)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

// executeCommand runs a fresh command tree and returns captured output.
func executeCommand(cfgPath string, ro app.RuntimeOptions, args ...string) (string, error) {
	root := newRootCmd(&env{v: viper.New(), ro: ro})
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := root.Execute()
	return buf.String(), err
}

func mustRun(t *testing.T, cfgPath string, args ...string) string {
	t.Helper()
	out, err := executeCommand(cfgPath, app.RuntimeOptions{}, args...)
	if err != nil {
		t.Fatalf("%v: %v\n%s", args, err, out)
	}
	return out
}

func TestRootCommandTree(t *testing.T) {
	root := NewRootCmd()
	if root.Use != "aipomodoro" {
		t.Fatalf("root.Use = %q", root.Use)
	}
	want := []string{"tui", "task", "focus", "stats", "ledger", "export", "import", "footprint", "config"}
	have := make(map[string]bool)
	for _, c := range root.Commands() {
		have[c.Name()] = true
	}
	for _, name := range want {
		if !have[name] {
			t.Errorf("missing subcommand %q", name)
		}
	}
	if root.PersistentFlags().Lookup("config") == nil {
		t.Error("missing --config flag")
	}
}

func TestTaskLifecycle(t *testing.T) {
	cfg := writeConfig(t, "")

	out := mustRun(t, cfg, "task", "add", "Write", "quarterly", "report", "!high", "@09:30", "~60")
	if !strings.Contains(out, "Added Write quarterly report [high]") {
		t.Fatalf("unexpected add output: %q", out)
	}
	mustRun(t, cfg, "task", "add", "Reply", "to", "email")

	out = mustRun(t, cfg, "task", "list")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 || !strings.Contains(lines[0], "Write quarterly report @09:30 ~60m") {
		t.Fatalf("unexpected list:\n%s", out)
	}

	out = mustRun(t, cfg, "task", "analyze", "1")
	if !strings.Contains(out, "## Plan: writing (60 min)") {
		t.Fatalf("unexpected analysis:\n%s", out)
	}
	out = mustRun(t, cfg, "task", "steps", "1")
	if strings.Count(out, "min)\n") != 4 {
		t.Fatalf("expected four steps:\n%s", out)
	}

	out = mustRun(t, cfg, "task", "done", "2")
	if !strings.Contains(out, "Completed Reply to email") {
		t.Fatalf("unexpected done output: %q", out)
	}
	out = mustRun(t, cfg, "task", "list", "--filter", "pending")
	if strings.Contains(out, "Reply to email") || !strings.Contains(out, "(0/4 steps)") {
		t.Fatalf("unexpected pending list:\n%s", out)
	}

	if _, err := executeCommand(cfg, app.RuntimeOptions{}, "task", "done", "9"); err == nil {
		t.Fatal("expected error for missing task")
	}
	if _, err := executeCommand(cfg, app.RuntimeOptions{}, "task", "add", "x", "!urgent"); err == nil {
		t.Fatal("expected error for unknown priority")
	}
}

func TestFocusWaitsForRecordedSession(t *testing.T) {
	cfg := writeConfig(t, "")
	mustRun(t, cfg, "task", "add", "Study", "chapter", "3")

	src := scheduler.NewManual()
	go func() {
		deadline := time.Now().Add(5 * time.Second)
		for !src.Running() && time.Now().Before(deadline) {
			time.Sleep(5 * time.Millisecond)
		}
		src.Advance(60)
	}()

	out, err := executeCommand(cfg, app.RuntimeOptions{TickSource: src}, "focus", "1", "1")
	if err != nil {
		t.Fatalf("focus: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Focusing on Study chapter 3 for 1 min") || !strings.Contains(out, "Session recorded: 1 min. Today: 1/4.") {
		t.Fatalf("unexpected focus output:\n%s", out)
	}

	out = mustRun(t, cfg, "ledger", "list")
	if !strings.Contains(out, "1 min  Study chapter 3") {
		t.Fatalf("unexpected ledger:\n%s", out)
	}
	out = mustRun(t, cfg, "stats")
	if !strings.Contains(out, "Today:    1/4 sessions, 1 min") || !strings.Contains(out, "First focus session") {
		t.Fatalf("unexpected stats:\n%s", out)
	}
}

func TestLedgerResetAndGoal(t *testing.T) {
	cfg := writeConfig(t, "")
	_, err := executeCommand(cfg, app.RuntimeOptions{}, "ledger", "reset")
	if err == nil || !strings.Contains(err.Error(), "--yes") {
		t.Fatalf("expected confirmation error, got %v", err)
	}
	out := mustRun(t, cfg, "ledger", "reset", "--yes")
	if !strings.Contains(out, "cleared") {
		t.Fatalf("unexpected reset output: %q", out)
	}
	out = mustRun(t, cfg, "ledger", "goal", "--adjust", "2")
	if !strings.Contains(out, "Daily goal: 6 sessions") {
		t.Fatalf("unexpected goal output: %q", out)
	}
	out = mustRun(t, cfg, "ledger", "goal")
	if !strings.Contains(out, "Daily goal: 6 sessions") {
		t.Fatalf("goal did not persist: %q", out)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	cfg := writeConfig(t, "")
	mustRun(t, cfg, "task", "add", "Keep", "me")
	backupPath := filepath.Join(t.TempDir(), "backup.json")

	out := mustRun(t, cfg, "export", "--out", backupPath)
	if !strings.Contains(out, "Exported") {
		t.Fatalf("unexpected export output: %q", out)
	}
	mustRun(t, cfg, "task", "delete", "1")
	if out := mustRun(t, cfg, "task", "list"); !strings.Contains(out, "No tasks.") {
		t.Fatalf("expected empty list:\n%s", out)
	}

	out = mustRun(t, cfg, "import", backupPath)
	if !strings.Contains(out, "Imported:") || !strings.Contains(out, "tasks") {
		t.Fatalf("unexpected import output: %q", out)
	}
	if out := mustRun(t, cfg, "task", "list"); !strings.Contains(out, "Keep me") {
		t.Fatalf("task not restored:\n%s", out)
	}

	out = mustRun(t, cfg, "footprint")
	if !strings.Contains(out, "entries") || !strings.Contains(out, "of 5242880") {
		t.Fatalf("unexpected footprint: %q", out)
	}
}

func TestConfigCommands(t *testing.T) {
	cfg := writeConfig(t, "analysis:\n  api_key: sk-secret\n")

	out := mustRun(t, cfg, "config", "path")
	if strings.TrimSpace(out) != cfg {
		t.Fatalf("unexpected path: %q", out)
	}
	out = mustRun(t, cfg, "config", "show")
	if !strings.Contains(out, "daily_sessions: 4") || strings.Contains(out, "sk-secret") || strings.Contains(out, "aipomodoro-local-key") {
		t.Fatalf("unexpected config output:\n%s", out)
	}

	fresh := filepath.Join(t.TempDir(), "nested", "config.yaml")
	out = mustRun(t, fresh, "config", "init")
	if !strings.Contains(out, fresh) {
		t.Fatalf("unexpected init output: %q", out)
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	if _, err := executeCommand(fresh, app.RuntimeOptions{}, "config", "init"); err == nil {
		t.Fatal("expected error when the file already exists")
	}
}

func TestInvalidConfigIsRejected(t *testing.T) {
	cfg := writeConfig(t, "goal:\n  daily_sessions: 0\n")
	if _, err := executeCommand(cfg, app.RuntimeOptions{}, "stats"); err == nil {
		t.Fatal("expected validation error")
	}
}
