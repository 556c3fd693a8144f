// Package notify delivers desktop notifications for focus events.
package notify

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"time"
)

type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

type Notification struct {
	Title string
	Body  string
	Level Level
	At    time.Time
}

type Notifier interface {
	Send(Notification) error
}

type Noop struct{}

func (Noop) Send(Notification) error { return nil }

// Exec shells out to notify-send on Linux and osascript on macOS. Other
// platforms are a no-op.
type Exec struct {
	// GOOS overrides runtime.GOOS.
	GOOS string
	// Run executes the command. Defaults to (*exec.Cmd).Run.
	Run func(name string, args ...string) error
}

func (e Exec) Send(n Notification) error {
	name, args, ok := e.command(n)
	if !ok {
		return nil
	}
	run := e.Run
	if run == nil {
		run = func(name string, args ...string) error {
			return exec.Command(name, args...).Run()
		}
	}
	if err := run(name, args...); err != nil {
		return fmt.Errorf("notify: %s: %w", name, err)
	}
	return nil
}

func (e Exec) command(n Notification) (string, []string, bool) {
	goos := e.GOOS
	if goos == "" {
		goos = runtime.GOOS
	}
	switch goos {
	case "linux":
		return "notify-send", []string{n.Title, n.Body}, true
	case "darwin":
		script := fmt.Sprintf(`display notification "%s" with title "%s"`, escapeAppleScript(n.Body), escapeAppleScript(n.Title))
		return "osascript", []string{"-e", script}, true
	default:
		return "", nil, false
	}
}

func escapeAppleScript(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}

// Recorder keeps every notification in memory. Used by tests and the TUI
// notification log.
type Recorder struct {
	mu    sync.Mutex
	sent  []Notification
	limit int
}

// NewRecorder keeps at most limit notifications; zero keeps all.
func NewRecorder(limit int) *Recorder {
	return &Recorder{limit: limit}
}

func (r *Recorder) Send(n Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
	if r.limit > 0 && len(r.sent) > r.limit {
		r.sent = r.sent[len(r.sent)-r.limit:]
	}
	return nil
}

func (r *Recorder) Sent() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.sent...)
}

// Multi fans a notification out to several notifiers and returns the first
// error after trying all of them.
type Multi []Notifier

func (m Multi) Send(n Notification) error {
	var first error
	for _, target := range m {
		if target == nil {
			continue
		}
		if err := target.Send(n); err != nil && first == nil {
			first = err
		}
	}
	return first
}
