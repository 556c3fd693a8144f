// Package update holds the bubbletea model for the terminal UI.
package update

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"

	"github.com/elicat001/ai-smart-pomodoro-timer/internal/analysis"
	"github.com/elicat001/ai-smart-pomodoro-timer/internal/app"
	"github.com/elicat001/ai-smart-pomodoro-timer/internal/focus"
	"github.com/elicat001/ai-smart-pomodoro-timer/internal/model"
)

const DefaultStatusTTL = 4 * time.Second

type View string

const (
	ViewTasks View = "Tasks"
	ViewFocus View = "Focus"
	ViewStats View = "Stats"
)

type StatusBar struct {
	Text    string
	IsError bool
}

type GlobalKeyMap struct {
	Tasks string
	Focus string
	Stats string
	Help  string
	Quit  string
}

type CommandPaletteState struct {
	Active bool
	Input  string
}

type Options struct {
	// StatusTTL is how long a status banner stays up. Zero means
	// DefaultStatusTTL.
	StatusTTL time.Duration
	// Header overrides the title line.
	Header string
}

type Model struct {
	CurrentView    View
	Filter         model.Filter
	Cursor         int
	SelectedTaskID string
	Palette        CommandPaletteState
	QuickAdd       bool
	HelpVisible    bool
	Status         StatusBar
	Keys           GlobalKeyMap
	Focus          focus.Snapshot
	Analyzing      map[string]bool
	Quitting       bool
	LastError      error
	Width          int

	ws            *app.Workspace
	header        string
	statusTTL     time.Duration
	statusSeq     int
	pendingDelete string

	quickAddInput   textinput.Model
	commandInput    textinput.Model
	focusProgress   progress.Model
	analysisSpinner spinner.Model
	helpModel       help.Model
	weekTable       table.Model
}

func NewModel(ws *app.Workspace, opts Options) Model {
	m := Model{
		CurrentView: ViewTasks,
		Filter:      model.FilterAll,
		Keys: GlobalKeyMap{
			Tasks: "1",
			Focus: "2",
			Stats: "3",
			Help:  "?",
			Quit:  "q",
		},
		Analyzing: make(map[string]bool),
		ws:        ws,
		header:    opts.Header,
		statusTTL: opts.StatusTTL,
	}
	if m.header == "" {
		m.header = "AI Pomodoro"
	}
	if m.statusTTL <= 0 {
		m.statusTTL = DefaultStatusTTL
	}
	m.initBubbleComponents()
	m.refresh()
	return m
}

type SwitchViewMsg struct {
	View View
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

// ClearStatusMsg clears the banner only if no newer status replaced it.
type ClearStatusMsg struct {
	Seq int
}

type AppErrorMsg struct {
	Err error
}

type EventMsg struct {
	Event app.Event
}

type FocusTickMsg struct{}

type AnalysisDoneMsg struct {
	TaskID  string
	Outcome analysis.Outcome
	Err     error
}

func isValidView(v View) bool {
	switch v {
	case ViewTasks, ViewFocus, ViewStats:
		return true
	default:
		return false
	}
}
