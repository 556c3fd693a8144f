package update

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"

	"github.com/elicat001/ai-smart-pomodoro-timer/internal/commands"
	"github.com/elicat001/ai-smart-pomodoro-timer/internal/views"
)

type KeyBinding struct {
	Key    string
	Action string
}

type helpKeyMap struct {
	short []key.Binding
	full  [][]key.Binding
}

func (k helpKeyMap) ShortHelp() []key.Binding  { return k.short }
func (k helpKeyMap) FullHelp() [][]key.Binding { return k.full }

func (m Model) renderHelpView() string {
	global := toKeyBindings(m.globalBindings())
	local := toKeyBindings(m.viewBindings())
	var plain []string
	for _, kb := range m.viewBindings() {
		plain = append(plain, fmt.Sprintf("- %s: %s", kb.Key, kb.Action))
	}
	names := make([]string, 0, len(commands.Names()))
	for _, n := range commands.Names() {
		names = append(names, string(n))
	}
	plain = append(plain, "commands: /"+strings.Join(names, " /"))
	return views.RenderHelpPanel(views.HelpPanelData{
		CurrentView: string(m.CurrentView),
		Bindings:    plain,
		HelpView: m.helpModel.View(helpKeyMap{
			short: global,
			full:  [][]key.Binding{global, local},
		}),
	})
}

func (m Model) globalBindings() []KeyBinding {
	return []KeyBinding{
		{Key: m.Keys.Tasks, Action: "tasks"},
		{Key: m.Keys.Focus, Action: "focus"},
		{Key: m.Keys.Stats, Action: "stats"},
		{Key: "/", Action: "command palette"},
		{Key: m.Keys.Help, Action: "toggle help"},
		{Key: m.Keys.Quit, Action: "quit"},
	}
}

func (m Model) viewBindings() []KeyBinding {
	switch m.CurrentView {
	case ViewTasks:
		return []KeyBinding{
			{Key: "j/k", Action: "move"},
			{Key: "a", Action: "quick add"},
			{Key: "x", Action: "toggle done"},
			{Key: "z", Action: "analyze"},
			{Key: "s", Action: "plan to subtasks"},
			{Key: "f", Action: "start focus"},
			{Key: "d", Action: "delete (press twice)"},
			{Key: "tab", Action: "cycle filter"},
		}
	case ViewFocus:
		return []KeyBinding{
			{Key: "space", Action: "pause/resume"},
			{Key: "s", Action: "stop without recording"},
		}
	case ViewStats:
		return []KeyBinding{
			{Key: "+/-", Action: "adjust daily goal"},
		}
	}
	return nil
}

func toKeyBindings(in []KeyBinding) []key.Binding {
	out := make([]key.Binding, 0, len(in))
	for _, kb := range in {
		out = append(out, key.NewBinding(key.WithKeys(kb.Key), key.WithHelp(kb.Key, kb.Action)))
	}
	return out
}
