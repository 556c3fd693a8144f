package views

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

const (
	defaultPaneWidth = 58
	minPaneWidth     = 28
)

// AppData is one frame of the two-pane layout. Width is the terminal width;
// zero keeps the fixed default.
type AppData struct {
	Header       string
	FocusState   string
	LeftPane     string
	RightPane    string
	StatusLine   string
	StatusError  bool
	Footer       string
	Notification string
	Width        int
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	panelStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	badgeStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)

	focusColors = map[string]lipgloss.Color{
		"running":   lipgloss.Color("203"),
		"paused":    lipgloss.Color("214"),
		"completed": lipgloss.Color("42"),
	}
)

func RenderApp(data AppData) string {
	pane := paneWidth(data.Width)
	left := panelStyle.Width(pane).Render(data.LeftPane)
	right := panelStyle.Width(pane).Render(data.RightPane)
	row := lipgloss.JoinHorizontal(lipgloss.Top, left, right)

	header := headerStyle.Render(data.Header)
	if badge := focusBadge(data.FocusState); badge != "" {
		header = lipgloss.JoinHorizontal(lipgloss.Center, header, " ", badge)
	}

	lines := []string{header, row}
	if data.StatusLine != "" {
		if data.StatusError || strings.HasPrefix(strings.ToLower(data.StatusLine), "error") {
			lines = append(lines, errorStyle.Render(data.StatusLine))
		} else {
			lines = append(lines, statusStyle.Render(data.StatusLine))
		}
	}
	if data.Notification != "" {
		lines = append(lines, panelStyle.Render(data.Notification))
	}
	if data.Footer != "" {
		lines = append(lines, footerStyle.Render(data.Footer))
	}
	return strings.Join(lines, "\n")
}

// paneWidth splits the terminal between two bordered panes.
func paneWidth(total int) int {
	if total <= 0 {
		return defaultPaneWidth
	}
	w := total/2 - 4
	if w < minPaneWidth {
		return minPaneWidth
	}
	return w
}

// focusBadge is empty while idle.
func focusBadge(state string) string {
	color, ok := focusColors[state]
	if !ok {
		return ""
	}
	return badgeStyle.Background(color).Foreground(lipgloss.Color("0")).Render(strings.ToUpper(state))
}

func RenderMarkdown(md string) string {
	if strings.TrimSpace(md) == "" {
		return ""
	}
	out, err := glamour.Render(md, "dark")
	if err != nil {
		return md
	}
	return strings.TrimSpace(out)
}
