package cli

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"taskbridge/backend/sync"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true)
	sectionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	lineStyle    = lipgloss.NewStyle().PaddingLeft(2)
	countStyle   = lipgloss.NewStyle().Faint(true)
	boxStyle     = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)
)

// IsTerminal reports whether stdout is attached to a terminal
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// GetTerminalWidth returns the current terminal width, defaulting to 80 if unable to detect
func GetTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 80
	}
	return width
}

// RenderSummary renders the run summary inside a bordered box sized to the
// terminal.
func RenderSummary(provider sync.Provider, stats sync.Stats, log sync.RunLog) string {
	width := GetTerminalWidth() - 4
	if width < 40 {
		width = 40
	}
	if width > 100 {
		width = 100
	}

	content := headerStyle.Render(fmt.Sprintf("%s sync results", provider.Name)) + "\n"

	if len(log.Remote) > 0 {
		content += "\n" + sectionStyle.Render("on remote server:") + "\n"
		for _, line := range log.Remote {
			content += lineStyle.Render(line) + "\n"
		}
	}
	if len(log.Local) > 0 {
		content += "\n" + sectionStyle.Render("on astrid:") + "\n"
		for _, line := range log.Local {
			content += lineStyle.Render(line) + "\n"
		}
	}

	content += "\n" + countStyle.Render(fmt.Sprintf(
		"local: %d created, %d updated, %d deleted, %d merged",
		stats.LocalCreated, stats.LocalUpdated, stats.LocalDeleted, stats.Merged)) + "\n"
	content += countStyle.Render(fmt.Sprintf(
		"remote: %d created, %d updated, %d deleted",
		stats.RemoteCreated, stats.RemoteUpdated, stats.RemoteDeleted))

	return boxStyle.Width(width).Render(content)
}

// PlainReporter writes progress and the summary straight to stdout, for
// foreground runs without a usable terminal.
type PlainReporter struct{}

// Tick implements sync.Reporter
func (PlainReporter) Tick(int, int) {}

// Label implements sync.Reporter
func (PlainReporter) Label(text string) {
	fmt.Println(text)
}

// Log implements sync.Reporter
func (PlainReporter) Log(line string) {
	fmt.Println("  " + line)
}

// Summary implements sync.Reporter
func (PlainReporter) Summary(provider sync.Provider, stats sync.Stats, log sync.RunLog) {
	fmt.Println(sync.FormatSummary(provider.Name, stats, log))
}
