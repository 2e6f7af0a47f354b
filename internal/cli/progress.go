package cli

import (
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"taskbridge/backend/sync"
)

// Messages sent from the sync worker into the progress program.
type tickMsg struct{ step, outOf int }
type labelMsg string
type logMsg string
type summaryMsg struct {
	provider sync.Provider
	stats    sync.Stats
	log      sync.RunLog
}
type finishedMsg struct{}

const maxVisibleLogLines = 5

var (
	labelStyle = lipgloss.NewStyle().Bold(true)
	logStyle   = lipgloss.NewStyle().Faint(true).PaddingLeft(2)
)

type progressModel struct {
	bar     progress.Model
	label   string
	percent float64
	lines   []string
	summary string
}

func newProgressModel() progressModel {
	return progressModel{
		bar:   progress.New(progress.WithDefaultGradient()),
		label: "starting sync",
	}
}

func (m progressModel) Init() tea.Cmd {
	return nil
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		width := msg.Width - 6
		if width > 60 {
			width = 60
		}
		if width > 0 {
			m.bar.Width = width
		}
	case tickMsg:
		if msg.outOf > 0 {
			m.percent = float64(msg.step) / float64(msg.outOf)
		}
	case labelMsg:
		m.label = string(msg)
	case logMsg:
		m.lines = append(m.lines, string(msg))
		if len(m.lines) > maxVisibleLogLines {
			m.lines = m.lines[len(m.lines)-maxVisibleLogLines:]
		}
	case summaryMsg:
		m.summary = RenderSummary(msg.provider, msg.stats, msg.log)
	case finishedMsg:
		return m, tea.Quit
	}
	return m, nil
}

func (m progressModel) View() string {
	view := labelStyle.Render(m.label) + "\n" + m.bar.ViewAs(m.percent) + "\n"
	for _, line := range m.lines {
		view += logStyle.Render(line) + "\n"
	}
	return view
}

// ProgressReporter renders sync progress as an interactive terminal program.
// It implements sync.Reporter; Tick, Label and Log hand off to the UI without
// blocking the sync worker, while Summary is sent synchronously.
type ProgressReporter struct {
	program *tea.Program
	done    chan progressModel
}

// NewProgressReporter starts the progress program. Call Close after the run
// to tear the surface down and print the summary.
func NewProgressReporter() *ProgressReporter {
	r := &ProgressReporter{
		done: make(chan progressModel, 1),
	}
	r.program = tea.NewProgram(newProgressModel())
	go func() {
		final, err := r.program.Run()
		if err != nil {
			r.done <- newProgressModel()
			return
		}
		r.done <- final.(progressModel)
	}()
	return r
}

// Tick implements sync.Reporter
func (r *ProgressReporter) Tick(step, outOf int) {
	go r.program.Send(tickMsg{step: step, outOf: outOf})
}

// Label implements sync.Reporter
func (r *ProgressReporter) Label(text string) {
	go r.program.Send(labelMsg(text))
}

// Log implements sync.Reporter
func (r *ProgressReporter) Log(line string) {
	go r.program.Send(logMsg(line))
}

// Summary implements sync.Reporter. Sent synchronously so it cannot race
// the teardown in Close; the run is over by the time it fires.
func (r *ProgressReporter) Summary(provider sync.Provider, stats sync.Stats, log sync.RunLog) {
	r.program.Send(summaryMsg{provider: provider, stats: stats, log: log})
}

// Close shuts the progress surface down and prints the summary, if any.
func (r *ProgressReporter) Close() {
	r.program.Send(finishedMsg{})
	final := <-r.done
	if final.summary != "" {
		fmt.Println(final.summary)
	}
}
