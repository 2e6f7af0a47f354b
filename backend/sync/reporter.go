package sync

import (
	"taskbridge/internal/utils"
)

// Reporter receives progress and the final run summary. It is the only
// component allowed to render; the engine never formats UI strings beyond
// the plaintext log. Tick and Label must not block the sync worker.
type Reporter interface {
	// Tick advances the progress indicator within the current phase.
	Tick(step, outOf int)
	// Label announces a transient phase caption.
	Label(text string)
	// Log records one plaintext change-log line. In background mode this and,
	// unless the summary is suppressed, Summary are the calls that leave a
	// trace.
	Log(line string)
	// Summary delivers the final outcome. Called only when something
	// changed.
	Summary(provider Provider, stats Stats, log RunLog)
}

// NopReporter discards everything.
type NopReporter struct{}

// Tick implements Reporter
func (NopReporter) Tick(int, int) {}

// Label implements Reporter
func (NopReporter) Label(string) {}

// Log implements Reporter
func (NopReporter) Log(string) {}

// Summary implements Reporter
func (NopReporter) Summary(Provider, Stats, RunLog) {}

// LogReporter routes log lines and the summary through the process logger.
// Used for background runs, where no progress surface exists.
type LogReporter struct {
	Logger *utils.Logger
}

// Tick implements Reporter
func (r *LogReporter) Tick(int, int) {}

// Label implements Reporter
func (r *LogReporter) Label(text string) {
	r.Logger.Debug("sync: %s", text)
}

// Log implements Reporter
func (r *LogReporter) Log(line string) {
	r.Logger.Info("sync: %s", line)
}

// Summary implements Reporter
func (r *LogReporter) Summary(provider Provider, stats Stats, log RunLog) {
	r.Logger.Info("%s", FormatSummary(provider.Name, stats, log))
}
