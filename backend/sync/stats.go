package sync

import (
	"fmt"
	"strings"
	"time"
)

// Stats counts what one run changed, split by side. Local and remote
// created/updated never double-count the same task.
type Stats struct {
	LocalCreated  int
	LocalUpdated  int
	LocalDeleted  int
	Merged        int
	RemoteCreated int
	RemoteUpdated int
	RemoteDeleted int
}

// HasChanges reports whether any counter is nonzero.
func (s Stats) HasChanges() bool {
	return s.LocalCreated+s.LocalUpdated+s.LocalDeleted+s.Merged+
		s.RemoteCreated+s.RemoteUpdated+s.RemoteDeleted > 0
}

// RunLog is the plaintext change log of one run, split into the lines
// produced while pushing (phases 1-3) and the lines produced while applying
// remote state (phase 4).
type RunLog struct {
	Remote []string
	Local  []string
}

// RunResult is what a completed run hands back to the caller.
type RunResult struct {
	Stats    Stats
	Log      RunLog
	Duration time.Duration
}

// FormatSummary renders the human-readable run summary: a provider header,
// the two log sections, and the counters. Callers suppress it entirely when
// no counter is nonzero.
func FormatSummary(providerName string, stats Stats, log RunLog) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s sync results\n", providerName)

	if len(log.Remote) > 0 {
		b.WriteString("\non remote server:\n")
		for _, line := range log.Remote {
			fmt.Fprintf(&b, "  %s\n", line)
		}
	}
	if len(log.Local) > 0 {
		b.WriteString("\non astrid:\n")
		for _, line := range log.Local {
			fmt.Fprintf(&b, "  %s\n", line)
		}
	}

	fmt.Fprintf(&b, "\nlocal: %d created, %d updated, %d deleted, %d merged\n",
		stats.LocalCreated, stats.LocalUpdated, stats.LocalDeleted, stats.Merged)
	fmt.Fprintf(&b, "remote: %d created, %d updated, %d deleted\n",
		stats.RemoteCreated, stats.RemoteUpdated, stats.RemoteDeleted)
	return b.String()
}
