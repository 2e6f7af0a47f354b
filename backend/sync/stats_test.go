package sync

import (
	"strings"
	"testing"
)

func TestStatsHasChanges(t *testing.T) {
	if (Stats{}).HasChanges() {
		t.Error("Zero stats must report no changes")
	}
	if !(Stats{LocalDeleted: 1}).HasChanges() {
		t.Error("Nonzero counter must report changes")
	}
}

func TestFormatSummarySections(t *testing.T) {
	stats := Stats{RemoteCreated: 1, LocalDeleted: 1}
	log := RunLog{
		Remote: []string{"added 'Buy milk'"},
		Local:  []string{"deleted Gym"},
	}

	out := FormatSummary("worktasks", stats, log)

	if !strings.HasPrefix(out, "worktasks sync results") {
		t.Errorf("Expected provider header, got %q", out)
	}
	for _, want := range []string{"on remote server:", "added 'Buy milk'", "on astrid:", "deleted Gym"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected summary to contain %q:\n%s", want, out)
		}
	}
	if !strings.Contains(out, "remote: 1 created, 0 updated, 0 deleted") {
		t.Errorf("Expected remote counters:\n%s", out)
	}
}

func TestFormatSummaryOmitsEmptySections(t *testing.T) {
	out := FormatSummary("worktasks", Stats{RemoteUpdated: 2}, RunLog{})

	if strings.Contains(out, "on remote server:") || strings.Contains(out, "on astrid:") {
		t.Errorf("Empty sections must be omitted:\n%s", out)
	}
}
