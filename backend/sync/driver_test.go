package sync

import (
	"context"
	"errors"
	"testing"

	"taskbridge/backend"
)

// recordingReporter captures reporter traffic for assertions.
type recordingReporter struct {
	labels    []string
	logLines  []string
	summaries int
}

func (r *recordingReporter) Tick(int, int) {}

func (r *recordingReporter) Label(text string) {
	r.labels = append(r.labels, text)
}

func (r *recordingReporter) Log(line string) {
	r.logLines = append(r.logLines, line)
}

func (r *recordingReporter) Summary(Provider, Stats, RunLog) {
	r.summaries++
}

// Running twice against unchanged local and remote state is a no-op the
// second time.
func TestSecondRunIsNoOp(t *testing.T) {
	env := newSyncTestEnv(t)
	env.saveTask(t, &backend.Task{Name: "Buy milk"})
	env.saveTask(t, &backend.Task{Name: "Write report", Notes: "draft"})

	first := env.run(t)
	if !first.Stats.HasChanges() {
		t.Fatalf("Expected first run to change things, got %+v", first.Stats)
	}

	second := env.run(t)
	if second.Stats.HasChanges() {
		t.Errorf("Expected zero counters on second run, got %+v", second.Stats)
	}
}

// A locally created task round-trips: its remote form equals its local form
// after the run.
func TestCreateRoundTrip(t *testing.T) {
	env := newSyncTestEnv(t)
	task := &backend.Task{Name: "Buy milk", Notes: "2 liters", Importance: 4}
	env.saveTask(t, task)

	env.run(t)

	mappings, err := env.mappings.GetSyncMappings(testProvider.ID)
	if err != nil {
		t.Fatalf("GetSyncMappings failed: %v", err)
	}
	if len(mappings) != 1 {
		t.Fatalf("Expected one mapping, got %+v", mappings)
	}

	remote, err := env.adapter.RefetchTask(context.Background(), &backend.TaskProxy{RemoteID: mappings[0].RemoteID})
	if err != nil {
		t.Fatalf("RefetchTask failed: %v", err)
	}
	if remote.Name != task.Name || remote.Notes != task.Notes || remote.Importance != task.Importance {
		t.Errorf("Remote form diverged from local: %+v", remote)
	}
}

// An unauthorized fetch aborts the run with an auth error before phase 1.
func TestAuthFailureAbortsRun(t *testing.T) {
	env := newSyncTestEnv(t)
	env.saveTask(t, &backend.Task{Name: "Buy milk"})
	env.adapter.FetchErr = backend.NewBackendError("FetchTasks", 401, "token expired")

	_, err := env.driver.Run(context.Background())
	if err == nil {
		t.Fatal("Expected run to fail")
	}
	var syncErr *SyncError
	if !errors.As(err, &syncErr) || syncErr.Kind != KindAuth {
		t.Errorf("Expected auth error, got %v", err)
	}
	if len(env.adapter.CreateCalls) != 0 {
		t.Errorf("No phase may run after a fetch failure, got %v", env.adapter.CreateCalls)
	}
}

// A transport failure on fetch surfaces as a remote error.
func TestFetchFailureIsRemoteError(t *testing.T) {
	env := newSyncTestEnv(t)
	env.adapter.FetchErr = backend.NewBackendError("FetchTasks", 503, "unavailable")

	_, err := env.driver.Run(context.Background())
	var syncErr *SyncError
	if !errors.As(err, &syncErr) || syncErr.Kind != KindRemote {
		t.Errorf("Expected remote error, got %v", err)
	}
}

// Cancellation between tasks stops the run, keeps dirty flags, and returns
// the partial result.
func TestCancellationPreservesDirtyFlags(t *testing.T) {
	env := newSyncTestEnv(t)
	task := &backend.Task{Name: "Pending"}
	env.saveTask(t, task)
	env.mapTask(t, task, "RP", true)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := env.driver.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
	if result == nil {
		t.Fatal("Expected partial result on cancellation")
	}

	mappings, err := env.mappings.GetSyncMappings(testProvider.ID)
	if err != nil {
		t.Fatalf("GetSyncMappings failed: %v", err)
	}
	if len(mappings) != 1 || !mappings[0].Updated {
		t.Errorf("Cancelled run must keep dirty flags, got %+v", mappings)
	}
}

// Only one run per provider may be in flight.
func TestSingleRunPerProvider(t *testing.T) {
	env := newSyncTestEnv(t)

	if !acquireRun(testProvider.ID) {
		t.Fatal("Expected to acquire the run slot")
	}
	defer releaseRun(testProvider.ID)

	_, err := env.driver.Run(context.Background())
	if !errors.Is(err, ErrRunInProgress) {
		t.Errorf("Expected ErrRunInProgress, got %v", err)
	}
}

// The summary fires only when something changed.
func TestSummaryOnlyOnChanges(t *testing.T) {
	env := newSyncTestEnv(t)
	reporter := &recordingReporter{}
	env.driver.Reporter = reporter

	env.run(t)
	if reporter.summaries != 0 {
		t.Errorf("Empty run must not emit a summary, got %d", reporter.summaries)
	}

	env.saveTask(t, &backend.Task{Name: "Buy milk"})
	env.run(t)
	if reporter.summaries != 1 {
		t.Errorf("Expected one summary after changes, got %d", reporter.summaries)
	}
}

// Background mode with the suppression preference swallows the summary but
// keeps the log lines.
func TestBackgroundSummarySuppression(t *testing.T) {
	env := newSyncTestEnv(t)
	reporter := &recordingReporter{}
	env.driver.Reporter = reporter
	env.driver.Prefs = Preferences{BackgroundMode: true, SuppressSummaryDialog: true}
	env.saveTask(t, &backend.Task{Name: "Buy milk"})

	env.run(t)

	if reporter.summaries != 0 {
		t.Errorf("Expected suppressed summary, got %d", reporter.summaries)
	}
	if len(reporter.logLines) == 0 {
		t.Error("Expected log lines to still be recorded")
	}
}
