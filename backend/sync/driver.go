package sync

import (
	"context"
	"fmt"
	gosync "sync"
	"time"

	"taskbridge/internal/utils"
)

// Driver coordinates one sync run against one provider. At most one run per
// provider is in flight at a time; concurrent attempts fail fast with
// ErrRunInProgress.
type Driver struct {
	provider Provider
	adapter  RemoteAdapter
	tasks    TaskStore
	tags     TagStore
	mappings MappingStore

	// Collaborators with usable defaults; override before Run.
	Reporter Reporter
	Merge    MergePolicy
	Prefs    Preferences
	Alarms   Alarms
	Logger   *utils.Logger
}

// NewDriver wires a driver with default collaborators: no-op reporter and
// alarms, field-wise merge, zero preferences, process logger.
func NewDriver(provider Provider, adapter RemoteAdapter, tasks TaskStore, tags TagStore, mappings MappingStore) *Driver {
	return &Driver{
		provider: provider,
		adapter:  adapter,
		tasks:    tasks,
		tags:     tags,
		mappings: mappings,
		Reporter: NopReporter{},
		Merge:    FieldMergePolicy{},
		Prefs:    DefaultPreferences(),
		Alarms:   NopAlarms{},
		Logger:   utils.GetLogger(),
	}
}

var (
	runningMu gosync.Mutex
	running   = make(map[int64]bool)
)

func acquireRun(providerID int64) bool {
	runningMu.Lock()
	defer runningMu.Unlock()
	if running[providerID] {
		return false
	}
	running[providerID] = true
	return true
}

func releaseRun(providerID int64) {
	runningMu.Lock()
	defer runningMu.Unlock()
	delete(running, providerID)
}

// Run executes one end-to-end sync. Fetch and snapshot failures abort the
// run with a SyncError; per-task failures inside the phases are logged and
// skipped. A cancelled run returns its partial result with the context
// error; the mapping store stays consistent and the next run reconciles the
// remainder.
func (d *Driver) Run(ctx context.Context) (*RunResult, error) {
	if !acquireRun(d.provider.ID) {
		return nil, fmt.Errorf("%w: %s", ErrRunInProgress, d.provider.Name)
	}
	defer releaseRun(d.provider.ID)

	start := time.Now()
	d.Reporter.Label(fmt.Sprintf("connecting to %s", d.provider.Name))

	remoteTasks, err := d.adapter.FetchTasks(ctx)
	if err != nil {
		return nil, classifyRemote("fetch", err)
	}

	data, err := NewSyncData(d.provider, remoteTasks, d.tasks, d.tags, d.mappings)
	if err != nil {
		return nil, storeError("snapshot", err)
	}

	rec := newReconciler(data, d.adapter, d.tasks, d.tags, d.mappings,
		d.Reporter, d.Merge, d.Prefs, d.Alarms, d.Logger)

	runErr := rec.run(ctx)
	result := &RunResult{
		Stats:    rec.stats,
		Log:      rec.runLog,
		Duration: time.Since(start),
	}
	if runErr != nil {
		// Cancelled between tasks. Skip finalization so unpushed changes
		// keep their dirty flag for the next run.
		d.Logger.Info("sync of %s interrupted: %v", d.provider.Name, runErr)
		return result, runErr
	}

	if err := d.mappings.ClearUpdated(d.provider.ID); err != nil {
		return result, storeError("finalize", err)
	}
	result.Duration = time.Since(start)

	if result.Stats.HasChanges() && !(d.Prefs.BackgroundMode && d.Prefs.SuppressSummaryDialog) {
		d.Reporter.Summary(d.provider, result.Stats, result.Log)
	}
	return result, nil
}
