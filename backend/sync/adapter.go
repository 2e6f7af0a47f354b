package sync

import (
	"context"

	"taskbridge/backend"
)

// Provider identifies one remote task service.
type Provider struct {
	ID   int64
	Name string
}

// RemoteAdapter is the engine's only coupling to a remote service. The engine
// is polymorphic over any implementation; per-call timeouts and internal
// retries are the adapter's business, and a failure surfaces as a per-task
// error, not a run abort.
type RemoteAdapter interface {
	// FetchTasks returns the remote state for the run, fetched once before
	// reconciliation starts.
	FetchTasks(ctx context.Context) ([]*backend.TaskProxy, error)

	// CreateTask creates a remote record for the proxy and returns its
	// remote id. The id is stable and unique within the provider; the
	// engine immediately follows with PushTask on it.
	CreateTask(ctx context.Context, proxy *backend.TaskProxy) (string, error)

	// PushTask writes full task state to the remote. When mergedAgainst is
	// non-nil the proxy was produced by merging against it.
	PushTask(ctx context.Context, proxy *backend.TaskProxy, mergedAgainst *backend.TaskProxy, mapping *backend.SyncMapping) error

	// RefetchTask reads the remote record again after a merged push, to
	// canonicalize what was actually stored remotely.
	RefetchTask(ctx context.Context, proxy *backend.TaskProxy) (*backend.TaskProxy, error)

	// DeleteTask deletes the mapped remote record. Deleting an unknown
	// remote id must succeed.
	DeleteTask(ctx context.Context, mapping *backend.SyncMapping) error
}

// Alarms re-arms local reminders after a task is written from remote state.
// The engine only notifies; scheduling lives with the host.
type Alarms interface {
	Rearm(task *backend.Task)
}

// NopAlarms ignores all notifications.
type NopAlarms struct{}

// Rearm implements Alarms
func (NopAlarms) Rearm(*backend.Task) {}
