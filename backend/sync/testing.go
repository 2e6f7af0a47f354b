package sync

// This file contains the shared mock adapter used across sync tests. It is
// available to all _test.go files in the sync package and to callers that
// need an in-memory provider.

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"taskbridge/backend"
)

// MockAdapter implements RemoteAdapter against an in-memory record set.
type MockAdapter struct {
	ProviderID int64

	// Remote state keyed by remote id, plus the fetch order.
	Records map[string]*backend.TaskProxy
	Order   []string

	// Call records for assertions.
	CreateCalls  []string
	PushCalls    []string
	RefetchCalls []string
	DeleteCalls  []string

	// Per-operation failure injection, keyed by task name (create/push) or
	// remote id (delete/refetch).
	FailCreate  map[string]error
	FailPush    map[string]error
	FailRefetch map[string]error
	FailDelete  map[string]error
	FetchErr    error
}

// NewMockAdapter creates an empty mock provider
func NewMockAdapter(providerID int64) *MockAdapter {
	return &MockAdapter{
		ProviderID:  providerID,
		Records:     make(map[string]*backend.TaskProxy),
		FailCreate:  make(map[string]error),
		FailPush:    make(map[string]error),
		FailRefetch: make(map[string]error),
		FailDelete:  make(map[string]error),
	}
}

// Seed adds a remote record to the mock's state.
func (a *MockAdapter) Seed(proxy *backend.TaskProxy) {
	if proxy.ProviderID == 0 {
		proxy.ProviderID = a.ProviderID
	}
	if _, ok := a.Records[proxy.RemoteID]; !ok {
		a.Order = append(a.Order, proxy.RemoteID)
	}
	a.Records[proxy.RemoteID] = proxy
}

// FetchTasks implements RemoteAdapter
func (a *MockAdapter) FetchTasks(context.Context) ([]*backend.TaskProxy, error) {
	if a.FetchErr != nil {
		return nil, a.FetchErr
	}
	out := make([]*backend.TaskProxy, 0, len(a.Order))
	for _, id := range a.Order {
		copied := *a.Records[id]
		out = append(out, &copied)
	}
	return out, nil
}

// CreateTask implements RemoteAdapter
func (a *MockAdapter) CreateTask(_ context.Context, proxy *backend.TaskProxy) (string, error) {
	a.CreateCalls = append(a.CreateCalls, proxy.Name)
	if err := a.FailCreate[proxy.Name]; err != nil {
		return "", err
	}
	remoteID := uuid.NewString()
	stored := *proxy
	stored.RemoteID = remoteID
	a.Seed(&stored)
	return remoteID, nil
}

// PushTask implements RemoteAdapter
func (a *MockAdapter) PushTask(_ context.Context, proxy *backend.TaskProxy, _ *backend.TaskProxy, m *backend.SyncMapping) error {
	a.PushCalls = append(a.PushCalls, proxy.Name)
	if err := a.FailPush[proxy.Name]; err != nil {
		return err
	}
	stored := *proxy
	stored.RemoteID = m.RemoteID
	a.Seed(&stored)
	return nil
}

// RefetchTask implements RemoteAdapter
func (a *MockAdapter) RefetchTask(_ context.Context, proxy *backend.TaskProxy) (*backend.TaskProxy, error) {
	a.RefetchCalls = append(a.RefetchCalls, proxy.RemoteID)
	if err := a.FailRefetch[proxy.RemoteID]; err != nil {
		return nil, err
	}
	stored, ok := a.Records[proxy.RemoteID]
	if !ok {
		return nil, fmt.Errorf("no remote record %s", proxy.RemoteID)
	}
	copied := *stored
	return &copied, nil
}

// DeleteTask implements RemoteAdapter. Deleting an unknown id succeeds.
func (a *MockAdapter) DeleteTask(_ context.Context, m *backend.SyncMapping) error {
	a.DeleteCalls = append(a.DeleteCalls, m.RemoteID)
	if err := a.FailDelete[m.RemoteID]; err != nil {
		return err
	}
	if _, ok := a.Records[m.RemoteID]; ok {
		delete(a.Records, m.RemoteID)
		for i, id := range a.Order {
			if id == m.RemoteID {
				a.Order = append(a.Order[:i], a.Order[i+1:]...)
				break
			}
		}
	}
	return nil
}
