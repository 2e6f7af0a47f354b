package connectors

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskbridge/backend"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *RESTConnector {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewRESTConnector(7, server.URL, "secret-token", false)
}

func TestFetchTasksDecodesRecords(t *testing.T) {
	connector := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-Id"))
		assert.Equal(t, "/tasks", r.URL.Path)

		_ = json.NewEncoder(w).Encode([]restTask{
			{ID: "R1", Title: "Buy milk", Notes: "2 liters", Importance: 3,
				Due: "2026-08-15T10:00:00Z", Tags: []string{"errands"}},
			{ID: "R2", Title: "Gone", Deleted: true},
		})
	})

	proxies, err := connector.FetchTasks(context.Background())
	require.NoError(t, err)
	require.Len(t, proxies, 2)

	first := proxies[0]
	assert.Equal(t, int64(7), first.ProviderID)
	assert.Equal(t, "R1", first.RemoteID)
	assert.Equal(t, "Buy milk", first.Name)
	assert.Equal(t, 3, first.Importance)
	require.NotNil(t, first.DueDate)
	assert.Equal(t, time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC), first.DueDate.UTC())
	assert.Equal(t, []string{"errands"}, first.Tags)

	assert.True(t, proxies[1].IsDeleted)
}

func TestFetchTasksUnauthorized(t *testing.T) {
	connector := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad token", http.StatusUnauthorized)
	})

	_, err := connector.FetchTasks(context.Background())
	require.Error(t, err)

	var be *backend.BackendError
	require.ErrorAs(t, err, &be)
	assert.True(t, be.IsUnauthorized())
}

func TestCreateTaskReturnsAssignedID(t *testing.T) {
	connector := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)

		var record restTask
		require.NoError(t, json.NewDecoder(r.Body).Decode(&record))
		assert.Equal(t, "Buy milk", record.Title)

		record.ID = "R99"
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(record)
	})

	remoteID, err := connector.CreateTask(context.Background(), &backend.TaskProxy{Name: "Buy milk"})
	require.NoError(t, err)
	assert.Equal(t, "R99", remoteID)
}

func TestPushTaskWritesFullState(t *testing.T) {
	var gotPath string
	connector := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		gotPath = r.URL.Path

		var record restTask
		require.NoError(t, json.NewDecoder(r.Body).Decode(&record))
		assert.Equal(t, "Taxes", record.Title)
		w.WriteHeader(http.StatusNoContent)
	})

	mapping := &backend.SyncMapping{RemoteID: "R3"}
	err := connector.PushTask(context.Background(), &backend.TaskProxy{Name: "Taxes"}, nil, mapping)
	require.NoError(t, err)
	assert.Equal(t, "/tasks/R3", gotPath)
}

func TestDeleteTaskIdempotent(t *testing.T) {
	connector := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		http.NotFound(w, r)
	})

	// Deleting an id the server no longer knows must succeed.
	err := connector.DeleteTask(context.Background(), &backend.SyncMapping{RemoteID: "R404"})
	assert.NoError(t, err)
}

func TestRefetchTaskRoundTrip(t *testing.T) {
	connector := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tasks/R3", r.URL.Path)
		_ = json.NewEncoder(w).Encode(restTask{ID: "R3", Title: "Taxes", Notes: "filed 2024"})
	})

	proxy, err := connector.RefetchTask(context.Background(), &backend.TaskProxy{RemoteID: "R3"})
	require.NoError(t, err)
	assert.Equal(t, "filed 2024", proxy.Notes)
}

func TestProxyWireRoundTrip(t *testing.T) {
	connector := NewRESTConnector(7, "https://example.test", "t", false)

	due := time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC)
	proxy := &backend.TaskProxy{
		RemoteID: "R1", Name: "Buy milk", Notes: "2 liters",
		Importance: 3, DueDate: &due, Tags: []string{"errands"},
	}

	back := connector.toProxy(connector.fromProxy(proxy))
	assert.Equal(t, proxy.Name, back.Name)
	assert.Equal(t, proxy.Notes, back.Notes)
	assert.Equal(t, proxy.Importance, back.Importance)
	require.NotNil(t, back.DueDate)
	assert.True(t, proxy.DueDate.Equal(*back.DueDate))
}
