package connectors

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"taskbridge/backend"
)

const (
	// Per-call timeout; a timeout surfaces as a per-task failure, never a
	// run abort.
	requestTimeout = 30 * time.Second
)

// RESTConnector talks to a generic JSON task API:
//
//	GET    /tasks            all tasks, deleted ones tombstoned
//	POST   /tasks            create, returns the record with its id
//	GET    /tasks/{id}       single record
//	PUT    /tasks/{id}       full-state write
//	DELETE /tasks/{id}       delete; unknown id is not an error
//
// It implements sync.RemoteAdapter.
type RESTConnector struct {
	providerID int64
	baseURL    string
	apiToken   string
	httpClient *http.Client
}

// NewRESTConnector creates a connector for one provider endpoint
func NewRESTConnector(providerID int64, baseURL string, apiToken string, insecureSkipVerify bool) *RESTConnector {
	transport := http.DefaultTransport
	if insecureSkipVerify {
		transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}
	return &RESTConnector{
		providerID: providerID,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiToken:   apiToken,
		httpClient: &http.Client{
			Timeout:   requestTimeout,
			Transport: transport,
		},
	}
}

// restTask is the wire shape of one task record
type restTask struct {
	ID          string   `json:"id,omitempty"`
	Title       string   `json:"title"`
	Notes       string   `json:"notes,omitempty"`
	Importance  int      `json:"importance,omitempty"`
	Due         string   `json:"due,omitempty"`          // RFC3339
	CompletedAt string   `json:"completed_at,omitempty"` // RFC3339
	ModifiedAt  string   `json:"modified_at,omitempty"`  // RFC3339
	Tags        []string `json:"tags,omitempty"`
	Deleted     bool     `json:"deleted,omitempty"`
}

// doRequest performs an HTTP request with authentication
func (c *RESTConnector) doRequest(ctx context.Context, method, endpoint string, body interface{}) (*http.Response, error) {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiToken)
	req.Header.Set("X-Request-Id", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.httpClient.Do(req)
}

// apiError drains the response and wraps it as a structured backend error
func apiError(operation string, resp *http.Response) *backend.BackendError {
	body, _ := io.ReadAll(resp.Body)
	return backend.NewBackendError(operation, resp.StatusCode, http.StatusText(resp.StatusCode)).
		WithBody(string(body))
}

// FetchTasks implements sync.RemoteAdapter
func (c *RESTConnector) FetchTasks(ctx context.Context) ([]*backend.TaskProxy, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/tasks", nil)
	if err != nil {
		return nil, backend.NewBackendError("FetchTasks", 0, "request failed").WithError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError("FetchTasks", resp)
	}

	var records []restTask
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, backend.NewBackendError("FetchTasks", 0, "failed to decode response").WithError(err)
	}

	proxies := make([]*backend.TaskProxy, 0, len(records))
	for i := range records {
		proxies = append(proxies, c.toProxy(&records[i]))
	}
	return proxies, nil
}

// CreateTask implements sync.RemoteAdapter
func (c *RESTConnector) CreateTask(ctx context.Context, proxy *backend.TaskProxy) (string, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/tasks", c.fromProxy(proxy))
	if err != nil {
		return "", backend.NewBackendError("CreateTask", 0, "request failed").WithError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", apiError("CreateTask", resp)
	}

	var record restTask
	if err := json.NewDecoder(resp.Body).Decode(&record); err != nil {
		return "", backend.NewBackendError("CreateTask", 0, "failed to decode response").WithError(err)
	}
	if record.ID == "" {
		return "", backend.NewBackendError("CreateTask", 0, "server returned no task id")
	}
	return record.ID, nil
}

// PushTask implements sync.RemoteAdapter
func (c *RESTConnector) PushTask(ctx context.Context, proxy *backend.TaskProxy, _ *backend.TaskProxy, mapping *backend.SyncMapping) error {
	resp, err := c.doRequest(ctx, http.MethodPut, "/tasks/"+mapping.RemoteID, c.fromProxy(proxy))
	if err != nil {
		return backend.NewBackendError("PushTask", 0, "request failed").
			WithRemoteID(mapping.RemoteID).WithError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return apiError("PushTask", resp).WithRemoteID(mapping.RemoteID)
	}
	return nil
}

// RefetchTask implements sync.RemoteAdapter
func (c *RESTConnector) RefetchTask(ctx context.Context, proxy *backend.TaskProxy) (*backend.TaskProxy, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/tasks/"+proxy.RemoteID, nil)
	if err != nil {
		return nil, backend.NewBackendError("RefetchTask", 0, "request failed").
			WithRemoteID(proxy.RemoteID).WithError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError("RefetchTask", resp).WithRemoteID(proxy.RemoteID)
	}

	var record restTask
	if err := json.NewDecoder(resp.Body).Decode(&record); err != nil {
		return nil, backend.NewBackendError("RefetchTask", 0, "failed to decode response").WithError(err)
	}
	return c.toProxy(&record), nil
}

// DeleteTask implements sync.RemoteAdapter. Deleting an id the server no
// longer knows succeeds.
func (c *RESTConnector) DeleteTask(ctx context.Context, mapping *backend.SyncMapping) error {
	resp, err := c.doRequest(ctx, http.MethodDelete, "/tasks/"+mapping.RemoteID, nil)
	if err != nil {
		return backend.NewBackendError("DeleteTask", 0, "request failed").
			WithRemoteID(mapping.RemoteID).WithError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent, http.StatusNotFound:
		return nil
	default:
		return apiError("DeleteTask", resp).WithRemoteID(mapping.RemoteID)
	}
}

// toProxy converts a wire record to the engine's task shape
func (c *RESTConnector) toProxy(record *restTask) *backend.TaskProxy {
	proxy := &backend.TaskProxy{
		ProviderID: c.providerID,
		RemoteID:   record.ID,
		Name:       record.Title,
		Notes:      record.Notes,
		Importance: record.Importance,
		Tags:       record.Tags,
		IsDeleted:  record.Deleted,
	}
	proxy.DueDate = parseRFC3339(record.Due)
	proxy.Completed = parseRFC3339(record.CompletedAt)
	proxy.Modified = parseRFC3339(record.ModifiedAt)
	return proxy
}

// fromProxy converts the engine's task shape to a wire record
func (c *RESTConnector) fromProxy(proxy *backend.TaskProxy) *restTask {
	record := &restTask{
		ID:         proxy.RemoteID,
		Title:      proxy.Name,
		Notes:      proxy.Notes,
		Importance: proxy.Importance,
		Tags:       proxy.Tags,
		Deleted:    proxy.IsDeleted,
	}
	record.Due = formatRFC3339(proxy.DueDate)
	record.CompletedAt = formatRFC3339(proxy.Completed)
	record.ModifiedAt = formatRFC3339(proxy.Modified)
	return record
}

func parseRFC3339(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil
	}
	return &t
}

func formatRFC3339(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
