package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/fautty/fautty/pkg/admin"
	"github.com/fautty/fautty/pkg/mock"
	"github.com/fautty/fautty/pkg/requestlog"
)

// AdminClient provides methods for communicating with the fautty admin API.
type AdminClient interface {
	// ListLogs returns request summaries, oldest first.
	ListLogs(filter *LogFilter) ([]requestlog.Summary, error)
	// GetLog returns the raw JSON detail for a request id.
	GetLog(id int64) (json.RawMessage, error)
	// ClearLogs deletes the request history and returns how many entries were dropped.
	ClearLogs() (int, error)
	// ListMocks returns the pending mocks by key, optionally limited to one route.
	ListMocks(route string) (map[string][]mock.Entry, error)
	// CreateMock registers a mock and returns the pending entries for its key.
	CreateMock(reg *mock.Registration) ([]mock.Entry, error)
	// ClearMocks drops every pending mock and returns how many were dropped.
	ClearMocks() (int, error)
	// Health returns the server health summary.
	Health() (*admin.HealthResponse, error)
	// StreamURL returns the WebSocket URL of the live log stream.
	StreamURL() string
}

// LogFilter specifies filtering criteria for request logs.
type LogFilter struct {
	Proxy  string
	Method string
	Limit  int
}

// APIError represents an error response from the admin API.
type APIError struct {
	StatusCode int
	ErrorCode  string
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

const errCodeConnection = "connection_error"

// adminClient implements AdminClient using HTTP.
type adminClient struct {
	baseURL    string
	httpClient *http.Client
}

// ClientOption configures an admin client.
type ClientOption func(*adminClient)

// WithTimeout sets the HTTP timeout for the client.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *adminClient) {
		c.httpClient.Timeout = timeout
	}
}

// NewAdminClient creates a new admin API client.
// The baseURL should be the server base URL (e.g., "http://localhost:3000").
func NewAdminClient(baseURL string, opts ...ClientOption) AdminClient {
	c := &adminClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListLogs returns request summaries.
func (c *adminClient) ListLogs(filter *LogFilter) ([]requestlog.Summary, error) {
	q := url.Values{}
	if filter != nil {
		if filter.Proxy != "" {
			q.Set("proxy", filter.Proxy)
		}
		if filter.Method != "" {
			q.Set("method", filter.Method)
		}
		if filter.Limit > 0 {
			q.Set("limit", strconv.Itoa(filter.Limit))
		}
	}
	path := "/logs"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var result admin.LogsResponse
	if err := c.call(http.MethodGet, path, nil, http.StatusOK, &result); err != nil {
		return nil, err
	}
	return result.Logs, nil
}

// GetLog returns the raw detail JSON.
func (c *adminClient) GetLog(id int64) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.call(http.MethodGet, "/logs/"+strconv.FormatInt(id, 10), nil, http.StatusOK, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// ClearLogs deletes the request history.
func (c *adminClient) ClearLogs() (int, error) {
	var result admin.ClearedResponse
	if err := c.call(http.MethodDelete, "/logs", nil, http.StatusOK, &result); err != nil {
		return 0, err
	}
	return result.Cleared, nil
}

// ListMocks returns pending mocks by key.
func (c *adminClient) ListMocks(route string) (map[string][]mock.Entry, error) {
	path := "/mocks"
	if route != "" {
		path += "?" + url.Values{"route": {route}}.Encode()
	}
	result := map[string][]mock.Entry{}
	if err := c.call(http.MethodGet, path, nil, http.StatusOK, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// CreateMock registers a mock.
func (c *adminClient) CreateMock(reg *mock.Registration) ([]mock.Entry, error) {
	body, err := json.Marshal(reg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode mock: %w", err)
	}
	var result admin.MockCreatedResponse
	if err := c.call(http.MethodPost, "/mocks", body, http.StatusCreated, &result); err != nil {
		return nil, err
	}
	return result.Mocks, nil
}

// ClearMocks drops every pending mock.
func (c *adminClient) ClearMocks() (int, error) {
	var result admin.ClearedResponse
	if err := c.call(http.MethodDelete, "/mocks", nil, http.StatusOK, &result); err != nil {
		return 0, err
	}
	return result.Cleared, nil
}

// Health returns the server health summary.
func (c *adminClient) Health() (*admin.HealthResponse, error) {
	var result admin.HealthResponse
	if err := c.call(http.MethodGet, "/health", nil, http.StatusOK, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// StreamURL returns the WebSocket URL of /logs/stream.
func (c *adminClient) StreamURL() string {
	u := c.baseURL + "/logs/stream"
	switch {
	case strings.HasPrefix(u, "https://"):
		return "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		return "ws://" + strings.TrimPrefix(u, "http://")
	}
	return u
}

// call performs a request and decodes a response with the wanted status into out.
func (c *adminClient) call(method, path string, body []byte, want int, out any) error {
	resp, err := c.doRequest(method, path, body)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != want {
		return c.parseError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// doRequest performs an HTTP request.
func (c *adminClient) doRequest(method, path string, body []byte) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &APIError{
			ErrorCode: errCodeConnection,
			Message:   fmt.Sprintf("cannot connect to admin API at %s: %v", c.baseURL, err),
		}
	}
	return resp, nil
}

// parseError converts a non-success response into an APIError. The admin API
// answers with either a JSON error object or a short plain-text message.
func (c *adminClient) parseError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	var errResp struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Message != "" {
		return &APIError{
			StatusCode: resp.StatusCode,
			ErrorCode:  errResp.Error,
			Message:    errResp.Message,
		}
	}

	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return &APIError{
		StatusCode: resp.StatusCode,
		ErrorCode:  "http_" + strconv.Itoa(resp.StatusCode),
		Message:    msg,
	}
}

// FormatError returns a user-friendly message, with hints for connection failures.
func FormatError(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.ErrorCode == errCodeConnection {
		return fmt.Sprintf(`Error: %s

Suggestions:
  • Start the proxy: fautty serve --config fautty.yaml
  • Check that --admin-url points at the proxy's port`, apiErr.Message)
	}
	return "Error: " + err.Error()
}
