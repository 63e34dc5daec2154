package cli

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fautty/fautty/pkg/mock"
)

func TestAdminClient_MocksRoundTrip(t *testing.T) {
	t.Parallel()
	_, url := testProxy(t)
	client := NewAdminClient(url)

	entries, err := client.CreateMock(&mock.Registration{
		Route: "/api", Path: "/users", Method: "GET",
		Entry: mock.Entry{Status: http.StatusServiceUnavailable},
	})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, http.StatusServiceUnavailable, entries[0].Status)

	mocks, err := client.ListMocks("/api")
	require.NoError(t, err)
	assert.Len(t, mocks["get-/users-/api"], 1)

	mocks, err = client.ListMocks("/other")
	require.NoError(t, err)
	assert.Empty(t, mocks)

	n, err := client.ClearMocks()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestAdminClient_CreateMockRejected(t *testing.T) {
	t.Parallel()
	_, url := testProxy(t)

	_, err := NewAdminClient(url).CreateMock(&mock.Registration{Route: "/api"})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "Invalid request body. Route, path or method required", apiErr.Message)
}

func TestAdminClient_Logs(t *testing.T) {
	t.Parallel()
	_, url := testProxy(t)
	client := NewAdminClient(url)

	get(t, url+"/api/a")
	get(t, url+"/api/b")

	logs, err := client.ListLogs(&LogFilter{Proxy: "users", Method: "get", Limit: 1})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, int64(2), logs[0].ID)

	raw, err := client.GetLog(1)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"upstream":true`)

	_, err = client.GetLog(42)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "Log not found", apiErr.Message)

	n, err := client.ClearLogs()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestAdminClient_Health(t *testing.T) {
	t.Parallel()
	_, url := testProxy(t)

	h, err := NewAdminClient(url).Health()

	require.NoError(t, err)
	assert.Equal(t, "ok", h.Status)
	assert.Equal(t, 1, h.Proxies)
}

func TestAdminClient_JSONError(t *testing.T) {
	t.Parallel()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_argument","message":"limit must be a non-negative integer"}`))
	}))
	t.Cleanup(ts.Close)

	_, err := NewAdminClient(ts.URL).ListLogs(nil)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "invalid_argument", apiErr.ErrorCode)
	assert.Equal(t, "limit must be a non-negative integer", apiErr.Message)
}

func TestAdminClient_ConnectionError(t *testing.T) {
	t.Parallel()
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	_, err := NewAdminClient(url).Health()

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, errCodeConnection, apiErr.ErrorCode)
	assert.Contains(t, FormatError(err), "Suggestions:")
	assert.Equal(t, "Error: boom", FormatError(errors.New("boom")))
}

func TestAdminClient_StreamURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		base string
		want string
	}{
		{"http://localhost:3000", "ws://localhost:3000/logs/stream"},
		{"http://localhost:3000/", "ws://localhost:3000/logs/stream"},
		{"https://proxy.internal", "wss://proxy.internal/logs/stream"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NewAdminClient(tt.base).StreamURL(), tt.base)
	}
}
