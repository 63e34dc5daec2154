package admin

import (
	"github.com/fautty/fautty/pkg/mock"
	"github.com/fautty/fautty/pkg/requestlog"
)

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status  string `json:"status"`
	Proxies int    `json:"proxies"`
	Uptime  int    `json:"uptime"`
	Logs    int    `json:"logs"`
	// PendingLogs counts details with neither response nor error.
	PendingLogs int `json:"pendingLogs"`
	Mocks       int `json:"mocks"`
}

// LogsResponse is the body of GET /logs.
type LogsResponse struct {
	Logs []requestlog.Summary `json:"logs"`
}

// MockCreatedResponse is the body of a successful POST /mocks.
type MockCreatedResponse struct {
	Msg   string       `json:"msg"`
	Mocks []mock.Entry `json:"mocks"`
}

// ClearedResponse is the body of the DELETE endpoints.
type ClearedResponse struct {
	Msg     string `json:"msg"`
	Cleared int    `json:"cleared"`
}
