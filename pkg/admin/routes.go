// Route registration for the Admin API.

package admin

import (
	"net/http"
)

// registerRoutes sets up all API routes.
func (a *API) registerRoutes(mux *http.ServeMux) {
	// Health check and metrics
	mux.HandleFunc("GET /health", a.handleHealth)
	mux.HandleFunc("GET /metrics", a.handleMetrics)

	// Request log
	mux.HandleFunc("GET /logs", a.handleListLogs)
	mux.HandleFunc("GET /logs/stream", a.handleStreamLogs)
	mux.HandleFunc("GET /logs/{id}", a.handleGetLog)
	mux.HandleFunc("DELETE /logs", a.handleClearLogs)

	// Mocks
	mux.HandleFunc("GET /mocks", a.handleListMocks)
	mux.HandleFunc("POST /mocks", a.handleCreateMock)
	mux.HandleFunc("DELETE /mocks", a.handleClearMocks)
}
