package admin

import (
	"net/http"

	"github.com/fautty/fautty/pkg/httputil"
)

// handleHealth handles GET /health.
func (a *API) handleHealth(w http.ResponseWriter, _ *http.Request) {
	logs := a.engine.Logs()
	httputil.WriteOK(w, HealthResponse{
		Status:      "ok",
		Proxies:     a.proxies,
		Uptime:      a.Uptime(),
		Logs:        logs.Count(),
		PendingLogs: logs.Pending(),
		Mocks:       a.engine.Mocks().Count(),
	})
}

// handleMetrics handles GET /metrics.
func (a *API) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if a.runtime != nil {
		a.runtime.Collect()
	}
	a.metricsRegistry.Handler().ServeHTTP(w, r)
}
