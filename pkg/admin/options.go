// Option functions for configuring API.

package admin

import (
	"log/slog"

	"github.com/fautty/fautty/pkg/metrics"
)

// Option configures an API.
type Option func(*API)

// WithLogger sets the operational logger.
func WithLogger(log *slog.Logger) Option {
	return func(a *API) {
		if log != nil {
			a.log = log
		}
	}
}

// WithProxyCount sets the number of configured proxies reported by /health.
func WithProxyCount(n int) Option {
	return func(a *API) {
		a.proxies = n
	}
}

// WithMetrics serves reg on /metrics, refreshing rc before each scrape.
// rc may be nil.
func WithMetrics(reg *metrics.Registry, rc *metrics.RuntimeCollector) Option {
	return func(a *API) {
		a.metricsRegistry = reg
		a.runtime = rc
	}
}

// WithMaxRequestBody caps the size of registration payloads.
func WithMaxRequestBody(n int64) Option {
	return func(a *API) {
		if n > 0 {
			a.maxRequestBody = n
		}
	}
}
