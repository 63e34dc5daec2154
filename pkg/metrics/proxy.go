package metrics

import (
	"strconv"
	"time"
)

// Outcome label values for fautty_requests_total.
const (
	OutcomeMock     = "mock"
	OutcomeUpstream = "upstream"
	OutcomeError    = "error"
)

// ProxyMetrics are the series recorded by the forwarding engine.
// A nil *ProxyMetrics is valid and records nothing.
type ProxyMetrics struct {
	RequestsTotal    *Counter
	UpstreamDuration *Histogram
	UpstreamErrors   *Counter
	MocksPending     *Gauge
	LogsTotal        *Gauge
}

// NewProxyMetrics registers the proxy series on r.
func NewProxyMetrics(r *Registry) *ProxyMetrics {
	return &ProxyMetrics{
		RequestsTotal: r.NewCounter(
			"fautty_requests_total",
			"Total requests handled by proxy routes",
			"proxy", "method", "outcome", "status",
		),
		UpstreamDuration: r.NewHistogram(
			"fautty_upstream_duration_seconds",
			"Duration of upstream round trips in seconds",
			DefaultBuckets,
			"proxy",
		),
		UpstreamErrors: r.NewCounter(
			"fautty_upstream_errors_total",
			"Upstream transport failures by kind",
			"kind",
		),
		MocksPending: r.NewGauge(
			"fautty_mocks_pending",
			"Registered mock responses not yet served",
		),
		LogsTotal: r.NewGauge(
			"fautty_logs_total",
			"Request log entries held in memory",
		),
	}
}

// ObserveRequest counts one handled request. status is 0 for transport failures.
func (m *ProxyMetrics) ObserveRequest(proxy, method, outcome string, status int) {
	if m == nil {
		return
	}
	code := ""
	if status > 0 {
		code = strconv.Itoa(status)
	}
	if vec, err := m.RequestsTotal.WithLabels(proxy, method, outcome, code); err == nil {
		_ = vec.Inc()
	}
}

// ObserveUpstream records the duration of one upstream round trip.
func (m *ProxyMetrics) ObserveUpstream(proxy string, d time.Duration) {
	if m == nil {
		return
	}
	if vec, err := m.UpstreamDuration.WithLabels(proxy); err == nil {
		vec.Observe(d.Seconds())
	}
}

// ObserveUpstreamError counts one transport failure of the given kind.
func (m *ProxyMetrics) ObserveUpstreamError(kind string) {
	if m == nil {
		return
	}
	if vec, err := m.UpstreamErrors.WithLabels(kind); err == nil {
		_ = vec.Inc()
	}
}

// SetMocksPending records the number of mocks waiting to be served.
func (m *ProxyMetrics) SetMocksPending(n int) {
	if m == nil {
		return
	}
	_ = m.MocksPending.Set(float64(n))
}

// SetLogsTotal records the number of request log entries.
func (m *ProxyMetrics) SetLogsTotal(n int) {
	if m == nil {
		return
	}
	_ = m.LogsTotal.Set(float64(n))
}
