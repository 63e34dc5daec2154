// Package metrics provides Prometheus-compatible metrics for the proxy.
//
// Metrics are exposed in the Prometheus text exposition format
// (text/plain; version=0.0.4). Counters, gauges and histograms are safe for
// concurrent use and are created through a Registry, which also serves the
// scrape endpoint.
//
// # Proxy Metrics
//
// NewProxyMetrics registers the series recorded by the forwarding engine:
//
//   - fautty_requests_total: counter (labels: proxy, method, outcome, status)
//   - fautty_upstream_duration_seconds: histogram (labels: proxy)
//   - fautty_upstream_errors_total: counter (labels: kind)
//   - fautty_mocks_pending: gauge of registered mocks not yet served
//   - fautty_logs_total: gauge of request log entries held in memory
//
// The outcome label is one of mock, upstream or error.
//
// # Usage
//
//	reg := metrics.NewRegistry()
//	pm := metrics.NewProxyMetrics(reg)
//	pm.ObserveRequest("users", "get", metrics.OutcomeMock, 200)
//
//	mux.Handle("GET /metrics", reg.Handler())
package metrics
