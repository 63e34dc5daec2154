// Package admin serves the inspection and mock-management API that shares
// the proxy's listener.
//
// Endpoints:
//
//	GET    /logs          request summaries ({"logs": [...]}), filterable by proxy, method and limit
//	GET    /logs/{id}     full request detail, 404 "Log not found" when unknown
//	DELETE /logs          drop the request history
//	GET    /logs/stream   WebSocket feed of log events
//	GET    /mocks         pending mocks by key, optionally restricted to one route
//	POST   /mocks         register a mock
//	DELETE /mocks         drop every pending mock
//	GET    /health        liveness and counts
//	GET    /metrics       Prometheus text exposition
package admin
