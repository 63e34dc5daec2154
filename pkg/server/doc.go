// Package server assembles a proxy engine, its route dispatcher and the admin
// API behind a single HTTP listener.
//
// Proxy routes are resolved first; requests that match no route fall through
// to the admin endpoints (/logs, /mocks, /health, /metrics).
package server
