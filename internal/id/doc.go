// Package id provides identifier generation for the proxy.
//
// Two kinds of identifiers are produced:
//
//   - Sequence: strictly increasing integer correlation ids. One is allocated
//     per inbound request and links the request's summary and detail log
//     records. Allocation is safe for concurrent use and never reuses a value.
//   - UUID: random RFC 4122 identifiers stamped on outbound requests when a
//     request id header is configured.
package id
