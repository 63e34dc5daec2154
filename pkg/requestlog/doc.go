// Package requestlog captures proxied requests and their outcomes for user
// inspection and debugging.
//
// This is distinct from operational logging (log/slog): entries here are
// data served back to users through the admin API.
//
// # Views
//
// Every inbound request gets a correlation id and two records:
//
//   - Summary: id, date, proxy name, outbound URL and method. Immutable.
//   - Detail: the same fields plus the captured request. The response or the
//     error is attached later, exactly once, under the same id.
//
// A Detail with neither a response nor an error belongs to a request that is
// still in flight, or to a handler that crashed before completing.
//
// # Usage
//
//	store := requestlog.NewMemoryStore()
//	store.RecordRequest(1, "users", "http://upstream/users", "get", headers, body)
//	store.RecordResponse(1, 200, respHeaders, respBody)
//	d, ok := store.Detail(1)
//
// Record calls never fail. An unknown id is silently ignored.
package requestlog
