// Package storage provides the pending-mock store.
//
// Mocks are registered under a composite key built from the HTTP method, the
// request path (without query string) and the proxy route, all lowercased.
// Each key owns a stack of entries:
//
//   - Register pushes an entry onto the key's stack.
//   - Consume pops the most recently registered entry, so every entry is
//     delivered at most once. An unknown or exhausted key is a normal miss.
//   - List returns a snapshot of every key, including exhausted ones.
//
// The InMemoryMockStore serializes operations per key. Operations on
// different keys only share a read lock on the key index and proceed
// concurrently.
package storage
