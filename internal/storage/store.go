package storage

import (
	"github.com/fautty/fautty/pkg/mock"
)

// MockStore defines the interface for registering and consuming mocks.
type MockStore interface {
	// Register pushes an entry for the call shape and returns the key's
	// pending entries after the push, oldest first.
	Register(method, path, route string, entry mock.Entry) []mock.Entry

	// Consume pops the most recently registered entry for the call shape.
	// Returns false if nothing is pending.
	Consume(method, path, route string) (mock.Entry, bool)

	// List returns a snapshot of all keys and their pending entries.
	List() map[string][]mock.Entry

	// ListByRoute returns the snapshot restricted to one route.
	ListByRoute(route string) map[string][]mock.Entry

	// Count returns the number of pending entries across all keys.
	Count() int

	// Clear removes all keys and returns the number of entries dropped.
	Clear() int
}
