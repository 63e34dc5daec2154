package storage

import (
	"sync"

	"github.com/fautty/fautty/pkg/mock"
)

// stack holds the pending entries for one key.
type stack struct {
	mu      sync.Mutex
	route   string
	entries []mock.Entry
}

func (st *stack) snapshot() []mock.Entry {
	out := make([]mock.Entry, len(st.entries))
	for i, e := range st.entries {
		out[i] = e.Clone()
	}
	return out
}

// InMemoryMockStore is a thread-safe in-memory implementation of MockStore.
type InMemoryMockStore struct {
	// mu guards the stacks map. Per-key work happens under the read lock
	// plus the stack's own mutex; Clear takes the write lock.
	mu     sync.RWMutex
	stacks map[string]*stack
}

// NewInMemoryMockStore creates a new InMemoryMockStore.
func NewInMemoryMockStore() *InMemoryMockStore {
	return &InMemoryMockStore{
		stacks: make(map[string]*stack),
	}
}

// Register pushes an entry for the call shape.
func (s *InMemoryMockStore) Register(method, path, route string, entry mock.Entry) []mock.Entry {
	key := mock.Key(method, path, route)
	entry = entry.Clone()

	for {
		s.mu.RLock()
		st := s.stacks[key]
		if st != nil {
			st.mu.Lock()
			st.entries = append(st.entries, entry)
			out := st.snapshot()
			st.mu.Unlock()
			s.mu.RUnlock()
			return out
		}
		s.mu.RUnlock()

		s.mu.Lock()
		if s.stacks[key] == nil {
			s.stacks[key] = &stack{route: mock.NormalizeRoute(route)}
		}
		s.mu.Unlock()
	}
}

// Consume pops the most recently registered entry for the call shape.
func (s *InMemoryMockStore) Consume(method, path, route string) (mock.Entry, bool) {
	key := mock.Key(method, path, route)

	s.mu.RLock()
	defer s.mu.RUnlock()

	st := s.stacks[key]
	if st == nil {
		return mock.Entry{}, false
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	n := len(st.entries)
	if n == 0 {
		return mock.Entry{}, false
	}
	entry := st.entries[n-1]
	st.entries[n-1] = mock.Entry{}
	st.entries = st.entries[:n-1]
	return entry, true
}

// List returns a snapshot of all keys and their pending entries.
func (s *InMemoryMockStore) List() map[string][]mock.Entry {
	return s.list(func(*stack) bool { return true })
}

// ListByRoute returns the snapshot restricted to one route.
func (s *InMemoryMockStore) ListByRoute(route string) map[string][]mock.Entry {
	route = mock.NormalizeRoute(route)
	return s.list(func(st *stack) bool { return st.route == route })
}

func (s *InMemoryMockStore) list(keep func(*stack) bool) map[string][]mock.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string][]mock.Entry, len(s.stacks))
	for key, st := range s.stacks {
		if !keep(st) {
			continue
		}
		st.mu.Lock()
		result[key] = st.snapshot()
		st.mu.Unlock()
	}
	return result
}

// Count returns the number of pending entries across all keys.
func (s *InMemoryMockStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := 0
	for _, st := range s.stacks {
		st.mu.Lock()
		total += len(st.entries)
		st.mu.Unlock()
	}
	return total
}

// Clear removes all keys and returns the number of entries dropped.
func (s *InMemoryMockStore) Clear() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	dropped := 0
	for _, st := range s.stacks {
		dropped += len(st.entries)
	}
	s.stacks = make(map[string]*stack)
	return dropped
}

// Ensure InMemoryMockStore implements MockStore.
var _ MockStore = (*InMemoryMockStore)(nil)
