package id

import (
	"sync/atomic"

	"github.com/google/uuid"
)

// Sequence allocates strictly increasing correlation ids starting at 1.
// The zero value is ready to use.
type Sequence struct {
	last atomic.Int64
}

// NewSequence creates a new Sequence.
func NewSequence() *Sequence {
	return &Sequence{}
}

// Next returns the next id. If a call to Next happens-before another, the
// first call's result is strictly less than the second's.
func (s *Sequence) Next() int64 {
	return s.last.Add(1)
}

// Last returns the most recently allocated id, or 0 if none has been issued.
func (s *Sequence) Last() int64 {
	return s.last.Load()
}

// UUID generates a random (version 4) UUID string.
func UUID() string {
	return uuid.New().String()
}
