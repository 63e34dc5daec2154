package requestlog

import (
	"bytes"
	"strings"
	"sync"
	"time"

	"github.com/fautty/fautty/pkg/mock"
)

// subscriberBuffer is the per-subscriber channel capacity. Events are
// dropped for subscribers that fall this far behind.
const subscriberBuffer = 100

// MemoryStore is an unbounded in-memory SubscribableStore. Records live for
// the lifetime of the process unless cleared.
type MemoryStore struct {
	mu        sync.RWMutex
	summaries []Summary
	details   map[int64]*Detail
	now       func() time.Time

	subMu       sync.RWMutex
	subscribers map[Subscriber]struct{}
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		details:     make(map[int64]*Detail),
		now:         time.Now,
		subscribers: make(map[Subscriber]struct{}),
	}
}

// RecordRequest creates the summary and detail for id. A repeated id is ignored.
func (s *MemoryStore) RecordRequest(id int64, proxy, url, method string, headers mock.Headers, body []byte) {
	date := s.now()
	d := &Detail{
		ID:     id,
		Date:   date,
		Proxy:  proxy,
		URL:    url,
		Method: method,
		Request: &Request{
			Headers: headers.Clone(),
			Body:    bytes.Clone(body),
		},
	}

	s.mu.Lock()
	if _, exists := s.details[id]; exists {
		s.mu.Unlock()
		return
	}
	s.summaries = append(s.summaries, d.Summary())
	s.details[id] = d
	snapshot := d.Clone()
	s.mu.Unlock()

	s.publish(Event{Type: EventRequest, Log: snapshot})
}

// RecordResponse attaches a response to the detail for id.
func (s *MemoryStore) RecordResponse(id int64, status int, headers mock.Headers, body []byte) {
	resp := &Response{Status: status, Headers: headers.Clone(), Body: bytes.Clone(body)}
	s.complete(id, EventResponse, func(d *Detail) { d.Response = resp })
}

// RecordError attaches an error to the detail for id.
func (s *MemoryStore) RecordError(id int64, info ErrorInfo) {
	s.complete(id, EventError, func(d *Detail) { d.Error = &info })
}

// complete applies attach to the detail for id unless the id is unknown or
// the detail already has an outcome.
func (s *MemoryStore) complete(id int64, typ EventType, attach func(*Detail)) {
	s.mu.Lock()
	d := s.details[id]
	if d == nil || d.Completed() {
		s.mu.Unlock()
		return
	}
	attach(d)
	snapshot := d.Clone()
	s.mu.Unlock()

	s.publish(Event{Type: typ, Log: snapshot})
}

// Summaries returns the summaries that pass the filter, in insertion order.
func (s *MemoryStore) Summaries(filter *Filter) []Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]Summary, 0, len(s.summaries))
	for _, sum := range s.summaries {
		if filter != nil && !filter.matches(sum) {
			continue
		}
		result = append(result, sum)
	}
	if filter != nil && filter.Limit > 0 && len(result) > filter.Limit {
		result = result[len(result)-filter.Limit:]
	}
	return result
}

func (f *Filter) matches(s Summary) bool {
	if f.Proxy != "" && f.Proxy != s.Proxy {
		return false
	}
	if f.Method != "" && !strings.EqualFold(f.Method, s.Method) {
		return false
	}
	return true
}

// Detail returns a copy of the detail for id.
func (s *MemoryStore) Detail(id int64) (*Detail, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.details[id]
	if !ok {
		return nil, false
	}
	return d.Clone(), true
}

// Count returns the number of recorded requests.
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.summaries)
}

// Pending returns the number of details without an outcome.
func (s *MemoryStore) Pending() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, d := range s.details {
		if !d.Completed() {
			n++
		}
	}
	return n
}

// Clear removes all records.
func (s *MemoryStore) Clear() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.summaries)
	s.summaries = nil
	s.details = make(map[int64]*Detail)
	return n
}

// Subscribe registers a subscriber to receive log events.
func (s *MemoryStore) Subscribe() (Subscriber, func()) {
	ch := make(Subscriber, subscriberBuffer)

	s.subMu.Lock()
	s.subscribers[ch] = struct{}{}
	s.subMu.Unlock()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subscribers, ch)
			s.subMu.Unlock()
			close(ch)
		})
	}
	return ch, unsubscribe
}

// publish notifies subscribers without blocking.
func (s *MemoryStore) publish(ev Event) {
	s.subMu.RLock()
	defer s.subMu.RUnlock()

	for sub := range s.subscribers {
		select {
		case sub <- ev:
		default:
			// Drop if subscriber is slow
		}
	}
}

// Ensure MemoryStore implements SubscribableStore.
var _ SubscribableStore = (*MemoryStore)(nil)
