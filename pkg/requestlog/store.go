package requestlog

import (
	"github.com/fautty/fautty/pkg/mock"
)

// Logger is the write side used by the forwarding engine.
type Logger interface {
	// RecordRequest creates the summary and the detail for id. It must be
	// called before the outcome is known.
	RecordRequest(id int64, proxy, url, method string, headers mock.Headers, body []byte)

	// RecordResponse attaches a response to the detail for id.
	RecordResponse(id int64, status int, headers mock.Headers, body []byte)

	// RecordError attaches an error to the detail for id.
	RecordError(id int64, info ErrorInfo)
}

// Store defines request history storage.
type Store interface {
	Logger

	// Summaries returns the summaries that pass the filter, in insertion order.
	Summaries(filter *Filter) []Summary

	// Detail returns a copy of the detail for id.
	Detail(id int64) (*Detail, bool)

	// Count returns the number of recorded requests.
	Count() int

	// Pending returns the number of details with neither a response nor an error.
	Pending() int

	// Clear removes all records and returns how many were removed.
	Clear() int
}

// Filter defines criteria for listing summaries. A nil Filter matches everything.
type Filter struct {
	// Proxy filters by proxy name.
	Proxy string

	// Method filters by method (case-insensitive).
	Method string

	// Limit keeps only the most recent N matches (0 = no limit).
	Limit int
}

// EventType identifies which record call produced an event.
type EventType string

const (
	EventRequest  EventType = "request"
	EventResponse EventType = "response"
	EventError    EventType = "error"
)

// Event is published to subscribers after each record call.
type Event struct {
	Type EventType `json:"type"`
	Log  *Detail   `json:"log"`
}

// Subscriber is a channel that receives log events.
type Subscriber chan Event

// SubscribableStore extends Store with real-time updates.
type SubscribableStore interface {
	Store

	// Subscribe registers a subscriber. Returns the channel and an
	// unsubscribe function that closes it.
	Subscribe() (Subscriber, func())
}
