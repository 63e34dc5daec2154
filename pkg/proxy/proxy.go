// Package proxy forwards requests under configured route prefixes to their
// upstream services, substituting registered mock responses when one is
// pending for the call shape and logging every exchange.
package proxy

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/fautty/fautty/internal/id"
	"github.com/fautty/fautty/internal/storage"
	"github.com/fautty/fautty/pkg/logging"
	"github.com/fautty/fautty/pkg/metrics"
	"github.com/fautty/fautty/pkg/mock"
	"github.com/fautty/fautty/pkg/requestlog"
)

const (
	// MarkerHeader is set on every mocked or relayed response.
	MarkerHeader = "X-Proxied-By"
	// MarkerValue is the value of MarkerHeader.
	MarkerValue = "Fautty-Proxy"

	// DefaultMaxBodySize is the default maximum body size to capture in the log (10MB).
	DefaultMaxBodySize = 10 * 1024 * 1024

	// DefaultUpstreamTimeout bounds each upstream round trip.
	DefaultUpstreamTimeout = 30 * time.Second

	// FailureMessage is the body sent when no upstream response was obtained.
	FailureMessage = "An error occurred while processing your request."
)

// Options configures an Engine. Zero values select defaults.
type Options struct {
	// Mocks holds pending canned responses (default: in-memory store).
	Mocks storage.MockStore
	// Logs records every exchange (default: in-memory store).
	Logs requestlog.SubscribableStore
	// IDs allocates correlation ids (default: new sequence starting at 1).
	IDs *id.Sequence
	// Client performs upstream calls (default: a client with no overall timeout).
	Client *http.Client
	// UpstreamTimeout bounds each upstream call. Zero selects the default,
	// a negative value disables the bound.
	UpstreamTimeout time.Duration
	// MaxBodySize caps how many body bytes are kept in the log.
	MaxBodySize int64
	// RequestIDHeader, when set, is added with a fresh UUID to upstream
	// requests that do not already carry it.
	RequestIDHeader string
	// Metrics receives per-request observations (nil = disabled).
	Metrics *metrics.ProxyMetrics
	// Logger for operational logging (nil = discard).
	Logger *slog.Logger
}

// Engine owns the id allocator, the mock store and the request log, and runs
// the per-request forwarding state machine. It is safe for concurrent use.
type Engine struct {
	ids             *id.Sequence
	mocks           storage.MockStore
	logs            requestlog.SubscribableStore
	client          *http.Client
	timeout         time.Duration
	maxBodySize     int64
	requestIDHeader string
	metrics         *metrics.ProxyMetrics
	log             *slog.Logger
}

// New creates an Engine with the given options.
func New(opts Options) *Engine {
	e := &Engine{
		ids:             opts.IDs,
		mocks:           opts.Mocks,
		logs:            opts.Logs,
		client:          opts.Client,
		timeout:         opts.UpstreamTimeout,
		maxBodySize:     opts.MaxBodySize,
		requestIDHeader: opts.RequestIDHeader,
		metrics:         opts.Metrics,
		log:             opts.Logger,
	}
	if e.ids == nil {
		e.ids = id.NewSequence()
	}
	if e.mocks == nil {
		e.mocks = storage.NewInMemoryMockStore()
	}
	if e.logs == nil {
		e.logs = requestlog.NewMemoryStore()
	}
	if e.client == nil {
		e.client = &http.Client{}
	}
	if e.timeout == 0 {
		e.timeout = DefaultUpstreamTimeout
	}
	if e.maxBodySize <= 0 {
		e.maxBodySize = DefaultMaxBodySize
	}
	if e.log == nil {
		e.log = logging.Nop()
	}
	return e
}

// Logs returns the request log.
func (e *Engine) Logs() requestlog.SubscribableStore {
	return e.logs
}

// Mocks returns the mock store.
func (e *Engine) Mocks() storage.MockStore {
	return e.mocks
}

// RegisterMock pushes a validated registration and returns the pending
// entries for its key.
func (e *Engine) RegisterMock(reg *mock.Registration) ([]mock.Entry, error) {
	if err := reg.Validate(); err != nil {
		return nil, err
	}
	entries := e.mocks.Register(reg.Method, reg.Path, reg.Route, reg.Entry)
	e.metrics.SetMocksPending(e.mocks.Count())
	e.log.Debug("mock registered", "key", reg.Key(), "pending", len(entries))
	return entries, nil
}

// ClearMocks drops every pending mock.
func (e *Engine) ClearMocks() int {
	n := e.mocks.Clear()
	e.metrics.SetMocksPending(0)
	return n
}

// ClearLogs drops the request history.
func (e *Engine) ClearLogs() int {
	n := e.logs.Clear()
	e.metrics.SetLogsTotal(0)
	return n
}
