package admin

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/fautty/fautty/pkg/logging"
	"github.com/fautty/fautty/pkg/metrics"
	"github.com/fautty/fautty/pkg/proxy"
)

// DefaultMaxRequestBody caps the size of a mock registration payload.
const DefaultMaxRequestBody = 10 * 1024 * 1024

// API serves the admin endpoints over a proxy engine.
type API struct {
	engine          *proxy.Engine
	proxies         int
	metricsRegistry *metrics.Registry
	runtime         *metrics.RuntimeCollector
	maxRequestBody  int64
	startTime       time.Time
	log             *slog.Logger

	// ctx is canceled by Close to end long-lived streams.
	ctx    context.Context
	cancel context.CancelFunc

	handler http.Handler
}

// New creates the admin API for engine.
func New(engine *proxy.Engine, opts ...Option) *API {
	ctx, cancel := context.WithCancel(context.Background())
	a := &API{
		engine:         engine,
		maxRequestBody: DefaultMaxRequestBody,
		startTime:      time.Now(),
		log:            logging.Nop(),
		ctx:            ctx,
		cancel:         cancel,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.metricsRegistry == nil {
		a.metricsRegistry = metrics.NewRegistry()
	}

	mux := http.NewServeMux()
	a.registerRoutes(mux)
	a.handler = mux
	return a
}

// ServeHTTP implements http.Handler.
func (a *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.handler.ServeHTTP(w, r)
}

// Uptime returns the number of whole seconds since the API was created.
func (a *API) Uptime() int {
	return int(time.Since(a.startTime).Seconds())
}

// Close ends open log streams. The API keeps serving plain requests.
func (a *API) Close() {
	a.cancel()
}
