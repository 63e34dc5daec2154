package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/fautty/fautty/pkg/admin"
	"github.com/fautty/fautty/pkg/config"
	"github.com/fautty/fautty/pkg/logging"
	"github.com/fautty/fautty/pkg/metrics"
	"github.com/fautty/fautty/pkg/mock"
	"github.com/fautty/fautty/pkg/proxy"
)

// ShutdownTimeout is the maximum time to wait for in-flight requests on shutdown.
const ShutdownTimeout = 30 * time.Second

// ErrAlreadyRunning is returned by Start on a server that is already listening.
var ErrAlreadyRunning = errors.New("server is already running")

// Server is the proxy with its admin API on one port.
type Server struct {
	cfg        *config.Config
	engine     *proxy.Engine
	admin      *admin.API
	dispatcher *proxy.Dispatcher
	handler    http.Handler
	log        *slog.Logger

	mu         sync.Mutex
	httpServer *http.Server
	listener   net.Listener
	running    bool
	serveErr   chan error
}

// Option configures a Server.
type Option func(*options)

type options struct {
	log    *slog.Logger
	client *http.Client
	seeds  []mock.Registration
}

// WithLogger sets the operational logger.
func WithLogger(log *slog.Logger) Option {
	return func(o *options) { o.log = log }
}

// WithHTTPClient sets the client used for upstream calls.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.client = c }
}

// WithSeedMocks registers mocks before the server accepts traffic.
func WithSeedMocks(seeds []mock.Registration) Option {
	return func(o *options) { o.seeds = seeds }
}

// New builds a server from cfg. cfg is expected to be defaulted and
// validated; route or seed errors are still reported here.
func New(cfg *config.Config, opts ...Option) (*Server, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logging.Nop()
	}

	routes := make([]*proxy.Route, 0, len(cfg.Proxies))
	for i, p := range cfg.Proxies {
		rt, err := proxy.NewRoute(p.Name, p.Route, p.Base)
		if err != nil {
			return nil, fmt.Errorf("proxies[%d]: %w", i, err)
		}
		routes = append(routes, rt)
	}

	reg := metrics.NewRegistry()
	engine := proxy.New(proxy.Options{
		Client:          o.client,
		UpstreamTimeout: cfg.UpstreamTimeout.Std(),
		MaxBodySize:     cfg.MaxBodySize,
		RequestIDHeader: cfg.RequestIDHeader,
		Metrics:         metrics.NewProxyMetrics(reg),
		Logger:          logging.Component(o.log, "proxy"),
	})

	for i := range o.seeds {
		if _, err := engine.RegisterMock(&o.seeds[i]); err != nil {
			return nil, fmt.Errorf("seed mock %s: %w", o.seeds[i].Key(), err)
		}
	}

	api := admin.New(engine,
		admin.WithLogger(logging.Component(o.log, "admin")),
		admin.WithProxyCount(len(routes)),
		admin.WithMetrics(reg, metrics.NewRuntimeCollector(reg)),
	)
	dispatcher := proxy.NewDispatcher(engine, routes, api)

	return &Server{
		cfg:        cfg,
		engine:     engine,
		admin:      api,
		dispatcher: dispatcher,
		handler:    admin.NewLoggingMiddleware(dispatcher, o.log),
		log:        o.log,
	}, nil
}

// Engine returns the proxy engine.
func (s *Server) Engine() *proxy.Engine {
	return s.engine
}

// Handler returns the combined proxy and admin handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start listens on the configured port and serves in the background.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return ErrAlreadyRunning
	}

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.cfg.Port))
	if err != nil {
		return fmt.Errorf("failed to listen on port %d: %w", s.cfg.Port, err)
	}
	s.listener = ln
	s.httpServer = &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	s.serveErr = errc
	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("HTTP server error", "error", err)
			errc <- err
		}
		close(errc)
	}()

	s.running = true
	for _, rt := range s.dispatcher.Routes() {
		s.log.Info("proxy route", "name", rt.Name, "route", rt.Prefix, "base", rt.Base.String())
	}
	s.log.Info("server started", "addr", ln.Addr().String(), "proxies", len(s.dispatcher.Routes()))
	return nil
}

// Errors delivers the error that ended serving, if any. The channel is
// closed once the listener stops. It is nil before Start.
func (s *Server) Errors() <-chan error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.serveErr
}

// Addr returns the listening address, or nil before Start.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Stop closes open log streams and waits for in-flight requests to finish.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	s.admin.Close()
	s.running = false
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("HTTP shutdown: %w", err)
	}
	s.log.Info("server stopped")
	return nil
}
