package proxy

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// ErrInvalidRoute is returned when a route definition cannot be used.
var ErrInvalidRoute = errors.New("invalid proxy route")

// Route binds a path prefix to an upstream base URL.
type Route struct {
	Name   string
	Prefix string
	Base   *url.URL
}

// NewRoute parses base and normalizes prefix. The prefix must start with "/";
// a trailing "/" is dropped.
func NewRoute(name, prefix, base string) (*Route, error) {
	if !strings.HasPrefix(prefix, "/") {
		return nil, fmt.Errorf("%w: %s: route %q must start with /", ErrInvalidRoute, name, prefix)
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidRoute, name, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %s: base %q must be an absolute http or https URL", ErrInvalidRoute, name, base)
	}
	return &Route{
		Name:   name,
		Prefix: strings.TrimRight(prefix, "/"),
		Base:   u,
	}, nil
}

// Match reports whether path falls under the route and returns the remainder
// after the prefix. The prefix must end at a segment boundary and is compared
// case-insensitively. The remainder is "" or starts with "/".
func (rt *Route) Match(path string) (string, bool) {
	if len(path) < len(rt.Prefix) || !strings.EqualFold(path[:len(rt.Prefix)], rt.Prefix) {
		return "", false
	}
	rest := path[len(rt.Prefix):]
	if rest != "" && rest[0] != '/' {
		return "", false
	}
	return rest, true
}

// Target builds the upstream URL for a request remainder: the base URL with
// rest appended to its path and the original raw query kept.
func (rt *Route) Target(escapedRest, rawQuery string) string {
	var sb strings.Builder
	sb.WriteString(rt.Base.Scheme)
	sb.WriteString("://")
	sb.WriteString(rt.Base.Host)
	sb.WriteString(strings.TrimRight(rt.Base.EscapedPath(), "/"))
	sb.WriteString(escapedRest)
	if rawQuery != "" {
		sb.WriteByte('?')
		sb.WriteString(rawQuery)
	}
	return sb.String()
}

// Dispatcher sends each request to the first route whose prefix matches, in
// registration order, and everything else to the fallback handler.
type Dispatcher struct {
	engine   *Engine
	routes   []*Route
	fallback http.Handler
}

// NewDispatcher creates a Dispatcher. A nil fallback answers 404.
func NewDispatcher(engine *Engine, routes []*Route, fallback http.Handler) *Dispatcher {
	if fallback == nil {
		fallback = http.NotFoundHandler()
	}
	return &Dispatcher{engine: engine, routes: routes, fallback: fallback}
}

// Routes returns the configured routes in match order.
func (d *Dispatcher) Routes() []*Route {
	return d.routes
}

// Resolve returns the first route matching the request path and the escaped
// remainder after its prefix.
func (d *Dispatcher) Resolve(r *http.Request) (*Route, string, bool) {
	path := r.URL.EscapedPath()
	for _, rt := range d.routes {
		if rest, ok := rt.Match(path); ok {
			return rt, rest, true
		}
	}
	return nil, "", false
}

// ServeHTTP implements http.Handler.
func (d *Dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rt, rest, ok := d.Resolve(r)
	if !ok {
		d.fallback.ServeHTTP(w, r)
		return
	}
	d.engine.Serve(w, r, rt, rest)
}
