package proxy

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fautty/fautty/internal/id"
	"github.com/fautty/fautty/pkg/httputil"
	"github.com/fautty/fautty/pkg/metrics"
	"github.com/fautty/fautty/pkg/mock"
	"github.com/fautty/fautty/pkg/requestlog"
)

// hopByHopHeaders are connection-scoped and never forwarded in either direction.
var hopByHopHeaders = []string{
	"Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Proxy-Connection",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

// exchange carries the state of one request through the engine.
type exchange struct {
	id     int64
	route  *Route
	method string
	target string
	// path is the escaped remainder after the route prefix, used for the mock key.
	path   string
	header http.Header
	body   []byte
	start  time.Time
}

// Serve runs the forwarding state machine for a request already matched to
// rt. escapedRest is the escaped path remainder after the route prefix.
func (e *Engine) Serve(w http.ResponseWriter, r *http.Request, rt *Route, escapedRest string) {
	ex := &exchange{
		id:     e.ids.Next(),
		route:  rt,
		method: strings.ToLower(r.Method),
		target: rt.Target(escapedRest, r.URL.RawQuery),
		path:   mockPath(escapedRest),
		start:  time.Now(),
	}

	tw := &trackingWriter{ResponseWriter: w}
	defer e.recoverPanic(tw, ex)

	ex.header = e.outboundHeader(r)
	body, readErr := e.captureBody(r)
	ex.body = body

	e.recordRequest(ex)

	if readErr != nil {
		e.abort(tw, ex, readErr, requestlog.ErrorKindInternal)
		return
	}

	if entry, ok := e.mocks.Consume(ex.method, ex.path, rt.Prefix); ok {
		e.metrics.SetMocksPending(e.mocks.Count())
		e.serveMock(tw, ex, entry)
		return
	}

	e.forward(tw, r, ex)
}

// serveMock answers with a consumed mock entry without contacting the upstream.
func (e *Engine) serveMock(w http.ResponseWriter, ex *exchange, entry mock.Entry) {
	status := entry.EffectiveStatus()
	payload, contentType := entry.Body.Payload()

	h := w.Header()
	if skipped := entry.Headers.Apply(h); len(skipped) > 0 {
		e.log.Warn("mock headers skipped", "id", ex.id, "headers", skipped)
	}
	// net/http sizes the payload itself.
	h.Del("Content-Length")
	if contentType != "" && h.Get("Content-Type") == "" {
		h.Set("Content-Type", contentType)
	}
	h.Set(MarkerHeader, MarkerValue)

	e.logs.RecordResponse(ex.id, status, mock.FromHTTP(h), e.truncate(payload))

	w.WriteHeader(status)
	if len(payload) > 0 {
		_, _ = w.Write(payload)
	}

	e.metrics.ObserveRequest(ex.route.Name, ex.method, metrics.OutcomeMock, status)
	e.log.Debug("served mock",
		"id", ex.id,
		"proxy", ex.route.Name,
		"method", ex.method,
		"path", ex.path,
		"status", status,
	)
}

// forward performs the upstream call and relays its response.
func (e *Engine) forward(w http.ResponseWriter, r *http.Request, ex *exchange) {
	ctx := r.Context()
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	var body io.Reader
	if len(ex.body) > 0 {
		body = bytes.NewReader(ex.body)
	}
	outReq, err := http.NewRequestWithContext(ctx, r.Method, ex.target, body)
	if err != nil {
		e.abort(w, ex, fmt.Errorf("building upstream request: %w", err), requestlog.ErrorKindInternal)
		return
	}
	outReq.Header = ex.header
	outReq.Host = ex.route.Base.Host

	start := time.Now()
	resp, err := e.client.Do(outReq)
	if err != nil {
		e.fail(w, ex, err)
		return
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	e.metrics.ObserveUpstream(ex.route.Name, time.Since(start))
	if err != nil {
		e.fail(w, ex, fmt.Errorf("reading upstream response: %w", err))
		return
	}

	h := w.Header()
	copyHeaders(h, resp.Header)
	removeHopByHopHeaders(h)
	h.Del("Content-Length")
	h.Set(MarkerHeader, MarkerValue)

	e.logs.RecordResponse(ex.id, resp.StatusCode, mock.FromHTTP(h), e.truncate(respBody))

	w.WriteHeader(resp.StatusCode)
	_, _ = w.Write(respBody)

	e.metrics.ObserveRequest(ex.route.Name, ex.method, metrics.OutcomeUpstream, resp.StatusCode)
	e.log.Debug("relayed upstream response",
		"id", ex.id,
		"proxy", ex.route.Name,
		"url", ex.target,
		"status", resp.StatusCode,
		"duration", time.Since(ex.start),
	)
}

// recordRequest logs the inbound side of the exchange.
func (e *Engine) recordRequest(ex *exchange) {
	logged := mock.FromHTTP(ex.header)
	if logged == nil {
		logged = make(mock.Headers, 1)
	}
	logged["Host"] = mock.HeaderValue{ex.route.Base.Host}
	e.logs.RecordRequest(ex.id, ex.route.Name, ex.target, ex.method, logged, e.truncate(ex.body))
	e.metrics.SetLogsTotal(e.logs.Count())
}

// fail records a failed upstream call and answers with the generic 500.
func (e *Engine) fail(w http.ResponseWriter, ex *exchange, err error) {
	kind := classifyError(err)
	e.metrics.ObserveUpstreamError(kind)
	e.abort(w, ex, err, kind)
}

// abort records err with kind against the exchange and answers with the
// generic 500.
func (e *Engine) abort(w http.ResponseWriter, ex *exchange, err error, kind string) {
	e.logs.RecordError(ex.id, requestlog.ErrorInfo{Message: err.Error(), Kind: kind})
	e.metrics.ObserveRequest(ex.route.Name, ex.method, metrics.OutcomeError, 0)
	e.log.Warn("proxied request failed",
		"id", ex.id,
		"proxy", ex.route.Name,
		"url", ex.target,
		"kind", kind,
		"error", err,
	)

	httputil.WriteInternalError(w, FailureMessage)
}

// recoverPanic turns a panic after id allocation into an internal error on
// the log and a generic 500 when nothing has been written yet.
func (e *Engine) recoverPanic(w *trackingWriter, ex *exchange) {
	rec := recover()
	if rec == nil {
		return
	}
	if rec == http.ErrAbortHandler {
		panic(rec)
	}

	e.log.Error("panic while handling proxied request", "id", ex.id, "proxy", ex.route.Name, "panic", rec)
	if _, ok := e.logs.Detail(ex.id); !ok {
		e.recordRequest(ex)
	}
	e.logs.RecordError(ex.id, requestlog.ErrorInfo{
		Message: fmt.Sprintf("internal error: %v", rec),
		Kind:    requestlog.ErrorKindInternal,
	})
	e.metrics.ObserveRequest(ex.route.Name, ex.method, metrics.OutcomeError, 0)

	if !w.wroteHeader {
		httputil.WriteInternalError(w, FailureMessage)
	}
}

// outboundHeader copies the inbound headers for the upstream call.
func (e *Engine) outboundHeader(r *http.Request) http.Header {
	h := make(http.Header, len(r.Header)+1)
	copyHeaders(h, r.Header)
	removeHopByHopHeaders(h)
	if e.requestIDHeader != "" && h.Get(e.requestIDHeader) == "" {
		h.Set(e.requestIDHeader, id.UUID())
	}
	return h
}

// captureBody buffers the inbound body so it can be both logged and forwarded.
func (e *Engine) captureBody(r *http.Request) ([]byte, error) {
	if r.Body == nil || r.Body == http.NoBody {
		return nil, nil
	}
	defer func() { _ = r.Body.Close() }()
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return body, fmt.Errorf("reading request body: %w", err)
	}
	return body, nil
}

// truncate limits a body to the configured capture size.
func (e *Engine) truncate(body []byte) []byte {
	if int64(len(body)) > e.maxBodySize {
		return body[:e.maxBodySize]
	}
	return body
}

// mockPath is the path remainder as sent on the wire, so percent-escapes
// stay escaped in the mock key. An empty remainder addresses the route root.
func mockPath(escaped string) string {
	if escaped == "" {
		return "/"
	}
	return escaped
}

// copyHeaders copies headers from src to dst.
func copyHeaders(dst, src http.Header) {
	for key, values := range src {
		for _, value := range values {
			dst.Add(key, value)
		}
	}
}

// removeHopByHopHeaders removes headers that should not be forwarded,
// including any named by the Connection header.
func removeHopByHopHeaders(h http.Header) {
	for _, field := range h.Values("Connection") {
		for _, name := range strings.Split(field, ",") {
			if name = strings.TrimSpace(name); name != "" {
				h.Del(name)
			}
		}
	}
	for _, header := range hopByHopHeaders {
		h.Del(header)
	}
}

// trackingWriter records whether the status line has been sent.
type trackingWriter struct {
	http.ResponseWriter
	wroteHeader bool
}

func (w *trackingWriter) WriteHeader(code int) {
	w.wroteHeader = true
	w.ResponseWriter.WriteHeader(code)
}

func (w *trackingWriter) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(b)
}

// Unwrap exposes the underlying writer to http.ResponseController.
func (w *trackingWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
