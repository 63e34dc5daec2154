package admin

import (
	"context"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

// streamWriteTimeout bounds each event write to a stream client.
const streamWriteTimeout = 5 * time.Second

// handleStreamLogs handles GET /logs/stream. Each request, response and
// error recorded after the connection opens is sent as a JSON event.
func (a *API) handleStreamLogs(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		a.log.Debug("log stream upgrade failed", "error", err)
		return
	}
	defer func() { _ = conn.CloseNow() }()

	events, unsubscribe := a.engine.Logs().Subscribe()
	defer unsubscribe()

	// Client messages are ignored; CloseRead cancels ctx when the peer goes away.
	ctx := conn.CloseRead(r.Context())
	a.log.Debug("log stream opened", "remote", r.RemoteAddr)

	for {
		select {
		case <-ctx.Done():
			return
		case <-a.ctx.Done():
			_ = conn.Close(websocket.StatusGoingAway, "server shutting down")
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			wctx, cancel := context.WithTimeout(ctx, streamWriteTimeout)
			err := wsjson.Write(wctx, conn, ev)
			cancel()
			if err != nil {
				a.log.Debug("log stream write failed", "error", err)
				return
			}
		}
	}
}
