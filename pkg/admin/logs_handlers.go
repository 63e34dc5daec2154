package admin

import (
	"net/http"

	"github.com/fautty/fautty/pkg/httputil"
	"github.com/fautty/fautty/pkg/requestlog"
)

// handleListLogs handles GET /logs.
func (a *API) handleListLogs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := &requestlog.Filter{
		Proxy:  q.Get("proxy"),
		Method: q.Get("method"),
	}
	if v := q.Get("limit"); v != "" {
		limit, ok := parseNonNegativeInt(v)
		if !ok {
			httputil.WriteError(w, http.StatusBadRequest, errCodeInvalidArg, "limit must be a non-negative integer")
			return
		}
		filter.Limit = limit
	}

	summaries := a.engine.Logs().Summaries(filter)
	if summaries == nil {
		summaries = []requestlog.Summary{}
	}
	httputil.WriteOK(w, LogsResponse{Logs: summaries})
}

// handleGetLog handles GET /logs/{id}.
func (a *API) handleGetLog(w http.ResponseWriter, r *http.Request) {
	id, ok := parseLogID(r.PathValue("id"))
	if !ok {
		httputil.WriteNotFound(w, msgLogNotFound)
		return
	}
	detail, ok := a.engine.Logs().Detail(id)
	if !ok {
		httputil.WriteNotFound(w, msgLogNotFound)
		return
	}
	httputil.WriteOK(w, detail)
}

// handleClearLogs handles DELETE /logs.
func (a *API) handleClearLogs(w http.ResponseWriter, _ *http.Request) {
	n := a.engine.ClearLogs()
	a.log.Info("request log cleared", "cleared", n)
	httputil.WriteOK(w, ClearedResponse{Msg: msgLogsCleared, Cleared: n})
}
