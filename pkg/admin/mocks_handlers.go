package admin

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fautty/fautty/pkg/httputil"
	"github.com/fautty/fautty/pkg/mock"
)

// handleListMocks handles GET /mocks.
func (a *API) handleListMocks(w http.ResponseWriter, r *http.Request) {
	if route := r.URL.Query().Get("route"); route != "" {
		httputil.WriteOK(w, a.engine.Mocks().ListByRoute(route))
		return
	}
	httputil.WriteOK(w, a.engine.Mocks().List())
}

// handleCreateMock handles POST /mocks.
func (a *API) handleCreateMock(w http.ResponseWriter, r *http.Request) {
	var reg mock.Registration
	body := http.MaxBytesReader(w, r.Body, a.maxRequestBody)
	if err := json.NewDecoder(body).Decode(&reg); err != nil {
		httputil.WriteBadRequest(w, msgInvalidMock)
		return
	}

	entries, err := a.engine.RegisterMock(&reg)
	if err != nil {
		if errors.Is(err, mock.ErrInvalidStatus) {
			httputil.WriteBadRequest(w, msgInvalidStatus)
			return
		}
		httputil.WriteBadRequest(w, msgInvalidMock)
		return
	}

	a.log.Info("mock created", "key", reg.Key(), "status", reg.EffectiveStatus(), "pending", len(entries))
	httputil.WriteCreated(w, MockCreatedResponse{Msg: msgMockCreated, Mocks: entries})
}

// handleClearMocks handles DELETE /mocks.
func (a *API) handleClearMocks(w http.ResponseWriter, _ *http.Request) {
	n := a.engine.ClearMocks()
	a.log.Info("mocks cleared", "cleared", n)
	httputil.WriteOK(w, ClearedResponse{Msg: msgMocksCleared, Cleared: n})
}
