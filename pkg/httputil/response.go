// Package httputil holds the response writers shared by the admin endpoints.
// JSON bodies are used for structured results; the fixed client-facing
// messages (bad mock payload, unknown log id, upstream failure) are plain text.
package httputil

import (
	"encoding/json"
	"net/http"
)

const (
	contentTypeJSON = "application/json"
	contentTypeText = "text/plain; charset=utf-8"
)

// ErrorResponse is the JSON body written by WriteError.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// WriteJSON encodes data and writes it with status. A nil data writes only
// the status line. If data cannot be encoded a 500 is sent instead.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	if data == nil {
		w.Header().Set("Content-Type", contentTypeJSON)
		w.WriteHeader(status)
		return
	}
	body, err := json.Marshal(data)
	if err != nil {
		WriteText(w, http.StatusInternalServerError, "failed to encode response")
		return
	}
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}

// WriteText writes message as the plain text body.
func WriteText(w http.ResponseWriter, status int, message string) {
	h := w.Header()
	h.Set("Content-Type", contentTypeText)
	h.Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(message))
}

// WriteError writes an ErrorResponse.
func WriteError(w http.ResponseWriter, status int, errCode, message string) {
	WriteJSON(w, status, ErrorResponse{Error: errCode, Message: message})
}

func WriteOK(w http.ResponseWriter, data any)      { WriteJSON(w, http.StatusOK, data) }
func WriteCreated(w http.ResponseWriter, data any) { WriteJSON(w, http.StatusCreated, data) }

func WriteBadRequest(w http.ResponseWriter, message string) {
	WriteText(w, http.StatusBadRequest, message)
}

func WriteNotFound(w http.ResponseWriter, message string) {
	WriteText(w, http.StatusNotFound, message)
}

func WriteInternalError(w http.ResponseWriter, message string) {
	WriteText(w, http.StatusInternalServerError, message)
}
