package mock

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestKey_Normalizes(t *testing.T) {
	tests := []struct {
		name                string
		method, path, route string
		want                string
	}{
		{"already lowercase", "get", "/users", "/api", "get-/users-/api"},
		{"mixed case", "GET", "/Users/42", "/API", "get-/users/42-/api"},
		{"query stripped", "post", "/users?page=2&x=y", "/api", "post-/users-/api"},
		{"bare query marker", "GET", "/users?", "/api", "get-/users-/api"},
		{"trailing route slash", "GET", "/users", "/api/", "get-/users-/api"},
		{"root route", "GET", "/users", "/", "get-/users-/"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Key(tt.method, tt.path, tt.route))
		})
	}
}

func TestRegistration_DecodesFlatPayload(t *testing.T) {
	payload := `{
		"route": "/api",
		"path": "/users",
		"method": "GET",
		"status": 201,
		"headers": {"X-One": "1", "Set-Cookie": ["a=1", "b=2"]},
		"body": {"ok": true}
	}`

	var reg Registration
	require.NoError(t, json.Unmarshal([]byte(payload), &reg))

	assert.Equal(t, "/api", reg.Route)
	assert.Equal(t, "/users", reg.Path)
	assert.Equal(t, "GET", reg.Method)
	assert.Equal(t, 201, reg.Status)
	assert.Equal(t, HeaderValue{"1"}, reg.Headers["X-One"])
	assert.Equal(t, HeaderValue{"a=1", "b=2"}, reg.Headers["Set-Cookie"])
	assert.JSONEq(t, `{"ok":true}`, string(reg.Body))
	assert.Equal(t, "get-/users-/api", reg.Key())
}

func TestRegistration_DecodesYAML(t *testing.T) {
	doc := `
route: /api
path: /users
method: GET
status: 503
headers:
  Retry-After: 5
body:
  error: unavailable
`
	var reg Registration
	require.NoError(t, yaml.Unmarshal([]byte(doc), &reg))

	assert.Equal(t, 503, reg.Status)
	assert.Equal(t, HeaderValue{"5"}, reg.Headers["Retry-After"])
	assert.JSONEq(t, `{"error":"unavailable"}`, string(reg.Body))
}

func TestRegistration_Validate(t *testing.T) {
	tests := []struct {
		name    string
		reg     Registration
		wantErr error
	}{
		{"complete", Registration{Route: "/api", Path: "/u", Method: "GET"}, nil},
		{"missing route", Registration{Path: "/u", Method: "GET"}, ErrMissingCallShape},
		{"missing path", Registration{Route: "/api", Method: "GET"}, ErrMissingCallShape},
		{"missing method", Registration{Route: "/api", Path: "/u"}, ErrMissingCallShape},
		{"status too low", Registration{Route: "/api", Path: "/u", Method: "GET", Entry: Entry{Status: 42}}, ErrInvalidStatus},
		{"informational status", Registration{Route: "/api", Path: "/u", Method: "GET", Entry: Entry{Status: 103}}, ErrInvalidStatus},
		{"lowest final status", Registration{Route: "/api", Path: "/u", Method: "GET", Entry: Entry{Status: 200}}, nil},
		{"status too high", Registration{Route: "/api", Path: "/u", Method: "GET", Entry: Entry{Status: 1000}}, ErrInvalidStatus},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.reg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			var ve *ValidationError
			assert.True(t, errors.As(err, &ve))
		})
	}
}

func TestEntry_EffectiveStatus(t *testing.T) {
	assert.Equal(t, http.StatusOK, Entry{}.EffectiveStatus())
	assert.Equal(t, http.StatusTeapot, Entry{Status: http.StatusTeapot}.EffectiveStatus())
}

func TestBody_Payload(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantBody string
		wantType string
	}{
		{"object", `{"ok":true}`, `{"ok":true}`, "application/json"},
		{"array", `[1,2]`, `[1,2]`, "application/json"},
		{"number", `42`, `42`, "application/json"},
		{"string", `"hello"`, `hello`, "text/plain; charset=utf-8"},
		{"null", `null`, ``, ""},
		{"empty", ``, ``, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, ct := Body(tt.raw).Payload()
			assert.Equal(t, tt.wantBody, string(body))
			assert.Equal(t, tt.wantType, ct)
		})
	}
}

func TestEntry_MarshalOmitsAbsentBody(t *testing.T) {
	data, err := json.Marshal(Entry{Status: 204})
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":204}`, string(data))
}

func TestHeaderValue_RejectsObjects(t *testing.T) {
	var h Headers
	err := json.Unmarshal([]byte(`{"X-Bad": {"nested": true}}`), &h)
	assert.Error(t, err)
}

func TestHeaders_ApplyAndGet(t *testing.T) {
	h := Headers{
		"content-type": {"application/xml"},
		"X-Multi":      {"a", "b"},
	}
	dst := http.Header{}
	dst.Set("X-Multi", "old")
	assert.Empty(t, h.Apply(dst))

	assert.Equal(t, "application/xml", dst.Get("Content-Type"))
	assert.Equal(t, []string{"a", "b"}, dst.Values("X-Multi"))
	assert.Equal(t, "application/xml", h.Get("Content-Type"))
	assert.Empty(t, h.Get("Missing"))
}

func TestHeaders_ApplySkipsInvalidFields(t *testing.T) {
	h := Headers{
		"Bad Name":  {"x"},
		"X-Newline": {"a\r\nInjected: 1"},
		"X-Ok":      {"fine"},
	}
	dst := http.Header{}

	skipped := h.Apply(dst)

	assert.ElementsMatch(t, []string{"Bad Name", "X-Newline"}, skipped)
	assert.Equal(t, http.Header{"X-Ok": {"fine"}}, dst)
}

func TestEntry_CloneIsDeep(t *testing.T) {
	orig := Entry{Status: 200, Headers: Headers{"A": {"1"}}, Body: Body(`{"a":1}`)}
	cp := orig.Clone()
	cp.Headers["A"][0] = "changed"
	cp.Body[2] = 'b'

	assert.Equal(t, "1", orig.Headers["A"][0])
	assert.JSONEq(t, `{"a":1}`, string(orig.Body))
}
