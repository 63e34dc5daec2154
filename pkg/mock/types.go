// Package mock defines canned responses and the keys they are registered under.
package mock

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/net/http/httpguts"
	"gopkg.in/yaml.v3"
)

// DefaultStatus is used when a mock entry does not specify a status code.
const DefaultStatus = http.StatusOK

// Entry is a canned response substituted for a real upstream call.
type Entry struct {
	// Status is the HTTP status code to reply with (0 means DefaultStatus).
	Status int `json:"status,omitempty" yaml:"status,omitempty"`
	// Headers are added to the reply.
	Headers Headers `json:"headers,omitempty" yaml:"headers,omitempty"`
	// Body is an arbitrary JSON value.
	Body Body `json:"body,omitempty" yaml:"body,omitempty"`
}

// EffectiveStatus returns Status, or DefaultStatus when it is unset.
func (e Entry) EffectiveStatus() int {
	if e.Status == 0 {
		return DefaultStatus
	}
	return e.Status
}

// Clone returns a deep copy of the entry.
func (e Entry) Clone() Entry {
	return Entry{
		Status:  e.Status,
		Headers: e.Headers.Clone(),
		Body:    bytes.Clone(e.Body),
	}
}

// Registration is the payload accepted when registering a mock: the call
// shape it answers for plus the entry itself.
type Registration struct {
	Route  string `json:"route" yaml:"route"`
	Path   string `json:"path" yaml:"path"`
	Method string `json:"method" yaml:"method"`
	Entry  `yaml:",inline"`
}

// Key returns the normalized store key for the registration.
func (r *Registration) Key() string {
	return Key(r.Method, r.Path, r.Route)
}

// Key builds the composite lookup key for a call shape. Method, path and
// route are lowercased and any query string is stripped from path, so
// "GET /Users?page=1" under "/API" and "get /users" under "/api" share a key.
func Key(method, path, route string) string {
	return strings.ToLower(method) + "-" + NormalizePath(path) + "-" + NormalizeRoute(route)
}

// NormalizeRoute lowercases route and drops trailing slashes, keeping "/"
// for the root route.
func NormalizeRoute(route string) string {
	route = strings.TrimRight(strings.ToLower(route), "/")
	if route == "" {
		return "/"
	}
	return route
}

// NormalizePath lowercases path and drops its query string.
func NormalizePath(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	return strings.ToLower(path)
}

// Body holds an arbitrary JSON value, kept in its encoded form.
type Body json.RawMessage

// MarshalJSON returns the stored JSON value.
func (b Body) MarshalJSON() ([]byte, error) {
	if len(b) == 0 {
		return []byte("null"), nil
	}
	return b, nil
}

// UnmarshalJSON stores a copy of the encoded value.
func (b *Body) UnmarshalJSON(data []byte) error {
	if b == nil {
		return fmt.Errorf("mock.Body: UnmarshalJSON on nil pointer")
	}
	if string(data) == "null" {
		*b = nil
		return nil
	}
	*b = append((*b)[:0], data...)
	return nil
}

// MarshalYAML converts the stored JSON value to a generic value for YAML output.
func (b Body) MarshalYAML() (any, error) {
	if len(b) == 0 {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// UnmarshalYAML decodes any YAML value and stores it as JSON.
func (b *Body) UnmarshalYAML(node *yaml.Node) error {
	var v any
	if err := node.Decode(&v); err != nil {
		return err
	}
	if v == nil {
		*b = nil
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("mock body is not representable as JSON: %w", err)
	}
	*b = data
	return nil
}

// Payload returns the bytes to write on the wire and the content type that
// goes with them. A JSON string is written as plain text; any other value is
// written as JSON. An empty body has no content type.
func (b Body) Payload() ([]byte, string) {
	if len(b) == 0 || string(b) == "null" {
		return nil, ""
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err == nil {
			return []byte(s), "text/plain; charset=utf-8"
		}
	}
	return []byte(b), "application/json"
}

// HeaderValue is one or more values for a header. It decodes from either a
// string or an array of strings and encodes a single value as a string.
type HeaderValue []string

// MarshalJSON implements json.Marshaler.
func (v HeaderValue) MarshalJSON() ([]byte, error) {
	if len(v) == 1 {
		return json.Marshal(v[0])
	}
	return json.Marshal([]string(v))
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *HeaderValue) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	vals, err := headerValues(raw)
	if err != nil {
		return err
	}
	*v = vals
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (v *HeaderValue) UnmarshalYAML(node *yaml.Node) error {
	var raw any
	if err := node.Decode(&raw); err != nil {
		return err
	}
	vals, err := headerValues(raw)
	if err != nil {
		return err
	}
	*v = vals
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (v HeaderValue) MarshalYAML() (any, error) {
	if len(v) == 1 {
		return v[0], nil
	}
	return []string(v), nil
}

func headerValues(raw any) (HeaderValue, error) {
	switch t := raw.(type) {
	case nil:
		return nil, nil
	case string:
		return HeaderValue{t}, nil
	case []any:
		vals := make(HeaderValue, 0, len(t))
		for _, item := range t {
			if item == nil {
				continue
			}
			vals = append(vals, scalarString(item))
		}
		return vals, nil
	case map[string]any:
		return nil, fmt.Errorf("header value must be a string or a list of strings")
	default:
		return HeaderValue{scalarString(t)}, nil
	}
}

func scalarString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Headers maps header names to their values.
type Headers map[string]HeaderValue

// FromHTTP converts an http.Header.
func FromHTTP(h http.Header) Headers {
	if len(h) == 0 {
		return nil
	}
	out := make(Headers, len(h))
	for k, vals := range h {
		out[k] = append(HeaderValue(nil), vals...)
	}
	return out
}

// Apply sets every header on dst, replacing existing values. Fields whose
// name or any value cannot appear on the wire are left out and their names
// returned.
func (h Headers) Apply(dst http.Header) (skipped []string) {
	for k, vals := range h {
		if !validField(k, vals) {
			skipped = append(skipped, k)
			continue
		}
		dst.Del(k)
		for _, v := range vals {
			dst.Add(k, v)
		}
	}
	return skipped
}

func validField(name string, vals []string) bool {
	if !httpguts.ValidHeaderFieldName(name) {
		return false
	}
	for _, v := range vals {
		if !httpguts.ValidHeaderFieldValue(v) {
			return false
		}
	}
	return true
}

// Get returns the first value for name using case-insensitive matching.
func (h Headers) Get(name string) string {
	for k, vals := range h {
		if strings.EqualFold(k, name) && len(vals) > 0 {
			return vals[0]
		}
	}
	return ""
}

// Clone returns a deep copy.
func (h Headers) Clone() Headers {
	if h == nil {
		return nil
	}
	out := make(Headers, len(h))
	for k, vals := range h {
		out[k] = append(HeaderValue(nil), vals...)
	}
	return out
}
