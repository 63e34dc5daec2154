package requestlog

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/fautty/fautty/pkg/mock"
)

// Error kinds recorded when no upstream response was obtained.
const (
	ErrorKindTimeout    = "timeout"
	ErrorKindDNS        = "dns"
	ErrorKindConnection = "connection"
	ErrorKindCanceled   = "canceled"
	ErrorKindInternal   = "internal"
)

// Summary is the list view of a request.
type Summary struct {
	ID     int64     `json:"id"`
	Date   time.Time `json:"date"`
	Proxy  string    `json:"proxy"`
	URL    string    `json:"url"`
	Method string    `json:"method"`
}

// Detail is the full record of a request and its outcome.
type Detail struct {
	ID       int64      `json:"id"`
	Date     time.Time  `json:"date"`
	Proxy    string     `json:"proxy"`
	URL      string     `json:"url"`
	Method   string     `json:"method"`
	Request  *Request   `json:"request,omitempty"`
	Response *Response  `json:"response,omitempty"`
	Error    *ErrorInfo `json:"error,omitempty"`
}

// Request is the captured inbound request as it was sent upstream.
type Request struct {
	Headers mock.Headers `json:"headers"`
	Body    Body         `json:"body,omitempty"`
}

// Response is the response delivered to the caller, either mocked or relayed.
type Response struct {
	Status  int          `json:"status"`
	Headers mock.Headers `json:"headers"`
	Body    Body         `json:"body,omitempty"`
}

// ErrorInfo describes a failure to obtain an upstream response.
type ErrorInfo struct {
	Message string `json:"message"`
	Kind    string `json:"kind"`
}

// Completed reports whether a response or an error has been attached.
func (d *Detail) Completed() bool {
	return d.Response != nil || d.Error != nil
}

// Summary returns the summary view of the detail.
func (d *Detail) Summary() Summary {
	return Summary{ID: d.ID, Date: d.Date, Proxy: d.Proxy, URL: d.URL, Method: d.Method}
}

// Clone returns a deep copy.
func (d *Detail) Clone() *Detail {
	if d == nil {
		return nil
	}
	cp := *d
	if d.Request != nil {
		cp.Request = &Request{Headers: d.Request.Headers.Clone(), Body: bytes.Clone(d.Request.Body)}
	}
	if d.Response != nil {
		cp.Response = &Response{
			Status:  d.Response.Status,
			Headers: d.Response.Headers.Clone(),
			Body:    bytes.Clone(d.Response.Body),
		}
	}
	if d.Error != nil {
		e := *d.Error
		cp.Error = &e
	}
	return &cp
}

// Body is a captured HTTP body. Bytes that form valid JSON encode as that
// JSON value; anything else encodes as a JSON string.
type Body []byte

// MarshalJSON implements json.Marshaler.
func (b Body) MarshalJSON() ([]byte, error) {
	if len(b) == 0 {
		return []byte("null"), nil
	}
	if json.Valid(b) {
		return b, nil
	}
	return json.Marshal(string(b))
}

// UnmarshalJSON implements json.Unmarshaler. A JSON string is stored as its
// text; any other value is stored in its encoded form.
func (b *Body) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*b = nil
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*b = Body(s)
		return nil
	}
	*b = append((*b)[:0], data...)
	return nil
}
