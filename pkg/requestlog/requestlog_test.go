package requestlog

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fautty/fautty/pkg/mock"
)

func newTestStore() *MemoryStore {
	s := NewMemoryStore()
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }
	return s
}

func TestRecordRequest_CreatesBothViews(t *testing.T) {
	s := newTestStore()
	s.RecordRequest(1, "users", "http://up/users?x=1", "get", mock.Headers{"Host": {"up"}}, []byte(`{"q":1}`))

	sums := s.Summaries(nil)
	require.Len(t, sums, 1)
	assert.Equal(t, Summary{
		ID: 1, Date: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Proxy: "users", URL: "http://up/users?x=1", Method: "get",
	}, sums[0])

	d, ok := s.Detail(1)
	require.True(t, ok)
	require.NotNil(t, d.Request)
	assert.Equal(t, "up", d.Request.Headers.Get("Host"))
	assert.JSONEq(t, `{"q":1}`, string(d.Request.Body))
	assert.Nil(t, d.Response)
	assert.Nil(t, d.Error)
	assert.False(t, d.Completed())
	assert.Equal(t, 1, s.Pending())
}

func TestRecordResponse_AttachesOnce(t *testing.T) {
	s := newTestStore()
	s.RecordRequest(7, "p", "u", "get", nil, nil)
	s.RecordResponse(7, 201, mock.Headers{"X": {"a"}}, []byte("created"))
	s.RecordError(7, ErrorInfo{Message: "late", Kind: ErrorKindTimeout})

	d, ok := s.Detail(7)
	require.True(t, ok)
	require.NotNil(t, d.Response)
	assert.Equal(t, 201, d.Response.Status)
	assert.Equal(t, "created", string(d.Response.Body))
	assert.Nil(t, d.Error, "a second outcome must not be attached")
	assert.Equal(t, 0, s.Pending())
}

func TestRecordError_Attaches(t *testing.T) {
	s := newTestStore()
	s.RecordRequest(3, "p", "u", "post", nil, nil)
	s.RecordError(3, ErrorInfo{Message: "connection refused", Kind: ErrorKindConnection})

	d, ok := s.Detail(3)
	require.True(t, ok)
	require.NotNil(t, d.Error)
	assert.Equal(t, ErrorKindConnection, d.Error.Kind)
	assert.Nil(t, d.Response)
}

func TestRecordOutcome_UnknownIDIsNoop(t *testing.T) {
	s := newTestStore()
	assert.NotPanics(t, func() {
		s.RecordResponse(99, 200, nil, nil)
		s.RecordError(100, ErrorInfo{Message: "x"})
	})
	assert.Equal(t, 0, s.Count())
	_, ok := s.Detail(99)
	assert.False(t, ok)
}

func TestRecordRequest_DuplicateIDIgnored(t *testing.T) {
	s := newTestStore()
	s.RecordRequest(1, "a", "u1", "get", nil, nil)
	s.RecordRequest(1, "b", "u2", "get", nil, nil)

	assert.Equal(t, 1, s.Count())
	d, _ := s.Detail(1)
	assert.Equal(t, "a", d.Proxy)
}

func TestDetail_ReturnsCopy(t *testing.T) {
	s := newTestStore()
	s.RecordRequest(1, "p", "u", "get", mock.Headers{"A": {"1"}}, []byte("x"))

	d, _ := s.Detail(1)
	d.Request.Headers["A"][0] = "mutated"
	d.Proxy = "mutated"

	again, _ := s.Detail(1)
	assert.Equal(t, "1", again.Request.Headers["A"][0])
	assert.Equal(t, "p", again.Proxy)
}

func TestSummaries_Filter(t *testing.T) {
	s := newTestStore()
	s.RecordRequest(1, "users", "u", "get", nil, nil)
	s.RecordRequest(2, "orders", "u", "post", nil, nil)
	s.RecordRequest(3, "users", "u", "post", nil, nil)
	s.RecordRequest(4, "users", "u", "get", nil, nil)

	ids := func(sums []Summary) []int64 {
		out := make([]int64, 0, len(sums))
		for _, s := range sums {
			out = append(out, s.ID)
		}
		return out
	}

	assert.Equal(t, []int64{1, 2, 3, 4}, ids(s.Summaries(nil)))
	assert.Equal(t, []int64{1, 3, 4}, ids(s.Summaries(&Filter{Proxy: "users"})))
	assert.Equal(t, []int64{2, 3}, ids(s.Summaries(&Filter{Method: "POST"})))
	assert.Equal(t, []int64{3, 4}, ids(s.Summaries(&Filter{Proxy: "users", Limit: 2})))
}

func TestClear(t *testing.T) {
	s := newTestStore()
	s.RecordRequest(1, "p", "u", "get", nil, nil)
	s.RecordRequest(2, "p", "u", "get", nil, nil)

	assert.Equal(t, 2, s.Clear())
	assert.Equal(t, 0, s.Count())
	assert.Empty(t, s.Summaries(nil))
	_, ok := s.Detail(1)
	assert.False(t, ok)
}

func TestConcurrentRecording_NoLostEntries(t *testing.T) {
	const n = 500
	s := NewMemoryStore()

	var wg sync.WaitGroup
	for i := 1; i <= n; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			s.RecordRequest(id, "p", fmt.Sprintf("u%d", id), "get", nil, nil)
			if id%2 == 0 {
				s.RecordResponse(id, 200, nil, nil)
			} else {
				s.RecordError(id, ErrorInfo{Message: "boom", Kind: ErrorKindInternal})
			}
		}(int64(i))
	}
	wg.Wait()

	assert.Equal(t, n, s.Count())
	assert.Equal(t, 0, s.Pending())
	for i := int64(1); i <= n; i++ {
		d, ok := s.Detail(i)
		require.True(t, ok)
		require.NotNil(t, d.Request)
		assert.True(t, (d.Response != nil) != (d.Error != nil), "id %d must have exactly one outcome", i)
	}
}

func TestSubscribe_ReceivesEvents(t *testing.T) {
	s := newTestStore()
	sub, unsubscribe := s.Subscribe()
	defer unsubscribe()

	s.RecordRequest(1, "p", "u", "get", nil, nil)
	s.RecordResponse(1, 204, nil, nil)

	ev := <-sub
	assert.Equal(t, EventRequest, ev.Type)
	assert.Equal(t, int64(1), ev.Log.ID)

	ev = <-sub
	assert.Equal(t, EventResponse, ev.Type)
	require.NotNil(t, ev.Log.Response)
	assert.Equal(t, 204, ev.Log.Response.Status)
}

func TestSubscribe_UnsubscribeClosesAndIsIdempotent(t *testing.T) {
	s := newTestStore()
	sub, unsubscribe := s.Subscribe()
	unsubscribe()
	unsubscribe()

	_, open := <-sub
	assert.False(t, open)

	assert.NotPanics(t, func() {
		s.RecordRequest(1, "p", "u", "get", nil, nil)
	})
}

func TestSubscribe_SlowSubscriberDoesNotBlock(t *testing.T) {
	s := newTestStore()
	_, unsubscribe := s.Subscribe()
	defer unsubscribe()

	done := make(chan struct{})
	go func() {
		for i := int64(1); i <= subscriberBuffer*3; i++ {
			s.RecordRequest(i, "p", "u", "get", nil, nil)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("recording blocked on a slow subscriber")
	}
}

func TestBody_JSON(t *testing.T) {
	tests := []struct {
		name string
		body Body
		want string
	}{
		{"json object", Body(`{"a":1}`), `{"a":1}`},
		{"plain text", Body("hello"), `"hello"`},
		{"empty", nil, `null`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.body)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(data))
		})
	}
}

func TestBody_DecodeStringAsText(t *testing.T) {
	var d Response
	require.NoError(t, json.Unmarshal([]byte(`{"status":200,"headers":{},"body":"plain"}`), &d))
	assert.Equal(t, "plain", string(d.Body))

	require.NoError(t, json.Unmarshal([]byte(`{"status":200,"headers":{},"body":{"k":"v"}}`), &d))
	assert.JSONEq(t, `{"k":"v"}`, string(d.Body))
}

func TestDetail_JSONShape(t *testing.T) {
	s := newTestStore()
	s.RecordRequest(5, "users", "http://up/x", "get", mock.Headers{"Accept": {"*/*"}}, nil)
	s.RecordResponse(5, 200, mock.Headers{"Content-Type": {"application/json"}}, []byte(`{"ok":true}`))

	d, _ := s.Detail(5)
	data, err := json.Marshal(d)
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	for _, key := range []string{"id", "date", "proxy", "url", "method", "request", "response"} {
		assert.Contains(t, raw, key)
	}
	assert.NotContains(t, raw, "error")
	assert.JSONEq(t, `{"status":200,"headers":{"Content-Type":"application/json"},"body":{"ok":true}}`, string(raw["response"]))
}
