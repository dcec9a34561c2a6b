package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTokens struct {
	token   string
	cleared bool
}

func (f *fakeTokens) Token() string     { return f.token }
func (f *fakeTokens) ClearToken() error { f.cleared = true; f.token = ""; return nil }

type captureNotifier struct {
	messages []string
}

func (n *captureNotifier) Notify(msg string) { n.messages = append(n.messages, msg) }

func newTestClient(baseURL string, tokens TokenSource, notifier Notifier) *Client {
	return NewClient(Options{
		BaseURL:  baseURL,
		Timeout:  2 * time.Second,
		Tokens:   tokens,
		Notifier: notifier,
		Logger:   zerolog.Nop(),
		Retry:    RetryConfig{MaxAttempts: 1, InitialDelay: time.Millisecond},
	})
}

func envelope(code int, message string, data any) []byte {
	raw, _ := json.Marshal(data)
	out, _ := json.Marshal(map[string]any{"code": code, "message": message, "data": json.RawMessage(raw)})
	return out
}

func TestClientDecodesEnvelopeData(t *testing.T) {
	var gotHeaders http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeaders = r.Header.Clone()
		w.Write(envelope(200, "ok", map[string]string{"id": "g1"}))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, &fakeTokens{token: "tok123"}, &captureNotifier{})
	var out struct {
		ID string `json:"id"`
	}
	err := c.do(context.Background(), http.MethodGet, "/rooms/R1", nil, &out)

	require.NoError(t, err)
	assert.Equal(t, "g1", out.ID)
	assert.Equal(t, "Bearer tok123", gotHeaders.Get("Authorization"))
	assert.Equal(t, "application/json", gotHeaders.Get("Content-Type"))
	assert.NotEmpty(t, gotHeaders.Get("X-Request-ID"))
}

func TestClientTreatsEmbeddedCodeAsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(envelope(4001, "room is full", nil))
	}))
	defer srv.Close()

	notifier := &captureNotifier{}
	c := newTestClient(srv.URL, nil, notifier)
	err := c.do(context.Background(), http.MethodPost, "/rooms/R1/join", map[string]string{"playerName": "Alice"}, nil)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "room is full", apiErr.Message)
	assert.Equal(t, 4001, apiErr.Code)
	assert.Equal(t, []string{"room is full"}, notifier.messages)
}

func TestClientEmbeddedCodeDefaultMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(envelope(500, "", nil))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, nil, &captureNotifier{})
	err := c.do(context.Background(), http.MethodGet, "/rooms", nil, nil)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "request failed", apiErr.Message)
}

func TestClientStatusMapping(t *testing.T) {
	cases := []struct {
		status      int
		serverMsg   string
		wantMessage string
	}{
		{400, "", "invalid request parameters"},
		{400, "bad room number", "bad room number"},
		{401, "whatever", "unauthorized, please log in again"},
		{403, "", "access denied"},
		{404, "", "resource not found"},
		{429, "", "too many requests, retry later"},
		{500, "", "internal server error"},
		{500, "db down", "db down"},
		{502, "", "request failed (502)"},
	}
	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
			w.Write(envelope(tc.status, tc.serverMsg, nil))
		}))

		c := newTestClient(srv.URL, nil, &captureNotifier{})
		err := c.do(context.Background(), http.MethodGet, "/rooms", nil, nil)
		srv.Close()

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr, tc.wantMessage)
		assert.Equal(t, tc.wantMessage, apiErr.Message)
		assert.Equal(t, tc.status, apiErr.Status)
	}
}

func TestClientEvictsTokenOnUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	tokens := &fakeTokens{token: "stale"}
	c := newTestClient(srv.URL, tokens, &captureNotifier{})
	err := c.do(context.Background(), http.MethodGet, "/rooms", nil, nil)

	require.Error(t, err)
	assert.True(t, tokens.cleared)
	assert.Empty(t, tokens.token)
}

func TestClientNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	notifier := &captureNotifier{}
	c := newTestClient(srv.URL, nil, notifier)
	err := c.do(context.Background(), http.MethodGet, "/rooms", nil, nil)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "network connection failed", apiErr.Message)
	assert.Zero(t, apiErr.Status)
	assert.True(t, Retryable(err))
}

func TestClientRetriesServerErrorsThenSucceeds(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write(envelope(200, "ok", map[string]any{"rooms": []any{}, "total": 0}))
	}))
	defer srv.Close()

	c := NewClient(Options{
		BaseURL:  srv.URL,
		Timeout:  2 * time.Second,
		Notifier: NopNotifier{},
		Logger:   zerolog.Nop(),
		Retry:    RetryConfig{MaxAttempts: 3, InitialDelay: time.Millisecond},
	})

	list, err := c.ListRooms(context.Background(), ListRoomsParams{})
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.Empty(t, list.Rooms)
}

func TestClientSendsIdempotencyKeyOnWrites(t *testing.T) {
	var keys []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		keys = append(keys, r.Header.Get("X-Idempotency-Key"))
		if len(keys) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write(envelope(200, "ok", map[string]any{"roomNumber": "R1"}))
	}))
	defer srv.Close()

	c := NewClient(Options{
		BaseURL:  srv.URL,
		Timeout:  2 * time.Second,
		Notifier: NopNotifier{},
		Logger:   zerolog.Nop(),
		Retry:    RetryConfig{MaxAttempts: 2, InitialDelay: time.Millisecond},
	})

	_, err := c.CreateRoom(context.Background(), CreateRoomRequest{RoomName: "test", CreatorNickname: "Alice"})
	require.NoError(t, err)
	require.Len(t, keys, 2)
	assert.NotEmpty(t, keys[0])
	// The retry reuses the same key so the backend can deduplicate.
	assert.Equal(t, keys[0], keys[1])
}
