package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaze-games/mahjong-tui/internal/model"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// pushServer is a minimal stand-in for the backend's per-room push channel.
type pushServer struct {
	srv *httptest.Server

	mu       sync.Mutex
	conns    []*websocket.Conn
	closed   int
	received chan []byte
}

func newPushServer(t *testing.T) *pushServer {
	ps := &pushServer{received: make(chan []byte, 16)}
	ps.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasPrefix(r.URL.Path, "/ws/room/"))
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)

		ps.mu.Lock()
		ps.conns = append(ps.conns, conn)
		ps.mu.Unlock()

		go func() {
			for {
				_, data, err := conn.ReadMessage()
				if err != nil {
					ps.mu.Lock()
					ps.closed++
					ps.mu.Unlock()
					return
				}
				ps.received <- data
			}
		}()
	}))
	t.Cleanup(ps.srv.Close)
	return ps
}

func (ps *pushServer) url() string {
	return "ws" + strings.TrimPrefix(ps.srv.URL, "http")
}

func (ps *pushServer) connCount() int {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return len(ps.conns)
}

func (ps *pushServer) closedCount() int {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return ps.closed
}

// lastConn returns the most recently accepted server-side connection.
func (ps *pushServer) lastConn() *websocket.Conn {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return ps.conns[len(ps.conns)-1]
}

func TestConnectEnforcesOneConnectionPerKey(t *testing.T) {
	ps := newPushServer(t)
	r := NewRegistry(ps.url(), zerolog.Nop())
	defer r.DisconnectAll()

	require.NoError(t, r.Connect(context.Background(), "R1", Handlers{}))
	require.Eventually(t, func() bool { return ps.connCount() == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, r.Connect(context.Background(), "R1", Handlers{}))
	require.Eventually(t, func() bool { return ps.connCount() == 2 }, time.Second, 10*time.Millisecond)

	// The first server-side connection observes the close.
	require.Eventually(t, func() bool { return ps.closedCount() == 1 }, time.Second, 10*time.Millisecond)
	assert.True(t, r.Connected("R1"))
}

func TestSendRequiresOpenConnection(t *testing.T) {
	ps := newPushServer(t)
	r := NewRegistry(ps.url(), zerolog.Nop())
	defer r.DisconnectAll()

	ev, err := model.NewEvent(model.EventChatMessage, model.ChatPayload{RoomID: "R1", Content: "hi"})
	require.NoError(t, err)

	assert.False(t, r.Send("R1", ev), "no handle registered")

	require.NoError(t, r.Connect(context.Background(), "R1", Handlers{}))
	assert.True(t, r.Send("R1", ev))

	select {
	case data := <-ps.received:
		var got model.Event
		require.NoError(t, json.Unmarshal(data, &got))
		assert.Equal(t, model.EventChatMessage, got.Type)
		var payload model.ChatPayload
		require.NoError(t, json.Unmarshal(got.Data, &payload))
		assert.Equal(t, "hi", payload.Content)
	case <-time.After(time.Second):
		t.Fatal("server did not receive the frame")
	}

	r.Disconnect("R1")
	require.Eventually(t, func() bool { return !r.Connected("R1") }, time.Second, 10*time.Millisecond)
	assert.False(t, r.Send("R1", ev), "closed handle")
}

func TestInboundEventsAreDispatched(t *testing.T) {
	ps := newPushServer(t)
	r := NewRegistry(ps.url(), zerolog.Nop())
	defer r.DisconnectAll()

	events := make(chan model.Event, 4)
	errs := make(chan error, 4)
	require.NoError(t, r.Connect(context.Background(), "R1", Handlers{
		OnEvent: func(_ string, ev model.Event) { events <- ev },
		OnError: func(_ string, err error) { errs <- err },
	}))
	require.Eventually(t, func() bool { return ps.connCount() == 1 }, time.Second, 10*time.Millisecond)

	conn := ps.lastConn()
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"game_started"}`)))

	select {
	case ev := <-events:
		assert.Equal(t, model.EventGameStarted, ev.Type)
	case <-time.After(time.Second):
		t.Fatal("event not dispatched")
	}

	// A malformed frame goes to OnError and reading continues.
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{not json`)))
	select {
	case <-errs:
	case <-time.After(time.Second):
		t.Fatal("parse failure not surfaced")
	}

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"game_finished"}`)))
	select {
	case ev := <-events:
		assert.Equal(t, model.EventGameFinished, ev.Type)
	case <-time.After(time.Second):
		t.Fatal("connection did not survive the malformed frame")
	}
}

func TestDisconnectFiresOnClose(t *testing.T) {
	ps := newPushServer(t)
	r := NewRegistry(ps.url(), zerolog.Nop())

	closed := make(chan string, 1)
	require.NoError(t, r.Connect(context.Background(), "R1", Handlers{
		OnClose: func(room string) { closed <- room },
	}))

	r.Disconnect("R1")
	select {
	case room := <-closed:
		assert.Equal(t, "R1", room)
	case <-time.After(time.Second):
		t.Fatal("OnClose not invoked")
	}
}

func TestDisconnectAllClosesEverything(t *testing.T) {
	ps := newPushServer(t)
	r := NewRegistry(ps.url(), zerolog.Nop())

	require.NoError(t, r.Connect(context.Background(), "R1", Handlers{}))
	require.NoError(t, r.Connect(context.Background(), "R2", Handlers{}))
	require.Eventually(t, func() bool { return ps.connCount() == 2 }, time.Second, 10*time.Millisecond)

	r.DisconnectAll()
	require.Eventually(t, func() bool { return ps.closedCount() == 2 }, time.Second, 10*time.Millisecond)
	assert.False(t, r.Connected("R1"))
	assert.False(t, r.Connected("R2"))
}

func TestConnectFailureReportsError(t *testing.T) {
	r := NewRegistry("ws://127.0.0.1:1", zerolog.Nop())

	var gotErr error
	err := r.Connect(context.Background(), "R1", Handlers{
		OnError: func(_ string, err error) { gotErr = err },
	})
	require.Error(t, err)
	assert.Error(t, gotErr)
	assert.False(t, r.Connected("R1"))
}
