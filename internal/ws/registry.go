// Package ws manages the per-room WebSocket connections. The backend pushes
// room and chat updates over one connection per room; the registry enforces
// at most one live connection per room key.
package ws

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/kaze-games/mahjong-tui/internal/model"
)

// connState tracks the lifecycle of one handle.
type connState int

const (
	stateClosed connState = iota
	stateConnecting
	stateOpen
)

// Handlers are the callbacks bound to a connection. All of them are optional
// and are invoked from the connection's read goroutine (except OnOpen, which
// runs on the connecting goroutine).
type Handlers struct {
	OnOpen  func(roomNumber string)
	OnEvent func(roomNumber string, ev model.Event)
	OnClose func(roomNumber string)
	OnError func(roomNumber string, err error)
}

type handle struct {
	key      string
	handlers Handlers

	mu    sync.Mutex
	state connState
	conn  *websocket.Conn
}

// Registry owns all live room connections, keyed by room number.
type Registry struct {
	baseURL string
	dialer  *websocket.Dialer
	log     zerolog.Logger

	mu    sync.Mutex
	conns map[string]*handle
}

// NewRegistry creates a registry dialing baseURL + "/ws/room/{roomNumber}".
func NewRegistry(baseURL string, logger zerolog.Logger) *Registry {
	return &Registry{
		baseURL: baseURL,
		dialer:  websocket.DefaultDialer,
		log:     logger,
		conns:   make(map[string]*handle),
	}
}

// Connect opens the room's connection, closing any previous connection for
// the same key first. Inbound frames are decoded as model.Event and passed
// to OnEvent; frames that fail to decode go to OnError and reading resumes.
func (r *Registry) Connect(ctx context.Context, roomNumber string, handlers Handlers) error {
	h := &handle{key: roomNumber, handlers: handlers, state: stateConnecting}

	r.mu.Lock()
	if prev, ok := r.conns[roomNumber]; ok {
		prev.close()
	}
	r.conns[roomNumber] = h
	r.mu.Unlock()

	url := r.baseURL + "/ws/room/" + roomNumber
	r.log.Debug().Str("room", roomNumber).Str("url", url).Msg("ws connecting")

	conn, _, err := r.dialer.DialContext(ctx, url, nil)
	if err != nil {
		r.drop(h)
		r.log.Warn().Str("room", roomNumber).Err(err).Msg("ws dial failed")
		if handlers.OnError != nil {
			handlers.OnError(roomNumber, err)
		}
		return err
	}

	h.mu.Lock()
	if h.state == stateClosed {
		// A later Connect or Disconnect for the same key won the race.
		h.mu.Unlock()
		conn.Close()
		return nil
	}
	h.conn = conn
	h.state = stateOpen
	h.mu.Unlock()

	r.log.Info().Str("room", roomNumber).Msg("ws connected")
	if handlers.OnOpen != nil {
		handlers.OnOpen(roomNumber)
	}

	go r.readPump(h, conn)
	return nil
}

func (r *Registry) readPump(h *handle, conn *websocket.Conn) {
	defer func() {
		h.close()
		r.drop(h)
		r.log.Info().Str("room", h.key).Msg("ws closed")
		if h.handlers.OnClose != nil {
			h.handlers.OnClose(h.key)
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				r.log.Warn().Str("room", h.key).Err(err).Msg("ws read error")
				if h.handlers.OnError != nil {
					h.handlers.OnError(h.key, err)
				}
			}
			return
		}

		var ev model.Event
		if err := json.Unmarshal(data, &ev); err != nil {
			r.log.Warn().Str("room", h.key).Err(err).Msg("ws frame decode failed")
			if h.handlers.OnError != nil {
				h.handlers.OnError(h.key, err)
			}
			continue
		}

		if h.handlers.OnEvent != nil {
			h.handlers.OnEvent(h.key, ev)
		}
	}
}

// drop removes h from the map if it is still the registered handle for its
// key. A replacement registered by a newer Connect is left alone.
func (r *Registry) drop(h *handle) {
	r.mu.Lock()
	if cur, ok := r.conns[h.key]; ok && cur == h {
		delete(r.conns, h.key)
	}
	r.mu.Unlock()
}

// Disconnect closes the room's connection if one exists; no-op otherwise.
func (r *Registry) Disconnect(roomNumber string) {
	r.mu.Lock()
	h, ok := r.conns[roomNumber]
	if ok {
		delete(r.conns, roomNumber)
	}
	r.mu.Unlock()
	if ok {
		h.close()
	}
}

// DisconnectAll closes every registered connection.
func (r *Registry) DisconnectAll() {
	r.mu.Lock()
	handles := make([]*handle, 0, len(r.conns))
	for _, h := range r.conns {
		handles = append(handles, h)
	}
	r.conns = make(map[string]*handle)
	r.mu.Unlock()

	for _, h := range handles {
		h.close()
	}
}

// Send serializes payload and transmits it on the room's connection. It
// returns false when no connection exists for the key, the connection is not
// open, or the write fails; callers must check the result.
func (r *Registry) Send(roomNumber string, payload any) bool {
	r.mu.Lock()
	h, ok := r.conns[roomNumber]
	r.mu.Unlock()
	if !ok {
		return false
	}

	data, err := json.Marshal(payload)
	if err != nil {
		r.log.Warn().Str("room", roomNumber).Err(err).Msg("ws payload marshal failed")
		return false
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state != stateOpen {
		return false
	}
	if err := h.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		r.log.Warn().Str("room", roomNumber).Err(err).Msg("ws write failed")
		return false
	}
	return true
}

// Connected reports whether the room currently has an open connection.
func (r *Registry) Connected(roomNumber string) bool {
	r.mu.Lock()
	h, ok := r.conns[roomNumber]
	r.mu.Unlock()
	if !ok {
		return false
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state == stateOpen
}

func (h *handle) close() {
	h.mu.Lock()
	conn := h.conn
	h.conn = nil
	h.state = stateClosed
	h.mu.Unlock()
	if conn != nil {
		conn.Close()
	}
}
