package store

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kaze-games/mahjong-tui/internal/api"
	chatutil "github.com/kaze-games/mahjong-tui/internal/chat"
	"github.com/kaze-games/mahjong-tui/internal/model"
	"github.com/kaze-games/mahjong-tui/internal/session"
	"github.com/kaze-games/mahjong-tui/internal/ws"
)

// HistoryCap bounds each room's retained chat history; the oldest entries
// are evicted first.
const HistoryCap = 100

// ChatStore mirrors per-room chat history and dispatches outbound messages
// over both the push channel and the request/response channel.
type ChatStore struct {
	api      *api.Client
	registry *ws.Registry
	session  *session.Store

	mu          sync.RWMutex
	history     map[string][]model.ChatMessage
	currentRoom string
	loading     bool
	lastErr     string
}

// NewChatStore builds a ChatStore around the shared collaborators.
func NewChatStore(client *api.Client, registry *ws.Registry, sess *session.Store) *ChatStore {
	return &ChatStore{
		api:      client,
		registry: registry,
		session:  sess,
		history:  make(map[string][]model.ChatMessage),
	}
}

// SendMessage validates and filters content, then dispatches it on both
// channels. The shared message id lets the receiving side deduplicate
// whichever copy arrives second.
func (c *ChatStore) SendMessage(ctx context.Context, content string) error {
	if err := chatutil.ValidateMessage(content); err != nil {
		c.setError(err)
		return err
	}
	filtered := chatutil.FilterSensitiveWords(content)

	c.mu.Lock()
	roomID := c.currentRoom
	c.loading = true
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.loading = false
		c.mu.Unlock()
	}()

	userID, _ := c.session.Player()
	messageID := uuid.NewString()

	ev, err := model.NewEvent(model.EventChatMessage, model.ChatPayload{
		ID:      messageID,
		RoomID:  roomID,
		Content: filtered,
	})
	if err == nil {
		c.registry.Send(roomID, ev)
	}

	if err := c.api.SendChatMessage(ctx, api.SendMessageRequest{
		MessageID: messageID,
		UserID:    userID,
		RoomID:    roomID,
		Content:   filtered,
	}); err != nil {
		c.setError(err)
		return err
	}
	return nil
}

// SendSystemMessage posts a system notice into the current room.
func (c *ChatStore) SendSystemMessage(ctx context.Context, content string) error {
	c.mu.RLock()
	roomID := c.currentRoom
	c.mu.RUnlock()
	if err := c.api.SendSystemMessage(ctx, api.SystemMessageRequest{RoomID: roomID, Content: content}); err != nil {
		c.setError(err)
		return err
	}
	return nil
}

// JoinRoom switches the active history to roomID and announces the join on
// the push channel.
func (c *ChatStore) JoinRoom(roomID string) {
	c.mu.Lock()
	c.currentRoom = roomID
	if _, ok := c.history[roomID]; !ok {
		c.history[roomID] = nil
	}
	c.mu.Unlock()

	if ev, err := model.NewEvent(model.EventJoinRoom, model.RoomRef{RoomID: roomID}); err == nil {
		c.registry.Send(roomID, ev)
	}
	c.AddSystemMessage("joined room " + roomID)
}

// LeaveRoom announces the leave and detaches from the room's history.
func (c *ChatStore) LeaveRoom() {
	c.mu.Lock()
	roomID := c.currentRoom
	c.mu.Unlock()
	if roomID == "" {
		return
	}
	if ev, err := model.NewEvent(model.EventLeaveRoom, model.RoomRef{RoomID: roomID}); err == nil {
		c.registry.Send(roomID, ev)
	}
	c.AddSystemMessage("left room " + roomID)
	c.mu.Lock()
	c.currentRoom = ""
	c.mu.Unlock()
}

// HandleEvent applies a pushed chat_message frame to the active history.
func (c *ChatStore) HandleEvent(ev model.Event) {
	if ev.Type != model.EventChatMessage {
		return
	}
	var payload model.ChatPayload
	if json.Unmarshal(ev.Data, &payload) != nil {
		return
	}
	msg := model.ChatMessage{
		ID:        payload.ID,
		SenderID:  payload.SenderID,
		Sender:    payload.Sender,
		AvatarURL: payload.AvatarURL,
		Content:   payload.Content,
		Category:  model.MessageCategory(payload.Category),
	}
	if payload.Timestamp > 0 {
		msg.Timestamp = time.UnixMilli(payload.Timestamp)
	}
	c.Append(msg)
}

// Append normalizes and stores a message in the active room's history,
// dropping duplicates by id and enforcing the FIFO cap.
func (c *ChatStore) Append(msg model.ChatMessage) {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.Sender == "" {
		msg.Sender = "unknown"
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	if msg.Category == "" {
		msg.Category = model.MessageUser
	}
	msg.ContentType = model.ContentType(chatutil.DetectContentType(msg.Content))

	c.mu.Lock()
	defer c.mu.Unlock()
	roomID := c.currentRoom
	if roomID == "" {
		return
	}
	msgs := c.history[roomID]
	for _, existing := range msgs {
		if existing.ID == msg.ID {
			return
		}
	}
	msgs = append(msgs, msg)
	if len(msgs) > HistoryCap {
		msgs = msgs[len(msgs)-HistoryCap:]
	}
	c.history[roomID] = msgs
}

// AddSystemMessage records a locally generated system entry.
func (c *ChatStore) AddSystemMessage(content string) {
	c.Append(model.ChatMessage{
		ID:       uuid.NewString(),
		SenderID: "system",
		Sender:   "system",
		Content:  content,
		Category: model.MessageSystem,
		IsRead:   true,
	})
}

// Messages returns a copy of the active room's history.
func (c *ChatStore) Messages() []model.ChatMessage {
	c.mu.RLock()
	defer c.mu.RUnlock()
	msgs := c.history[c.currentRoom]
	out := make([]model.ChatMessage, len(msgs))
	copy(out, msgs)
	return out
}

// UnreadCount counts unread messages from other senders.
func (c *ChatStore) UnreadCount() int {
	selfID, _ := c.session.Player()
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for _, msg := range c.history[c.currentRoom] {
		if !msg.IsRead && msg.SenderID != selfID {
			n++
		}
	}
	return n
}

// LastMessage returns the newest entry of the active history, or nil.
func (c *ChatStore) LastMessage() *model.ChatMessage {
	c.mu.RLock()
	defer c.mu.RUnlock()
	msgs := c.history[c.currentRoom]
	if len(msgs) == 0 {
		return nil
	}
	last := msgs[len(msgs)-1]
	return &last
}

// MarkAsRead flags one message as read.
func (c *ChatStore) MarkAsRead(messageID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	msgs := c.history[c.currentRoom]
	for i := range msgs {
		if msgs[i].ID == messageID {
			msgs[i].IsRead = true
		}
	}
}

// MarkAllRead flags every message from other senders as read.
func (c *ChatStore) MarkAllRead() {
	selfID, _ := c.session.Player()
	c.mu.Lock()
	defer c.mu.Unlock()
	msgs := c.history[c.currentRoom]
	for i := range msgs {
		if msgs[i].SenderID != selfID {
			msgs[i].IsRead = true
		}
	}
}

// Search returns the active history filtered by a case-insensitive keyword.
// An empty keyword returns everything.
func (c *ChatStore) Search(keyword string) []model.ChatMessage {
	keyword = strings.TrimSpace(strings.ToLower(keyword))
	if keyword == "" {
		return c.Messages()
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []model.ChatMessage
	for _, msg := range c.history[c.currentRoom] {
		if strings.Contains(strings.ToLower(msg.Content), keyword) {
			out = append(out, msg)
		}
	}
	return out
}

// Stats summarizes the active history.
type Stats struct {
	Total  int
	User   int
	System int
	Unread int
}

// MessageStats computes counts over the active history.
func (c *ChatStore) MessageStats() Stats {
	selfID, _ := c.session.Player()
	c.mu.RLock()
	defer c.mu.RUnlock()
	var st Stats
	for _, msg := range c.history[c.currentRoom] {
		st.Total++
		switch msg.Category {
		case model.MessageSystem:
			st.System++
		default:
			st.User++
		}
		if !msg.IsRead && msg.SenderID != selfID {
			st.Unread++
		}
	}
	return st
}

// ClearMessages empties the active room's history.
func (c *ChatStore) ClearMessages() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.currentRoom != "" {
		c.history[c.currentRoom] = nil
	}
}

// ClearHistory drops one room's retained history entirely.
func (c *ChatStore) ClearHistory(roomID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.history, roomID)
}

// CurrentRoomID returns the room whose history is active.
func (c *ChatStore) CurrentRoomID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.currentRoom
}

// IsLoading reports whether a send is in flight.
func (c *ChatStore) IsLoading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loading
}

// LastError returns the most recent send or validation failure.
func (c *ChatStore) LastError() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastErr
}

// Reset drops all history and local state.
func (c *ChatStore) Reset() {
	c.mu.Lock()
	c.history = make(map[string][]model.ChatMessage)
	c.currentRoom = ""
	c.loading = false
	c.lastErr = ""
	c.mu.Unlock()
}

func (c *ChatStore) setError(err error) {
	c.mu.Lock()
	c.lastErr = err.Error()
	c.mu.Unlock()
}
