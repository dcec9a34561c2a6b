package api

import "context"

// SendMessageRequest is the body of POST /chat/message. MessageID doubles as
// the deduplication key: the same id travels on the WebSocket copy of the
// message, so either channel arriving first wins and the other is dropped.
type SendMessageRequest struct {
	MessageID string `json:"id,omitempty"`
	UserID    string `json:"userId"`
	RoomID    string `json:"roomId"`
	Content   string `json:"content"`
}

// SystemMessageRequest is the body of POST /chat/system/message.
type SystemMessageRequest struct {
	RoomID  string `json:"roomId"`
	Content string `json:"content"`
}

// BroadcastRequest is the body of POST /chat/system/broadcast.
type BroadcastRequest struct {
	Content string `json:"content"`
}

// SendChatMessage delivers a user chat message over the request/response
// channel. The push-channel copy is sent separately by the chat store.
func (c *Client) SendChatMessage(ctx context.Context, req SendMessageRequest) error {
	return c.post(ctx, "/chat/message", req, nil)
}

// SendSystemMessage posts a system notice into one room.
func (c *Client) SendSystemMessage(ctx context.Context, req SystemMessageRequest) error {
	return c.post(ctx, "/chat/system/message", req, nil)
}

// BroadcastSystemMessage posts a system notice into every room.
func (c *Client) BroadcastSystemMessage(ctx context.Context, req BroadcastRequest) error {
	return c.post(ctx, "/chat/system/broadcast", req, nil)
}
