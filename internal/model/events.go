package model

import "encoding/json"

// EventType is the discriminator of a WebSocket frame.
type EventType string

// Inbound event types pushed by the backend.
const (
	EventRoomUpdate   EventType = "room_update"
	EventPlayerJoined EventType = "player_joined"
	EventPlayerLeft   EventType = "player_left"
	EventPlayerReady  EventType = "player_ready"
	EventGameStarted  EventType = "game_started"
	EventGameFinished EventType = "game_finished"
	EventChatMessage  EventType = "chat_message"
)

// Outbound event types sent by the client.
const (
	EventJoinRoom  EventType = "join_room"
	EventLeaveRoom EventType = "leave_room"
)

// Event is the wrapper for WebSocket frames in both directions. Data is kept
// raw so each consumer decodes only the payload shape it expects.
type Event struct {
	Type EventType       `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// NewEvent marshals payload into an Event of the given type.
func NewEvent(t EventType, payload any) (Event, error) {
	if payload == nil {
		return Event{Type: t}, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}
	return Event{Type: t, Data: data}, nil
}

// RosterUpdate is the payload of player_joined / player_left events.
type RosterUpdate struct {
	Players        []Player `json:"players"`
	CurrentPlayers int      `json:"currentPlayers"`
}

// ReadyUpdate is the payload of player_ready events.
type ReadyUpdate struct {
	PlayerID string `json:"playerId"`
	IsReady  bool   `json:"isReady"`
}

// ChatPayload is the payload of chat_message events in both directions.
type ChatPayload struct {
	ID        string `json:"id,omitempty"`
	RoomID    string `json:"roomId"`
	SenderID  string `json:"senderId,omitempty"`
	Sender    string `json:"sender,omitempty"`
	AvatarURL string `json:"avatarUrl,omitempty"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp,omitempty"`
	Category  string `json:"type,omitempty"`
}

// RoomRef is the payload of join_room / leave_room events.
type RoomRef struct {
	RoomID string `json:"roomId"`
}
