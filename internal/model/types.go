// Package model defines the shared data types exchanged with the mahjong
// backend, both over REST and over the per-room WebSocket channel.
package model

import (
	"encoding/json"
	"time"
)

// RoomStatus is the lifecycle state of a room.
type RoomStatus string

const (
	RoomWaiting  RoomStatus = "WAITING"
	RoomPlaying  RoomStatus = "PLAYING"
	RoomFinished RoomStatus = "FINISHED"
)

// PlayerStatus is the presence state of a player inside a room.
type PlayerStatus string

const (
	PlayerOnline  PlayerStatus = "ONLINE"
	PlayerReady   PlayerStatus = "READY"
	PlayerPlaying PlayerStatus = "PLAYING"
	PlayerOffline PlayerStatus = "OFFLINE"
)

// Player is a seat occupant (or spectator) in a room. The backend owns the
// authoritative copy; the client mirrors whatever it is sent.
type Player struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	AvatarURL   string       `json:"avatarUrl,omitempty"`
	Position    int          `json:"position"`
	Status      PlayerStatus `json:"status"`
	IsSpectator bool         `json:"isSpectator"`
	TotalScore  int          `json:"totalScore"`
	WinsCount   int          `json:"winsCount"`
	IsReady     bool         `json:"isReady"`
}

// Room is the client-side mirror of a game room.
type Room struct {
	ID             string          `json:"id"`
	RoomNumber     string          `json:"roomNumber"`
	RoomName       string          `json:"roomName"`
	CreatorID      string          `json:"creatorId"`
	MaxPlayers     int             `json:"maxPlayers"`
	CurrentPlayers int             `json:"currentPlayers"`
	SpectatorCount int             `json:"spectatorCount"`
	Status         RoomStatus      `json:"status"`
	AllowSpectate  bool            `json:"allowSpectate"`
	IsPublic       bool            `json:"isPublic"`
	Players        []Player        `json:"players"`
	GameConfig     json.RawMessage `json:"gameConfig,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// MessageCategory distinguishes user chat from server announcements.
type MessageCategory string

const (
	MessageUser   MessageCategory = "user"
	MessageSystem MessageCategory = "system"
)

// ContentType is derived from the message body, never sent by the server.
type ContentType string

const (
	ContentText   ContentType = "text"
	ContentEmoji  ContentType = "emoji"
	ContentLink   ContentType = "link"
	ContentSystem ContentType = "system"
)

// ChatMessage is a single chat entry as held by the chat store.
type ChatMessage struct {
	ID          string          `json:"id"`
	SenderID    string          `json:"senderId"`
	Sender      string          `json:"sender"`
	AvatarURL   string          `json:"avatarUrl,omitempty"`
	Content     string          `json:"content"`
	Timestamp   time.Time       `json:"timestamp"`
	Category    MessageCategory `json:"type"`
	IsRead      bool            `json:"isRead"`
	ContentType ContentType     `json:"contentType"`
}

// TileType is the suit of a mahjong tile.
type TileType string

const (
	TileBamboo    TileType = "bamboo"
	TileCharacter TileType = "character"
	TileDot       TileType = "dot"
	TileHonor     TileType = "honor"
)

// Tile is one tile as rendered in the hand or the discard pile.
type Tile struct {
	ID      string   `json:"id"`
	Type    TileType `json:"type"`
	Value   string   `json:"value"`
	IsMixed bool     `json:"isMixed"`
}

// Game mirrors the backend's view of a running round.
type Game struct {
	ID            string     `json:"id"`
	RoomNumber    string     `json:"roomNumber"`
	Status        RoomStatus `json:"status"`
	CurrentPlayer string     `json:"currentPlayer"`
	PlayerHand    []Tile     `json:"playerHand,omitempty"`
	DiscardPile   []Tile     `json:"discardPile,omitempty"`
}

// RoomList is the paged payload of the room listing endpoint.
type RoomList struct {
	Rooms []Room `json:"rooms"`
	Total int    `json:"total"`
	Page  int    `json:"page"`
	Size  int    `json:"size"`
}
