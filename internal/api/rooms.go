package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/kaze-games/mahjong-tui/internal/model"
)

// CreateRoomRequest is the body of POST /rooms.
type CreateRoomRequest struct {
	RoomName        string          `json:"roomName"`
	CreatorID       string          `json:"creatorId"`
	CreatorNickname string          `json:"creatorNickname"`
	Password        string          `json:"password,omitempty"`
	MaxPlayers      int             `json:"maxPlayers"`
	AllowSpectate   bool            `json:"allowSpectate"`
	IsPublic        bool            `json:"isPublic"`
	GameConfig      json.RawMessage `json:"gameConfig,omitempty"`
}

// JoinRoomRequest is the body of POST /rooms/{id}/join.
type JoinRoomRequest struct {
	PlayerID    string `json:"playerId"`
	PlayerName  string `json:"playerName"`
	Password    string `json:"password,omitempty"`
	AsSpectator bool   `json:"asSpectator"`
	AvatarURL   string `json:"avatarUrl,omitempty"`
	DeviceInfo  string `json:"deviceInfo,omitempty"`
}

// LeaveRoomRequest is the body of POST /rooms/{id}/leave.
type LeaveRoomRequest struct {
	PlayerID          string `json:"playerId"`
	Reason            string `json:"reason,omitempty"`
	SwitchToSpectator bool   `json:"switchToSpectator,omitempty"`
}

// ReadyRequest is the body of POST /rooms/{id}/ready.
type ReadyRequest struct {
	PlayerID string `json:"playerId"`
	IsReady  bool   `json:"isReady"`
}

// ListRoomsParams filters GET /rooms.
type ListRoomsParams struct {
	Page     int
	Size     int
	Status   model.RoomStatus
	IsPublic *bool
}

// CreateRoom creates a room and returns the backend's copy of it.
func (c *Client) CreateRoom(ctx context.Context, req CreateRoomRequest) (*model.Room, error) {
	var room model.Room
	if err := c.post(ctx, "/rooms", req, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

// JoinRoom joins roomNumber and returns the updated room.
func (c *Client) JoinRoom(ctx context.Context, roomNumber string, req JoinRoomRequest) (*model.Room, error) {
	var room model.Room
	if err := c.post(ctx, "/rooms/"+roomNumber+"/join", req, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

// LeaveRoom removes the player from roomNumber.
func (c *Client) LeaveRoom(ctx context.Context, roomNumber string, req LeaveRoomRequest) error {
	return c.post(ctx, "/rooms/"+roomNumber+"/leave", req, nil)
}

// SetPlayerReady toggles the ready flag and returns the updated room.
func (c *Client) SetPlayerReady(ctx context.Context, roomNumber string, req ReadyRequest) (*model.Room, error) {
	var room model.Room
	if err := c.post(ctx, "/rooms/"+roomNumber+"/ready", req, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

// StartGame asks the backend to deal and returns the new game state.
func (c *Client) StartGame(ctx context.Context, roomNumber string, payload any) (*model.Game, error) {
	var game model.Game
	if err := c.post(ctx, "/rooms/"+roomNumber+"/start", payload, &game); err != nil {
		return nil, err
	}
	return &game, nil
}

// EndGame finishes the current round in roomNumber.
func (c *Client) EndGame(ctx context.Context, roomNumber string, payload any) error {
	return c.post(ctx, "/rooms/"+roomNumber+"/end", payload, nil)
}

// GetRoom fetches a single room. userID, when set, asks for user-specific
// fields. Runs quiet: it backs the room view's polling.
func (c *Client) GetRoom(ctx context.Context, roomNumber, userID string) (*model.Room, error) {
	q := url.Values{}
	if userID != "" {
		q.Set("userId", userID)
	}
	var room model.Room
	if err := c.get(ctx, "/rooms/"+roomNumber, &room, withQuery(q), withQuiet()); err != nil {
		return nil, err
	}
	return &room, nil
}

// ListRooms fetches a page of the public room list.
func (c *Client) ListRooms(ctx context.Context, params ListRoomsParams) (*model.RoomList, error) {
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.Size <= 0 {
		params.Size = 20
	}
	q := url.Values{}
	q.Set("page", strconv.Itoa(params.Page))
	q.Set("size", strconv.Itoa(params.Size))
	if params.Status != "" {
		q.Set("status", string(params.Status))
	}
	if params.IsPublic != nil {
		q.Set("isPublic", strconv.FormatBool(*params.IsPublic))
	}
	var list model.RoomList
	if err := c.get(ctx, "/rooms", &list, withQuery(q), withQuiet()); err != nil {
		return nil, err
	}
	return &list, nil
}

// GetUserRoom returns the room the user currently occupies, if any.
func (c *Client) GetUserRoom(ctx context.Context, userID string) (*model.Room, error) {
	var room model.Room
	if err := c.get(ctx, "/rooms/user/"+userID, &room, withQuiet()); err != nil {
		return nil, err
	}
	return &room, nil
}

// CleanupExpiredRooms asks the backend to drop stale rooms.
func (c *Client) CleanupExpiredRooms(ctx context.Context) error {
	return c.retrier.Do(ctx, func() error {
		return c.do(ctx, http.MethodDelete, "/rooms/cleanup", nil, nil, withQuiet())
	})
}
