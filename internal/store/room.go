// Package store holds the client-side mirrors of server-authoritative
// state. Each store is explicitly constructed with its collaborators and
// guarded by a mutex; derived values are computed on read, never cached.
package store

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"

	"github.com/kaze-games/mahjong-tui/internal/api"
	"github.com/kaze-games/mahjong-tui/internal/model"
	"github.com/kaze-games/mahjong-tui/internal/session"
)

// RoomStore mirrors the current room and the public room list.
type RoomStore struct {
	api     *api.Client
	session *session.Store

	mu       sync.RWMutex
	current  *model.Room
	roomList []model.Room
	loading  bool
	lastErr  string
}

// NewRoomStore builds a RoomStore around the shared API client and session.
func NewRoomStore(client *api.Client, sess *session.Store) *RoomStore {
	return &RoomStore{api: client, session: sess}
}

func (s *RoomStore) begin() {
	s.mu.Lock()
	s.loading = true
	s.lastErr = ""
	s.mu.Unlock()
}

func (s *RoomStore) finish(err error) {
	s.mu.Lock()
	s.loading = false
	if err != nil {
		s.lastErr = err.Error()
	}
	s.mu.Unlock()
}

// CreateRoom creates a room, stores the result as the current room, and
// persists the creator as the current player. A creator id is generated when
// the request does not carry one.
func (s *RoomStore) CreateRoom(ctx context.Context, req api.CreateRoomRequest) (*model.Room, error) {
	if req.CreatorID == "" {
		req.CreatorID = "player_" + uuid.NewString()
	}
	s.begin()
	room, err := s.api.CreateRoom(ctx, req)
	s.finish(err)
	if err != nil {
		return nil, err
	}
	s.setCurrent(room)
	_ = s.session.SetPlayer(req.CreatorID, req.CreatorNickname)
	return s.CurrentRoom(), nil
}

// JoinRoom joins roomNumber, mirrors the returned room, and persists the
// joining player as the current player. A player id is generated when the
// request does not carry one.
func (s *RoomStore) JoinRoom(ctx context.Context, roomNumber string, req api.JoinRoomRequest) (*model.Room, error) {
	if req.PlayerID == "" {
		req.PlayerID = "player_" + uuid.NewString()
	}
	s.begin()
	room, err := s.api.JoinRoom(ctx, roomNumber, req)
	s.finish(err)
	if err != nil {
		return nil, err
	}
	s.setCurrent(room)
	_ = s.session.SetPlayer(req.PlayerID, req.PlayerName)
	return s.CurrentRoom(), nil
}

// LeaveRoom leaves roomNumber and clears the mirrored room and the stored
// player identity.
func (s *RoomStore) LeaveRoom(ctx context.Context, roomNumber string, req api.LeaveRoomRequest) error {
	if req.PlayerID == "" {
		req.PlayerID, _ = s.session.Player()
	}
	s.begin()
	err := s.api.LeaveRoom(ctx, roomNumber, req)
	s.finish(err)
	if err != nil {
		return err
	}
	s.setCurrent(nil)
	_ = s.session.ClearPlayer()
	return nil
}

// SetPlayerReady toggles readiness and mirrors the updated room.
func (s *RoomStore) SetPlayerReady(ctx context.Context, roomNumber string, isReady bool) (*model.Room, error) {
	playerID, _ := s.session.Player()
	s.begin()
	room, err := s.api.SetPlayerReady(ctx, roomNumber, api.ReadyRequest{PlayerID: playerID, IsReady: isReady})
	s.finish(err)
	if err != nil {
		return nil, err
	}
	s.setCurrent(room)
	return s.CurrentRoom(), nil
}

// FetchRoom refreshes the current room mirror from the backend.
func (s *RoomStore) FetchRoom(ctx context.Context, roomNumber string) (*model.Room, error) {
	userID, _ := s.session.Player()
	s.begin()
	room, err := s.api.GetRoom(ctx, roomNumber, userID)
	s.finish(err)
	if err != nil {
		return nil, err
	}
	s.setCurrent(room)
	return s.CurrentRoom(), nil
}

// FetchRooms refreshes the room list mirror.
func (s *RoomStore) FetchRooms(ctx context.Context, params api.ListRoomsParams) ([]model.Room, error) {
	s.begin()
	list, err := s.api.ListRooms(ctx, params)
	s.finish(err)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.roomList = list.Rooms
	s.mu.Unlock()
	return s.Rooms(), nil
}

// FetchUserRoom finds the room the stored player currently occupies.
func (s *RoomStore) FetchUserRoom(ctx context.Context) (*model.Room, error) {
	userID, _ := s.session.Player()
	if userID == "" {
		return nil, nil
	}
	s.begin()
	room, err := s.api.GetUserRoom(ctx, userID)
	s.finish(err)
	if err != nil {
		return nil, err
	}
	s.setCurrent(room)
	return s.CurrentRoom(), nil
}

// HandleEvent applies a pushed room event by snapshot replacement, per-field
// patching for roster changes, or status flips for game transitions.
func (s *RoomStore) HandleEvent(ev model.Event) {
	switch ev.Type {
	case model.EventRoomUpdate:
		var room model.Room
		if json.Unmarshal(ev.Data, &room) == nil {
			s.setCurrent(&room)
		}
	case model.EventPlayerJoined, model.EventPlayerLeft:
		var upd model.RosterUpdate
		if json.Unmarshal(ev.Data, &upd) != nil {
			return
		}
		s.mu.Lock()
		if s.current != nil {
			s.current.Players = upd.Players
			s.current.CurrentPlayers = upd.CurrentPlayers
		}
		s.mu.Unlock()
	case model.EventPlayerReady:
		var upd model.ReadyUpdate
		if json.Unmarshal(ev.Data, &upd) != nil {
			return
		}
		s.mu.Lock()
		if s.current != nil {
			for i := range s.current.Players {
				if s.current.Players[i].ID == upd.PlayerID {
					s.current.Players[i].IsReady = upd.IsReady
				}
			}
		}
		s.mu.Unlock()
	case model.EventGameStarted:
		s.setStatus(model.RoomPlaying)
	case model.EventGameFinished:
		s.setStatus(model.RoomFinished)
	}
}

func (s *RoomStore) setStatus(status model.RoomStatus) {
	s.mu.Lock()
	if s.current != nil {
		s.current.Status = status
	}
	s.mu.Unlock()
}

func (s *RoomStore) setCurrent(room *model.Room) {
	s.mu.Lock()
	s.current = room
	s.mu.Unlock()
}

// AddPlayer inserts a pushed player into the roster unless already present.
func (s *RoomStore) AddPlayer(p model.Player) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return
	}
	for _, existing := range s.current.Players {
		if existing.ID == p.ID {
			return
		}
	}
	s.current.Players = append(s.current.Players, p)
	s.current.CurrentPlayers = len(s.current.Players)
}

// RemovePlayer drops a player from the roster.
func (s *RoomStore) RemovePlayer(playerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return
	}
	players := s.current.Players[:0]
	for _, p := range s.current.Players {
		if p.ID != playerID {
			players = append(players, p)
		}
	}
	s.current.Players = players
	s.current.CurrentPlayers = len(players)
}

// UpdatePlayerStatus patches one player's presence fields in place.
func (s *RoomStore) UpdatePlayerStatus(playerID string, status model.PlayerStatus, isReady bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return
	}
	for i := range s.current.Players {
		if s.current.Players[i].ID == playerID {
			s.current.Players[i].Status = status
			s.current.Players[i].IsReady = isReady
		}
	}
}

// CurrentRoom returns a copy of the mirrored room, or nil.
func (s *RoomStore) CurrentRoom() *model.Room {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneRoom(s.current)
}

// Rooms returns a copy of the mirrored room list.
func (s *RoomStore) Rooms() []model.Room {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Room, len(s.roomList))
	copy(out, s.roomList)
	return out
}

// IsRoomOwner reports whether the stored player created the current room.
func (s *RoomStore) IsRoomOwner() bool {
	playerID, _ := s.session.Player()
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current != nil && playerID != "" && s.current.CreatorID == playerID
}

// CanStartGame reports whether at least two non-spectator players are seated
// and every one of them is ready.
func (s *RoomStore) CanStartGame() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return false
	}
	active := 0
	for _, p := range s.current.Players {
		if p.IsSpectator {
			continue
		}
		if !p.IsReady {
			return false
		}
		active++
	}
	return active >= 2
}

// OnlinePlayers returns the roster entries currently online.
func (s *RoomStore) OnlinePlayers() []model.Player {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Player
	if s.current == nil {
		return out
	}
	for _, p := range s.current.Players {
		if p.Status != model.PlayerOffline {
			out = append(out, p)
		}
	}
	return out
}

// Roster returns the non-spectator players.
func (s *RoomStore) Roster() []model.Player {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Player
	if s.current == nil {
		return out
	}
	for _, p := range s.current.Players {
		if !p.IsSpectator {
			out = append(out, p)
		}
	}
	return out
}

// SpectatorCount counts spectators in the current room.
func (s *RoomStore) SpectatorCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	if s.current == nil {
		return n
	}
	for _, p := range s.current.Players {
		if p.IsSpectator {
			n++
		}
	}
	return n
}

// ActivePlayerCount counts seated non-spectator players.
func (s *RoomStore) ActivePlayerCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	if s.current == nil {
		return n
	}
	for _, p := range s.current.Players {
		if !p.IsSpectator {
			n++
		}
	}
	return n
}

// IsGameStarted reports whether the current room is mid-game.
func (s *RoomStore) IsGameStarted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current != nil && s.current.Status == model.RoomPlaying
}

// IsGameFinished reports whether the current room's game has ended.
func (s *RoomStore) IsGameFinished() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current != nil && s.current.Status == model.RoomFinished
}

// CurrentPlayer returns the stored player's roster entry, or nil.
func (s *RoomStore) CurrentPlayer() *model.Player {
	playerID, _ := s.session.Player()
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil || playerID == "" {
		return nil
	}
	for _, p := range s.current.Players {
		if p.ID == playerID {
			cp := p
			return &cp
		}
	}
	return nil
}

// IsLoading reports whether a room action is in flight.
func (s *RoomStore) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// LastError returns the most recent action failure, for UI binding.
func (s *RoomStore) LastError() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// ClearError resets the recorded failure.
func (s *RoomStore) ClearError() {
	s.mu.Lock()
	s.lastErr = ""
	s.mu.Unlock()
}

// Reset drops all mirrored state.
func (s *RoomStore) Reset() {
	s.mu.Lock()
	s.current = nil
	s.roomList = nil
	s.loading = false
	s.lastErr = ""
	s.mu.Unlock()
}

func cloneRoom(r *model.Room) *model.Room {
	if r == nil {
		return nil
	}
	out := *r
	out.Players = make([]model.Player, len(r.Players))
	copy(out.Players, r.Players)
	return &out
}
