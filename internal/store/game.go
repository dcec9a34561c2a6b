package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/kaze-games/mahjong-tui/internal/api"
	"github.com/kaze-games/mahjong-tui/internal/model"
)

var errNotPlaying = errors.New("cannot play a tile right now")

// ActionType labels the player's last local action for UI display.
type ActionType string

const (
	ActionDiscard ActionType = "DISCARD"
	ActionDraw    ActionType = "DRAW"
	ActionPeng    ActionType = "PENG"
	ActionGang    ActionType = "GANG"
	ActionHu      ActionType = "HU"
	ActionPass    ActionType = "PASS"
)

// Action records the player's most recent local move.
type Action struct {
	Type      ActionType
	Tile      *model.Tile
	Timestamp time.Time
}

// GameStore mirrors the running game: the player's hand, the discard pile,
// and whose turn it is. All rule enforcement stays on the backend.
type GameStore struct {
	api *api.Client

	mu           sync.RWMutex
	current      *model.Game
	hand         []model.Tile
	discardPile  []model.Tile
	state        model.RoomStatus
	isSpectating bool
	connStatus   string
	lastAction   *Action
	lastErr      string
}

// NewGameStore builds a GameStore around the shared API client.
func NewGameStore(client *api.Client) *GameStore {
	return &GameStore{api: client, state: model.RoomWaiting, connStatus: "connected"}
}

// StartGame asks the backend to deal and mirrors the initial game state.
func (g *GameStore) StartGame(ctx context.Context, roomNumber string) (*model.Game, error) {
	game, err := g.api.StartGame(ctx, roomNumber, nil)
	if err != nil {
		g.setError(err)
		return nil, err
	}
	g.mu.Lock()
	g.current = game
	g.state = model.RoomPlaying
	g.hand = append([]model.Tile(nil), game.PlayerHand...)
	g.discardPile = append([]model.Tile(nil), game.DiscardPile...)
	g.mu.Unlock()
	return game, nil
}

// PlayTile discards a tile: the backend validates the move, then the local
// hand and discard pile mirror the acknowledged outcome.
func (g *GameStore) PlayTile(ctx context.Context, tile model.Tile) error {
	if !g.CanPlay() {
		return errNotPlaying
	}
	gameID := g.gameID()
	if err := g.api.PlayTile(ctx, gameID, tile.ID); err != nil {
		g.setError(err)
		return err
	}
	g.mu.Lock()
	for i, t := range g.hand {
		if t.ID == tile.ID {
			g.hand = append(g.hand[:i], g.hand[i+1:]...)
			break
		}
	}
	g.discardPile = append(g.discardPile, tile)
	g.lastAction = &Action{Type: ActionDiscard, Tile: &tile, Timestamp: time.Now()}
	g.mu.Unlock()
	return nil
}

// DrawTile draws from the wall and adds the tile to the mirrored hand.
func (g *GameStore) DrawTile(ctx context.Context) (*model.Tile, error) {
	tile, err := g.api.DrawTile(ctx, g.gameID())
	if err != nil {
		g.setError(err)
		return nil, err
	}
	g.mu.Lock()
	g.hand = append(g.hand, *tile)
	g.lastAction = &Action{Type: ActionDraw, Tile: tile, Timestamp: time.Now()}
	g.mu.Unlock()
	return tile, nil
}

// ClaimPeng claims a pung on the given tile.
func (g *GameStore) ClaimPeng(ctx context.Context, tile model.Tile) error {
	if err := g.api.ClaimPeng(ctx, g.gameID(), tile.ID); err != nil {
		g.setError(err)
		return err
	}
	g.setAction(&Action{Type: ActionPeng, Tile: &tile, Timestamp: time.Now()})
	return nil
}

// ClaimGang claims a kong on the given tile.
func (g *GameStore) ClaimGang(ctx context.Context, tile model.Tile) error {
	if err := g.api.ClaimGang(ctx, g.gameID(), tile.ID); err != nil {
		g.setError(err)
		return err
	}
	g.setAction(&Action{Type: ActionGang, Tile: &tile, Timestamp: time.Now()})
	return nil
}

// ClaimHu declares a win; on acknowledgement the mirrored state flips to
// finished.
func (g *GameStore) ClaimHu(ctx context.Context, winningTiles []model.Tile) error {
	if err := g.api.ClaimHu(ctx, g.gameID(), winningTiles); err != nil {
		g.setError(err)
		return err
	}
	g.mu.Lock()
	g.state = model.RoomFinished
	g.lastAction = &Action{Type: ActionHu, Timestamp: time.Now()}
	g.mu.Unlock()
	return nil
}

// Pass declines to act on the last discard.
func (g *GameStore) Pass(ctx context.Context) error {
	if err := g.api.Pass(ctx, g.gameID()); err != nil {
		g.setError(err)
		return err
	}
	g.setAction(&Action{Type: ActionPass, Timestamp: time.Now()})
	return nil
}

// Refresh re-fetches the game state and replaces the mirror.
func (g *GameStore) Refresh(ctx context.Context) error {
	gameID := g.gameID()
	if gameID == "" {
		return nil
	}
	game, err := g.api.GetGame(ctx, gameID)
	if err != nil {
		g.setError(err)
		return err
	}
	g.ApplyUpdate(game, nil)
	return nil
}

// ApplyUpdate replaces the mirrored game snapshot, and the hand when the
// update carries one.
func (g *GameStore) ApplyUpdate(game *model.Game, hand []model.Tile) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if game != nil {
		g.current = game
		g.state = game.Status
		g.discardPile = append([]model.Tile(nil), game.DiscardPile...)
	}
	if hand != nil {
		g.hand = append([]model.Tile(nil), hand...)
	}
}

// HandleEvent reacts to pushed game transitions.
func (g *GameStore) HandleEvent(ev model.Event) {
	switch ev.Type {
	case model.EventGameStarted:
		g.mu.Lock()
		g.state = model.RoomPlaying
		g.mu.Unlock()
	case model.EventGameFinished:
		g.mu.Lock()
		g.state = model.RoomFinished
		g.mu.Unlock()
	}
}

// IsMyTurn reports whether playerID holds the turn.
func (g *GameStore) IsMyTurn(playerID string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.current != nil && g.current.CurrentPlayer == playerID
}

// CanPlay reports whether discarding is currently allowed.
func (g *GameStore) CanPlay() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state == model.RoomPlaying && !g.isSpectating
}

// Hand returns a copy of the mirrored hand.
func (g *GameStore) Hand() []model.Tile {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]model.Tile, len(g.hand))
	copy(out, g.hand)
	return out
}

// DiscardPile returns a copy of the mirrored discard pile.
func (g *GameStore) DiscardPile() []model.Tile {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]model.Tile, len(g.discardPile))
	copy(out, g.discardPile)
	return out
}

// HandTileCount returns the mirrored hand size.
func (g *GameStore) HandTileCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.hand)
}

// State returns the mirrored game state.
func (g *GameStore) State() model.RoomStatus {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state
}

// CurrentGame returns the mirrored game snapshot, or nil.
func (g *GameStore) CurrentGame() *model.Game {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.current == nil {
		return nil
	}
	cp := *g.current
	return &cp
}

// LastAction returns the player's most recent local move, or nil.
func (g *GameStore) LastAction() *Action {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.lastAction
}

// SetSpectating flips spectator mode.
func (g *GameStore) SetSpectating(v bool) {
	g.mu.Lock()
	g.isSpectating = v
	g.mu.Unlock()
}

// SetConnectionStatus records the push channel's health for UI display.
func (g *GameStore) SetConnectionStatus(status string) {
	g.mu.Lock()
	g.connStatus = status
	g.mu.Unlock()
}

// ConnectionStatus returns the recorded push channel health.
func (g *GameStore) ConnectionStatus() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.connStatus
}

// LastError returns the most recent action failure.
func (g *GameStore) LastError() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.lastErr
}

// Reset drops all mirrored game state.
func (g *GameStore) Reset() {
	g.mu.Lock()
	g.current = nil
	g.hand = nil
	g.discardPile = nil
	g.state = model.RoomWaiting
	g.isSpectating = false
	g.lastAction = nil
	g.lastErr = ""
	g.mu.Unlock()
}

func (g *GameStore) gameID() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.current == nil {
		return ""
	}
	return g.current.ID
}

func (g *GameStore) setAction(a *Action) {
	g.mu.Lock()
	g.lastAction = a
	g.mu.Unlock()
}

func (g *GameStore) setError(err error) {
	g.mu.Lock()
	g.lastErr = err.Error()
	g.mu.Unlock()
}
