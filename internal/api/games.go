package api

import (
	"context"

	"github.com/kaze-games/mahjong-tui/internal/model"
)

type tileRequest struct {
	TileID string `json:"tileId"`
}

type huRequest struct {
	WinningTiles []model.Tile `json:"winningTiles"`
}

type drawResponse struct {
	Tile model.Tile `json:"tile"`
}

// PlayTile discards tileID from the player's hand.
func (c *Client) PlayTile(ctx context.Context, gameID, tileID string) error {
	return c.post(ctx, "/games/"+gameID+"/play", tileRequest{TileID: tileID}, nil)
}

// DrawTile draws from the wall and returns the drawn tile.
func (c *Client) DrawTile(ctx context.Context, gameID string) (*model.Tile, error) {
	var resp drawResponse
	if err := c.post(ctx, "/games/"+gameID+"/draw", nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Tile, nil
}

// ClaimPeng claims a pung on tileID.
func (c *Client) ClaimPeng(ctx context.Context, gameID, tileID string) error {
	return c.post(ctx, "/games/"+gameID+"/peng", tileRequest{TileID: tileID}, nil)
}

// ClaimGang claims a kong on tileID.
func (c *Client) ClaimGang(ctx context.Context, gameID, tileID string) error {
	return c.post(ctx, "/games/"+gameID+"/gang", tileRequest{TileID: tileID}, nil)
}

// ClaimHu declares a win with the given tiles. The backend validates the
// claim; the client only reports it.
func (c *Client) ClaimHu(ctx context.Context, gameID string, winningTiles []model.Tile) error {
	return c.post(ctx, "/games/"+gameID+"/hu", huRequest{WinningTiles: winningTiles}, nil)
}

// Pass declines to act on the last discard.
func (c *Client) Pass(ctx context.Context, gameID string) error {
	return c.post(ctx, "/games/"+gameID+"/pass", nil, nil)
}

// GetGame fetches the current game state.
func (c *Client) GetGame(ctx context.Context, gameID string) (*model.Game, error) {
	var game model.Game
	if err := c.get(ctx, "/games/"+gameID, &game, withQuiet()); err != nil {
		return nil, err
	}
	return &game, nil
}
