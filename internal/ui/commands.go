package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kaze-games/mahjong-tui/internal/api"
	"github.com/kaze-games/mahjong-tui/internal/model"
	"github.com/kaze-games/mahjong-tui/internal/ws"
)

// Commands wrap the store actions as tea.Cmd so every network call happens
// off the update loop and reports back as a message.

func (a App) loadRooms() tea.Cmd {
	return func() tea.Msg {
		rooms, err := a.deps.Rooms.FetchRooms(context.Background(), api.ListRoomsParams{})
		if err != nil {
			return errMsg(err)
		}
		return roomsLoadedMsg(rooms)
	}
}

func (a App) createRoom(roomName, nickname string) tea.Cmd {
	return func() tea.Msg {
		room, err := a.deps.Rooms.CreateRoom(context.Background(), api.CreateRoomRequest{
			RoomName:        roomName,
			CreatorNickname: nickname,
			MaxPlayers:      4,
			AllowSpectate:   true,
			IsPublic:        true,
		})
		if err != nil {
			return errMsg(err)
		}
		return roomEnteredMsg(room)
	}
}

func (a App) joinRoom(roomNumber, nickname string) tea.Cmd {
	return func() tea.Msg {
		room, err := a.deps.Rooms.JoinRoom(context.Background(), roomNumber, api.JoinRoomRequest{
			PlayerName: nickname,
		})
		if err != nil {
			return errMsg(err)
		}
		return roomEnteredMsg(room)
	}
}

func (a App) leaveRoom(roomNumber string) tea.Cmd {
	return func() tea.Msg {
		a.deps.Chat.LeaveRoom()
		a.deps.Registry.Disconnect(roomNumber)
		if err := a.deps.Rooms.LeaveRoom(context.Background(), roomNumber, api.LeaveRoomRequest{}); err != nil {
			return errMsg(err)
		}
		a.deps.Game.Reset()
		return roomLeftMsg{}
	}
}

func (a App) toggleReady(roomNumber string, ready bool) tea.Cmd {
	return func() tea.Msg {
		room, err := a.deps.Rooms.SetPlayerReady(context.Background(), roomNumber, ready)
		if err != nil {
			return errMsg(err)
		}
		return roomUpdatedMsg(room)
	}
}

func (a App) startGame(roomNumber string) tea.Cmd {
	return func() tea.Msg {
		game, err := a.deps.Game.StartGame(context.Background(), roomNumber)
		if err != nil {
			return errMsg(err)
		}
		return gameStartedMsg(game)
	}
}

func (a App) sendChat(content string) tea.Cmd {
	return func() tea.Msg {
		if err := a.deps.Chat.SendMessage(context.Background(), content); err != nil {
			return errMsg(err)
		}
		return chatSentMsg{}
	}
}

func (a App) playTile(tile model.Tile) tea.Cmd {
	return func() tea.Msg {
		if err := a.deps.Game.PlayTile(context.Background(), tile); err != nil {
			return errMsg(err)
		}
		return actionDoneMsg("discarded " + tile.Value)
	}
}

func (a App) drawTile() tea.Cmd {
	return func() tea.Msg {
		tile, err := a.deps.Game.DrawTile(context.Background())
		if err != nil {
			return errMsg(err)
		}
		return tileDrawnMsg(tile)
	}
}

func (a App) claimPeng(tile model.Tile) tea.Cmd {
	return func() tea.Msg {
		if err := a.deps.Game.ClaimPeng(context.Background(), tile); err != nil {
			return errMsg(err)
		}
		return actionDoneMsg("peng!")
	}
}

func (a App) claimGang(tile model.Tile) tea.Cmd {
	return func() tea.Msg {
		if err := a.deps.Game.ClaimGang(context.Background(), tile); err != nil {
			return errMsg(err)
		}
		return actionDoneMsg("gang!")
	}
}

func (a App) claimHu() tea.Cmd {
	return func() tea.Msg {
		if err := a.deps.Game.ClaimHu(context.Background(), a.deps.Game.Hand()); err != nil {
			return errMsg(err)
		}
		return actionDoneMsg("hu!")
	}
}

func (a App) pass() tea.Cmd {
	return func() tea.Msg {
		if err := a.deps.Game.Pass(context.Background()); err != nil {
			return errMsg(err)
		}
		return actionDoneMsg("passed")
	}
}

// connectRoom opens the room's push channel and routes every inbound event
// through the stores before surfacing it to the update loop.
func (a App) connectRoom(roomNumber string) tea.Cmd {
	deps := a.deps
	return func() tea.Msg {
		handlers := ws.Handlers{
			OnEvent: func(room string, ev model.Event) {
				deps.Rooms.HandleEvent(ev)
				deps.Chat.HandleEvent(ev)
				deps.Game.HandleEvent(ev)
				deps.Publisher.Send(pushMsg(ev))
			},
			OnClose: func(room string) {
				deps.Game.SetConnectionStatus("disconnected")
				deps.Publisher.Send(wsClosedMsg(room))
			},
			OnError: func(room string, err error) {
				deps.Publisher.Notify("connection error: " + err.Error())
			},
		}
		if err := deps.Registry.Connect(context.Background(), roomNumber, handlers); err != nil {
			return errMsg(err)
		}
		deps.Game.SetConnectionStatus("connected")
		deps.Chat.JoinRoom(roomNumber)
		return wsConnectedMsg(roomNumber)
	}
}
