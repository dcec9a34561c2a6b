// Package ui is the terminal front end: a bubbletea program whose screens
// mirror the original client's pages (lobby, create room, join room, game
// room with chat, game table).
package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kaze-games/mahjong-tui/internal/model"
	"github.com/kaze-games/mahjong-tui/internal/session"
	"github.com/kaze-games/mahjong-tui/internal/store"
	"github.com/kaze-games/mahjong-tui/internal/ws"
)

type screen int

const (
	screenLobby screen = iota
	screenCreate
	screenJoin
	screenRoom
	screenGame
)

// Deps are the injected collaborators; the UI owns no ambient globals.
type Deps struct {
	Rooms     *store.RoomStore
	Chat      *store.ChatStore
	Game      *store.GameStore
	Session   *session.Store
	Registry  *ws.Registry
	Publisher *Publisher
}

// App is the root bubbletea model.
type App struct {
	deps Deps

	screen   screen
	input    textinput.Model
	viewport viewport.Model
	width    int
	height   int
	ready    bool

	toast string
	err   error

	// create/join wizard state
	formStep       int
	formRoomName   string
	formRoomNumber string

	// lobby room selection and game hand selection
	selected int
	handSel  int
}

// New builds the root model.
func New(deps Deps) App {
	ti := textinput.New()
	ti.Placeholder = "room name"
	ti.CharLimit = 64
	ti.Width = 30

	return App{deps: deps, input: ti}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, a.loadRooms())
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		footer := 6
		if !a.ready {
			a.viewport = viewport.New(msg.Width, msg.Height-footer)
			a.ready = true
		} else {
			a.viewport.Width = msg.Width
			a.viewport.Height = msg.Height - footer
		}
		a.input.Width = msg.Width - 4
		return a, nil

	case toastMsg:
		a.toast = string(msg)
		return a, nil

	case errMsg:
		a.err = msg
		a.toast = msg.Error()
		return a, nil

	case pushMsg:
		return a.handlePush(model.Event(msg))

	case wsConnectedMsg:
		a.toast = "connected to room " + string(msg)
		a.refreshChat()
		return a, nil

	case wsClosedMsg:
		a.toast = "room connection lost"
		return a, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			a.deps.Registry.DisconnectAll()
			return a, tea.Quit
		}
	}

	switch a.screen {
	case screenLobby:
		return a.updateLobby(msg)
	case screenCreate, screenJoin:
		return a.updateForm(msg)
	case screenRoom:
		return a.updateRoom(msg)
	case screenGame:
		return a.updateGame(msg)
	}
	return a, nil
}

// handlePush reacts to server events already applied to the stores; the UI
// only needs to re-render and follow game transitions.
func (a App) handlePush(ev model.Event) (tea.Model, tea.Cmd) {
	switch ev.Type {
	case model.EventGameStarted:
		if a.screen == screenRoom {
			a.screen = screenGame
			a.toast = "game started"
		}
	case model.EventGameFinished:
		if a.screen == screenGame {
			a.screen = screenRoom
			a.toast = "game finished"
		}
	case model.EventChatMessage:
		a.refreshChat()
	}
	return a, nil
}

func (a *App) refreshChat() {
	if !a.ready {
		return
	}
	var b strings.Builder
	for _, msg := range a.deps.Chat.Messages() {
		b.WriteString(formatChatMessage(msg))
		b.WriteString("\n")
	}
	a.viewport.SetContent(b.String())
	a.viewport.GotoBottom()
}

func (a App) updateLobby(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		rooms := a.deps.Rooms.Rooms()
		switch key.String() {
		case "q", "esc":
			a.deps.Registry.DisconnectAll()
			return a, tea.Quit
		case "r":
			return a, a.loadRooms()
		case "c":
			a.screen = screenCreate
			a.formStep = 0
			a.input.Placeholder = "room name"
			a.input.SetValue("")
			a.input.Focus()
			return a, textinput.Blink
		case "j":
			a.screen = screenJoin
			a.formStep = 0
			a.formRoomNumber = ""
			a.input.Placeholder = "room number"
			a.input.SetValue("")
			a.input.Focus()
			return a, textinput.Blink
		case "up":
			if a.selected > 0 {
				a.selected--
			}
			return a, nil
		case "down":
			if a.selected < len(rooms)-1 {
				a.selected++
			}
			return a, nil
		case "enter":
			if a.selected < len(rooms) {
				a.screen = screenJoin
				a.formStep = 1
				a.formRoomNumber = rooms[a.selected].RoomNumber
				a.input.Placeholder = "nickname"
				a.input.SetValue(a.defaultNickname())
				a.input.Focus()
				return a, textinput.Blink
			}
		}
	}
	if _, ok := msg.(roomsLoadedMsg); ok {
		a.selected = 0
		return a, nil
	}
	return a, nil
}

// updateForm drives the two-step create/join wizards: one text input asked
// twice, rather than a form widget.
func (a App) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyEsc:
			a.screen = screenLobby
			a.input.Blur()
			return a, nil
		case tea.KeyEnter:
			value := strings.TrimSpace(a.input.Value())
			if value == "" {
				return a, nil
			}
			return a.advanceForm(value)
		}
	case roomEnteredMsg:
		return a.enterRoom((*model.Room)(msg))
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

func (a App) advanceForm(value string) (tea.Model, tea.Cmd) {
	if a.formStep == 0 {
		if a.screen == screenCreate {
			a.formRoomName = value
		} else {
			a.formRoomNumber = value
		}
		a.formStep = 1
		a.input.Placeholder = "nickname"
		a.input.SetValue(a.defaultNickname())
		return a, nil
	}

	nickname := value
	a.input.SetValue("")
	if a.screen == screenCreate {
		return a, a.createRoom(a.formRoomName, nickname)
	}
	return a, a.joinRoom(a.formRoomNumber, nickname)
}

func (a App) enterRoom(room *model.Room) (tea.Model, tea.Cmd) {
	a.screen = screenRoom
	a.input.Placeholder = "message"
	a.input.SetValue("")
	a.input.Focus()
	a.refreshChat()
	return a, a.connectRoom(room.RoomNumber)
}

func (a App) updateRoom(msg tea.Msg) (tea.Model, tea.Cmd) {
	room := a.deps.Rooms.CurrentRoom()

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlR:
			if room != nil {
				ready := true
				if p := a.deps.Rooms.CurrentPlayer(); p != nil {
					ready = !p.IsReady
				}
				return a, a.toggleReady(room.RoomNumber, ready)
			}
		case tea.KeyCtrlS:
			if room != nil && a.deps.Rooms.IsRoomOwner() {
				if !a.deps.Rooms.CanStartGame() {
					a.toast = "waiting for players to get ready"
					return a, nil
				}
				return a, a.startGame(room.RoomNumber)
			}
		case tea.KeyCtrlL:
			if room != nil {
				return a, a.leaveRoom(room.RoomNumber)
			}
		case tea.KeyEnter:
			content := strings.TrimSpace(a.input.Value())
			if content != "" {
				a.input.SetValue("")
				return a, a.sendChat(content)
			}
			return a, nil
		}

	case roomUpdatedMsg:
		return a, nil

	case roomLeftMsg:
		a.screen = screenLobby
		a.input.Blur()
		return a, a.loadRooms()

	case gameStartedMsg:
		a.screen = screenGame
		a.handSel = 0
		return a, nil

	case chatSentMsg:
		a.refreshChat()
		return a, nil
	}

	var tiCmd, vpCmd tea.Cmd
	a.input, tiCmd = a.input.Update(msg)
	a.viewport, vpCmd = a.viewport.Update(msg)
	return a, tea.Batch(tiCmd, vpCmd)
}

func (a App) updateGame(msg tea.Msg) (tea.Model, tea.Cmd) {
	hand := a.deps.Game.Hand()

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "left":
			if a.handSel > 0 {
				a.handSel--
			}
		case "right":
			if a.handSel < len(hand)-1 {
				a.handSel++
			}
		case "enter":
			if a.handSel < len(hand) {
				return a, a.playTile(hand[a.handSel])
			}
		case "d":
			return a, a.drawTile()
		case "p":
			if pile := a.deps.Game.DiscardPile(); len(pile) > 0 {
				return a, a.claimPeng(pile[len(pile)-1])
			}
		case "g":
			if pile := a.deps.Game.DiscardPile(); len(pile) > 0 {
				return a, a.claimGang(pile[len(pile)-1])
			}
		case "h":
			return a, a.claimHu()
		case " ":
			return a, a.pass()
		case "esc":
			a.screen = screenRoom
			return a, nil
		}

	case tileDrawnMsg:
		a.toast = "drew " + msg.Value
		return a, nil

	case actionDoneMsg:
		a.toast = string(msg)
		return a, nil
	}
	return a, nil
}

func (a App) defaultNickname() string {
	_, nickname := a.deps.Session.Player()
	return nickname
}
