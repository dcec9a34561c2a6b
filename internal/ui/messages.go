package ui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kaze-games/mahjong-tui/internal/model"
)

// Messages flowing through the bubbletea update loop.
type (
	errMsg error

	// toastMsg is a transient status-line notification.
	toastMsg string

	roomsLoadedMsg []model.Room
	roomEnteredMsg *model.Room
	roomUpdatedMsg *model.Room
	roomLeftMsg    struct{}

	wsConnectedMsg string
	wsClosedMsg    string
	pushMsg        model.Event

	gameStartedMsg *model.Game
	tileDrawnMsg   *model.Tile
	actionDoneMsg  string

	chatSentMsg struct{}
)

// Publisher forwards asynchronous events (WebSocket pushes, API failure
// notifications) into the running bubbletea program. It satisfies
// api.Notifier. Events arriving before Attach are dropped; nothing useful
// can be rendered yet anyway.
type Publisher struct {
	mu sync.Mutex
	p  *tea.Program
}

// Attach binds the publisher to the running program.
func (pub *Publisher) Attach(p *tea.Program) {
	pub.mu.Lock()
	pub.p = p
	pub.mu.Unlock()
}

// Send forwards msg into the program's update loop.
func (pub *Publisher) Send(msg tea.Msg) {
	pub.mu.Lock()
	p := pub.p
	pub.mu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

// Notify surfaces a user-facing message as a status-line toast.
func (pub *Publisher) Notify(message string) {
	pub.Send(toastMsg(message))
}
