package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	chatutil "github.com/kaze-games/mahjong-tui/internal/chat"
	"github.com/kaze-games/mahjong-tui/internal/model"
)

func (a App) View() string {
	if !a.ready {
		return "\n  Initializing..."
	}

	var body string
	switch a.screen {
	case screenLobby:
		body = a.viewLobby()
	case screenCreate:
		body = a.viewForm("Create room")
	case screenJoin:
		body = a.viewForm("Join room")
	case screenRoom:
		body = a.viewRoom()
	case screenGame:
		body = a.viewGame()
	}

	status := ""
	if a.toast != "" {
		status = toastStyle.Render(a.toast)
	}
	return body + "\n" + status
}

func (a App) viewLobby() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Mahjong — lobby"))
	b.WriteString("\n\n")

	rooms := a.deps.Rooms.Rooms()
	if len(rooms) == 0 {
		b.WriteString(dimStyle.Render("no open rooms — press c to create one"))
		b.WriteString("\n")
	}
	for i, room := range rooms {
		line := fmt.Sprintf("%-8s %-20s %d/%d %s",
			room.RoomNumber, room.RoomName, room.CurrentPlayers, room.MaxPlayers, room.Status)
		if i == a.selected {
			line = selectedStyle.Render("> " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("enter join · c create · j join by number · r refresh · q quit"))
	return b.String()
}

func (a App) viewForm(title string) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n\n")
	switch {
	case a.screen == screenCreate && a.formStep == 0:
		b.WriteString("Room name:\n")
	case a.screen == screenJoin && a.formStep == 0:
		b.WriteString("Room number:\n")
	default:
		b.WriteString("Your nickname:\n")
	}
	b.WriteString(a.input.View())
	b.WriteString("\n\n")
	b.WriteString(dimStyle.Render("enter confirm · esc back"))
	return b.String()
}

func (a App) viewRoom() string {
	room := a.deps.Rooms.CurrentRoom()
	var b strings.Builder

	if room != nil {
		b.WriteString(titleStyle.Render(fmt.Sprintf("Room %s — %s", room.RoomNumber, room.RoomName)))
		b.WriteString("  ")
		b.WriteString(dimStyle.Render(fmt.Sprintf("(%d/%d, %d spectating)",
			a.deps.Rooms.ActivePlayerCount(), room.MaxPlayers, a.deps.Rooms.SpectatorCount())))
		b.WriteString("\n")
		b.WriteString(a.viewRoster())
	} else {
		b.WriteString(titleStyle.Render("Room"))
		b.WriteString("\n")
	}

	b.WriteString(borderStyle.Render(strings.Repeat("─", max(a.width, 1))))
	b.WriteString("\n")
	b.WriteString(a.viewport.View())
	b.WriteString("\n")
	b.WriteString(borderStyle.Render(strings.Repeat("─", max(a.width, 1))))
	b.WriteString("\n")
	b.WriteString(a.input.View())
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("enter chat · ctrl+r ready · ctrl+s start · ctrl+l leave"))
	return b.String()
}

func (a App) viewRoster() string {
	var b strings.Builder
	for _, p := range a.deps.Rooms.Roster() {
		marker := notReadyStyle.Render("·")
		if p.IsReady {
			marker = readyStyle.Render("✓")
		}
		b.WriteString(fmt.Sprintf("  %s %-15s seat %d  %s\n", marker, p.Name, p.Position, dimStyle.Render(string(p.Status))))
	}
	return b.String()
}

func (a App) viewGame() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Game"))
	if game := a.deps.Game.CurrentGame(); game != nil {
		b.WriteString(dimStyle.Render("  turn: " + game.CurrentPlayer))
	}
	b.WriteString(dimStyle.Render("  [" + a.deps.Game.ConnectionStatus() + "]"))
	b.WriteString("\n\n")

	b.WriteString("Discards:\n")
	b.WriteString(renderTiles(a.deps.Game.DiscardPile(), -1))
	b.WriteString("\n\nHand:\n")
	b.WriteString(renderTiles(a.deps.Game.Hand(), a.handSel))
	b.WriteString("\n\n")

	if action := a.deps.Game.LastAction(); action != nil {
		b.WriteString(dimStyle.Render("last action: " + string(action.Type)))
		b.WriteString("\n")
	}
	b.WriteString(dimStyle.Render("←/→ select · enter discard · d draw · p peng · g gang · h hu · space pass · esc room"))
	return b.String()
}

func renderTiles(tiles []model.Tile, selected int) string {
	if len(tiles) == 0 {
		return dimStyle.Render("  (empty)")
	}
	rendered := make([]string, len(tiles))
	for i, t := range tiles {
		style := tileStyle
		if i == selected {
			style = tileSelectedStyle
		}
		rendered[i] = style.Render(tileLabel(t))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func tileLabel(t model.Tile) string {
	switch t.Type {
	case model.TileBamboo:
		return t.Value + "条"
	case model.TileCharacter:
		return t.Value + "万"
	case model.TileDot:
		return t.Value + "筒"
	default:
		return t.Value
	}
}

func formatChatMessage(msg model.ChatMessage) string {
	timeStr := chatutil.FormatTime(msg.Timestamp)
	if msg.Category == model.MessageSystem {
		return systemMsgStyle.Render(fmt.Sprintf("%s · %s", timeStr, msg.Content))
	}
	return fmt.Sprintf("%s %s %s",
		dimStyle.Render(timeStr),
		selectedStyle.Render(msg.Sender+":"),
		msg.Content)
}
