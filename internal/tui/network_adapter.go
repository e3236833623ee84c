package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/lox/tictactoe-client/internal/game"
)

// Channel is the connection to the game server as the TUI sees it.
// *client.Client implements it.
type Channel interface {
	game.Sender
	// Receive blocks until the next frame, or returns the reason the
	// connection ended.
	Receive() ([]byte, error)
}

// FrameMsg carries one raw server frame into the Update loop.
type FrameMsg []byte

// DisconnectedMsg reports that the channel has closed for good.
type DisconnectedMsg struct {
	Err error
}

// waitForFrame reads the next frame off the channel. Frames are handed to
// Update one at a time, in arrival order; the next read is only issued once
// the previous frame has been applied.
func waitForFrame(ch Channel) tea.Cmd {
	return func() tea.Msg {
		data, err := ch.Receive()
		if err != nil {
			return DisconnectedMsg{Err: err}
		}
		return FrameMsg(data)
	}
}
