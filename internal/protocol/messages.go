package protocol

import (
	"encoding/json"
	"fmt"
)

// MessageType identifies the type of message
type MessageType string

const (
	// Client -> Server
	TypeMove    MessageType = "move"
	TypeRestart MessageType = "restart"

	// Server -> Client
	TypeStart  MessageType = "start"
	TypeUpdate MessageType = "update"
	TypeEnd    MessageType = "end"
	TypeFull   MessageType = "full"
)

// BoardSize is the number of cells on the grid.
const BoardSize = 9

// WinnerDraw is the winner value the server sends when nobody won.
const WinnerDraw = "draw"

// Symbol is the content of a cell or a player's assigned mark.
type Symbol string

const (
	Empty Symbol = ""
	X     Symbol = "X"
	O     Symbol = "O"
)

// FirstMover is the symbol that moves first in every session.
const FirstMover = X

// Valid reports whether s can appear in a cell.
func (s Symbol) Valid() bool {
	return s == Empty || s == X || s == O
}

// Other returns the opposing player's symbol, or Empty if s is not a player symbol.
func (s Symbol) Other() Symbol {
	switch s {
	case X:
		return O
	case O:
		return X
	default:
		return Empty
	}
}

// Board is the 3x3 grid in row-major order.
type Board [BoardSize]Symbol

// UnmarshalJSON accepts exactly nine cells, each "", "X" or "O".
func (b *Board) UnmarshalJSON(data []byte) error {
	var cells []Symbol
	if err := json.Unmarshal(data, &cells); err != nil {
		return fmt.Errorf("%w: board: %v", ErrMalformed, err)
	}
	if len(cells) != BoardSize {
		return fmt.Errorf("%w: board has %d cells, want %d", ErrMalformed, len(cells), BoardSize)
	}
	var next Board
	for i, cell := range cells {
		if !cell.Valid() {
			return fmt.Errorf("%w: board cell %d has invalid value %q", ErrMalformed, i, cell)
		}
		next[i] = cell
	}
	*b = next
	return nil
}

// IsEmpty reports whether the cell at index holds no symbol. Out-of-range
// indexes are never empty.
func (b Board) IsEmpty(index int) bool {
	if index < 0 || index >= BoardSize {
		return false
	}
	return b[index] == Empty
}

// Server -> Client Messages

// Inbound is a decoded server frame.
type Inbound interface {
	Kind() MessageType
}

// Start assigns this client's symbol for the session.
type Start struct {
	Symbol Symbol `json:"symbol"`
}

// Update carries the authoritative board and whose turn it is.
type Update struct {
	Board  Board `json:"board"`
	MyTurn bool  `json:"myTurn"`
}

// End carries the final board and outcome. Winner is "draw", a player symbol,
// or nil when the server did not name one.
type End struct {
	Board  Board   `json:"board"`
	Winner *string `json:"winner"`
}

// Full is sent instead of Start when the game already has two players.
type Full struct{}

func (Start) Kind() MessageType  { return TypeStart }
func (Update) Kind() MessageType { return TypeUpdate }
func (End) Kind() MessageType    { return TypeEnd }
func (Full) Kind() MessageType   { return TypeFull }

// HasWinner reports whether the server named an outcome.
func (e End) HasWinner() bool {
	return e.Winner != nil && *e.Winner != ""
}

// Client -> Server Messages

// Outbound is an intent the client sends to the server.
type Outbound interface {
	Kind() MessageType
}

// Move asks the server to place this client's symbol at Index.
type Move struct {
	Index int
}

// Restart asks the server to reset the session.
type Restart struct{}

func (Move) Kind() MessageType    { return TypeMove }
func (Restart) Kind() MessageType { return TypeRestart }
