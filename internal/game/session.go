package game

import (
	"fmt"

	"github.com/lox/tictactoe-client/internal/protocol"
)

// Phase is where the mirrored session currently is.
type Phase int

const (
	// PhaseWaiting is the state before the server has said anything.
	PhaseWaiting Phase = iota
	PhasePlaying
	PhaseEnded
	// PhaseFull means the server refused us because two players are seated.
	// It is terminal like PhaseDisconnected.
	PhaseFull
	// PhaseDisconnected is terminal; nothing more will arrive.
	PhaseDisconnected
)

// String returns the string representation of the phase
func (p Phase) String() string {
	switch p {
	case PhaseWaiting:
		return "waiting"
	case PhasePlaying:
		return "playing"
	case PhaseEnded:
		return "ended"
	case PhaseFull:
		return "full"
	case PhaseDisconnected:
		return "disconnected"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// Terminal reports whether no further message can change the session.
func (p Phase) Terminal() bool {
	return p == PhaseFull || p == PhaseDisconnected
}

// Outcome classifies an end message from this client's point of view.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeWin
	OutcomeLoss
	OutcomeDraw
)

// String returns the string representation of the outcome
func (o Outcome) String() string {
	switch o {
	case OutcomeNone:
		return "none"
	case OutcomeWin:
		return "win"
	case OutcomeLoss:
		return "loss"
	case OutcomeDraw:
		return "draw"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Status line text.
const (
	StatusGameOver     = "Game over."
	StatusWon          = "You won!"
	StatusLost         = "You lost!"
	StatusDraw         = "Draw!"
	StatusFull         = "Game is full."
	StatusDisconnected = "Connection lost."
)

// State is the client's mirror of the server session.
type State struct {
	Board  protocol.Board
	Symbol protocol.Symbol
	MyTurn bool

	Phase   Phase
	Outcome Outcome

	// RestartVisible is set when a session ends and cleared when play resumes.
	RestartVisible bool
}

// NewState returns the state shown before the server has sent anything.
func NewState() State {
	return State{Phase: PhaseWaiting}
}

// Status returns the full status line for s.
func (s State) Status() string {
	switch s.Phase {
	case PhasePlaying:
		return turnStatus(s.Symbol, s.MyTurn)
	case PhaseEnded:
		switch s.Outcome {
		case OutcomeWin:
			return StatusWon
		case OutcomeLoss:
			return StatusLost
		case OutcomeDraw:
			return StatusDraw
		default:
			return StatusGameOver
		}
	case PhaseFull:
		return StatusFull
	case PhaseDisconnected:
		return StatusDisconnected
	default:
		return ""
	}
}

// turnStatus names the symbol that moves next; while no symbol has been
// assigned it cannot, so it leaves it out.
func turnStatus(symbol protocol.Symbol, myTurn bool) string {
	if symbol == protocol.Empty {
		if myTurn {
			return "Your move"
		}
		return "Opponent's move"
	}
	if myTurn {
		return fmt.Sprintf("Your move (%s)", symbol)
	}
	return fmt.Sprintf("Opponent's move (%s)", symbol.Other())
}

// Apply returns the state after msg. The board is always replaced
// wholesale; nothing is merged.
func Apply(s State, msg protocol.Inbound) State {
	if s.Phase.Terminal() {
		return s
	}

	switch m := msg.(type) {
	case protocol.Start:
		s.Board = protocol.Board{}
		s.Symbol = m.Symbol
		s.MyTurn = m.Symbol == protocol.FirstMover
		s.Phase = PhasePlaying
		s.Outcome = OutcomeNone
		s.RestartVisible = false

	case protocol.Update:
		s.Board = m.Board
		s.MyTurn = m.MyTurn
		s.Phase = PhasePlaying
		s.Outcome = OutcomeNone
		s.RestartVisible = false

	case protocol.End:
		s.Board = m.Board
		s.Phase = PhaseEnded
		s.Outcome = classify(s.Symbol, m)
		s.RestartVisible = true

	case protocol.Full:
		s.Phase = PhaseFull
	}

	return s
}

func classify(self protocol.Symbol, end protocol.End) Outcome {
	if !end.HasWinner() {
		return OutcomeNone
	}
	switch winner := *end.Winner; {
	case winner == protocol.WinnerDraw:
		return OutcomeDraw
	case self != protocol.Empty && winner == string(self):
		return OutcomeWin
	default:
		return OutcomeLoss
	}
}

// Disconnect returns the terminal state after the channel closes. The last
// board, symbol and turn flag stay as the server left them. A server that
// refused us closes straight after saying so, and that refusal is kept.
func Disconnect(s State) State {
	if s.Phase == PhaseFull {
		return s
	}
	s.Phase = PhaseDisconnected
	return s
}

// ActivateCell returns the move intent for a click on index, or false when
// the click should be swallowed: not our turn, cell taken, or off the grid.
// It never changes s; the server confirms moves with an update.
func ActivateCell(s State, index int) (protocol.Move, bool) {
	if !s.MyTurn || !s.Board.IsEmpty(index) {
		return protocol.Move{}, false
	}
	return protocol.Move{Index: index}, true
}

// ActivateRestart returns the restart intent. It is never filtered.
func ActivateRestart(State) protocol.Restart {
	return protocol.Restart{}
}
