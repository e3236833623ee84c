package game

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/lox/tictactoe-client/internal/protocol"
)

var (
	// ErrNotYourTurn is returned when a cell is activated while the server
	// says the opponent is to move.
	ErrNotYourTurn = errors.New("not your turn")
	// ErrCellOccupied is returned when the activated cell already holds a symbol.
	ErrCellOccupied = errors.New("cell occupied")
	// ErrInvalidCell is returned for indexes outside the grid.
	ErrInvalidCell = errors.New("invalid cell")
)

// Sender delivers intents to the server. Implementations must not block.
type Sender interface {
	Send(msg protocol.Outbound) error
}

// Controller owns the mirrored session and bridges UI events and the channel.
type Controller struct {
	state  State
	sender Sender
	logger *log.Logger
}

// NewController creates a controller in the initial state
func NewController(sender Sender, logger *log.Logger) *Controller {
	return &Controller{
		state:  NewState(),
		sender: sender,
		logger: logger.WithPrefix("controller"),
	}
}

// State returns a copy of the current mirror.
func (c *Controller) State() State {
	return c.state
}

// HandleFrame decodes a server frame and applies it. Frames that do not
// decode leave the state untouched; the error is logged and returned so the
// caller can show it.
func (c *Controller) HandleFrame(data []byte) (protocol.Inbound, error) {
	msg, err := protocol.Decode(data)
	if err != nil {
		if errors.Is(err, protocol.ErrUnknownType) {
			c.logger.Warn("Ignoring unknown message", "error", err)
		} else {
			c.logger.Warn("Ignoring malformed message", "error", err, "frame", string(data))
		}
		return nil, err
	}

	c.Apply(msg)
	return msg, nil
}

// Apply applies an already decoded message.
func (c *Controller) Apply(msg protocol.Inbound) {
	prev := c.state
	c.state = Apply(c.state, msg)

	if prev.Phase.Terminal() {
		c.logger.Debug("Dropping message after session ended", "type", msg.Kind())
		return
	}

	c.logger.Debug("Applied message",
		"type", msg.Kind(),
		"symbol", c.state.Symbol,
		"myTurn", c.state.MyTurn,
		"phase", c.state.Phase,
		"status", c.state.Status())
}

// HandleCell handles a click on the cell at index. The click is filtered
// against the mirrored turn flag and board; the server still decides.
func (c *Controller) HandleCell(index int) error {
	move, ok := ActivateCell(c.state, index)
	if !ok {
		err := c.rejection(index)
		c.logger.Debug("Swallowed cell activation", "index", index, "reason", err)
		return err
	}
	return c.send(move)
}

func (c *Controller) rejection(index int) error {
	switch {
	case index < 0 || index >= protocol.BoardSize:
		return fmt.Errorf("%w: %d", ErrInvalidCell, index)
	case !c.state.MyTurn:
		return ErrNotYourTurn
	default:
		return fmt.Errorf("%w: %d", ErrCellOccupied, index)
	}
}

// HandleRestart asks the server for a new session, whatever the phase.
func (c *Controller) HandleRestart() error {
	return c.send(ActivateRestart(c.state))
}

// HandleDisconnect moves to the terminal disconnected state.
func (c *Controller) HandleDisconnect(cause error) {
	if c.state.Phase == PhaseDisconnected {
		return
	}
	c.state = Disconnect(c.state)
	c.logger.Warn("Disconnected from server", "error", cause)
}

// send is fire-and-forget: failures are logged and the intent is dropped.
func (c *Controller) send(msg protocol.Outbound) error {
	if err := c.sender.Send(msg); err != nil {
		c.logger.Warn("Dropped intent", "type", msg.Kind(), "error", err)
		return fmt.Errorf("send %s: %w", msg.Kind(), err)
	}
	c.logger.Debug("Sent intent", "type", msg.Kind())
	return nil
}
