// Package game mirrors the state of a server-run tic-tac-toe session.
//
// The client holds no rules of its own. State is a copy of whatever the
// server last pushed, and every transition is a pure function:
//
//	s := game.NewState()
//	s = game.Apply(s, protocol.Start{Symbol: protocol.X})
//	if intent, ok := game.ActivateCell(s, 4); ok {
//	    // send intent, wait for the server's update
//	}
//
// # Controller
//
// Controller wraps the pure transitions with a Sender and a logger. It is
// driven from a single goroutine (the terminal program's Update loop) and is
// not safe for concurrent use.
//
// # Status
//
// State.Status derives the status line from the assigned symbol, the turn
// flag, the terminal outcome and the connection. It is recomputed on every
// call, so it can never drift from the mirrored values.
package game
