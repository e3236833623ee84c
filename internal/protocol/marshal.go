package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

var (
	// ErrMalformed is returned for frames that are not valid messages.
	ErrMalformed = errors.New("malformed message")
	// ErrUnknownType is returned for well-formed frames with an unrecognized type.
	ErrUnknownType = errors.New("unknown message type")
)

type envelope struct {
	Type MessageType `json:"type"`
}

type updateWire struct {
	Board  *Board `json:"board"`
	MyTurn bool   `json:"myTurn"`
}

type endWire struct {
	Board  *Board  `json:"board"`
	Winner *string `json:"winner"`
}

// Decode parses a server frame into one of Start, Update, End or Full.
func Decode(data []byte) (Inbound, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	switch env.Type {
	case TypeStart:
		var msg Start
		if err := unmarshal(data, &msg); err != nil {
			return nil, err
		}
		if msg.Symbol != X && msg.Symbol != O {
			return nil, fmt.Errorf("%w: invalid symbol %q", ErrMalformed, msg.Symbol)
		}
		return msg, nil

	case TypeUpdate:
		var wire updateWire
		if err := unmarshal(data, &wire); err != nil {
			return nil, err
		}
		if wire.Board == nil {
			return nil, fmt.Errorf("%w: update without board", ErrMalformed)
		}
		return Update{Board: *wire.Board, MyTurn: wire.MyTurn}, nil

	case TypeEnd:
		var wire endWire
		if err := unmarshal(data, &wire); err != nil {
			return nil, err
		}
		if wire.Board == nil {
			return nil, fmt.Errorf("%w: end without board", ErrMalformed)
		}
		if w := wire.Winner; w != nil && *w != "" && *w != WinnerDraw && *w != string(X) && *w != string(O) {
			return nil, fmt.Errorf("%w: invalid winner %q", ErrMalformed, *w)
		}
		return End{Board: *wire.Board, Winner: wire.Winner}, nil

	case TypeFull:
		return Full{}, nil

	case "":
		return nil, fmt.Errorf("%w: missing type", ErrMalformed)

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, env.Type)
	}
}

func unmarshal(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		if errors.Is(err, ErrMalformed) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}

// Encoder serializes intents for the wire.
type Encoder struct {
	// IndexAsString sends move indexes as JSON strings ("4") for servers
	// that read the index as text.
	IndexAsString bool
}

type moveWire struct {
	Type  MessageType `json:"type"`
	Index any         `json:"index"`
}

type restartWire struct {
	Type MessageType `json:"type"`
}

// Encode serializes an intent to a JSON text frame.
func (e Encoder) Encode(msg Outbound) ([]byte, error) {
	switch m := msg.(type) {
	case Move:
		if m.Index < 0 || m.Index >= BoardSize {
			return nil, fmt.Errorf("move index %d out of range", m.Index)
		}
		var index any = m.Index
		if e.IndexAsString {
			index = strconv.Itoa(m.Index)
		}
		return json.Marshal(moveWire{Type: TypeMove, Index: index})
	case Restart:
		return json.Marshal(restartWire{Type: TypeRestart})
	default:
		return nil, fmt.Errorf("%w: cannot encode %T", ErrUnknownType, msg)
	}
}
