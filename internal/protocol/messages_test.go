package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeStart(t *testing.T) {
	msg, err := Decode([]byte(`{"type":"start","symbol":"O"}`))
	require.NoError(t, err)

	start, ok := msg.(Start)
	require.True(t, ok, "got %T", msg)
	assert.Equal(t, O, start.Symbol)
	assert.Equal(t, TypeStart, start.Kind())
}

func TestDecodeUpdate(t *testing.T) {
	t.Run("full payload", func(t *testing.T) {
		msg, err := Decode([]byte(`{"type":"update","board":["X","","","","O","","","",""],"myTurn":true}`))
		require.NoError(t, err)

		update, ok := msg.(Update)
		require.True(t, ok, "got %T", msg)
		assert.Equal(t, Board{X, "", "", "", O, "", "", "", ""}, update.Board)
		assert.True(t, update.MyTurn)
	})

	t.Run("myTurn omitted means false", func(t *testing.T) {
		msg, err := Decode([]byte(`{"type":"update","board":["","","","","","","","",""]}`))
		require.NoError(t, err)
		assert.False(t, msg.(Update).MyTurn)
	})
}

func TestDecodeEnd(t *testing.T) {
	board := `["X","X","X","O","O","","","",""]`

	tests := []struct {
		name      string
		payload   string
		hasWinner bool
		winner    string
	}{
		{"symbol winner", `{"type":"end","board":` + board + `,"winner":"X"}`, true, "X"},
		{"draw", `{"type":"end","board":` + board + `,"winner":"draw"}`, true, WinnerDraw},
		{"null winner", `{"type":"end","board":` + board + `,"winner":null}`, false, ""},
		{"omitted winner", `{"type":"end","board":` + board + `}`, false, ""},
		{"empty winner", `{"type":"end","board":` + board + `,"winner":""}`, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := Decode([]byte(tt.payload))
			require.NoError(t, err)

			end, ok := msg.(End)
			require.True(t, ok, "got %T", msg)
			assert.Equal(t, X, end.Board[0])
			assert.Equal(t, tt.hasWinner, end.HasWinner())
			if tt.hasWinner {
				assert.Equal(t, tt.winner, *end.Winner)
			}
		})
	}
}

func TestDecodeFull(t *testing.T) {
	msg, err := Decode([]byte(`{"type":"full"}`))
	require.NoError(t, err)
	assert.Equal(t, TypeFull, msg.Kind())
}

func TestDecodeRejectsMalformed(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"not json", `hello`},
		{"missing type", `{"symbol":"X"}`},
		{"type not a string", `{"type":3}`},
		{"start bad symbol", `{"type":"start","symbol":"Z"}`},
		{"start missing symbol", `{"type":"start"}`},
		{"update missing board", `{"type":"update","myTurn":true}`},
		{"update short board", `{"type":"update","board":["X"],"myTurn":true}`},
		{"update bad cell", `{"type":"update","board":["X","","","","","","","","Q"]}`},
		{"update board not array", `{"type":"update","board":"X"}`},
		{"update myTurn not bool", `{"type":"update","board":["","","","","","","","",""],"myTurn":"yes"}`},
		{"end missing board", `{"type":"end","winner":"X"}`},
		{"end bad winner", `{"type":"end","board":["","","","","","","","",""],"winner":"nobody"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := Decode([]byte(tt.payload))
			assert.Nil(t, msg)
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestDecodeUnknownType(t *testing.T) {
	msg, err := Decode([]byte(`{"type":"chat","text":"hi"}`))
	assert.Nil(t, msg)
	assert.ErrorIs(t, err, ErrUnknownType)
	assert.NotErrorIs(t, err, ErrMalformed)
}

func TestEncode(t *testing.T) {
	t.Run("move as number", func(t *testing.T) {
		data, err := Encoder{}.Encode(Move{Index: 4})
		require.NoError(t, err)
		assert.JSONEq(t, `{"type":"move","index":4}`, string(data))
	})

	t.Run("move as string", func(t *testing.T) {
		data, err := Encoder{IndexAsString: true}.Encode(Move{Index: 4})
		require.NoError(t, err)
		assert.JSONEq(t, `{"type":"move","index":"4"}`, string(data))
	})

	t.Run("restart", func(t *testing.T) {
		data, err := Encoder{}.Encode(Restart{})
		require.NoError(t, err)
		assert.JSONEq(t, `{"type":"restart"}`, string(data))
	})

	t.Run("out of range move", func(t *testing.T) {
		for _, index := range []int{-1, 9} {
			_, err := Encoder{}.Encode(Move{Index: index})
			assert.Error(t, err, "index %d", index)
		}
	})

	t.Run("inbound types cannot be encoded", func(t *testing.T) {
		_, err := Encoder{}.Encode(Start{Symbol: X})
		assert.ErrorIs(t, err, ErrUnknownType)
	})
}

func TestSymbolAndBoard(t *testing.T) {
	assert.Equal(t, O, X.Other())
	assert.Equal(t, X, O.Other())
	assert.Equal(t, Empty, Empty.Other())

	b := Board{X}
	assert.False(t, b.IsEmpty(0))
	assert.True(t, b.IsEmpty(8))
	assert.False(t, b.IsEmpty(-1))
	assert.False(t, b.IsEmpty(9))
}
