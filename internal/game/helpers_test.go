package game

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/scythe504/ludo-backend/internal"
)

// restoreAutoMoveDelay shortens the forced-move delay for the test and
// puts it back afterwards.
func restoreAutoMoveDelay(t *testing.T, d time.Duration) {
	t.Helper()
	orig := AutoMoveDelay
	AutoMoveDelay = d
	t.Cleanup(func() { AutoMoveDelay = orig })
}

var testIdentities = []internal.Identity{
	{ID: "u1", Email: "alice@x.dev", Name: "Alice"},
	{ID: "u2", Email: "bob@x.dev", Name: "Bob"},
	{ID: "u3", Email: "carol@x.dev", Name: "Carol"},
	{ID: "u4", Email: "dave@x.dev", Name: "Dave"},
}

// stubDice pins the dice source to a fixed sequence of faces. Room code
// generation shares randInt, so draws outside the die ranges fall through
// to the real source. Restored automatically at test end.
func stubDice(t *testing.T, faces ...int) {
	t.Helper()
	orig := randInt
	randInt = func(n int) int {
		if n != 6 && n != 5 {
			return rand.Intn(n)
		}
		require.NotEmpty(t, faces, "dice queue exhausted")
		face := faces[0]
		faces = faces[1:]
		require.LessOrEqual(t, face, n, "face %d cannot come from intn(%d)", face, n)
		return face - 1
	}
	t.Cleanup(func() { randInt = orig })
}

// newStartedRoom builds a full room of maxPlayers and starts the game.
// Nobody holds a live connection, so broadcasts are dropped silently.
func newStartedRoom(t *testing.T, reg *Registry, maxPlayers int) (*internal.Room, []internal.Identity) {
	t.Helper()
	ids := testIdentities[:maxPlayers]

	room, err := reg.CreateRoom(ids[0], maxPlayers, nil)
	require.NoError(t, err)
	for _, id := range ids[1:] {
		require.NoError(t, reg.JoinRoom(id, room.Code, maxPlayers, nil))
	}
	require.NoError(t, StartGame(reg, ids[0], room.Code))
	require.Equal(t, internal.PhaseInProgress, room.Phase)
	require.Equal(t, 0, room.TurnIndex)
	return room, ids
}

// setToken places a token directly, keeping relPos and globalPos
// consistent.
func setToken(p *internal.Player, idx, relPos int) {
	p.Tokens[idx] = internal.Token{
		RelPos:    relPos,
		GlobalPos: internal.GlobalPosition(relPos, p.Color),
	}
}
