package game

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scythe504/ludo-backend/internal"
)

func TestCreateRoomGeneratesEightDigitCode(t *testing.T) {
	reg := NewRegistry()
	room, err := reg.CreateRoom(testIdentities[0], internal.MaxPlayersSmall, nil)
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^[1-9]\d{7}$`), room.Code)
	got, ok := reg.Get(room.Code)
	require.True(t, ok)
	assert.Same(t, room, got)
}

func TestCreateRoomSetsUpCreator(t *testing.T) {
	reg := NewRegistry()
	room, err := reg.CreateRoom(testIdentities[0], internal.MaxPlayersLarge, nil)
	require.NoError(t, err)

	assert.Equal(t, internal.PhaseWaiting, room.Phase)
	assert.Equal(t, internal.MaxPlayersLarge, room.MaxPlayers)
	require.Len(t, room.Players, 1)

	creator := room.Players[0]
	assert.True(t, creator.IsCreator)
	assert.Equal(t, internal.ColorBlue, creator.Color)
	assert.Equal(t, "alice@x.dev", creator.Email)
	for _, token := range creator.Tokens {
		assert.Equal(t, internal.Token{RelPos: 0, GlobalPos: internal.GlobalPosHome}, token)
	}
}

func TestCreateRoomRejectsBadCapacity(t *testing.T) {
	reg := NewRegistry()
	for _, n := range []int{0, 1, 3, 5, -2} {
		_, err := reg.CreateRoom(testIdentities[0], n, nil)
		assert.ErrorIs(t, err, ErrInvalidMaxPlayers, "maxPlayers=%d", n)
	}
	assert.Zero(t, reg.Count())
}

func TestJoinRoomUnknownCode(t *testing.T) {
	reg := NewRegistry()
	err := reg.JoinRoom(testIdentities[1], "00000000", internal.MaxPlayersSmall, nil)
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestJoinRoomCapacityMismatch(t *testing.T) {
	reg := NewRegistry()
	room, err := reg.CreateRoom(testIdentities[0], internal.MaxPlayersLarge, nil)
	require.NoError(t, err)

	err = reg.JoinRoom(testIdentities[1], room.Code, internal.MaxPlayersSmall, nil)
	var mismatch *CapacityMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, internal.MaxPlayersLarge, mismatch.MaxPlayers)

	// The mismatch must not admit the player.
	assert.Len(t, room.Players, 1)

	// Confirming skips the capacity check and admits.
	require.NoError(t, reg.ConfirmJoin(testIdentities[1], room.Code, nil))
	assert.Len(t, room.Players, 2)
}

func TestJoinRoomDuplicateAndFull(t *testing.T) {
	reg := NewRegistry()
	room, err := reg.CreateRoom(testIdentities[0], internal.MaxPlayersSmall, nil)
	require.NoError(t, err)

	assert.ErrorIs(t, reg.JoinRoom(testIdentities[0], room.Code, internal.MaxPlayersSmall, nil), ErrAlreadyInRoom)
	require.NoError(t, reg.JoinRoom(testIdentities[1], room.Code, internal.MaxPlayersSmall, nil))
	assert.ErrorIs(t, reg.JoinRoom(testIdentities[2], room.Code, internal.MaxPlayersSmall, nil), ErrRoomFull)
}

func TestJoinRoomAssignsColorsInOrder(t *testing.T) {
	reg := NewRegistry()
	room, err := reg.CreateRoom(testIdentities[0], internal.MaxPlayersLarge, nil)
	require.NoError(t, err)
	for _, id := range testIdentities[1:] {
		require.NoError(t, reg.JoinRoom(id, room.Code, internal.MaxPlayersLarge, nil))
	}

	want := []internal.Color{internal.ColorBlue, internal.ColorRed, internal.ColorGreen, internal.ColorYellow}
	for i, p := range room.Players {
		assert.Equal(t, want[i], p.Color)
	}
}

func TestJoinRoomBindsConnection(t *testing.T) {
	reg := NewRegistry()
	room, err := reg.CreateRoom(testIdentities[0], internal.MaxPlayersSmall, internal.NewClientConn("c1", nil))
	require.NoError(t, err)
	assert.True(t, room.Players[0].Connected)

	require.NoError(t, reg.JoinRoom(testIdentities[1], room.Code, internal.MaxPlayersSmall, internal.NewClientConn("c2", nil)))
	assert.True(t, room.Players[1].Connected)
	assert.Equal(t, "c2", room.Players[1].Conn.ID)
}

func TestQuitRoomByCreatorDeletesRoom(t *testing.T) {
	reg := NewRegistry()
	room, err := reg.CreateRoom(testIdentities[0], internal.MaxPlayersSmall, nil)
	require.NoError(t, err)
	require.NoError(t, reg.JoinRoom(testIdentities[1], room.Code, internal.MaxPlayersSmall, nil))

	require.NoError(t, reg.QuitRoom(testIdentities[0], room.Code))
	_, ok := reg.Get(room.Code)
	assert.False(t, ok)
	assert.Zero(t, reg.Count())
}

func TestQuitRoomByMemberRemovesOnlyThem(t *testing.T) {
	reg := NewRegistry()
	room, err := reg.CreateRoom(testIdentities[0], internal.MaxPlayersSmall, nil)
	require.NoError(t, err)
	require.NoError(t, reg.JoinRoom(testIdentities[1], room.Code, internal.MaxPlayersSmall, nil))

	require.NoError(t, reg.QuitRoom(testIdentities[1], room.Code))
	_, ok := reg.Get(room.Code)
	assert.True(t, ok)
	require.Len(t, room.Players, 1)
	assert.Equal(t, "alice@x.dev", room.Players[0].Email)

	assert.ErrorIs(t, reg.QuitRoom(testIdentities[1], room.Code), ErrPlayerNotFound)
}

func TestRebindSwapsConnection(t *testing.T) {
	reg := NewRegistry()
	room, _ := newStartedRoom(t, reg, internal.MaxPlayersSmall)

	bob := room.PlayerByEmail("bob@x.dev")
	bob.Connected = false

	fresh := internal.NewClientConn("reconnect-1", nil)
	rebound := reg.Rebind(testIdentities[1], fresh)

	assert.Equal(t, []string{room.Code}, rebound)
	assert.True(t, bob.Connected)
	assert.Same(t, fresh, bob.Conn)
}

func TestReconnectSnapshotCarriesPhase(t *testing.T) {
	reg := NewRegistry()
	room, err := reg.CreateRoom(testIdentities[0], internal.MaxPlayersSmall, nil)
	require.NoError(t, err)

	event, ok := reconnectSnapshotLocked(room).(internal.Event[internal.ReconnectedData])
	require.True(t, ok)
	assert.Equal(t, "reconnected", event.Type)
	assert.Equal(t, internal.PhaseWaiting, event.Data.Phase)
	assert.Equal(t, room.Code, event.Data.RoomCode)
	require.Len(t, event.Data.Players, 1)

	require.NoError(t, reg.JoinRoom(testIdentities[1], room.Code, internal.MaxPlayersSmall, nil))
	require.NoError(t, StartGame(reg, testIdentities[0], room.Code))

	event, ok = reconnectSnapshotLocked(room).(internal.Event[internal.ReconnectedData])
	require.True(t, ok)
	assert.Equal(t, internal.PhaseInProgress, event.Data.Phase)
	assert.Equal(t, 0, event.Data.TurnIndex)
	assert.Len(t, event.Data.Players, 2)
}

func TestReconnectSnapshotForFinishedRoomIsTerminal(t *testing.T) {
	reg := NewRegistry()
	room, ids := newStartedRoom(t, reg, internal.MaxPlayersSmall)
	require.NoError(t, QuitGame(reg, ids[0], room.Code))
	require.Equal(t, internal.PhaseFinished, room.Phase)

	event, ok := reconnectSnapshotLocked(room).(internal.Event[internal.GameOverData])
	require.True(t, ok)
	assert.Equal(t, "game_over", event.Type)
	require.Len(t, event.Data.WinningList, 2)
	assert.Equal(t, 1, event.Data.WinningList[0].Rank)
	assert.Equal(t, "Bob", event.Data.WinningList[0].Name)
}

func TestRebindUnknownIdentityIsNoOp(t *testing.T) {
	reg := NewRegistry()
	newStartedRoom(t, reg, internal.MaxPlayersSmall)

	rebound := reg.Rebind(internal.Identity{Email: "stranger@x.dev"}, internal.NewClientConn("c9", nil))
	assert.Empty(t, rebound)
}

func TestMarkDisconnectedKeepsGameState(t *testing.T) {
	reg := NewRegistry()
	room, _ := newStartedRoom(t, reg, internal.MaxPlayersSmall)
	bob := room.PlayerByEmail("bob@x.dev")
	bob.Conn = internal.NewClientConn("c-bob", nil)
	bob.Connected = true

	reg.MarkDisconnected(testIdentities[1], "c-bob")

	assert.False(t, bob.Connected)
	assert.Equal(t, internal.StateActive, bob.Status.State)
	assert.Equal(t, internal.PhaseInProgress, room.Phase)
}

func TestMarkDisconnectedIgnoresSupersededConnection(t *testing.T) {
	reg := NewRegistry()
	oldConn := internal.NewClientConn("c-old", nil)
	room, err := reg.CreateRoom(testIdentities[0], internal.MaxPlayersSmall, oldConn)
	require.NoError(t, err)

	newConn := internal.NewClientConn("c-new", nil)
	require.Equal(t, []string{room.Code}, reg.Rebind(testIdentities[0], newConn))

	// The old session's read loop dies after the rebind; its report must
	// not flip the fresh connection back to dead.
	reg.MarkDisconnected(testIdentities[0], oldConn.ID)

	alice := room.PlayerByEmail("alice@x.dev")
	assert.True(t, alice.Connected)
	assert.Same(t, newConn, alice.Conn)

	assert.Zero(t, reg.SweepInactiveRooms())
	_, ok := reg.Get(room.Code)
	assert.True(t, ok, "the room must survive a stale disconnect report")
}

func TestRoomsWithPlayer(t *testing.T) {
	reg := NewRegistry()
	room, _ := newStartedRoom(t, reg, internal.MaxPlayersSmall)

	assert.Equal(t, []string{room.Code}, reg.RoomsWithPlayer(testIdentities[0]))
	assert.Empty(t, reg.RoomsWithPlayer(internal.Identity{Email: "stranger@x.dev"}))
}

func TestRoomSummary(t *testing.T) {
	reg := NewRegistry()
	room, err := reg.CreateRoom(testIdentities[0], internal.MaxPlayersLarge, nil)
	require.NoError(t, err)

	summary, ok := reg.RoomSummary(room.Code)
	require.True(t, ok)
	assert.Equal(t, room.Code, summary.RoomCode)
	assert.Equal(t, internal.MaxPlayersLarge, summary.MaxPlayers)
	assert.Equal(t, internal.PhaseWaiting, summary.Phase)
	assert.Equal(t, 1, summary.Players)

	_, ok = reg.RoomSummary("00000000")
	assert.False(t, ok)
}

func TestRoomCodesAreUnique(t *testing.T) {
	reg := NewRegistry()
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		id := internal.Identity{ID: "u", Email: "u@x.dev", Name: "u"}
		room, err := reg.CreateRoom(id, internal.MaxPlayersSmall, nil)
		require.NoError(t, err)
		assert.False(t, seen[room.Code], "duplicate code %s", room.Code)
		seen[room.Code] = true
	}
}
