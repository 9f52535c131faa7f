package game

import (
	"fmt"
	"log"
	"math/rand"
	"slices"
	"sync"

	"github.com/scythe504/ludo-backend/internal"
)

// randInt is the random source for room codes and dice rolls. Tests swap
// it for a deterministic sequence.
var randInt = rand.Intn

// =============================================================================
// ROOM REGISTRY
// =============================================================================

// Registry owns every live room, keyed by room code. All lifecycle goes
// through it; handlers receive it by reference rather than capturing a
// package-global map, which keeps the engine testable without a live
// transport.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*internal.Room
}

func NewRegistry() *Registry {
	return &Registry{
		rooms: make(map[string]*internal.Room),
	}
}

func (reg *Registry) Get(code string) (*internal.Room, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	room, ok := reg.rooms[code]
	return room, ok
}

func (reg *Registry) Delete(code string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	delete(reg.rooms, code)
}

func (reg *Registry) Count() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.rooms)
}

// generateRoomCode draws 8-digit codes until one is free. Caller holds
// reg.mu.
func (reg *Registry) generateRoomCode() string {
	for {
		code := fmt.Sprintf("%d", 10000000+randInt(90000000))
		if _, exists := reg.rooms[code]; !exists {
			return code
		}
	}
}

// CreateRoom makes a new room with the caller as its sole, active player
// (always blue, always the creator), subscribed via conn. conn may be nil
// in tests.
func (reg *Registry) CreateRoom(identity internal.Identity, maxPlayers int, conn *internal.ClientConn) (*internal.Room, error) {
	if maxPlayers != internal.MaxPlayersSmall && maxPlayers != internal.MaxPlayersLarge {
		return nil, ErrInvalidMaxPlayers
	}

	creator := internal.NewPlayer(identity, internal.ColorBlue, true)
	if conn != nil {
		creator.Conn = conn
		creator.Connected = true
	}

	reg.mu.Lock()
	code := reg.generateRoomCode()
	room := &internal.Room{
		Code:       code,
		Players:    []*internal.Player{creator},
		MaxPlayers: maxPlayers,
		Phase:      internal.PhaseWaiting,
		TurnIndex:  0,
	}
	reg.rooms[code] = room
	reg.mu.Unlock()

	log.Printf("[CreateRoom] room=%s created by %s (maxPlayers=%d)", code, identity.Email, maxPlayers)
	return room, nil
}

// JoinRoom appends the caller to the room with the next colour in join
// order and broadcasts the updated roster. The capacity mismatch error is
// distinguishable so the client can re-ask via ConfirmJoin.
func (reg *Registry) JoinRoom(identity internal.Identity, roomCode string, desiredPlayers int, conn *internal.ClientConn) error {
	room, ok := reg.Get(roomCode)
	if !ok {
		return ErrRoomNotFound
	}
	if desiredPlayers != internal.MaxPlayersSmall && desiredPlayers != internal.MaxPlayersLarge {
		return ErrInvalidMaxPlayers
	}

	room.Mu.Lock()
	if room.MaxPlayers != desiredPlayers {
		maxPlayers := room.MaxPlayers
		room.Mu.Unlock()
		return &CapacityMismatchError{MaxPlayers: maxPlayers}
	}
	joinedMsg, err := reg.admitLocked(room, identity, conn)
	room.Mu.Unlock()
	if err != nil {
		return err
	}

	log.Printf("[JoinRoom] room=%s: %s joined (%d/%d players)",
		roomCode, identity.Email, len(joinedMsg.Data.Players), joinedMsg.Data.MaxPlayers)
	SafeBroadcastToRoom(room, joinedMsg)
	return nil
}

// ConfirmJoin repeats the join without the desiredPlayers check, for the
// mismatch-confirmation path.
func (reg *Registry) ConfirmJoin(identity internal.Identity, roomCode string, conn *internal.ClientConn) error {
	room, ok := reg.Get(roomCode)
	if !ok {
		return ErrRoomNotFound
	}

	room.Mu.Lock()
	joinedMsg, err := reg.admitLocked(room, identity, conn)
	room.Mu.Unlock()
	if err != nil {
		return err
	}

	log.Printf("[ConfirmJoin] room=%s: %s joined after capacity confirmation", roomCode, identity.Email)
	SafeBroadcastToRoom(room, joinedMsg)
	return nil
}

// admitLocked runs the shared join checks and appends the player. Caller
// holds room.Mu.
func (reg *Registry) admitLocked(room *internal.Room, identity internal.Identity, conn *internal.ClientConn) (internal.Event[internal.PlayerJoinedData], error) {
	var none internal.Event[internal.PlayerJoinedData]

	if room.PlayerByEmail(identity.Email) != nil {
		return none, ErrAlreadyInRoom
	}
	if room.IsFull() {
		return none, ErrRoomFull
	}

	color := internal.ColorForJoinOrder(len(room.Players), room.MaxPlayers)
	joiner := internal.NewPlayer(identity, color, false)
	if conn != nil {
		joiner.Conn = conn
		joiner.Connected = true
	}
	room.Players = append(room.Players, joiner)

	return internal.Event[internal.PlayerJoinedData]{
		Type:    "player_joined",
		Success: true,
		Message: fmt.Sprintf("Player %s joined.", identity.Name),
		Data: internal.PlayerJoinedData{
			RoomCode:   room.Code,
			MaxPlayers: room.MaxPlayers,
			Players:    room.RosterSnapshot(),
		},
	}, nil
}

// QuitRoom removes the caller from a room they have not started playing
// in. If the quitter created the room, the whole room is deleted and
// everyone is notified.
func (reg *Registry) QuitRoom(identity internal.Identity, roomCode string) error {
	room, ok := reg.Get(roomCode)
	if !ok {
		return ErrRoomNotFound
	}

	room.Mu.Lock()
	player := room.PlayerByEmail(identity.Email)
	if player == nil {
		room.Mu.Unlock()
		return ErrPlayerNotFound
	}

	if player.IsCreator {
		room.MoveSeq++
		room.Mu.Unlock()

		deletedMsg := internal.Event[internal.RoomDeletedData]{
			Type:    "room_deleted",
			Success: true,
			Message: "The room has been deleted.",
			Data:    internal.RoomDeletedData{IsDeletedBy: player.Email},
		}
		// Notify before eviction so the quitting creator's peers still
		// receive the event.
		SafeBroadcastToRoom(room, deletedMsg)
		reg.Delete(roomCode)
		log.Printf("[QuitRoom] room=%s deleted by creator %s", roomCode, player.Email)
		return nil
	}

	room.Players = slices.DeleteFunc(room.Players, func(p *internal.Player) bool {
		return p.Email == identity.Email
	})
	if room.TurnIndex >= len(room.Players) {
		room.TurnIndex = 0
	}
	room.MoveSeq++
	room.Mu.Unlock()

	leftMsg := internal.Event[internal.PlayerLeftRoomData]{
		Type:    "player_left_room",
		Success: true,
		Message: fmt.Sprintf("Player %s has left the room.", player.Name),
		Data:    internal.PlayerLeftRoomData{Email: player.Email, ID: player.ID},
	}
	log.Printf("[QuitRoom] room=%s: %s left", roomCode, player.Email)
	SafeBroadcastToRoom(room, leftMsg)
	return nil
}

// Rebind scans every room for a player matching the identity and swaps in
// the new live connection. It runs on every fresh connection before any
// command handlers, which is what makes mid-game reconnects transparent.
// Returns the codes of rooms the identity was rebound into.
func (reg *Registry) Rebind(identity internal.Identity, conn *internal.ClientConn) []string {
	reg.mu.RLock()
	rooms := make([]*internal.Room, 0, len(reg.rooms))
	for _, room := range reg.rooms {
		rooms = append(rooms, room)
	}
	reg.mu.RUnlock()

	var rebound []string
	for _, room := range rooms {
		room.Mu.Lock()
		player := room.PlayerByEmail(identity.Email)
		if player == nil {
			room.Mu.Unlock()
			continue
		}
		player.Conn = conn
		player.Connected = true
		snapshot := reconnectSnapshotLocked(room)
		code := room.Code
		room.Mu.Unlock()

		rebound = append(rebound, code)
		log.Printf("[Rebind] room=%s: rebound %s to a new connection", code, identity.Email)
		_ = conn.WriteJSON(snapshot)
	}
	return rebound
}

// reconnectSnapshotLocked builds the resync event for a freshly rebound
// connection. A finished room yields its terminal result, never live
// turn state; any other room gets the phase-labelled roster snapshot.
// Caller holds room.Mu.
func reconnectSnapshotLocked(room *internal.Room) any {
	if room.Phase == internal.PhaseFinished {
		return internal.Event[internal.GameOverData]{
			Type:    "game_over",
			Success: true,
			Message: "The game has already ended.",
			Data:    internal.GameOverData{WinningList: room.RankedStatuses()},
		}
	}
	return internal.Event[internal.ReconnectedData]{
		Type:    "reconnected",
		Success: true,
		Message: "Reconnected to room.",
		Data: internal.ReconnectedData{
			RoomCode:  room.Code,
			Phase:     room.Phase,
			Players:   room.RosterSnapshot(),
			TurnIndex: room.TurnIndex,
		},
	}
}

// MarkDisconnected flags the identity's connection as dead in every room
// without touching game state; a transient drop awaits reconnection.
// Liveness belongs to the bound connection, not the identity: a session
// that was already superseded by Rebind must not flip the fresh
// connection back to dead, so only the room's currently bound connection
// may mark itself disconnected.
func (reg *Registry) MarkDisconnected(identity internal.Identity, connID string) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	for _, room := range reg.rooms {
		room.Mu.Lock()
		player := room.PlayerByEmail(identity.Email)
		if player != nil && player.Conn != nil && player.Conn.ID == connID {
			player.Connected = false
			log.Printf("[MarkDisconnected] room=%s: %s dropped, awaiting reconnect", room.Code, identity.Email)
		}
		room.Mu.Unlock()
	}
}

// RoomsWithPlayer returns the codes of rooms holding the identity.
func (reg *Registry) RoomsWithPlayer(identity internal.Identity) []string {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	var codes []string
	for code, room := range reg.rooms {
		room.Mu.Lock()
		if room.PlayerByEmail(identity.Email) != nil {
			codes = append(codes, code)
		}
		room.Mu.Unlock()
	}
	return codes
}

// RoomSummary is the HTTP pre-check for a room code.
func (reg *Registry) RoomSummary(code string) (internal.RoomSummary, bool) {
	room, ok := reg.Get(code)
	if !ok {
		return internal.RoomSummary{}, false
	}
	room.Mu.Lock()
	defer room.Mu.Unlock()
	return internal.RoomSummary{
		RoomCode:   room.Code,
		MaxPlayers: room.MaxPlayers,
		Players:    len(room.Players),
		Phase:      room.Phase,
	}, true
}
