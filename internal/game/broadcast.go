package game

import (
	"log"

	"github.com/scythe504/ludo-backend/internal"
)

// =============================================================================
// BROADCASTING
// =============================================================================

// SafeBroadcastToRoom delivers an event to every connected player in the
// room. Players are snapshotted under the room lock, then written to
// without it; per-connection write mutexes keep concurrent broadcasts and
// acks from interleaving.
func SafeBroadcastToRoom[T any](room *internal.Room, msg internal.Event[T]) {
	room.Mu.Lock()
	players := make([]*internal.Player, 0, len(room.Players))
	for _, player := range room.Players {
		if player.Connected {
			players = append(players, player)
		}
	}
	room.Mu.Unlock()

	for _, player := range players {
		if err := player.SafeWriteJSON(msg); err != nil {
			log.Printf("[Broadcast] room=%s: failed for player %s: %v", room.Code, player.Email, err)
		}
	}
}

// broadcastMove emits the events of a resolved move in protocol order:
// the move itself, then game over if the move ended the game, then whose
// turn it is.
func broadcastMove(room *internal.Room, events moveEvents) {
	SafeBroadcastToRoom(room, events.tokenMoved)
	if events.gameOver != nil {
		SafeBroadcastToRoom(room, *events.gameOver)
	}
	if events.playerTurn != nil {
		SafeBroadcastToRoom(room, *events.playerTurn)
	}
}
