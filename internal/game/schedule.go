package game

import (
	"log"
	"time"

	"github.com/scythe504/ludo-backend/internal"
)

// AutoMoveDelay is how long the server waits before applying a forced
// move, so clients can render the roll first. Tests shorten it.
var AutoMoveDelay = 500 * time.Millisecond

// scheduleAutoMove runs the move for a roll with exactly one movable
// token after a short delay. Other commands for the room can be accepted
// during the delay, so the callback re-validates everything it captured:
// the room must still exist, the generation must match (no roll, move, or
// quit happened in between), it must still be the same player's turn, and
// the pending roll must still be the one that was scheduled. On any
// mismatch the task silently aborts.
func scheduleAutoMove(reg *Registry, roomCode, email string, tokenIndex, roll int, seq uint64) {
	time.AfterFunc(AutoMoveDelay, func() {
		room, ok := reg.Get(roomCode)
		if !ok {
			log.Printf("[AutoMove] room=%s gone before auto-move fired", roomCode)
			return
		}

		room.Mu.Lock()
		if room.MoveSeq != seq {
			room.Mu.Unlock()
			log.Printf("[AutoMove] room=%s: stale generation, aborting", roomCode)
			return
		}
		if room.Phase == internal.PhaseFinished {
			room.Mu.Unlock()
			return
		}
		current := room.CurrentPlayer()
		if current == nil || current.Email != email || current.Status.State != internal.StateActive {
			room.Mu.Unlock()
			log.Printf("[AutoMove] room=%s: turn moved on, aborting", roomCode)
			return
		}
		if room.LastDiceRoll == nil || *room.LastDiceRoll != roll {
			room.Mu.Unlock()
			return
		}

		events := performMoveLocked(room, current, tokenIndex, roll)
		room.Mu.Unlock()

		log.Printf("[AutoMove] room=%s: token %d auto-moved for %s", roomCode, tokenIndex, email)
		broadcastMove(room, events)
	})
}
