package game

import (
	"context"
	"log"
	"time"
)

// =============================================================================
// LIVENESS / CLEANUP
// =============================================================================

// SweepInactiveRooms deletes every room in which no player holds a live
// connection. Transiently dropped players keep their room alive only as
// long as someone in it is still connected.
func (reg *Registry) SweepInactiveRooms() int {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	removed := 0
	for code, room := range reg.rooms {
		room.Mu.Lock()
		live := room.HasLiveConnection()
		room.Mu.Unlock()

		if !live {
			delete(reg.rooms, code)
			removed++
			log.Printf("[SweepInactiveRooms] deleted inactive room %s", code)
		}
	}
	return removed
}

// StartRoomSweeper runs the periodic sweep until the context is
// cancelled.
func StartRoomSweeper(ctx context.Context, reg *Registry, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := reg.SweepInactiveRooms(); n > 0 {
					log.Printf("[StartRoomSweeper] reclaimed %d rooms", n)
				}
			}
		}
	}()
}
