package internal

import "sort"

// Methods (Room struct). Callers hold room.Mu.

func (r *Room) PlayerByEmail(email string) *Player {
	for _, p := range r.Players {
		if p.Email == email {
			return p
		}
	}
	return nil
}

func (r *Room) IndexOf(email string) int {
	for i, p := range r.Players {
		if p.Email == email {
			return i
		}
	}
	return -1
}

func (r *Room) IsFull() bool {
	return len(r.Players) >= r.MaxPlayers
}

// ActiveCount is the number of players whose state is neither left nor
// won (nor lost): the players still racing.
func (r *Room) ActiveCount() int {
	count := 0
	for _, p := range r.Players {
		if p.Status.State == StateActive {
			count++
		}
	}
	return count
}

// NotLeftCount is the number of players who have not quit, winners
// included. Quitters rank below everyone still in the standings, so a
// quitter's rank is this count plus one.
func (r *Room) NotLeftCount() int {
	count := 0
	for _, p := range r.Players {
		if p.Status.State != StateLeft {
			count++
		}
	}
	return count
}

func (r *Room) WonCount() int {
	count := 0
	for _, p := range r.Players {
		if p.Status.State == StateWon {
			count++
		}
	}
	return count
}

// NextEligibleIndex returns the index of the next player after `from`
// whose state is active, or -1 if nobody is. This is the only turn
// advance path; TurnIndex must always land on an active player.
func (r *Room) NextEligibleIndex(from int) int {
	if len(r.Players) == 0 {
		return -1
	}
	for step := 1; step <= len(r.Players); step++ {
		idx := (from + step) % len(r.Players)
		if r.Players[idx].Status.State == StateActive {
			return idx
		}
	}
	return -1
}

func (r *Room) CurrentPlayer() *Player {
	if r.TurnIndex < 0 || r.TurnIndex >= len(r.Players) {
		return nil
	}
	return r.Players[r.TurnIndex]
}

// RecordRoll appends to the room's short roll history, dropping the
// oldest entry.
func (r *Room) RecordRoll(email string, value int) {
	copy(r.LastRolls[:], r.LastRolls[1:])
	r.LastRolls[RollHistoryLength-1] = RollRecord{Email: email, Value: value}
}

// ClearStaleRoll drops the pending roll if its owner is the given player,
// so a quitter's unconsumed roll cannot be applied by anyone else.
func (r *Room) ClearStaleRoll(email string) {
	if r.LastDiceRoll == nil {
		return
	}
	if r.LastRolls[RollHistoryLength-1].Email == email {
		r.LastDiceRoll = nil
	}
}

func (r *Room) RosterSnapshot() []PlayerSnapshot {
	players := make([]PlayerSnapshot, 0, len(r.Players))
	for _, p := range r.Players {
		players = append(players, p.Snapshot())
	}
	return players
}

// RankedStatuses returns every player's GameStatus sorted by rank
// ascending, the shape of the game_over winning list.
func (r *Room) RankedStatuses() []GameStatus {
	list := make([]GameStatus, 0, len(r.Players))
	for _, p := range r.Players {
		list = append(list, p.Status)
	}
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Rank < list[j].Rank
	})
	return list
}

func (r *Room) HasLiveConnection() bool {
	for _, p := range r.Players {
		if p.Connected {
			return true
		}
	}
	return false
}

// ColorForJoinOrder assigns the joiner's colour deterministically from the
// number of players already in the room: 2-player rooms pair blue with
// green; 4-player rooms go blue, red, green, yellow in join order.
func ColorForJoinOrder(totalPlayers, maxPlayers int) Color {
	if maxPlayers == MaxPlayersSmall {
		return ColorGreen
	}
	switch totalPlayers {
	case 1:
		return ColorRed
	case 2:
		return ColorGreen
	default:
		return ColorYellow
	}
}
