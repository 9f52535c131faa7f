package game

import (
	"fmt"
	"log"

	"github.com/scythe504/ludo-backend/internal"
)

// =============================================================================
// TURN STATE MACHINE
// =============================================================================

// StartGame moves a full room into play. Only the creator may start, and
// only once; the first player in join order takes the first turn.
func StartGame(reg *Registry, identity internal.Identity, roomCode string) error {
	room, ok := reg.Get(roomCode)
	if !ok {
		return ErrRoomNotFound
	}

	room.Mu.Lock()
	if !room.IsFull() {
		room.Mu.Unlock()
		return ErrRoomNotFull
	}
	player := room.PlayerByEmail(identity.Email)
	if player == nil {
		room.Mu.Unlock()
		return ErrPlayerNotFound
	}
	if !player.IsCreator {
		room.Mu.Unlock()
		return ErrNotCreator
	}
	if room.Phase != internal.PhaseWaiting {
		room.Mu.Unlock()
		return ErrGameStarted
	}

	room.Phase = internal.PhaseInProgress
	room.TurnIndex = 0
	room.MoveSeq++

	startedMsg := internal.Event[internal.GameStartedData]{
		Type:    "game_started",
		Success: true,
		Message: "The game has started!",
		Data: internal.GameStartedData{
			Players:   room.RosterSnapshot(),
			TurnIndex: room.TurnIndex,
		},
	}
	room.Mu.Unlock()

	log.Printf("[StartGame] room=%s: game started by %s", roomCode, identity.Email)
	SafeBroadcastToRoom(room, startedMsg)
	return nil
}

// RollDice draws a streak-guarded roll for the player at TurnIndex and
// stores it as the room's pending roll. Depending on how many tokens can
// move, the turn either skips immediately (zero), schedules a deferred
// auto-move (one), or waits for an explicit move_token (two or more).
func RollDice(reg *Registry, identity internal.Identity, roomCode string) (int, error) {
	room, ok := reg.Get(roomCode)
	if !ok {
		return 0, ErrRoomNotFound
	}

	room.Mu.Lock()
	if room.Phase == internal.PhaseFinished {
		room.Mu.Unlock()
		return 0, ErrGameFinished
	}
	if !room.IsFull() {
		room.Mu.Unlock()
		return 0, ErrRoomNotFull
	}
	if room.Phase != internal.PhaseInProgress {
		room.Mu.Unlock()
		return 0, ErrGameNotStarted
	}
	current := room.CurrentPlayer()
	if current == nil || current.Email != identity.Email {
		room.Mu.Unlock()
		return 0, ErrNotYourTurn
	}
	if room.LastDiceRoll != nil {
		room.Mu.Unlock()
		return 0, ErrRollPending
	}

	roll := current.RollDie(randInt)
	room.LastDiceRoll = &roll
	room.RecordRoll(current.Email, roll)
	room.MoveSeq++
	seq := room.MoveSeq

	movable := movableTokens(current, roll)

	diceMsg := internal.Event[internal.DiceRolledData]{
		Type:    "dice_rolled",
		Success: true,
		Message: fmt.Sprintf("Player %s rolled a %d", current.Name, roll),
		Data: internal.DiceRolledData{
			Name:       current.Name,
			ID:         current.ID,
			Email:      current.Email,
			DiceValue:  roll,
			AllPlayers: room.RosterSnapshot(),
		},
	}

	// Zero movable tokens: the roll is consumed and the turn passes on
	// immediately.
	var turnMsg *internal.Event[internal.PlayerTurnData]
	if len(movable) == 0 {
		room.LastDiceRoll = nil
		if next := room.NextEligibleIndex(room.TurnIndex); next >= 0 {
			room.TurnIndex = next
		}
		room.MoveSeq++
		next := room.CurrentPlayer()
		turnMsg = &internal.Event[internal.PlayerTurnData]{
			Type:    "player_turn",
			Success: true,
			Message: fmt.Sprintf("No token could move. It's now %s's turn.", next.Email),
			Data:    internal.PlayerTurnData{NextPlayer: next.Email, ID: next.ID},
		}
	}

	autoIndex := -1
	if len(movable) == 1 {
		autoIndex = movable[0]
	}
	email := current.Email
	room.Mu.Unlock()

	log.Printf("[RollDice] room=%s: %s rolled %d (%d movable)", roomCode, email, roll, len(movable))
	SafeBroadcastToRoom(room, diceMsg)
	if turnMsg != nil {
		SafeBroadcastToRoom(room, *turnMsg)
	}
	if autoIndex >= 0 {
		scheduleAutoMove(reg, roomCode, email, autoIndex, roll, seq)
	}
	return roll, nil
}

// MoveToken consumes the pending roll by moving one of the caller's
// tokens, resolving capture, win, and the next turn.
func MoveToken(reg *Registry, identity internal.Identity, roomCode string, tokenIndex int) error {
	room, ok := reg.Get(roomCode)
	if !ok {
		return ErrRoomNotFound
	}

	room.Mu.Lock()
	if room.Phase == internal.PhaseFinished {
		room.Mu.Unlock()
		return ErrGameFinished
	}
	if room.Phase != internal.PhaseInProgress {
		room.Mu.Unlock()
		return ErrGameNotStarted
	}
	current := room.CurrentPlayer()
	if current == nil || current.Email != identity.Email {
		room.Mu.Unlock()
		return ErrNotYourTurn
	}
	if tokenIndex < 0 || tokenIndex >= internal.TokensPerPlayer {
		room.Mu.Unlock()
		return ErrInvalidTokenIndex
	}
	if room.LastDiceRoll == nil {
		room.Mu.Unlock()
		return ErrNoRollPending
	}

	roll := *room.LastDiceRoll
	token := current.Tokens[tokenIndex]
	if token.RelPos == 0 && roll != 6 {
		room.Mu.Unlock()
		return ErrNeedSix
	}
	if token.RelPos >= internal.FinishedRelPos {
		room.Mu.Unlock()
		return ErrTokenFinished
	}
	if token.RelPos > 0 && token.RelPos+roll > internal.FinishedRelPos {
		needed := internal.FinishedRelPos - token.RelPos
		room.Mu.Unlock()
		return &OvershootError{Needed: needed}
	}

	events := performMoveLocked(room, current, tokenIndex, roll)
	room.Mu.Unlock()

	log.Printf("[MoveToken] room=%s: %s moved token %d", roomCode, identity.Email, tokenIndex)
	broadcastMove(room, events)
	return nil
}

// QuitGame marks the player as having left mid-game. The turn is passed
// off the quitter first, and the game ends when at most one racing player
// remains.
func QuitGame(reg *Registry, identity internal.Identity, roomCode string) error {
	room, ok := reg.Get(roomCode)
	if !ok {
		return ErrRoomNotFound
	}

	room.Mu.Lock()
	if room.Phase == internal.PhaseFinished {
		room.Mu.Unlock()
		return ErrGameFinished
	}
	if room.Phase != internal.PhaseInProgress {
		room.Mu.Unlock()
		return ErrGameNotStarted
	}
	player := room.PlayerByEmail(identity.Email)
	if player == nil {
		room.Mu.Unlock()
		return ErrPlayerNotFound
	}
	if player.Status.State != internal.StateActive {
		room.Mu.Unlock()
		return ErrPlayerInactive
	}

	// A roll the quitter made but never consumed must not leak to the
	// next player.
	room.ClearStaleRoll(player.Email)

	wasTurn := room.IndexOf(player.Email) == room.TurnIndex
	player.Status.State = internal.StateLeft
	player.Status.Reason = "manual"
	if wasTurn {
		if next := room.NextEligibleIndex(room.TurnIndex); next >= 0 {
			room.TurnIndex = next
		}
		room.LastDiceRoll = nil
	}
	room.MoveSeq++

	active := room.ActiveCount()
	if active <= 1 {
		gameOver := finishAfterQuitLocked(room, player)
		room.Mu.Unlock()

		log.Printf("[QuitGame] room=%s: %s quit, game over", roomCode, identity.Email)
		SafeBroadcastToRoom(room, gameOver)
		return nil
	}

	if player.Status.Rank == 0 {
		// Rank below everyone not yet out, winners included, so a quit
		// after a win never collides with the loser ranks handed out at
		// game over.
		player.Status.Rank = room.NotLeftCount() + 1
		player.Status.Outcome = "left"
	}

	quitMsg := internal.Event[internal.PlayerQuitData]{
		Type:    "player_quit",
		Success: true,
		Message: fmt.Sprintf("Player %s has quit the game.", player.Name),
		Data: internal.PlayerQuitData{
			PlayerQuit: internal.QuitterRef{Email: player.Email, ID: player.ID, WasTurn: wasTurn},
		},
	}
	next := room.CurrentPlayer()
	turnMsg := internal.Event[internal.PlayerTurnData]{
		Type:    "player_turn",
		Success: true,
		Message: fmt.Sprintf("It's now %s's turn.", next.Email),
		Data:    internal.PlayerTurnData{NextPlayer: next.Email, ID: next.ID},
	}
	room.Mu.Unlock()

	log.Printf("[QuitGame] room=%s: %s quit, %d players still racing", roomCode, identity.Email, active)
	SafeBroadcastToRoom(room, quitMsg)
	SafeBroadcastToRoom(room, turnMsg)
	return nil
}

// =============================================================================
// MOVE RESOLUTION (callers hold room.Mu)
// =============================================================================

type moveEvents struct {
	tokenMoved internal.Event[internal.TokenMovedData]
	gameOver   *internal.Event[internal.GameOverData]
	playerTurn *internal.Event[internal.PlayerTurnData]
}

// performMoveLocked applies an already-validated move: position update,
// capture, win detection, rank assignment, and turn advancement. It is
// the single move path shared by explicit moves and deferred auto-moves.
func performMoveLocked(room *internal.Room, mover *internal.Player, tokenIndex, roll int) moveEvents {
	oldRelPos := mover.Tokens[tokenIndex].RelPos
	newRelPos := oldRelPos + roll
	if oldRelPos == 0 {
		newRelPos = 1
	}
	reachedFinish := oldRelPos != internal.FinishedRelPos && newRelPos == internal.FinishedRelPos

	newGlobalPos := internal.GlobalPosition(newRelPos, mover.Color)
	mover.Tokens[tokenIndex] = internal.Token{RelPos: newRelPos, GlobalPos: newGlobalPos}

	captured := resolveCaptureLocked(room, mover, newGlobalPos)
	room.MoveSeq++

	var events moveEvents
	events.tokenMoved = internal.Event[internal.TokenMovedData]{
		Type:    "token_moved",
		Success: true,
		Message: fmt.Sprintf("Player %s moved token %d.", mover.Email, tokenIndex),
		Data: internal.TokenMovedData{
			Name:        mover.Name,
			ID:          mover.ID,
			Email:       mover.Email,
			TokenIndex:  tokenIndex,
			NewPosition: mover.Tokens[tokenIndex],
			AllPlayers:  room.RosterSnapshot(),
		},
	}

	if allTokensFinished(mover) {
		markWinnerLocked(room, mover)
		if room.ActiveCount() <= 1 {
			events.gameOver = finishAfterWinLocked(room, mover)
		}
	}

	retained := roll == 6 || captured || reachedFinish
	if mover.Status.State != internal.StateActive {
		// A player who just won never keeps the turn.
		retained = false
	}
	if !retained {
		if next := room.NextEligibleIndex(room.TurnIndex); next >= 0 {
			room.TurnIndex = next
		}
	}
	room.LastDiceRoll = nil

	if room.Phase != internal.PhaseFinished {
		next := room.CurrentPlayer()
		events.playerTurn = &internal.Event[internal.PlayerTurnData]{
			Type:    "player_turn",
			Success: true,
			Message: fmt.Sprintf("It's now %s's turn.", next.Email),
			Data:    internal.PlayerTurnData{NextPlayer: next.Email, ID: next.ID},
		}
	}
	return events
}

// resolveCaptureLocked sends a lone opponent token home when the mover
// lands exactly on it. Captures never happen on safe cells, and a cell
// already holding two or more tokens (a blockade, or the mover's own
// pair) is immune.
func resolveCaptureLocked(room *internal.Room, mover *internal.Player, globalPos int) bool {
	if globalPos <= 0 || internal.IsSafeCell(globalPos) {
		return false
	}

	total, own := 0, 0
	var victim *internal.Player
	victimIndex := -1
	for _, p := range room.Players {
		for i := range p.Tokens {
			t := p.Tokens[i]
			if t.GlobalPos == globalPos && t.RelPos > 0 && t.RelPos <= internal.LastSharedRelPos {
				total++
				if p.Email == mover.Email {
					own++
				} else {
					victim = p
					victimIndex = i
				}
			}
		}
	}

	// Exactly two tokens on the cell, one the mover's and one an
	// opponent's: capture.
	if total == 2 && own == 1 && victim != nil {
		victim.Tokens[victimIndex] = internal.Token{RelPos: 0, GlobalPos: internal.GlobalPosHome}
		log.Printf("[Capture] room=%s: %s sent %s's token %d home from cell %d",
			room.Code, mover.Email, victim.Email, victimIndex, globalPos)
		return true
	}
	return false
}

// rankOutcome looks up the payout tier from the number of players who
// have reached "won", the mover included.
func rankOutcome(totalWinners, maxPlayers int) (int, string) {
	switch totalWinners {
	case 1:
		return 1, "100"
	case 2:
		if maxPlayers == internal.MaxPlayersSmall {
			return 2, "Loss"
		}
		return 2, "50"
	case 3:
		return 3, "25"
	}
	return 0, ""
}

func markWinnerLocked(room *internal.Room, winner *internal.Player) {
	if winner.Status.Rank != 0 {
		return
	}
	winner.Status.State = internal.StateWon
	rank, outcome := rankOutcome(room.WonCount(), room.MaxPlayers)
	winner.Status.Rank = rank
	winner.Status.Outcome = outcome
	log.Printf("[Win] room=%s: %s takes rank %d", room.Code, winner.Email, rank)
}

// finishAfterWinLocked force-resolves the last racing players once a win
// leaves at most one of them, and ends the game.
func finishAfterWinLocked(room *internal.Room, winner *internal.Player) *internal.Event[internal.GameOverData] {
	room.Phase = internal.PhaseFinished
	for _, p := range room.Players {
		if p.Status.State != internal.StateActive {
			continue
		}
		p.Status.State = internal.StateLost
		if p.Status.Rank == 0 {
			p.Status.Rank = winner.Status.Rank + 1
			p.Status.Outcome = "Loss"
		}
	}
	return &internal.Event[internal.GameOverData]{
		Type:    "game_over",
		Success: true,
		Message: fmt.Sprintf("%s has won the game!", winner.Name),
		Data: internal.GameOverData{
			WinningList: room.RankedStatuses(),
		},
	}
}

// finishAfterQuitLocked ends the game when a quit leaves at most one
// racing player: the survivor is promoted to a win at the next tier, the
// quitter ranks below everyone who did not leave.
func finishAfterQuitLocked(room *internal.Room, quitter *internal.Player) internal.Event[internal.GameOverData] {
	room.Phase = internal.PhaseFinished
	for _, p := range room.Players {
		if p.Status.State == internal.StateActive {
			markWinnerLocked(room, p)
		}
	}
	if quitter.Status.Rank == 0 {
		quitter.Status.Rank = room.NotLeftCount() + 1
		quitter.Status.Outcome = "left"
	}
	return internal.Event[internal.GameOverData]{
		Type:    "game_over",
		Success: true,
		Message: fmt.Sprintf("The game has ended because %s quit.", quitter.Name),
		Data: internal.GameOverData{
			PlayerQuit:  internal.QuitterRef{Email: quitter.Email, ID: quitter.ID},
			WinningList: room.RankedStatuses(),
		},
	}
}

func allTokensFinished(p *internal.Player) bool {
	for _, t := range p.Tokens {
		if t.RelPos != internal.FinishedRelPos {
			return false
		}
	}
	return true
}

// movableTokens returns the indexes the player could legally move with
// the given roll: a token at home needs a 6, a token on the path must not
// overshoot the finish.
func movableTokens(p *internal.Player, roll int) []int {
	var indexes []int
	for i, t := range p.Tokens {
		if t.RelPos == 0 && roll == 6 {
			indexes = append(indexes, i)
			continue
		}
		if t.RelPos > 0 && t.RelPos < internal.FinishedRelPos && t.RelPos+roll <= internal.FinishedRelPos {
			indexes = append(indexes, i)
		}
	}
	return indexes
}
