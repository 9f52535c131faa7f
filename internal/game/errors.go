package game

import (
	"errors"
	"fmt"
)

// Command failures are reported to the caller only; room state is never
// mutated on the error path and nothing is broadcast.
var (
	ErrRoomNotFound      = errors.New("invalid room code")
	ErrInvalidMaxPlayers = errors.New("invalid player limit, choose 2 or 4 players")
	ErrAlreadyInRoom     = errors.New("you are already in this room")
	ErrRoomFull          = errors.New("room is full")
	ErrRoomNotFull       = errors.New("the room is not full yet, please wait for other players to join")
	ErrPlayerNotFound    = errors.New("player not found in the room")
	ErrNotCreator        = errors.New("only the room creator can start the game")
	ErrGameStarted       = errors.New("the game has already started")
	ErrGameNotStarted    = errors.New("the game has not started yet")
	ErrGameFinished      = errors.New("the game is already over")
	ErrNotYourTurn       = errors.New("not your turn")
	ErrRollPending       = errors.New("please move the token first, then roll the dice")
	ErrNoRollPending     = errors.New("you must roll the dice before moving a token")
	ErrInvalidTokenIndex = errors.New("invalid token index")
	ErrTokenFinished     = errors.New("token already finished")
	ErrNeedSix           = errors.New("you need a 6 to bring the token out")
	ErrPlayerInactive    = errors.New("you are no longer an active player")
)

// CapacityMismatchError is the confirmable join failure: the room exists
// but its size differs from what the joiner asked for. Clients may re-ask
// via confirm_join_room.
type CapacityMismatchError struct {
	MaxPlayers int
}

func (e *CapacityMismatchError) Error() string {
	return fmt.Sprintf("this room is for %d players, do you want to join?", e.MaxPlayers)
}

// OvershootError reports a move past the finish cell, naming the largest
// roll that would still fit.
type OvershootError struct {
	Needed int
}

func (e *OvershootError) Error() string {
	return fmt.Sprintf("you need %d or less to move", e.Needed)
}
