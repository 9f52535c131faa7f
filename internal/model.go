package internal

import (
	"sync"
	"time"
)

const (
	MaxPlayersSmall = 2
	MaxPlayersLarge = 4

	TokensPerPlayer = 4

	// Shared circular track cells 1..52, colour-relative path 1..51,
	// home stretch 52..56, finished at 57.
	TrackLength      = 52
	LastSharedRelPos = 51
	FinishedRelPos   = 57

	DiceStreakLength = 3
	RollHistoryLength = 4

	RoomSweepInterval = 60 * time.Second
)

type Phase string

const (
	PhaseWaiting    Phase = "waiting"
	PhaseInProgress Phase = "in-progress"
	PhaseFinished   Phase = "finished"
)

type Color string

const (
	ColorBlue   Color = "blue"
	ColorRed    Color = "red"
	ColorGreen  Color = "green"
	ColorYellow Color = "yellow"
)

type PlayerState string

const (
	StateActive PlayerState = "active"
	StateLeft   PlayerState = "left"
	StateWon    PlayerState = "won"
	StateLost   PlayerState = "lost"
)

// Identity is the authenticated user attached to a connection. It comes
// from the JWT validated at handshake time; the game core never mints one.
type Identity struct {
	ID    string `json:"_id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type Token struct {
	RelPos    int `json:"relPos"`
	GlobalPos int `json:"globalPos"`
}

// GameStatus is a player's terminal record. Rank is assigned exactly once,
// when the player wins, loses, or leaves, and never reassigned.
type GameStatus struct {
	State   PlayerState `json:"state"`
	Reason  string      `json:"reason,omitempty"`
	Rank    int         `json:"rank"`
	Name    string      `json:"name"`
	Outcome string      `json:"outcome,omitempty"`
}

// RollRecord is one entry of the room's short roll history, used to detect
// a stale pending roll when its owner quits mid-turn.
type RollRecord struct {
	Email string `json:"email"`
	Value int    `json:"dice_value"`
}

type Room struct {
	Code       string
	Players    []*Player // insertion order == turn order
	MaxPlayers int

	// Game state
	Phase        Phase
	TurnIndex    int
	LastDiceRoll *int                          // non-nil between a roll and its move/skip
	LastRolls    [RollHistoryLength]RollRecord // last 4 accepted rolls

	// MoveSeq is bumped on every accepted state mutation. A deferred
	// auto-move captures it when scheduled and aborts if it no longer
	// matches when the timer fires.
	MoveSeq uint64

	Mu sync.Mutex
}
