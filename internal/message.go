package internal

// Message is the inbound client envelope.
type Message[T any] struct {
	Type string `json:"type"`
	Data T      `json:"data"`
}

// Event is the outbound envelope for both room broadcasts and per-caller
// acks. Every broadcast carries success/message/data.
type Event[T any] struct {
	Type    string `json:"type"`
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    T      `json:"data,omitempty"`
}

// Inbound command payloads.

type CreateRoomPayload struct {
	MaxPlayers int `json:"maxPlayers"`
}

type JoinRoomPayload struct {
	RoomCode       string `json:"roomCode"`
	DesiredPlayers int    `json:"desiredPlayers"`
}

type RoomCodePayload struct {
	RoomCode string `json:"roomCode"`
}

type MoveTokenPayload struct {
	RoomCode   string `json:"roomCode"`
	TokenIndex int    `json:"tokenIndex"`
}

// Outbound event payloads.

type RoomCreatedData struct {
	RoomCode   string `json:"roomCode"`
	MaxPlayers int    `json:"maxPlayers"`
}

type PlayerJoinedData struct {
	RoomCode   string           `json:"roomCode"`
	MaxPlayers int              `json:"maxPlayers"`
	Players    []PlayerSnapshot `json:"players"`
}

type JoinMismatchData struct {
	IsRoomCode bool `json:"is_room_code"`
	MaxPlayers int  `json:"maxPlayers,omitempty"`
}

type PlayerLeftRoomData struct {
	Email string `json:"email"`
	ID    string `json:"_id"`
}

type RoomDeletedData struct {
	IsDeletedBy string `json:"is_deleted_by"`
}

type GameStartedData struct {
	Players   []PlayerSnapshot `json:"players"`
	TurnIndex int              `json:"turnIndex"`
}

// ReconnectedData is the resync snapshot sent to a rebound connection.
// Unlike game_started it names the room's phase, so a client rejoining a
// waiting room does not render a game in progress.
type ReconnectedData struct {
	RoomCode  string           `json:"roomCode"`
	Phase     Phase            `json:"phase"`
	Players   []PlayerSnapshot `json:"players"`
	TurnIndex int              `json:"turnIndex"`
}

type DiceRolledData struct {
	Name       string           `json:"name"`
	ID         string           `json:"_id"`
	Email      string           `json:"email"`
	DiceValue  int              `json:"diceValue"`
	AllPlayers []PlayerSnapshot `json:"allPlayers"`
}

type TokenMovedData struct {
	Name        string           `json:"name"`
	ID          string           `json:"_id"`
	Email       string           `json:"email"`
	TokenIndex  int              `json:"tokenIndex"`
	NewPosition Token            `json:"newPosition"`
	AllPlayers  []PlayerSnapshot `json:"allPlayers"`
}

type PlayerTurnData struct {
	NextPlayer string `json:"nextPlayer"` // email
	ID         string `json:"_id"`
}

type QuitterRef struct {
	Email   string `json:"email"`
	ID      string `json:"_id"`
	WasTurn bool   `json:"isPlayerTurn,omitempty"`
}

type PlayerQuitData struct {
	PlayerQuit QuitterRef `json:"player_quit"`
}

type GameOverData struct {
	PlayerQuit  QuitterRef   `json:"player_quit"`
	WinningList []GameStatus `json:"winningList"`
}

// RoomSummary is the HTTP lookup shape for a room code pre-check.
type RoomSummary struct {
	RoomCode   string `json:"roomCode"`
	MaxPlayers int    `json:"maxPlayers"`
	Players    int    `json:"players"`
	Phase      Phase  `json:"phase"`
}

// Response is the HTTP JSON envelope with request timing attached.
type Response struct {
	StatusCode    int   `json:"status_code"`
	RespStartTime int64 `json:"resp_time_start_ms"`
	RespEndTime   int64 `json:"resp_time_end_ms"`
	NetRespTime   int64 `json:"net_resp_time_ms"`
	Data          any   `json:"data"`
}
