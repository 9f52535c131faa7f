package internal

import (
	"sync"

	"github.com/gorilla/websocket"
)

// ClientConn wraps a websocket connection with a write mutex so that acks
// and room broadcasts never interleave writes on the same socket. The
// player's back-reference to it is replaced wholesale on reconnect.
type ClientConn struct {
	ID string
	ws *websocket.Conn
	mu sync.Mutex
}

func NewClientConn(id string, ws *websocket.Conn) *ClientConn {
	return &ClientConn{ID: id, ws: ws}
}

func (c *ClientConn) WriteJSON(v any) error {
	if c == nil || c.ws == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteJSON(v)
}

// ReadMessage blocks for the next text frame. Reads are only ever issued
// from the connection's own read loop, so no read lock is needed.
func (c *ClientConn) ReadMessage() ([]byte, error) {
	_, data, err := c.ws.ReadMessage()
	return data, err
}

func (c *ClientConn) Close() error {
	if c == nil || c.ws == nil {
		return nil
	}
	return c.ws.Close()
}

type Player struct {
	ID        string `json:"_id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	IsCreator bool   `json:"isCreator"`
	Color     Color  `json:"color"`

	Tokens [TokensPerPlayer]Token `json:"tokens"`

	// DiceRolls holds the player's last 3 rolls for the streak guard.
	DiceRolls [DiceStreakLength]int `json:"-"`

	Status GameStatus `json:"gameStatus"`

	// Live connection state. Conn is a mutable back-reference, not
	// ownership: it is rebound on reconnect and may be nil in tests.
	Conn      *ClientConn `json:"-"`
	Connected bool        `json:"-"`
}

// NewPlayer builds a fresh player record for a room: four tokens at home,
// dice buffer seeded to ones, status active.
func NewPlayer(identity Identity, color Color, isCreator bool) *Player {
	p := &Player{
		ID:        identity.ID,
		Email:     identity.Email,
		Name:      identity.Name,
		IsCreator: isCreator,
		Color:     color,
		DiceRolls: [DiceStreakLength]int{1, 1, 1},
		Status: GameStatus{
			State: StateActive,
			Name:  identity.Name,
		},
	}
	for i := range p.Tokens {
		p.Tokens[i] = Token{RelPos: 0, GlobalPos: GlobalPosHome}
	}
	return p
}

func (p *Player) SafeWriteJSON(v any) error {
	if p.Conn == nil || !p.Connected {
		return nil
	}
	return p.Conn.WriteJSON(v)
}

// PlayerSnapshot is the roster entry broadcast to clients; enough for a
// client to resynchronize board state without a full re-fetch.
type PlayerSnapshot struct {
	Name       string                 `json:"name"`
	ID         string                 `json:"_id"`
	Email      string                 `json:"email"`
	Color      Color                  `json:"color"`
	Tokens     [TokensPerPlayer]Token `json:"tokens"`
	GameStatus GameStatus             `json:"gameStatus"`
}

func (p *Player) Snapshot() PlayerSnapshot {
	return PlayerSnapshot{
		Name:       p.Name,
		ID:         p.ID,
		Email:      p.Email,
		Color:      p.Color,
		Tokens:     p.Tokens,
		GameStatus: p.Status,
	}
}
