package game

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/scythe504/ludo-backend/internal"
	"github.com/scythe504/ludo-backend/internal/auth"
)

// =============================================================================
// WEBSOCKET CONNECTION HANDLING
// =============================================================================

var Upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// session is one authenticated websocket connection. The same user may
// reconnect with a fresh session at any time; Rebind swaps the player's
// live connection over.
type session struct {
	identity internal.Identity
	conn     *internal.ClientConn
	reg      *Registry
}

// HandleWebSocket validates the bearer token from the handshake query,
// upgrades the connection, rebinds any existing player records to it, and
// starts the read loop.
func HandleWebSocket(reg *Registry) http.HandlerFunc {
	secret := auth.Secret()
	return func(w http.ResponseWriter, r *http.Request) {
		identity, err := auth.Verify(r.URL.Query().Get("token"), secret)
		if err != nil {
			log.Printf("[HandleWebSocket] rejected handshake: %v", err)
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}

		ws, err := Upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println("Upgrade failed: ", err)
			return
		}

		sess := &session{
			identity: identity,
			conn:     internal.NewClientConn(uuid.NewString(), ws),
			reg:      reg,
		}
		log.Printf("[HandleWebSocket] user connected: %s | conn=%s", identity.Email, sess.conn.ID)

		// Rebind before any command handling so a reconnecting player is
		// back in their room's broadcast group immediately.
		reg.Rebind(identity, sess.conn)

		go sess.readLoop()
	}
}

func (s *session) readLoop() {
	defer s.conn.Close()

	for {
		raw, err := s.conn.ReadMessage()
		if err != nil {
			s.handleDisconnect(err)
			return
		}

		var base internal.Message[json.RawMessage]
		if err := json.Unmarshal(raw, &base); err != nil {
			log.Printf("[readLoop] %s: failed to parse message: %v", s.identity.Email, err)
			continue
		}
		s.dispatch(base)
	}
}

func (s *session) dispatch(msg internal.Message[json.RawMessage]) {
	log.Printf("[dispatch] %s: %s", s.identity.Email, msg.Type)

	switch msg.Type {
	case "create_room":
		var payload internal.CreateRoomPayload
		if !s.parse(msg, &payload) {
			return
		}
		room, err := s.reg.CreateRoom(s.identity, payload.MaxPlayers, s.conn)
		if err != nil {
			s.ack(msg.Type, err, nil)
			return
		}
		s.ack(msg.Type, nil, internal.RoomCreatedData{
			RoomCode:   room.Code,
			MaxPlayers: room.MaxPlayers,
		})

	case "join_room":
		var payload internal.JoinRoomPayload
		if !s.parse(msg, &payload) {
			return
		}
		err := s.reg.JoinRoom(s.identity, payload.RoomCode, payload.DesiredPlayers, s.conn)
		s.ackJoin(msg.Type, payload.RoomCode, err)

	case "confirm_join_room":
		var payload internal.RoomCodePayload
		if !s.parse(msg, &payload) {
			return
		}
		err := s.reg.ConfirmJoin(s.identity, payload.RoomCode, s.conn)
		s.ackJoin(msg.Type, payload.RoomCode, err)

	case "quit_room":
		var payload internal.RoomCodePayload
		if !s.parse(msg, &payload) {
			return
		}
		s.ack(msg.Type, s.reg.QuitRoom(s.identity, payload.RoomCode), nil)

	case "game_start":
		var payload internal.RoomCodePayload
		if !s.parse(msg, &payload) {
			return
		}
		s.ack(msg.Type, StartGame(s.reg, s.identity, payload.RoomCode), nil)

	case "roll_dice":
		var payload internal.RoomCodePayload
		if !s.parse(msg, &payload) {
			return
		}
		roll, err := RollDice(s.reg, s.identity, payload.RoomCode)
		if err != nil {
			s.ack(msg.Type, err, nil)
			return
		}
		s.ack(msg.Type, nil, map[string]any{"diceValue": roll})

	case "move_token":
		var payload internal.MoveTokenPayload
		if !s.parse(msg, &payload) {
			return
		}
		s.ack(msg.Type, MoveToken(s.reg, s.identity, payload.RoomCode, payload.TokenIndex), nil)

	case "quit_game":
		var payload internal.RoomCodePayload
		if !s.parse(msg, &payload) {
			return
		}
		s.ack(msg.Type, QuitGame(s.reg, s.identity, payload.RoomCode), nil)

	default:
		log.Printf("[dispatch] %s: unknown message type %q", s.identity.Email, msg.Type)
	}
}

func (s *session) parse(msg internal.Message[json.RawMessage], out any) bool {
	if err := json.Unmarshal(msg.Data, out); err != nil {
		log.Printf("[dispatch] %s: bad %s payload: %v", s.identity.Email, msg.Type, err)
		s.ack(msg.Type, errors.New("malformed payload"), nil)
		return false
	}
	return true
}

// ack answers the issuing connection only; failures never reach the rest
// of the room.
func (s *session) ack(cmd string, err error, data any) {
	event := internal.Event[any]{
		Type:    cmd + "_ack",
		Success: err == nil,
		Data:    data,
	}
	if err != nil {
		event.Message = err.Error()
	}
	if writeErr := s.conn.WriteJSON(event); writeErr != nil {
		log.Printf("[ack] %s: write failed for %s: %v", s.identity.Email, cmd, writeErr)
	}
}

// ackJoin adds the join-specific error detail: whether the room code was
// valid at all, and the room's real size on a confirmable capacity
// mismatch.
func (s *session) ackJoin(cmd, roomCode string, err error) {
	if err == nil {
		s.ack(cmd, nil, nil)
		return
	}

	var mismatch *CapacityMismatchError
	switch {
	case errors.As(err, &mismatch):
		s.ack(cmd, err, internal.JoinMismatchData{IsRoomCode: true, MaxPlayers: mismatch.MaxPlayers})
	case errors.Is(err, ErrRoomNotFound):
		s.ack(cmd, err, internal.JoinMismatchData{IsRoomCode: false})
	default:
		s.ack(cmd, err, nil)
	}
}

// handleDisconnect classifies why the read loop ended. A clean close is
// an explicit leave: the player quits whatever rooms they were in. Any
// other error is a transient drop; state is kept so the player can
// reconnect, and the sweeper reclaims the room if nobody comes back.
// Either way the session only acts on rooms where its connection is
// still the bound one; a session Rebind already replaced has no say over
// the player's liveness.
func (s *session) handleDisconnect(err error) {
	explicit := websocket.IsCloseError(err, websocket.CloseNormalClosure)
	log.Printf("[handleDisconnect] %s: %v (explicit=%t)", s.identity.Email, err, explicit)

	if !explicit {
		s.reg.MarkDisconnected(s.identity, s.conn.ID)
		return
	}

	for _, code := range s.reg.RoomsWithPlayer(s.identity) {
		room, ok := s.reg.Get(code)
		if !ok {
			continue
		}
		room.Mu.Lock()
		phase := room.Phase
		player := room.PlayerByEmail(s.identity.Email)
		active := player != nil && player.Status.State == internal.StateActive
		bound := player != nil && player.Conn != nil && player.Conn.ID == s.conn.ID
		room.Mu.Unlock()

		if !bound {
			log.Printf("[handleDisconnect] room=%s: %s closed a superseded connection, ignoring", code, s.identity.Email)
			continue
		}

		switch {
		case phase == internal.PhaseWaiting:
			if quitErr := s.reg.QuitRoom(s.identity, code); quitErr != nil {
				log.Printf("[handleDisconnect] room=%s: quit_room failed: %v", code, quitErr)
			}
		case phase == internal.PhaseInProgress && active:
			if quitErr := QuitGame(s.reg, s.identity, code); quitErr != nil {
				log.Printf("[handleDisconnect] room=%s: quit_game failed: %v", code, quitErr)
			}
		}
	}
}
