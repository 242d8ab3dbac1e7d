package websocket

import (
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/scythe504/drawguess-backend/internal"
	"github.com/scythe504/drawguess-backend/internal/game"
	"github.com/scythe504/drawguess-backend/internal/utils"
)

const maxUsernameLength = 24

// Handler accepts websocket connections on /ws/{roomId} and turns inbound
// messages into session calls.
type Handler struct {
	hub      *Hub
	registry *game.Registry
	upgrader websocket.Upgrader
}

// NewHandler builds the handler. An origin list containing "*" (or an empty
// list) accepts any origin.
func NewHandler(hub *Hub, registry *game.Registry, allowedOrigins []string) *Handler {
	allowAll := len(allowedOrigins) == 0 || slices.Contains(allowedOrigins, "*")

	return &Handler{
		hub:      hub,
		registry: registry,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if allowAll {
					return true
				}
				origin := r.Header.Get("Origin")
				return origin == "" || slices.Contains(allowedOrigins, origin)
			},
		},
	}
}

// ServeHTTP upgrades HTTP connection to WebSocket and joins the player to
// the room.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	roomID := strings.TrimSpace(mux.Vars(r)["roomId"])
	if roomID == "" {
		http.Error(w, "room id required", http.StatusBadRequest)
		return
	}

	username := strings.TrimSpace(r.URL.Query().Get("username"))
	if username == "" {
		username = "Anonymous"
	}
	if runes := []rune(username); len(runes) > maxUsernameLength {
		username = string(runes[:maxUsernameLength])
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		zap.S().Warnf("[ServeHTTP] room=%s upgrade failed: %v", roomID, err)
		return
	}

	client := newClient(utils.GenerateID(0), roomID, username, conn)

	// Register before joining so the first room_state reaches this client.
	if !h.hub.Register(client) {
		_ = writeRejection(conn, game.ErrInternal)
		client.close()
		return
	}
	h.hub.JoinRoom(client.id, roomID)
	h.hub.SendToPlayer(client.id, internal.EventJoined, internal.JoinedData{RoomID: roomID, PlayerID: client.id})

	if _, _, err := h.registry.GetOrCreate(roomID, client.id, username); err != nil {
		zap.S().Infof("[ServeHTTP] room=%s player=%s join rejected: %v", roomID, client.id, err)
		h.hub.Unregister(client.id)
		if werr := writeRejection(conn, err); werr != nil {
			zap.S().Debugf("[ServeHTTP] room=%s player=%s writing rejection: %v", roomID, client.id, werr)
		}
		client.close()
		return
	}

	zap.S().Infof("[ServeHTTP] room=%s player=%s (%s) connected", roomID, client.id, username)

	go client.writePump()
	client.readPump(h.handleMessage)

	h.disconnect(client)
}

// writeRejection tells a connection that never got a write pump why it is
// being turned away.
func writeRejection(conn *websocket.Conn, err error) error {
	if derr := conn.SetWriteDeadline(time.Now().Add(writeWait)); derr != nil {
		return derr
	}
	return conn.WriteJSON(internal.Message[internal.ErrorData]{
		Type: internal.EventError,
		Data: internal.ErrorData{Code: errorCode(err)},
	})
}

func (h *Handler) disconnect(c *Client) {
	h.hub.LeaveRoom(c.id, c.roomID)
	h.hub.Unregister(c.id)
	c.close()

	if _, err := h.registry.Leave(c.roomID, c.id); err != nil && !errors.Is(err, game.ErrRoomNotFound) {
		zap.S().Warnf("[disconnect] room=%s player=%s leave failed: %v", c.roomID, c.id, err)
	}
	zap.S().Infof("[disconnect] room=%s player=%s disconnected", c.roomID, c.id)
}

// handleMessage routes one inbound message. It reports true when the
// client asked to leave.
func (h *Handler) handleMessage(c *Client, raw []byte) bool {
	var msg internal.InboundMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		zap.S().Debugf("[handleMessage] room=%s player=%s malformed message: %v", c.roomID, c.id, err)
		return false
	}

	var err error
	switch msg.Type {
	case internal.InStartGame:
		err = h.registry.Dispatch(c.roomID, func(s *game.Session) error {
			return s.StartGame()
		})

	case internal.InDrawEvent:
		err = h.registry.Dispatch(c.roomID, func(s *game.Session) error {
			return s.RecordDrawingEvent(c.id, msg.Data)
		})
		// Stale strokes from a previous drawer are expected.
		if errors.Is(err, game.ErrNotAuthorizedDrawer) {
			err = nil
		}

	case internal.InClearCanvas:
		err = h.registry.Dispatch(c.roomID, func(s *game.Session) error {
			return s.ClearCanvas(c.id)
		})

	case internal.InSubmitGuess:
		text, ok := decodeGuess(msg.Data)
		if !ok {
			zap.S().Debugf("[handleMessage] room=%s player=%s bad guess payload", c.roomID, c.id)
			return false
		}
		err = h.registry.Dispatch(c.roomID, func(s *game.Session) error {
			_, err := s.SubmitGuess(c.id, text)
			return err
		})

	case internal.InUpdateWordPool:
		words, ok := decodeWords(msg.Data)
		if !ok {
			zap.S().Debugf("[handleMessage] room=%s player=%s bad word pool payload", c.roomID, c.id)
			return false
		}
		err = h.registry.Dispatch(c.roomID, func(s *game.Session) error {
			return s.UpdateWordPool(c.id, words)
		})

	case internal.InRequestWordPool:
		err = h.registry.Dispatch(c.roomID, func(s *game.Session) error {
			return s.RequestWordPool(c.id)
		})

	case internal.InPlayAgain:
		err = h.registry.Dispatch(c.roomID, func(s *game.Session) error {
			return s.ResetForNewGame()
		})

	case internal.InLeave:
		return true

	default:
		zap.S().Debugf("[handleMessage] room=%s player=%s unknown message type %q", c.roomID, c.id, msg.Type)
		return false
	}

	if err != nil {
		zap.S().Debugf("[handleMessage] room=%s player=%s %s failed: %v", c.roomID, c.id, msg.Type, err)
		h.hub.SendToPlayer(c.id, internal.EventError, internal.ErrorData{Code: errorCode(err)})
	}
	return false
}

// decodeGuess accepts either a bare string or {"text": "..."}.
func decodeGuess(data json.RawMessage) (string, bool) {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		return text, true
	}
	var req internal.GuessRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return "", false
	}
	return req.Text, true
}

// decodeWords accepts either a bare array or {"words": [...]}.
func decodeWords(data json.RawMessage) ([]string, bool) {
	var words []string
	if err := json.Unmarshal(data, &words); err == nil {
		return words, true
	}
	var req internal.WordPoolRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, false
	}
	return req.Words, true
}

func errorCode(err error) string {
	var ge game.GameError
	if errors.As(err, &ge) {
		return ge.Code()
	}
	return game.ErrInternal.Code()
}
