package websocket

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/scythe504/drawguess-backend/internal"
)

// Hub tracks live connections and the rooms they belong to. It implements
// game.Transport: every send marshals once and enqueues without blocking.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	rooms   map[string]map[string]*Client
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		rooms:   make(map[string]map[string]*Client),
	}
}

// Register adds the connection. It reports false, and changes nothing, when
// the id is already taken.
func (h *Hub) Register(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, taken := h.clients[c.id]; taken {
		zap.S().Warnf("[Register] connection id %s already registered", c.id)
		return false
	}
	h.clients[c.id] = c
	return true
}

// Unregister forgets the connection and drops it from every room.
func (h *Hub) Unregister(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.clients, connID)
	for roomID, members := range h.rooms {
		delete(members, connID)
		if len(members) == 0 {
			delete(h.rooms, roomID)
		}
	}
}

func (h *Hub) JoinRoom(connID, roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c, ok := h.clients[connID]
	if !ok {
		return
	}
	members, ok := h.rooms[roomID]
	if !ok {
		members = make(map[string]*Client)
		h.rooms[roomID] = members
	}
	members[connID] = c
}

func (h *Hub) LeaveRoom(connID, roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	members, ok := h.rooms[roomID]
	if !ok {
		return
	}
	delete(members, connID)
	if len(members) == 0 {
		delete(h.rooms, roomID)
	}
}

// RoomSize is the number of connections joined to roomID.
func (h *Hub) RoomSize(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}

func (h *Hub) SendToPlayer(playerID, event string, payload any) {
	msg, ok := encode(event, payload)
	if !ok {
		return
	}

	h.mu.RLock()
	c := h.clients[playerID]
	h.mu.RUnlock()

	if c != nil {
		c.enqueue(msg)
	}
}

func (h *Hub) SendToRoom(roomID, event string, payload any) {
	h.SendToRoomExcept(roomID, "", event, payload)
}

func (h *Hub) SendToRoomExcept(roomID, senderID, event string, payload any) {
	msg, ok := encode(event, payload)
	if !ok {
		return
	}

	h.mu.RLock()
	targets := make([]*Client, 0, len(h.rooms[roomID]))
	for id, c := range h.rooms[roomID] {
		if id != senderID {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range targets {
		c.enqueue(msg)
	}
}

func encode(event string, payload any) ([]byte, bool) {
	msg, err := json.Marshal(internal.Message[any]{Type: event, Data: payload})
	if err != nil {
		zap.S().Errorf("[encode] failed to marshal %s: %v", event, err)
		return nil, false
	}
	return msg, true
}
