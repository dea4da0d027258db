package handlers

import (
	"sync"

	"carechat-backend/internal/utils"
)

// connWriter is the slice of the websocket connection the hub needs. Tests
// substitute an in-memory recorder.
type connWriter interface {
	WriteJSON(v interface{}) error
}

// Session binds one live connection to its authenticated identity and
// serializes writes to it (fiber's websocket conn is not safe for concurrent
// writes).
type Session struct {
	ID     string // connection id
	UserID string
	Name   string

	conn   connWriter
	writeM sync.Mutex
}

func NewSession(connID, userID, name string, conn connWriter) *Session {
	return &Session{ID: connID, UserID: userID, Name: name, conn: conn}
}

func (s *Session) Send(payload interface{}) error {
	s.writeM.Lock()
	defer s.writeM.Unlock()
	return s.conn.WriteJSON(payload)
}

// Hub owns the room fan-out groups and the presence registry for one gateway
// instance. It is constructed per gateway, never shared as a package global.
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]*Session            // connID -> session
	rooms    map[string]map[string]*Session // roomID -> connID -> session
	presence *PresenceRegistry
}

func NewHub() *Hub {
	return &Hub{
		sessions: make(map[string]*Session),
		rooms:    make(map[string]map[string]*Session),
		presence: NewPresenceRegistry(),
	}
}

// Register records the session and marks its user online.
func (h *Hub) Register(s *Session) {
	h.mu.Lock()
	h.sessions[s.ID] = s
	h.mu.Unlock()
	h.presence.Register(s.UserID, s.ID)
}

// Unregister removes the session from every room it joined and clears its
// presence entry (unless a newer connection already replaced it).
func (h *Hub) Unregister(s *Session) {
	h.mu.Lock()
	for roomID, members := range h.rooms {
		if _, ok := members[s.ID]; ok {
			delete(members, s.ID)
			if len(members) == 0 {
				delete(h.rooms, roomID)
			}
		}
	}
	delete(h.sessions, s.ID)
	h.mu.Unlock()
	h.presence.Unregister(s.UserID, s.ID)
}

func (h *Hub) Join(roomID string, s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.rooms[roomID]; !ok {
		h.rooms[roomID] = make(map[string]*Session)
	}
	h.rooms[roomID][s.ID] = s
}

// Broadcast sends payload to every member of the room, except excludeConnID
// when non-empty. A failed write is logged and left for the member's own read
// loop to clean up.
func (h *Hub) Broadcast(roomID string, payload interface{}, excludeConnID string) {
	h.mu.RLock()
	members := make([]*Session, 0, len(h.rooms[roomID]))
	for id, s := range h.rooms[roomID] {
		if id == excludeConnID {
			continue
		}
		members = append(members, s)
	}
	h.mu.RUnlock()

	for _, s := range members {
		if err := s.Send(payload); err != nil {
			utils.LogError(err, "Broadcast")
		}
	}
}

// ConnInRoom reports whether the given connection is a member of the room.
func (h *Hub) ConnInRoom(connID, roomID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.rooms[roomID][connID]
	return ok
}

// SessionForUser resolves the user's active connection via presence.
func (h *Hub) SessionForUser(userID string) (*Session, bool) {
	connID, ok := h.presence.Lookup(userID)
	if !ok {
		return nil, false
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	s, ok := h.sessions[connID]
	return s, ok
}

func (h *Hub) IsUserOnline(userID string) bool {
	return h.presence.IsOnline(userID)
}
