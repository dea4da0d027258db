package handlers

import "sync"

// PresenceRegistry maps a user id to its active connection id. One entry per
// user: a reconnect overwrites the previous mapping (last-connect-wins), so
// notifications always target the newest connection.
type PresenceRegistry struct {
	mu     sync.RWMutex
	byUser map[string]string // userID -> connID
}

func NewPresenceRegistry() *PresenceRegistry {
	return &PresenceRegistry{byUser: make(map[string]string)}
}

func (p *PresenceRegistry) Register(userID, connID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.byUser[userID] = connID
}

// Unregister removes the user's entry only if it still points at connID. A
// connection that was overwritten by a reconnect must not evict its
// successor's entry when it finally closes.
func (p *PresenceRegistry) Unregister(userID, connID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.byUser[userID] == connID {
		delete(p.byUser, userID)
	}
}

func (p *PresenceRegistry) Lookup(userID string) (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	connID, ok := p.byUser[userID]
	return connID, ok
}

func (p *PresenceRegistry) IsOnline(userID string) bool {
	_, ok := p.Lookup(userID)
	return ok
}
