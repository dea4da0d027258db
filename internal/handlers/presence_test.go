package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPresenceRegisterLookup(t *testing.T) {
	p := NewPresenceRegistry()

	p.Register("u1", "conn-a")
	connID, ok := p.Lookup("u1")
	assert.True(t, ok)
	assert.Equal(t, "conn-a", connID)

	_, ok = p.Lookup("u2")
	assert.False(t, ok)
}

func TestPresenceLastConnectWins(t *testing.T) {
	p := NewPresenceRegistry()

	p.Register("u1", "conn-a")
	p.Register("u1", "conn-b")

	connID, ok := p.Lookup("u1")
	assert.True(t, ok)
	assert.Equal(t, "conn-b", connID)
}

func TestPresenceUnregisterGuarded(t *testing.T) {
	p := NewPresenceRegistry()

	p.Register("u1", "conn-a")
	p.Register("u1", "conn-b") // reconnect overwrites

	// The stale connection closing must not evict the new mapping.
	p.Unregister("u1", "conn-a")
	connID, ok := p.Lookup("u1")
	assert.True(t, ok)
	assert.Equal(t, "conn-b", connID)

	p.Unregister("u1", "conn-b")
	_, ok = p.Lookup("u1")
	assert.False(t, ok)
}
