package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveRoomIDSymmetric(t *testing.T) {
	pairs := [][2]string{
		{"u1", "u2"},
		{"doctor-9f2", "patient-03a"},
		{"aaa", "aab"},
		{"9", "10"},
	}
	for _, p := range pairs {
		assert.Equal(t, DeriveRoomID(p[0], p[1]), DeriveRoomID(p[1], p[0]), "pair %v", p)
	}
}

func TestDeriveRoomIDDeterministic(t *testing.T) {
	assert.Equal(t, "u1_u2", DeriveRoomID("u1", "u2"))
	assert.Equal(t, "u1_u2", DeriveRoomID("u2", "u1"))
}

func TestDeriveRoomIDDistinctPairs(t *testing.T) {
	ids := []string{"u1", "u2", "u3", "u4"}
	seen := make(map[string][2]string)
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			room := DeriveRoomID(ids[i], ids[j])
			if prev, ok := seen[room]; ok {
				t.Fatalf("collision: %v and [%s %s] both map to %s", prev, ids[i], ids[j], room)
			}
			seen[room] = [2]string{ids[i], ids[j]}
		}
	}
}
