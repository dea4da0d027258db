package handlers

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"carechat-backend/internal/models"
	"carechat-backend/internal/services"

	"github.com/google/uuid"
)

// memStore is an in-memory MessageStore used by the gateway tests. It follows
// the same contract as the Postgres implementation: validation on create,
// ErrNotFound on missing ids, ascending (createdAt, id) listing.
type memStore struct {
	mu       sync.Mutex
	messages map[string]*models.Message
	clock    time.Time
	failing  bool // when set, every operation reports an unreachable store
}

func newMemStore() *memStore {
	return &memStore{
		messages: make(map[string]*models.Message),
		clock:    time.Now(),
	}
}

var errStoreDown = errors.New("store unreachable")

func (m *memStore) Create(_ context.Context, from, to, text, roomID string, replyTo, replyToText *string) (*models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return nil, errStoreDown
	}
	if from == "" || to == "" || text == "" || roomID == "" {
		return nil, services.ErrValidation
	}

	// Strictly increasing timestamps so ordering is unambiguous.
	m.clock = m.clock.Add(time.Millisecond)
	msg := &models.Message{
		ID:          uuid.New().String(),
		From:        from,
		To:          to,
		Text:        text,
		RoomID:      roomID,
		ReplyTo:     replyTo,
		ReplyToText: replyToText,
		CreatedAt:   m.clock,
	}
	m.messages[msg.ID] = msg
	out := *msg
	return &out, nil
}

func (m *memStore) GetByID(_ context.Context, id string) (*models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return nil, errStoreDown
	}
	msg, ok := m.messages[id]
	if !ok {
		return nil, services.ErrNotFound
	}
	out := *msg
	return &out, nil
}

func (m *memStore) ListByRoom(_ context.Context, roomID string) ([]models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return nil, errStoreDown
	}
	var out []models.Message
	for _, msg := range m.messages {
		if msg.RoomID == roomID {
			out = append(out, *msg)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *memStore) UpdateText(_ context.Context, id, newText string) (*models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return nil, errStoreDown
	}
	msg, ok := m.messages[id]
	if !ok {
		return nil, services.ErrNotFound
	}
	msg.Text = newText
	msg.Edited = true
	out := *msg
	return &out, nil
}

func (m *memStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return errStoreDown
	}
	if _, ok := m.messages[id]; !ok {
		return services.ErrNotFound
	}
	delete(m.messages, id)
	return nil
}

func (m *memStore) ClearRoom(_ context.Context, roomID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return 0, errStoreDown
	}
	var count int64
	for id, msg := range m.messages {
		if msg.RoomID == roomID {
			delete(m.messages, id)
			count++
		}
	}
	return count, nil
}
