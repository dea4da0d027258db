package services

import (
	"context"
	"errors"

	"carechat-backend/internal/db"
	"carechat-backend/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var (
	ErrNotFound   = errors.New("message not found")
	ErrValidation = errors.New("missing required message field")
)

// MessageStore is the persistence contract the gateway and HTTP handlers
// depend on. MessageService is the Postgres implementation; tests substitute
// an in-memory one.
type MessageStore interface {
	Create(ctx context.Context, from, to, text, roomID string, replyTo, replyToText *string) (*models.Message, error)
	GetByID(ctx context.Context, id string) (*models.Message, error)
	ListByRoom(ctx context.Context, roomID string) ([]models.Message, error)
	UpdateText(ctx context.Context, id, newText string) (*models.Message, error)
	Delete(ctx context.Context, id string) error
	ClearRoom(ctx context.Context, roomID string) (int64, error)
}

type MessageService struct{}

func NewMessageService() *MessageService {
	return &MessageService{}
}

func (s *MessageService) Create(ctx context.Context, from, to, text, roomID string, replyTo, replyToText *string) (*models.Message, error) {
	if from == "" || to == "" || text == "" || roomID == "" {
		return nil, ErrValidation
	}

	msg := &models.Message{
		ID:          uuid.New().String(),
		From:        from,
		To:          to,
		Text:        text,
		RoomID:      roomID,
		ReplyTo:     replyTo,
		ReplyToText: replyToText,
	}

	query := `INSERT INTO messages (id, from_id, to_id, text, room_id, reply_to, reply_to_text)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING created_at`
	err := db.Pool.QueryRow(ctx, query, msg.ID, msg.From, msg.To, msg.Text, msg.RoomID, msg.ReplyTo, msg.ReplyToText).
		Scan(&msg.CreatedAt)
	if err != nil {
		return nil, err
	}

	return msg, nil
}

func (s *MessageService) GetByID(ctx context.Context, id string) (*models.Message, error) {
	query := `SELECT id, from_id, to_id, text, room_id, reply_to, reply_to_text, edited, created_at
		FROM messages WHERE id = $1`
	var msg models.Message
	err := db.Pool.QueryRow(ctx, query, id).
		Scan(&msg.ID, &msg.From, &msg.To, &msg.Text, &msg.RoomID, &msg.ReplyTo, &msg.ReplyToText, &msg.Edited, &msg.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// ListByRoom returns the room's messages oldest first. Clients render history
// in this order, so the (room_id, created_at) index backs it directly.
func (s *MessageService) ListByRoom(ctx context.Context, roomID string) ([]models.Message, error) {
	query := `SELECT id, from_id, to_id, text, room_id, reply_to, reply_to_text, edited, created_at
		FROM messages WHERE room_id = $1 ORDER BY created_at ASC, id ASC`
	rows, err := db.Pool.Query(ctx, query, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		var msg models.Message
		if err := rows.Scan(&msg.ID, &msg.From, &msg.To, &msg.Text, &msg.RoomID, &msg.ReplyTo, &msg.ReplyToText, &msg.Edited, &msg.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}

	return messages, rows.Err()
}

func (s *MessageService) UpdateText(ctx context.Context, id, newText string) (*models.Message, error) {
	query := `UPDATE messages SET text = $2, edited = TRUE WHERE id = $1
		RETURNING id, from_id, to_id, text, room_id, reply_to, reply_to_text, edited, created_at`
	var msg models.Message
	err := db.Pool.QueryRow(ctx, query, id, newText).
		Scan(&msg.ID, &msg.From, &msg.To, &msg.Text, &msg.RoomID, &msg.ReplyTo, &msg.ReplyToText, &msg.Edited, &msg.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

func (s *MessageService) Delete(ctx context.Context, id string) error {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM messages WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MessageService) ClearRoom(ctx context.Context, roomID string) (int64, error) {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM messages WHERE room_id = $1`, roomID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
