package models

import "time"

// Message is the persisted chat message. ReplyTo references another message by
// id; the reference is not cleaned up when the referenced message is deleted,
// and ReplyToText is a snapshot taken at reply time that does not follow later
// edits of the original.
type Message struct {
	ID          string    `json:"_id"`
	From        string    `json:"from"`
	To          string    `json:"to"`
	Text        string    `json:"message"`
	RoomID      string    `json:"roomId"`
	ReplyTo     *string   `json:"replyTo,omitempty"`
	ReplyToText *string   `json:"replyToText,omitempty"`
	Edited      bool      `json:"edited"`
	CreatedAt   time.Time `json:"createdAt"`
}

// WSEvent is the inbound WebSocket frame. Event selects the handler; the
// remaining fields are populated per event type.
type WSEvent struct {
	Event       string `json:"event"` // "join_room", "send_message", "edit_message", "delete_message", "clear_chat"
	RoomID      string `json:"roomId,omitempty"`
	From        string `json:"from,omitempty"`
	To          string `json:"to,omitempty"`
	Message     string `json:"message,omitempty"`
	ReplyTo     string `json:"replyTo,omitempty"`
	ReplyToText string `json:"replyToText,omitempty"`
	MessageID   string `json:"messageId,omitempty"`
	NewText     string `json:"newText,omitempty"`
}

// ReceiveMessage is the broadcast payload for a newly persisted message.
type ReceiveMessage struct {
	Event       string  `json:"event"`
	ID          string  `json:"_id"`
	From        string  `json:"from"`
	To          string  `json:"to"`
	Message     string  `json:"message"`
	CreatedAt   int64   `json:"createdAt"`
	ReplyTo     *string `json:"replyTo,omitempty"`
	ReplyToText *string `json:"replyToText,omitempty"`
}
