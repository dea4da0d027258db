package handlers

import (
	"context"
	"errors"
	"log"

	"carechat-backend/internal/models"
	"carechat-backend/internal/services"
	"carechat-backend/internal/utils"
)

// ChatGateway dispatches inbound chat events for its hub's connections. One
// gateway instance owns one hub and one store handle.
type ChatGateway struct {
	hub   *Hub
	store services.MessageStore
}

func NewChatGateway(store services.MessageStore) *ChatGateway {
	return &ChatGateway{hub: NewHub(), store: store}
}

func (g *ChatGateway) Hub() *Hub {
	return g.hub
}

// HandleEvent routes one inbound frame from an authenticated session.
func (g *ChatGateway) HandleEvent(s *Session, raw []byte) {
	var ev models.WSEvent
	if err := utils.SafeJSONParse(raw, &ev); err != nil {
		utils.LogError(err, "JSON Parse")
		return
	}

	switch ev.Event {
	case "join_room":
		g.handleJoinRoom(s, &ev)
	case "send_message":
		g.handleSendMessage(s, &ev)
	case "edit_message":
		g.handleEditMessage(s, &ev)
	case "delete_message":
		g.handleDeleteMessage(s, &ev)
	case "clear_chat":
		g.handleClearChat(s, &ev)
	default:
		log.Printf("Unknown event: %s", ev.Event)
	}
}

func (g *ChatGateway) handleJoinRoom(s *Session, ev *models.WSEvent) {
	if ev.RoomID == "" {
		return
	}
	// Room ids are unguessable by convention only; any authenticated user may
	// join a room id it knows.
	g.hub.Join(ev.RoomID, s)
}

func (g *ChatGateway) handleSendMessage(s *Session, ev *models.WSEvent) {
	var replyTo, replyToText *string
	if ev.ReplyTo != "" {
		replyTo = &ev.ReplyTo
	}
	if ev.ReplyToText != "" {
		replyToText = &ev.ReplyToText
	}

	// The payload's from is trusted as given; it is not cross-checked against
	// s.UserID.
	msg, err := g.store.Create(context.Background(), ev.From, ev.To, ev.Message, ev.RoomID, replyTo, replyToText)
	if err != nil {
		// Both validation and store failures drop the event without telling
		// the sender. The message is lost from the server's perspective.
		utils.LogError(err, "SaveMessage")
		return
	}

	g.hub.Broadcast(ev.RoomID, models.ReceiveMessage{
		Event:       "receive_message",
		ID:          msg.ID,
		From:        msg.From,
		To:          msg.To,
		Message:     msg.Text,
		CreatedAt:   msg.CreatedAt.UnixMilli(),
		ReplyTo:     msg.ReplyTo,
		ReplyToText: msg.ReplyToText,
	}, "")

	g.notifyRecipient(ev.To, ev.From, ev.Message, ev.RoomID)
}

// notifyRecipient pings the recipient's connection when it is online but not
// watching the room, so the client can surface an unread badge.
func (g *ChatGateway) notifyRecipient(to, from, text, roomID string) {
	recipient, ok := g.hub.SessionForUser(to)
	if !ok {
		return
	}
	if g.hub.ConnInRoom(recipient.ID, roomID) {
		return
	}
	if err := recipient.Send(map[string]interface{}{
		"event":   "new_message_notification",
		"from":    from,
		"message": text,
	}); err != nil {
		utils.LogError(err, "Notify")
	}
}

func (g *ChatGateway) handleEditMessage(s *Session, ev *models.WSEvent) {
	msg, err := g.store.GetByID(context.Background(), ev.MessageID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			g.sendError(s, "Message not found")
			return
		}
		utils.LogError(err, "GetByID")
		g.sendError(s, "Failed to edit message")
		return
	}

	if msg.From != s.UserID {
		g.sendError(s, "Unauthorized")
		return
	}

	updated, err := g.store.UpdateText(context.Background(), ev.MessageID, ev.NewText)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			g.sendError(s, "Message not found")
			return
		}
		utils.LogError(err, "UpdateText")
		g.sendError(s, "Failed to edit message")
		return
	}

	g.hub.Broadcast(ev.RoomID, map[string]interface{}{
		"event":     "message_edited",
		"messageId": updated.ID,
		"newText":   updated.Text,
	}, "")
}

func (g *ChatGateway) handleDeleteMessage(s *Session, ev *models.WSEvent) {
	msg, err := g.store.GetByID(context.Background(), ev.MessageID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			g.sendError(s, "Message not found")
			return
		}
		utils.LogError(err, "GetByID")
		g.sendError(s, "Failed to delete message")
		return
	}

	if msg.From != s.UserID {
		g.sendError(s, "Unauthorized")
		return
	}

	if err := g.store.Delete(context.Background(), ev.MessageID); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			g.sendError(s, "Message not found")
			return
		}
		utils.LogError(err, "Delete")
		g.sendError(s, "Failed to delete message")
		return
	}

	g.hub.Broadcast(ev.RoomID, map[string]interface{}{
		"event":     "message_deleted",
		"messageId": ev.MessageID,
	}, "")
}

func (g *ChatGateway) handleClearChat(s *Session, ev *models.WSEvent) {
	if ev.RoomID == "" {
		return
	}

	// Any authenticated member may wipe the room; there is no ownership check.
	count, err := g.store.ClearRoom(context.Background(), ev.RoomID)
	if err != nil {
		utils.LogError(err, "ClearRoom")
		g.sendError(s, "Failed to clear chat")
		return
	}
	log.Printf("Cleared %d messages from room %s", count, ev.RoomID)

	g.hub.Broadcast(ev.RoomID, map[string]interface{}{
		"event": "chat_cleared",
	}, "")
}

// sendError emits a private error event to the requesting connection only.
func (g *ChatGateway) sendError(s *Session, message string) {
	if err := s.Send(map[string]interface{}{
		"event":   "error",
		"message": message,
	}); err != nil {
		utils.LogError(err, "SendError")
	}
}
