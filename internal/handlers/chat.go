package handlers

import (
	"net/http"

	"carechat-backend/internal/chat"
	"carechat-backend/internal/models"
	"carechat-backend/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ChatHistoryHandler returns the full message history between the
// authenticated user and the peer, oldest first. Clients call it once to seed
// the chat view before the live events start arriving.
func ChatHistoryHandler(store services.MessageStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		peerID := c.Params("peer_id")
		if peerID == "" {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "peer_id required"})
		}

		roomID := chat.DeriveRoomID(userID, peerID)
		messages, err := store.ListByRoom(c.Context(), roomID)
		if err != nil {
			return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch messages"})
		}
		if messages == nil {
			messages = []models.Message{}
		}

		return c.JSON(models.RoomHistory{RoomID: roomID, Messages: messages})
	}
}

// ListUsersHandler lists chat peers with their online status.
func ListUsersHandler(userService *services.UserService, hub *Hub) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authUserID := c.Locals("user_id").(string)

		users, err := userService.ListUsers(c.Context())
		if err != nil {
			return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch users"})
		}

		resp := []map[string]interface{}{}
		for _, u := range users {
			if u.ID == authUserID {
				continue
			}
			status := "offline"
			if hub.IsUserOnline(u.ID) {
				status = "online"
			}
			resp = append(resp, map[string]interface{}{
				"id":         u.ID,
				"name":       u.Name,
				"role":       u.Role,
				"created_at": u.CreatedAt,
				"status":     status,
			})
		}

		return c.JSON(resp)
	}
}
