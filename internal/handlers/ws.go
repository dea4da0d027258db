package handlers

import (
	"log"

	"carechat-backend/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// WebSocketHandler runs the read loop for one chat connection. Connections
// whose handshake carried no resolvable identity stay open but inert: frames
// are read and discarded and nothing is registered.
func WebSocketHandler(gateway *ChatGateway) fiber.Handler {
	return websocket.New(func(c *websocket.Conn) {
		defer c.Close()

		userID, _ := c.Locals("user_id").(string)
		if userID == "" {
			drain(c)
			return
		}
		name, _ := c.Locals("name").(string)

		session := NewSession(uuid.New().String(), userID, name, c)
		gateway.Hub().Register(session)
		defer gateway.Hub().Unregister(session)

		for {
			msgType, msg, err := c.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					log.Printf("error: %v", err)
				}
				break
			}
			if msgType != websocket.TextMessage {
				continue
			}
			gateway.HandleEvent(session, msg)
		}
	})
}

// drain consumes frames from an anonymous socket until it closes.
func drain(c *websocket.Conn) {
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			return
		}
	}
}

// WSUpgradeMiddleware rejects non-WebSocket requests on the /ws route.
func WSUpgradeMiddleware(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		c.Locals("allowed", true)
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// AuthMiddleware verifies the JWT token and stores the identity in locals.
// Used on the HTTP API routes, where a missing token is a hard failure.
func AuthMiddleware(c *fiber.Ctx) error {
	claims, err := resolveClaims(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, err.Error())
	}
	storeClaims(c, claims)
	if c.Locals("user_id") == nil {
		return fiber.NewError(fiber.StatusUnauthorized, "Invalid token claims")
	}
	return c.Next()
}

// OptionalAuthMiddleware resolves the identity when a valid token is present
// but lets the request through either way. The WS route uses it so anonymous
// sockets complete the upgrade and are then ignored by the handler.
func OptionalAuthMiddleware(c *fiber.Ctx) error {
	if claims, err := resolveClaims(c); err == nil {
		storeClaims(c, claims)
	}
	return c.Next()
}

func resolveClaims(c *fiber.Ctx) (map[string]interface{}, error) {
	// Token comes from the query param `access_token` or the Authorization
	// header.
	token := c.Query("access_token")
	if token == "" {
		authHeader := c.Get("Authorization")
		if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
			token = authHeader[7:]
		}
	}

	if token == "" {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Missing token")
	}

	claims, err := services.ValidateToken(token)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
	}
	return claims, nil
}

func storeClaims(c *fiber.Ctx, claims map[string]interface{}) {
	if uid, ok := claims["user_id"].(string); ok && uid != "" {
		c.Locals("user_id", uid)
	}
	if n, ok := claims["name"].(string); ok {
		c.Locals("name", n)
	}
	if r, ok := claims["role"].(string); ok {
		c.Locals("role", r)
	}
}
