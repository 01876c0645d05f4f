package handler

import (
	"os"

	"socioscope-be/internal/pkg/logger"
	internalWS "socioscope-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// QueryEventHandler upgrades authenticated clients to a websocket that
// receives query lifecycle events.
type QueryEventHandler struct {
	hub    *internalWS.Hub
	logger logger.ILogger
}

func NewQueryEventHandler(hub *internalWS.Hub, log logger.ILogger) *QueryEventHandler {
	return &QueryEventHandler{
		hub:    hub,
		logger: log,
	}
}

// ServeWs handles websocket requests from the peer.
func (h *QueryEventHandler) ServeWs(c *fiber.Ctx) error {
	// Token comes from the query string (browser standard) or the
	// Authorization header (tooling).
	tokenStr := c.Query("token")
	if tokenStr == "" {
		authHeader := c.Get("Authorization")
		if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
			tokenStr = authHeader[7:]
		}
	}

	if tokenStr == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Missing token (Query 'token' or Header 'Authorization')"})
	}

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.ErrUnauthorized
		}
		return []byte(os.Getenv("JWT_SECRET")), nil
	})

	if err != nil || !token.Valid {
		h.logger.Warn("QueryEventHandler", "Invalid Token in WS Handshake", map[string]interface{}{"error": err})
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token claims"})
	}

	analystIDStr, ok := claims["analyst_id"].(string)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Token missing analyst_id"})
	}

	analystID, err := uuid.Parse(analystIDStr)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid analyst ID format in token"})
	}

	if websocket.IsWebSocketUpgrade(c) {
		return websocket.New(func(c *websocket.Conn) {
			h.logger.Info("QueryEventHandler", "Starting WebSocket session", map[string]interface{}{"analyst_id": analystID})
			internalWS.ServeWs(h.hub, c, analystID)
			h.logger.Info("QueryEventHandler", "WebSocket session ended", map[string]interface{}{"analyst_id": analystID})
		})(c)
	}
	return fiber.ErrUpgradeRequired
}

// RegisterRoutes registers the websocket route.
func (h *QueryEventHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/ws", h.ServeWs)
}
