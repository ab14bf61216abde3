package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/Windi-Fikriyansyah/anywork_escrow/internal/models"
	"github.com/Windi-Fikriyansyah/anywork_escrow/internal/utils"
)

// WebSocketAuth admits upgrade requests carrying a valid token in the
// "token" query parameter, since browsers cannot set headers on them.
func WebSocketAuth(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		_, claims, err := utils.ParseJWT(secret, c.Query("token"))
		if err != nil {
			return fiber.ErrUnauthorized
		}
		addr, err := models.ParseAddress(claims.Address)
		if err != nil {
			return fiber.ErrUnauthorized
		}
		c.Locals("address", addr)
		return c.Next()
	}
}
