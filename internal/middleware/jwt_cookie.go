package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Windi-Fikriyansyah/anywork_escrow/internal/utils"
)

const TokenCookie = "aw_token"

// JWTFromCookie reads the session token from the cookie, falling back to an
// Authorization: Bearer header for non-browser clients.
func JWTFromCookie(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenStr := c.Cookies(TokenCookie)
		if tokenStr == "" {
			tokenStr = bearer(c.Get(fiber.HeaderAuthorization))
		}
		if tokenStr == "" {
			return fiber.ErrUnauthorized
		}

		token, _, err := utils.ParseJWT(secret, tokenStr)
		if err != nil {
			return fiber.ErrUnauthorized
		}

		c.Locals("user", token)
		return c.Next()
	}
}

func bearer(h string) string {
	const prefix = "bearer "
	if len(h) > len(prefix) && strings.ToLower(h[:len(prefix)]) == prefix {
		return strings.TrimSpace(h[len(prefix):])
	}
	return ""
}
