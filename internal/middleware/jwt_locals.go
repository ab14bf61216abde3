package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/Windi-Fikriyansyah/anywork_escrow/internal/models"
	"github.com/Windi-Fikriyansyah/anywork_escrow/internal/utils"
)

func claimsFrom(c *fiber.Ctx) (*utils.Claims, bool) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok || token == nil {
		return nil, false
	}
	claims, ok := token.Claims.(*utils.Claims)
	return claims, ok
}

// AttachJWTLocals exposes the caller as the "address" and "role" locals.
func AttachJWTLocals() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := claimsFrom(c)
		if !ok {
			return fiber.ErrUnauthorized
		}

		addr, err := models.ParseAddress(claims.Address)
		if err != nil {
			return fiber.ErrUnauthorized
		}

		c.Locals("address", addr)
		c.Locals("role", strings.ToLower(strings.TrimSpace(claims.Role)))

		return c.Next()
	}
}

// Caller returns the authenticated address, or the zero address.
func Caller(c *fiber.Ctx) models.Address {
	addr, _ := c.Locals("address").(models.Address)
	return addr
}
