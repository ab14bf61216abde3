package handlers

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Windi-Fikriyansyah/anywork_escrow/internal/escrow"
	"github.com/Windi-Fikriyansyah/anywork_escrow/internal/middleware"
	"github.com/Windi-Fikriyansyah/anywork_escrow/internal/models"
	"github.com/Windi-Fikriyansyah/anywork_escrow/internal/utils"
)

// Nonces issues single-use login challenges.
type Nonces interface {
	Issue(ctx context.Context, addr models.Address) (string, error)
	Consume(ctx context.Context, addr models.Address, nonce string) error
}

type AuthHandler struct {
	Ledger       *escrow.Ledger
	Nonces       Nonces
	JWTSecret    string
	Expires      time.Duration
	SecureCookie bool
}

type ChallengeReq struct {
	Address string `json:"address"`
}

// Challenge hands out the message the wallet has to sign.
func (h *AuthHandler) Challenge(c *fiber.Ctx) error {
	var req ChallengeReq
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	addr, err := models.ParseAddress(req.Address)
	if err != nil {
		errs := FieldErrors{}
		errs.Add("address", "Invalid wallet address")
		return validationFail(c, errs)
	}

	nonce, err := h.Nonces.Issue(c.UserContext(), addr)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"address": addr,
			"nonce":   nonce,
			"message": utils.LoginMessage(addr, nonce),
		},
	})
}

type LoginReq struct {
	Address   string `json:"address"`
	Nonce     string `json:"nonce"`
	Signature string `json:"signature"`
}

// Login checks the signed challenge and starts a session for the signer.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginReq
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	errs := FieldErrors{}
	addr, err := models.ParseAddress(req.Address)
	if err != nil {
		errs.Add("address", "Invalid wallet address")
	}
	nonce := strings.TrimSpace(req.Nonce)
	if nonce == "" {
		errs.Add("nonce", "Nonce is required")
	}
	if strings.TrimSpace(req.Signature) == "" {
		errs.Add("signature", "Signature is required")
	}
	if len(errs) > 0 {
		return validationFail(c, errs)
	}

	ctx := c.UserContext()
	if err := h.Nonces.Consume(ctx, addr, nonce); err != nil {
		return fail(c, err)
	}
	signer, err := utils.RecoverSigner(utils.LoginMessage(addr, nonce), strings.TrimSpace(req.Signature))
	if err != nil {
		return fail(c, err)
	}
	if signer != addr {
		return fail(c, utils.ErrBadSignature)
	}

	role := utils.RoleMember
	cfg, err := h.Ledger.GetConfig(ctx)
	if err != nil {
		return fail(c, err)
	}
	if cfg.Owner == addr {
		role = utils.RoleOwner
	}

	token, err := utils.SignJWT(h.JWTSecret, addr.String(), role, h.Expires)
	if err != nil {
		return fail(c, err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     middleware.TokenCookie,
		Value:    token,
		Path:     "/",
		HTTPOnly: true,
		Secure:   h.SecureCookie,
		SameSite: "Lax",
		MaxAge:   int(h.Expires / time.Second),
	})

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Login successful",
		"data": fiber.Map{
			"address": addr,
			"role":    role,
			"token":   token,
		},
	})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.TokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   h.SecureCookie,
		SameSite: "Lax",
	})

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Logout successful",
	})
}
