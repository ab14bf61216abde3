package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Windi-Fikriyansyah/anywork_escrow/internal/escrow"
	"github.com/Windi-Fikriyansyah/anywork_escrow/internal/middleware"
	"github.com/Windi-Fikriyansyah/anywork_escrow/internal/models"
)

type ArtisanHandler struct {
	Ledger *escrow.Ledger
}

func NewArtisanHandler(l *escrow.Ledger) *ArtisanHandler {
	return &ArtisanHandler{Ledger: l}
}

func artisanView(a *models.Artisan) fiber.Map {
	return fiber.Map{
		"address":              a.Address,
		"registered":           a.Registered,
		"verified":             a.Verified,
		"metadata_uri":         a.MetadataURI,
		"identity_verified_at": a.IdentityVerifiedAt,
		"created_at":           a.CreatedAt,
		"updated_at":           a.UpdatedAt,
	}
}

type RegisterArtisanReq struct {
	MetadataURI string `json:"metadata_uri"`
}

func (h *ArtisanHandler) Register(c *fiber.Ctx) error {
	var req RegisterArtisanReq
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	caller := middleware.Caller(c)
	if err := h.Ledger.RegisterArtisan(c.UserContext(), caller, req.MetadataURI); err != nil {
		return fail(c, err)
	}
	return h.respond(c, caller, fiber.StatusCreated)
}

func (h *ArtisanHandler) VerifyIdentity(c *fiber.Ctx) error {
	caller := middleware.Caller(c)
	if err := h.Ledger.VerifyIdentity(c.UserContext(), caller); err != nil {
		return fail(c, err)
	}
	return h.respond(c, caller, fiber.StatusOK)
}

// Get answers for unknown addresses too, with registered=false, the way a
// registry lookup would.
func (h *ArtisanHandler) Get(c *fiber.Ctx) error {
	addr, err := models.ParseAddress(c.Params("address"))
	if err != nil {
		return fail(c, escrow.ErrInvalidAddress)
	}
	return h.respond(c, addr, fiber.StatusOK)
}

type SetVerifiedReq struct {
	Verified *bool `json:"verified"`
}

func (h *ArtisanHandler) SetVerified(c *fiber.Ctx) error {
	addr, err := models.ParseAddress(c.Params("address"))
	if err != nil {
		return fail(c, escrow.ErrInvalidAddress)
	}
	var req SetVerifiedReq
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	if req.Verified == nil {
		errs := FieldErrors{}
		errs.Add("verified", "verified is required")
		return validationFail(c, errs)
	}

	if err := h.Ledger.SetArtisanVerified(c.UserContext(), middleware.Caller(c), addr, *req.Verified); err != nil {
		return fail(c, err)
	}
	return h.respond(c, addr, fiber.StatusOK)
}

func (h *ArtisanHandler) respond(c *fiber.Ctx, addr models.Address, status int) error {
	a, ok, err := h.Ledger.GetArtisan(c.UserContext(), addr)
	if err != nil {
		return fail(c, err)
	}
	if !ok {
		a = &models.Artisan{Address: addr}
	}
	return c.Status(status).JSON(fiber.Map{
		"success": true,
		"data":    artisanView(a),
	})
}
