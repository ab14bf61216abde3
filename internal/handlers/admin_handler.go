package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Windi-Fikriyansyah/anywork_escrow/internal/escrow"
	"github.com/Windi-Fikriyansyah/anywork_escrow/internal/middleware"
	"github.com/Windi-Fikriyansyah/anywork_escrow/internal/models"
)

// AdminHandler serves the platform settings. Everything except GetConfig is
// owner-only, which the ledger enforces.
type AdminHandler struct {
	Ledger *escrow.Ledger
}

func NewAdminHandler(l *escrow.Ledger) *AdminHandler {
	return &AdminHandler{Ledger: l}
}

func configView(cfg *models.PlatformConfig) fiber.Map {
	return fiber.Map{
		"owner":                     cfg.Owner,
		"platform_fee_percent":      cfg.PlatformFeePercent,
		"job_timeout_days":          cfg.JobTimeoutDays,
		"dispute_window_days":       cfg.DisputeWindowDays,
		"self_verification_enabled": cfg.SelfVerificationEnabled,
		"collected_fees":            cfg.CollectedFees,
		"next_job_id":               cfg.NextJobID,
		"updated_at":                cfg.UpdatedAt,
	}
}

func (h *AdminHandler) GetConfig(c *fiber.Ctx) error {
	cfg, err := h.Ledger.GetConfig(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    configView(cfg),
	})
}

type SetFeeReq struct {
	Percent *int `json:"percent"`
}

func (h *AdminHandler) SetFee(c *fiber.Ctx) error {
	var req SetFeeReq
	if err := c.BodyParser(&req); err != nil || req.Percent == nil {
		return invalidBody(c)
	}
	if err := h.Ledger.SetPlatformFee(c.UserContext(), middleware.Caller(c), *req.Percent); err != nil {
		return fail(c, err)
	}
	return h.GetConfig(c)
}

type SetDaysReq struct {
	Days *int `json:"days"`
}

func (h *AdminHandler) SetTimeout(c *fiber.Ctx) error {
	var req SetDaysReq
	if err := c.BodyParser(&req); err != nil || req.Days == nil {
		return invalidBody(c)
	}
	if err := h.Ledger.SetJobTimeout(c.UserContext(), middleware.Caller(c), *req.Days); err != nil {
		return fail(c, err)
	}
	return h.GetConfig(c)
}

func (h *AdminHandler) SetDisputeWindow(c *fiber.Ctx) error {
	var req SetDaysReq
	if err := c.BodyParser(&req); err != nil || req.Days == nil {
		return invalidBody(c)
	}
	if err := h.Ledger.SetDisputeWindow(c.UserContext(), middleware.Caller(c), *req.Days); err != nil {
		return fail(c, err)
	}
	return h.GetConfig(c)
}

type SetSelfVerificationReq struct {
	Enabled *bool `json:"enabled"`
}

func (h *AdminHandler) SetSelfVerification(c *fiber.Ctx) error {
	var req SetSelfVerificationReq
	if err := c.BodyParser(&req); err != nil || req.Enabled == nil {
		return invalidBody(c)
	}
	if err := h.Ledger.SetSelfVerification(c.UserContext(), middleware.Caller(c), *req.Enabled); err != nil {
		return fail(c, err)
	}
	return h.GetConfig(c)
}

type SweepReq struct {
	To string `json:"to"`
}

// SweepFees pays retained fees to the given address, or to the owner when
// none is given.
func (h *AdminHandler) SweepFees(c *fiber.Ctx) error {
	var req SweepReq
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return invalidBody(c)
		}
	}
	caller := middleware.Caller(c)
	to := caller
	if req.To != "" {
		addr, err := models.ParseAddress(req.To)
		if err != nil {
			return fail(c, escrow.ErrInvalidAddress)
		}
		to = addr
	}

	swept, err := h.Ledger.SweepFees(c.UserContext(), caller, to)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"to":     to,
			"amount": swept,
		},
	})
}

type FundReq struct {
	Amount int64 `json:"amount"`
}

func (h *AdminHandler) FundAccount(c *fiber.Ctx) error {
	addr, err := models.ParseAddress(c.Params("address"))
	if err != nil {
		return fail(c, escrow.ErrInvalidAddress)
	}
	var req FundReq
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	ctx := c.UserContext()
	if err := h.Ledger.FundAccount(ctx, middleware.Caller(c), addr, req.Amount); err != nil {
		return fail(c, err)
	}
	acc, err := h.Ledger.GetAccount(ctx, addr)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    acc,
	})
}
