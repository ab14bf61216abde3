package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Windi-Fikriyansyah/anywork_escrow/internal/escrow"
	"github.com/Windi-Fikriyansyah/anywork_escrow/internal/middleware"
)

type WalletHandler struct {
	Ledger *escrow.Ledger
}

func NewWalletHandler(l *escrow.Ledger) *WalletHandler {
	return &WalletHandler{Ledger: l}
}

// Get returns the caller's balance and latest wallet entries (?limit=, max 200).
func (h *WalletHandler) Get(c *fiber.Ctx) error {
	ctx := c.UserContext()
	caller := middleware.Caller(c)

	acc, err := h.Ledger.GetAccount(ctx, caller)
	if err != nil {
		return fail(c, err)
	}
	history, err := h.Ledger.WalletHistory(ctx, caller, c.QueryInt("limit", 50))
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"address":      acc.Address,
			"balance":      acc.Balance,
			"transactions": history,
		},
	})
}

type WithdrawReq struct {
	Amount int64 `json:"amount"`
}

func (h *WalletHandler) Withdraw(c *fiber.Ctx) error {
	var req WithdrawReq
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	ctx := c.UserContext()
	caller := middleware.Caller(c)
	if err := h.Ledger.WithdrawBalance(ctx, caller, req.Amount); err != nil {
		return fail(c, err)
	}
	acc, err := h.Ledger.GetAccount(ctx, caller)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    acc,
	})
}
