package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/Windi-Fikriyansyah/anywork_escrow/internal/escrow"
	"github.com/Windi-Fikriyansyah/anywork_escrow/internal/realtime"
	"github.com/Windi-Fikriyansyah/anywork_escrow/internal/utils"
)

type errorMapping struct {
	err    error
	status int
	code   string
}

var errorTable = []errorMapping{
	{escrow.ErrUnauthorized, fiber.StatusForbidden, "unauthorized"},
	{escrow.ErrArtisanNotRegistered, fiber.StatusNotFound, "artisan_not_registered"},
	{escrow.ErrJobNotFound, fiber.StatusNotFound, "job_not_found"},
	{escrow.ErrArtisanNotVerified, fiber.StatusConflict, "artisan_not_verified"},
	{escrow.ErrInvalidJobState, fiber.StatusConflict, "invalid_job_state"},
	{escrow.ErrTimeoutNotReached, fiber.StatusConflict, "timeout_not_reached"},
	{escrow.ErrDisputeWindowClosed, fiber.StatusConflict, "dispute_window_closed"},
	{escrow.ErrDisputeWindowStillOpen, fiber.StatusConflict, "dispute_window_still_open"},
	{escrow.ErrNothingToSweep, fiber.StatusConflict, "nothing_to_sweep"},
	{escrow.ErrInsufficientBalance, fiber.StatusConflict, "insufficient_balance"},
	{escrow.ErrNoFundsSent, fiber.StatusBadRequest, "no_funds_sent"},
	{escrow.ErrSelfHireNotAllowed, fiber.StatusBadRequest, "self_hire_not_allowed"},
	{escrow.ErrFeeTooHigh, fiber.StatusBadRequest, "fee_too_high"},
	{escrow.ErrInvalidFee, fiber.StatusBadRequest, "invalid_fee"},
	{escrow.ErrInvalidDuration, fiber.StatusBadRequest, "invalid_duration"},
	{escrow.ErrInvalidAddress, fiber.StatusBadRequest, "invalid_address"},
	{escrow.ErrNotBootstrapped, fiber.StatusServiceUnavailable, "not_bootstrapped"},
	{realtime.ErrNonceNotFound, fiber.StatusUnauthorized, "challenge_expired"},
	{utils.ErrBadSignature, fiber.StatusUnauthorized, "bad_signature"},
}

// fail writes err as a JSON error response. Errors the API does not know are
// logged and reported as 500 without detail.
func fail(c *fiber.Ctx, err error) error {
	for _, m := range errorTable {
		if errors.Is(err, m.err) {
			return c.Status(m.status).JSON(fiber.Map{
				"success": false,
				"code":    m.code,
				"message": m.err.Error(),
			})
		}
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{
			"success": false,
			"message": fe.Message,
		})
	}

	log.Printf("%s %s: %v", c.Method(), c.Path(), err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"success": false,
		"message": "Internal server error",
	})
}

// ErrorHandler is the app-wide fiber.Config.ErrorHandler.
func ErrorHandler(c *fiber.Ctx, err error) error {
	return fail(c, err)
}

type FieldErrors map[string][]string

func (e FieldErrors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

func validationFail(c *fiber.Ctx, errs FieldErrors) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"message": "Validation error",
		"errors":  errs,
	})
}

func invalidBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"message": "invalid body",
	})
}
