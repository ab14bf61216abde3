package handlers

import (
	"context"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Windi-Fikriyansyah/anywork_escrow/internal/escrow"
	"github.com/Windi-Fikriyansyah/anywork_escrow/internal/middleware"
	"github.com/Windi-Fikriyansyah/anywork_escrow/internal/models"
)

type JobHandler struct {
	Ledger *escrow.Ledger
}

func NewJobHandler(l *escrow.Ledger) *JobHandler {
	return &JobHandler{Ledger: l}
}

func jobView(j *models.Job) fiber.Map {
	v := fiber.Map{
		"id":          j.ID,
		"client":      j.Client,
		"artisan":     j.Artisan,
		"amount":      j.Amount,
		"deposit":     j.Deposit,
		"description": j.Description,
		"status":      j.Status,
		"completed":   j.Completed(),
		"paid":        j.Paid(),
		"created_at":  j.CreatedAt,
		"updated_at":  j.UpdatedAt,
		"claimed_at":  nil,
	}
	if !j.ClaimedAt.IsZero() {
		v["claimed_at"] = j.ClaimedAt
	}
	return v
}

func jobID(c *fiber.Ctx) (uint64, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid job id")
	}
	return id, nil
}

type CreateJobReq struct {
	Artisan     string `json:"artisan"`
	Description string `json:"description"`
	Amount      int64  `json:"amount"`
}

func (h *JobHandler) Create(c *fiber.Ctx) error {
	var req CreateJobReq
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	errs := FieldErrors{}
	artisan, err := models.ParseAddress(req.Artisan)
	if err != nil {
		errs.Add("artisan", "Invalid artisan address")
	}
	if len(strings.TrimSpace(req.Description)) > 2000 {
		errs.Add("description", "Description must be at most 2000 characters")
	}
	if len(errs) > 0 {
		return validationFail(c, errs)
	}

	ctx := c.UserContext()
	id, err := h.Ledger.CreateJob(ctx, middleware.Caller(c), artisan, req.Description, req.Amount)
	if err != nil {
		return fail(c, err)
	}
	job, err := h.Ledger.GetJob(ctx, id)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    jobView(job),
	})
}

func (h *JobHandler) Get(c *fiber.Ctx) error {
	id, err := jobID(c)
	if err != nil {
		return fail(c, err)
	}
	job, err := h.Ledger.GetJob(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    jobView(job),
	})
}

// ListMine returns the jobs the caller is a party to.
func (h *JobHandler) ListMine(c *fiber.Ctx) error {
	jobs, err := h.Ledger.ListJobs(c.UserContext(), middleware.Caller(c))
	if err != nil {
		return fail(c, err)
	}
	out := make([]fiber.Map, 0, len(jobs))
	for i := range jobs {
		out = append(out, jobView(&jobs[i]))
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    out,
	})
}

type jobAction func(l *escrow.Ledger, ctx context.Context, caller models.Address, id uint64) error

// action adapts a ledger job operation to a route that returns the job
// after the change.
func (h *JobHandler) action(fn jobAction) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := jobID(c)
		if err != nil {
			return fail(c, err)
		}
		ctx := c.UserContext()
		if err := fn(h.Ledger, ctx, middleware.Caller(c), id); err != nil {
			return fail(c, err)
		}
		job, err := h.Ledger.GetJob(ctx, id)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{
			"success": true,
			"data":    jobView(job),
		})
	}
}

func (h *JobHandler) Complete() fiber.Handler { return h.action((*escrow.Ledger).CompleteJob) }
func (h *JobHandler) Withdraw() fiber.Handler { return h.action((*escrow.Ledger).WithdrawJobPayment) }
func (h *JobHandler) Cancel() fiber.Handler { return h.action((*escrow.Ledger).CancelJob) }
func (h *JobHandler) Claim() fiber.Handler { return h.action((*escrow.Ledger).ClaimJobAfterTimeout) }
func (h *JobHandler) Dispute() fiber.Handler { return h.action((*escrow.Ledger).DisputeClaimedJob) }
func (h *JobHandler) Finalize() fiber.Handler { return h.action((*escrow.Ledger).FinalizeClaimedJob) }
