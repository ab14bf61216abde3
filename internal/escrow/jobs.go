package escrow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Windi-Fikriyansyah/anywork_escrow/internal/models"
)

// CreateJob moves amount from the caller's account into escrow for a new job
// with artisan and returns the job id.
func (l *Ledger) CreateJob(ctx context.Context, caller, artisan models.Address, description string, amount int64) (uint64, error) {
	if caller.IsZero() {
		return 0, ErrUnauthorized
	}
	if amount <= 0 {
		return 0, ErrNoFundsSent
	}
	if caller == artisan {
		return 0, ErrSelfHireNotAllowed
	}
	description = strings.TrimSpace(description)

	var id uint64
	err := l.mutate(ctx, func(ctx context.Context, o *op) error {
		a, err := o.tx.Artisan(ctx, artisan)
		if errors.Is(err, ErrRecordNotFound) {
			return ErrArtisanNotRegistered
		}
		if err != nil {
			return fmt.Errorf("load artisan: %w", err)
		}
		if !a.CanBeHired() {
			if !a.Registered {
				return ErrArtisanNotRegistered
			}
			return ErrArtisanNotVerified
		}

		cfg, err := o.config(ctx)
		if err != nil {
			return err
		}
		id = cfg.NextJobID
		cfg.NextJobID++
		cfg.UpdatedAt = o.now
		if err := o.tx.SaveConfig(ctx, cfg); err != nil {
			return fmt.Errorf("save config: %w", err)
		}

		if err := o.debit(ctx, caller, amount, models.WalletTrxEscrowLock, jobRef(id), fmt.Sprintf("Escrow deposit for job #%d", id)); err != nil {
			return err
		}

		job := &models.Job{
			ID:          id,
			Client:      caller,
			Artisan:     artisan,
			Amount:      amount,
			Deposit:     amount,
			Description: description,
			Status:      models.JobActive,
			CreatedAt:   o.now,
			UpdatedAt:   o.now,
		}
		if err := o.tx.InsertJob(ctx, job); err != nil {
			return fmt.Errorf("insert job: %w", err)
		}
		o.transitions = append(o.transitions, models.JobActive)

		o.emit(Event{
			Name:    EventJobCreated,
			JobID:   jobRef(id),
			Address: caller,
			Data: map[string]any{
				"job_id":      id,
				"client":      caller,
				"artisan":     artisan,
				"amount":      amount,
				"description": description,
			},
			Recipients: []models.Address{caller, artisan},
		})
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// CompleteJob is the client's sign-off. It moves no funds.
func (l *Ledger) CompleteJob(ctx context.Context, caller models.Address, jobID uint64) error {
	return l.mutate(ctx, func(ctx context.Context, o *op) error {
		job, err := o.job(ctx, jobID)
		if err != nil {
			return err
		}
		if err := l.gate.requireClient(job, caller); err != nil {
			return err
		}
		if job.Status != models.JobActive {
			return ErrInvalidJobState
		}
		if err := o.moveJob(job, models.JobCompleted); err != nil {
			return err
		}
		if err := o.tx.SaveJob(ctx, job); err != nil {
			return fmt.Errorf("save job: %w", err)
		}

		o.emit(Event{
			Name:       EventJobCompleted,
			JobID:      jobRef(job.ID),
			Address:    caller,
			Data:       map[string]any{"job_id": job.ID},
			Recipients: []models.Address{job.Client, job.Artisan},
		})
		return nil
	})
}

// WithdrawJobPayment pays the artisan of a completed job, minus the fee.
func (l *Ledger) WithdrawJobPayment(ctx context.Context, caller models.Address, jobID uint64) error {
	return l.mutate(ctx, func(ctx context.Context, o *op) error {
		job, err := o.job(ctx, jobID)
		if err != nil {
			return err
		}
		if err := l.gate.requireArtisan(job, caller); err != nil {
			return err
		}
		if job.Status != models.JobCompleted {
			return ErrInvalidJobState
		}
		return l.release(ctx, o, job)
	})
}

// CancelJob refunds the client in full. The client may cancel an active job
// at any time; the artisan only once the job has timed out.
func (l *Ledger) CancelJob(ctx context.Context, caller models.Address, jobID uint64) error {
	return l.mutate(ctx, func(ctx context.Context, o *op) error {
		job, err := o.job(ctx, jobID)
		if err != nil {
			return err
		}

		switch {
		case l.gate.IsJobClient(job, caller):
			if job.Status != models.JobActive {
				return ErrInvalidJobState
			}
		case l.gate.IsJobArtisan(job, caller):
			if job.Status != models.JobActive {
				return ErrInvalidJobState
			}
			cfg, err := o.config(ctx)
			if err != nil {
				return err
			}
			if o.now.Before(job.CreatedAt.Add(cfg.JobTimeout())) {
				return ErrInvalidJobState
			}
		default:
			return ErrUnauthorized
		}
		return l.refund(ctx, o, job, models.JobCancelled, caller)
	})
}

// ClaimJobAfterTimeout lets the artisan start the payout clock on a job the
// client never completed. The client keeps a dispute window after this.
func (l *Ledger) ClaimJobAfterTimeout(ctx context.Context, caller models.Address, jobID uint64) error {
	return l.mutate(ctx, func(ctx context.Context, o *op) error {
		job, err := o.job(ctx, jobID)
		if err != nil {
			return err
		}
		if err := l.gate.requireArtisan(job, caller); err != nil {
			return err
		}
		if job.Status != models.JobActive {
			return ErrInvalidJobState
		}
		cfg, err := o.config(ctx)
		if err != nil {
			return err
		}
		if o.now.Before(job.CreatedAt.Add(cfg.JobTimeout())) {
			return ErrTimeoutNotReached
		}
		if !job.ClaimedAt.IsZero() {
			return ErrInvalidJobState
		}

		if err := o.moveJob(job, models.JobClaimedByArtisan); err != nil {
			return err
		}
		job.ClaimedAt = o.now
		if err := o.tx.SaveJob(ctx, job); err != nil {
			return fmt.Errorf("save job: %w", err)
		}

		o.emit(statusChanged(job, caller))
		return nil
	})
}

// DisputeClaimedJob refunds the client if the artisan's claim is still
// inside the dispute window.
func (l *Ledger) DisputeClaimedJob(ctx context.Context, caller models.Address, jobID uint64) error {
	return l.mutate(ctx, func(ctx context.Context, o *op) error {
		job, err := o.job(ctx, jobID)
		if err != nil {
			return err
		}
		if err := l.gate.requireClient(job, caller); err != nil {
			return err
		}
		if job.Status != models.JobClaimedByArtisan {
			return ErrInvalidJobState
		}
		cfg, err := o.config(ctx)
		if err != nil {
			return err
		}
		if o.now.After(job.ClaimedAt.Add(cfg.DisputeWindow())) {
			return ErrDisputeWindowClosed
		}
		return l.refund(ctx, o, job, models.JobDisputed, caller)
	})
}

// FinalizeClaimedJob pays the artisan once the dispute window has passed.
func (l *Ledger) FinalizeClaimedJob(ctx context.Context, caller models.Address, jobID uint64) error {
	return l.mutate(ctx, func(ctx context.Context, o *op) error {
		job, err := o.job(ctx, jobID)
		if err != nil {
			return err
		}
		if err := l.gate.requireArtisan(job, caller); err != nil {
			return err
		}
		if job.Status != models.JobClaimedByArtisan {
			return ErrInvalidJobState
		}
		cfg, err := o.config(ctx)
		if err != nil {
			return err
		}
		if !o.now.After(job.ClaimedAt.Add(cfg.DisputeWindow())) {
			return ErrDisputeWindowStillOpen
		}
		return l.release(ctx, o, job)
	})
}

// release zeroes the job and marks it withdrawn before crediting the artisan.
// The fee percent is read now, not when the job was created.
func (l *Ledger) release(ctx context.Context, o *op, job *models.Job) error {
	cfg, err := o.config(ctx)
	if err != nil {
		return err
	}
	amount := job.Amount
	if amount <= 0 {
		return ErrInvalidJobState
	}
	net, fee := splitPayout(amount, cfg.PlatformFeePercent)

	if err := o.moveJob(job, models.JobWithdrawn); err != nil {
		return err
	}
	job.Amount = 0
	if err := o.tx.SaveJob(ctx, job); err != nil {
		return fmt.Errorf("save job: %w", err)
	}
	cfg.CollectedFees += fee
	cfg.UpdatedAt = o.now
	if err := o.tx.SaveConfig(ctx, cfg); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	if net > 0 {
		desc := fmt.Sprintf("Payment for job #%d", job.ID)
		if err := o.credit(ctx, job.Artisan, net, models.WalletTrxPayout, jobRef(job.ID), desc); err != nil {
			return err
		}
	}

	o.emit(Event{
		Name:    EventPaymentReleased,
		JobID:   jobRef(job.ID),
		Address: job.Artisan,
		Data: map[string]any{
			"job_id":      job.ID,
			"amount":      net,
			"fee":         fee,
			"fee_percent": cfg.PlatformFeePercent,
		},
		Recipients: []models.Address{job.Client, job.Artisan},
	})
	return nil
}

// refund zeroes the job, moves it to a terminal status and returns the full
// amount to the client.
func (l *Ledger) refund(ctx context.Context, o *op, job *models.Job, to models.JobStatus, caller models.Address) error {
	amount := job.Amount
	if amount <= 0 {
		return ErrInvalidJobState
	}
	if err := o.moveJob(job, to); err != nil {
		return err
	}
	job.Amount = 0
	if err := o.tx.SaveJob(ctx, job); err != nil {
		return fmt.Errorf("save job: %w", err)
	}

	desc := fmt.Sprintf("Refund for job #%d (%s)", job.ID, to)
	if err := o.credit(ctx, job.Client, amount, models.WalletTrxRefund, jobRef(job.ID), desc); err != nil {
		return err
	}

	ev := statusChanged(job, caller)
	ev.Data["refunded"] = amount
	o.emit(ev)
	return nil
}

func statusChanged(job *models.Job, caller models.Address) Event {
	return Event{
		Name:       EventJobStatusChanged,
		JobID:      jobRef(job.ID),
		Address:    caller,
		Data:       map[string]any{"job_id": job.ID, "status": job.Status.String()},
		Recipients: []models.Address{job.Client, job.Artisan},
	}
}

func (l *Ledger) GetJob(ctx context.Context, jobID uint64) (*models.Job, error) {
	var out *models.Job
	err := l.view(ctx, func(ctx context.Context, o *op) error {
		job, err := o.job(ctx, jobID)
		out = job
		return err
	})
	return out, err
}

// ListJobs returns the jobs addr is client or artisan of, newest first.
func (l *Ledger) ListJobs(ctx context.Context, addr models.Address) ([]models.Job, error) {
	var out []models.Job
	err := l.view(ctx, func(ctx context.Context, o *op) error {
		jobs, err := o.tx.JobsByParty(ctx, addr)
		if err != nil {
			return fmt.Errorf("list jobs: %w", err)
		}
		out = jobs
		return nil
	})
	return out, err
}
