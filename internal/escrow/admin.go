package escrow

import (
	"context"
	"errors"
	"fmt"

	"github.com/Windi-Fikriyansyah/anywork_escrow/internal/models"
)

const (
	MaxPlatformFeePercent = 50
	maxDays               = 365
)

func validDays(days int) bool { return days >= 1 && days <= maxDays }

// updateConfig loads the config, checks the caller is the owner, applies fn
// and saves the result.
func (l *Ledger) updateConfig(ctx context.Context, caller models.Address, fn func(o *op, cfg *models.PlatformConfig) error) error {
	return l.mutate(ctx, func(ctx context.Context, o *op) error {
		cfg, err := o.config(ctx)
		if err != nil {
			return err
		}
		if err := l.gate.requireOwner(cfg, caller); err != nil {
			return err
		}
		if err := fn(o, cfg); err != nil {
			return err
		}
		cfg.UpdatedAt = o.now
		if err := o.tx.SaveConfig(ctx, cfg); err != nil {
			return fmt.Errorf("save config: %w", err)
		}
		return nil
	})
}

// SetPlatformFee changes the fee applied to every future payout, including
// jobs already in escrow.
func (l *Ledger) SetPlatformFee(ctx context.Context, caller models.Address, percent int) error {
	return l.updateConfig(ctx, caller, func(_ *op, cfg *models.PlatformConfig) error {
		if percent > MaxPlatformFeePercent {
			return ErrFeeTooHigh
		}
		if percent < 0 {
			return ErrInvalidFee
		}
		cfg.PlatformFeePercent = percent
		return nil
	})
}

func (l *Ledger) SetJobTimeout(ctx context.Context, caller models.Address, days int) error {
	return l.updateConfig(ctx, caller, func(_ *op, cfg *models.PlatformConfig) error {
		if !validDays(days) {
			return ErrInvalidDuration
		}
		cfg.JobTimeoutDays = days
		return nil
	})
}

func (l *Ledger) SetDisputeWindow(ctx context.Context, caller models.Address, days int) error {
	return l.updateConfig(ctx, caller, func(_ *op, cfg *models.PlatformConfig) error {
		if !validDays(days) {
			return ErrInvalidDuration
		}
		cfg.DisputeWindowDays = days
		return nil
	})
}

func (l *Ledger) SetSelfVerification(ctx context.Context, caller models.Address, enabled bool) error {
	return l.updateConfig(ctx, caller, func(_ *op, cfg *models.PlatformConfig) error {
		cfg.SelfVerificationEnabled = enabled
		return nil
	})
}

// SweepFees moves every retained fee into the account of to and returns the
// amount moved.
func (l *Ledger) SweepFees(ctx context.Context, caller, to models.Address) (int64, error) {
	if to.IsZero() {
		return 0, ErrInvalidAddress
	}
	var swept int64
	err := l.updateConfig(ctx, caller, func(o *op, cfg *models.PlatformConfig) error {
		if cfg.CollectedFees <= 0 {
			return ErrNothingToSweep
		}
		swept = cfg.CollectedFees
		cfg.CollectedFees = 0
		if err := o.credit(ctx, to, swept, models.WalletTrxFeeSweep, nil, "Platform fee sweep"); err != nil {
			return err
		}
		o.emit(Event{
			Name:       EventFeesSwept,
			Address:    to,
			Data:       map[string]any{"to": to, "amount": swept},
			Recipients: []models.Address{caller, to},
		})
		return nil
	})
	if err != nil {
		return 0, err
	}
	return swept, nil
}

// FundAccount books money that reached the platform outside the ledger,
// e.g. a confirmed bank or chain deposit, to the account of to.
func (l *Ledger) FundAccount(ctx context.Context, caller, to models.Address, amount int64) error {
	if to.IsZero() {
		return ErrInvalidAddress
	}
	return l.mutate(ctx, func(ctx context.Context, o *op) error {
		cfg, err := o.config(ctx)
		if err != nil {
			return err
		}
		if err := l.gate.requireOwner(cfg, caller); err != nil {
			return err
		}
		if amount <= 0 {
			return ErrNoFundsSent
		}
		if err := o.credit(ctx, to, amount, models.WalletTrxDeposit, nil, "Account funding"); err != nil {
			return err
		}
		o.emit(Event{
			Name:       EventAccountFunded,
			Address:    to,
			Data:       map[string]any{"to": to, "amount": amount},
			Recipients: []models.Address{to},
		})
		return nil
	})
}

// WithdrawBalance pays amount out of the caller's account.
func (l *Ledger) WithdrawBalance(ctx context.Context, caller models.Address, amount int64) error {
	if caller.IsZero() {
		return ErrUnauthorized
	}
	if amount <= 0 {
		return ErrNoFundsSent
	}
	return l.mutate(ctx, func(ctx context.Context, o *op) error {
		if err := o.debit(ctx, caller, amount, models.WalletTrxWithdrawal, nil, "Balance withdrawal"); err != nil {
			return err
		}
		o.emit(Event{
			Name:       EventBalanceWithdrawn,
			Address:    caller,
			Data:       map[string]any{"address": caller, "amount": amount},
			Recipients: []models.Address{caller},
		})
		return nil
	})
}

func (l *Ledger) GetConfig(ctx context.Context) (*models.PlatformConfig, error) {
	var out *models.PlatformConfig
	err := l.view(ctx, func(ctx context.Context, o *op) error {
		cfg, err := o.config(ctx)
		out = cfg
		return err
	})
	return out, err
}

// GetAccount returns a zero-balance account for addresses that never held funds.
func (l *Ledger) GetAccount(ctx context.Context, addr models.Address) (*models.Account, error) {
	var out *models.Account
	err := l.view(ctx, func(ctx context.Context, o *op) error {
		acc, err := o.tx.Account(ctx, addr)
		if errors.Is(err, ErrRecordNotFound) {
			out = &models.Account{Address: addr}
			return nil
		}
		if err != nil {
			return fmt.Errorf("load account: %w", err)
		}
		out = acc
		return nil
	})
	return out, err
}

// WalletHistory returns the newest wallet ledger rows of addr.
func (l *Ledger) WalletHistory(ctx context.Context, addr models.Address, limit int) ([]models.WalletTransaction, error) {
	var out []models.WalletTransaction
	err := l.view(ctx, func(ctx context.Context, o *op) error {
		rows, err := o.tx.WalletHistory(ctx, addr, limit)
		if err != nil {
			return fmt.Errorf("wallet history: %w", err)
		}
		out = rows
		return nil
	})
	return out, err
}
