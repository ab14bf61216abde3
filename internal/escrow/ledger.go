// Package escrow implements the job escrow state machine together with the
// artisan registry and the owner-controlled platform settings.
//
// Every mutating call is serialized behind one lock, reads the clock once,
// and runs inside a single store transaction: either all of its effects
// (status, amounts, balances, event log) commit, or none do.
package escrow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/Windi-Fikriyansyah/anywork_escrow/internal/clock"
	"github.com/Windi-Fikriyansyah/anywork_escrow/internal/models"
)

type Ledger struct {
	mu sync.Mutex

	store    Store
	clock    clock.Clock
	gate     Gate
	pub      Publisher
	recorder Recorder
}

type Option func(*Ledger)

func WithPublisher(p Publisher) Option {
	return func(l *Ledger) { l.pub = p }
}

func WithRecorder(r Recorder) Option {
	return func(l *Ledger) { l.recorder = r }
}

func New(store Store, clk clock.Clock, opts ...Option) *Ledger {
	l := &Ledger{
		store:    store,
		clock:    clk,
		pub:      nopPublisher{},
		recorder: nopRecorder{},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// op carries one transaction's context: the single clock reading and the
// side effects to report once it commits.
type op struct {
	tx          Tx
	now         time.Time
	events      []Event
	transitions []models.JobStatus
	moves       []models.WalletTransaction
}

func (o *op) emit(ev Event) {
	ev.ID = uuid.New()
	ev.At = o.now
	o.events = append(o.events, ev)
}

func (o *op) config(ctx context.Context) (*models.PlatformConfig, error) {
	cfg, err := o.tx.Config(ctx)
	if errors.Is(err, ErrRecordNotFound) {
		return nil, ErrNotBootstrapped
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func (o *op) job(ctx context.Context, id uint64) (*models.Job, error) {
	job, err := o.tx.Job(ctx, id)
	if errors.Is(err, ErrRecordNotFound) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load job %d: %w", id, err)
	}
	return job, nil
}

// moveJob changes status in memory; the caller still has to save the job.
func (o *op) moveJob(job *models.Job, to models.JobStatus) error {
	if !canTransition(job.Status, to) {
		return ErrInvalidJobState
	}
	job.Status = to
	job.UpdatedAt = o.now
	o.transitions = append(o.transitions, to)
	return nil
}

func (o *op) credit(ctx context.Context, to models.Address, amount int64, kind models.WalletTrxType, jobID *uint64, desc string) error {
	entry := models.WalletTransaction{
		ID:          uuid.New(),
		Address:     to,
		Amount:      amount,
		Type:        kind,
		Description: desc,
		JobID:       jobID,
		CreatedAt:   o.now,
	}
	if err := o.tx.Credit(ctx, &entry); err != nil {
		return fmt.Errorf("credit %s: %w", to, err)
	}
	o.moves = append(o.moves, entry)
	return nil
}

func (o *op) debit(ctx context.Context, from models.Address, amount int64, kind models.WalletTrxType, jobID *uint64, desc string) error {
	entry := models.WalletTransaction{
		ID:          uuid.New(),
		Address:     from,
		Amount:      amount,
		Type:        kind,
		Description: desc,
		JobID:       jobID,
		CreatedAt:   o.now,
	}
	if err := o.tx.Debit(ctx, &entry); err != nil {
		if errors.Is(err, ErrInsufficientBalance) {
			return ErrInsufficientBalance
		}
		return fmt.Errorf("debit %s: %w", from, err)
	}
	o.moves = append(o.moves, entry)
	return nil
}

// mutate runs fn as one serialized transaction and reports its events after
// commit.
func (l *Ledger) mutate(ctx context.Context, fn func(ctx context.Context, o *op) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	o := &op{now: l.clock.Now()}
	err := l.store.WithinTx(ctx, func(tx Tx) error {
		o.tx = tx
		o.events, o.transitions, o.moves = nil, nil, nil
		if err := fn(ctx, o); err != nil {
			return err
		}
		for _, ev := range o.events {
			if err := tx.AppendEvent(ctx, toRecord(ev)); err != nil {
				return fmt.Errorf("append event %s: %w", ev.Name, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, to := range o.transitions {
		l.recorder.JobTransition(to)
	}
	for _, m := range o.moves {
		l.recorder.FundsMoved(m.Type, m.Amount)
	}
	for _, ev := range o.events {
		if err := l.pub.Publish(ctx, ev); err != nil {
			log.Printf("escrow: publish %s failed: %v", ev.Name, err)
		}
	}
	return nil
}

// view runs a read-only transaction. It does not take the ledger lock.
func (l *Ledger) view(ctx context.Context, fn func(ctx context.Context, o *op) error) error {
	return l.store.WithinTx(ctx, func(tx Tx) error {
		return fn(ctx, &op{tx: tx, now: l.clock.Now()})
	})
}

func toRecord(ev Event) *models.EscrowEvent {
	payload, err := json.Marshal(ev.Data)
	if err != nil {
		payload = []byte("{}")
	}
	return &models.EscrowEvent{
		ID:        ev.ID,
		Name:      string(ev.Name),
		JobID:     ev.JobID,
		Address:   ev.Address,
		Payload:   datatypes.JSON(payload),
		CreatedAt: ev.At,
	}
}

// Bootstrap stores the initial platform config unless one already exists, in
// which case the stored one wins and is returned.
func (l *Ledger) Bootstrap(ctx context.Context, initial models.PlatformConfig) (*models.PlatformConfig, error) {
	if initial.Owner.IsZero() {
		return nil, ErrInvalidAddress
	}
	if initial.PlatformFeePercent < 0 {
		return nil, ErrInvalidFee
	}
	if initial.PlatformFeePercent > MaxPlatformFeePercent {
		return nil, ErrFeeTooHigh
	}
	if !validDays(initial.JobTimeoutDays) || !validDays(initial.DisputeWindowDays) {
		return nil, ErrInvalidDuration
	}

	var out *models.PlatformConfig
	err := l.mutate(ctx, func(ctx context.Context, o *op) error {
		cfg, err := o.tx.Config(ctx)
		if err == nil {
			out = cfg
			return nil
		}
		if !errors.Is(err, ErrRecordNotFound) {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = &models.PlatformConfig{
			ID:                      models.PlatformConfigID,
			Owner:                   initial.Owner,
			PlatformFeePercent:      initial.PlatformFeePercent,
			JobTimeoutDays:          initial.JobTimeoutDays,
			DisputeWindowDays:       initial.DisputeWindowDays,
			SelfVerificationEnabled: initial.SelfVerificationEnabled,
			UpdatedAt:               o.now,
		}
		if err := o.tx.SaveConfig(ctx, cfg); err != nil {
			return fmt.Errorf("save config: %w", err)
		}
		out = cfg
		return nil
	})
	return out, err
}
