// Package memory is an in-process escrow.Store. A transaction works on a
// copy of the state and swaps it in on success, so a failed transaction
// leaves nothing behind.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/Windi-Fikriyansyah/anywork_escrow/internal/escrow"
	"github.com/Windi-Fikriyansyah/anywork_escrow/internal/models"
)

type state struct {
	config   *models.PlatformConfig
	artisans map[models.Address]models.Artisan
	jobs     map[uint64]models.Job
	accounts map[models.Address]models.Account
	wallet   []models.WalletTransaction
	events   []models.EscrowEvent
}

func (s *state) clone() *state {
	c := &state{
		artisans: make(map[models.Address]models.Artisan, len(s.artisans)),
		jobs:     make(map[uint64]models.Job, len(s.jobs)),
		accounts: make(map[models.Address]models.Account, len(s.accounts)),
		// Capped so appends in the draft never write into our backing array.
		wallet: s.wallet[:len(s.wallet):len(s.wallet)],
		events: s.events[:len(s.events):len(s.events)],
	}
	if s.config != nil {
		cfg := *s.config
		c.config = &cfg
	}
	for k, v := range s.artisans {
		c.artisans[k] = v
	}
	for k, v := range s.jobs {
		c.jobs[k] = v
	}
	for k, v := range s.accounts {
		c.accounts[k] = v
	}
	return c
}

type Store struct {
	mu    sync.Mutex
	state *state
}

func New() *Store {
	return &Store{state: &state{
		artisans: map[models.Address]models.Artisan{},
		jobs:     map[uint64]models.Job{},
		accounts: map[models.Address]models.Account{},
	}}
}

func (s *Store) WithinTx(ctx context.Context, fn func(tx escrow.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	draft := s.state.clone()
	if err := fn(&tx{st: draft}); err != nil {
		return err
	}
	s.state = draft
	return nil
}

// WalletEntries returns the committed wallet ledger, oldest first.
func (s *Store) WalletEntries() []models.WalletTransaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.WalletTransaction(nil), s.state.wallet...)
}

// Events returns the committed event log, oldest first.
func (s *Store) Events() []models.EscrowEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.EscrowEvent(nil), s.state.events...)
}

type tx struct {
	st *state
}

func (t *tx) Config(context.Context) (*models.PlatformConfig, error) {
	if t.st.config == nil {
		return nil, escrow.ErrRecordNotFound
	}
	cfg := *t.st.config
	return &cfg, nil
}

func (t *tx) SaveConfig(_ context.Context, cfg *models.PlatformConfig) error {
	c := *cfg
	t.st.config = &c
	return nil
}

func (t *tx) Artisan(_ context.Context, addr models.Address) (*models.Artisan, error) {
	a, ok := t.st.artisans[addr]
	if !ok {
		return nil, escrow.ErrRecordNotFound
	}
	if a.IdentityVerifiedAt != nil {
		at := *a.IdentityVerifiedAt
		a.IdentityVerifiedAt = &at
	}
	return &a, nil
}

func (t *tx) SaveArtisan(_ context.Context, a *models.Artisan) error {
	t.st.artisans[a.Address] = *a
	return nil
}

func (t *tx) Job(_ context.Context, id uint64) (*models.Job, error) {
	j, ok := t.st.jobs[id]
	if !ok {
		return nil, escrow.ErrRecordNotFound
	}
	return &j, nil
}

func (t *tx) InsertJob(_ context.Context, job *models.Job) error {
	if _, ok := t.st.jobs[job.ID]; ok {
		return errDuplicateJob
	}
	t.st.jobs[job.ID] = *job
	return nil
}

func (t *tx) SaveJob(_ context.Context, job *models.Job) error {
	if _, ok := t.st.jobs[job.ID]; !ok {
		return escrow.ErrRecordNotFound
	}
	t.st.jobs[job.ID] = *job
	return nil
}

func (t *tx) JobsByParty(_ context.Context, addr models.Address) ([]models.Job, error) {
	var out []models.Job
	for _, j := range t.st.jobs {
		if j.Client == addr || j.Artisan == addr {
			out = append(out, j)
		}
	}
	sort.Slice(out, func(i, k int) bool { return out[i].ID > out[k].ID })
	return out, nil
}

func (t *tx) Account(_ context.Context, addr models.Address) (*models.Account, error) {
	a, ok := t.st.accounts[addr]
	if !ok {
		return nil, escrow.ErrRecordNotFound
	}
	return &a, nil
}

func (t *tx) Credit(_ context.Context, e *models.WalletTransaction) error {
	if e.Amount <= 0 {
		return errNonPositive
	}
	acc, ok := t.st.accounts[e.Address]
	if !ok {
		acc = models.Account{Address: e.Address, CreatedAt: e.CreatedAt}
	}
	acc.Balance += e.Amount
	acc.UpdatedAt = e.CreatedAt
	t.st.accounts[e.Address] = acc
	t.st.wallet = append(t.st.wallet, *e)
	return nil
}

func (t *tx) Debit(_ context.Context, e *models.WalletTransaction) error {
	if e.Amount <= 0 {
		return errNonPositive
	}
	acc, ok := t.st.accounts[e.Address]
	if !ok || acc.Balance < e.Amount {
		return escrow.ErrInsufficientBalance
	}
	acc.Balance -= e.Amount
	acc.UpdatedAt = e.CreatedAt
	t.st.accounts[e.Address] = acc
	t.st.wallet = append(t.st.wallet, *e)
	return nil
}

func (t *tx) WalletHistory(_ context.Context, addr models.Address, limit int) ([]models.WalletTransaction, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var out []models.WalletTransaction
	for i := len(t.st.wallet) - 1; i >= 0 && len(out) < limit; i-- {
		if t.st.wallet[i].Address == addr {
			out = append(out, t.st.wallet[i])
		}
	}
	return out, nil
}

func (t *tx) AppendEvent(_ context.Context, ev *models.EscrowEvent) error {
	t.st.events = append(t.st.events, *ev)
	return nil
}
