package escrow

import (
	"context"

	"github.com/Windi-Fikriyansyah/anywork_escrow/internal/models"
)

// Store runs fn inside one transaction. If fn returns an error nothing it did
// is kept.
type Store interface {
	WithinTx(ctx context.Context, fn func(tx Tx) error) error
}

// Tx is the ledger's view of persisted state inside a transaction. Lookups
// return ErrRecordNotFound for missing keys and hand out copies; changes only
// stick through the Save/Insert methods. Debit returns ErrInsufficientBalance
// when the account cannot cover the amount.
type Tx interface {
	Config(ctx context.Context) (*models.PlatformConfig, error)
	SaveConfig(ctx context.Context, cfg *models.PlatformConfig) error

	Artisan(ctx context.Context, addr models.Address) (*models.Artisan, error)
	SaveArtisan(ctx context.Context, a *models.Artisan) error

	Job(ctx context.Context, id uint64) (*models.Job, error)
	InsertJob(ctx context.Context, job *models.Job) error
	SaveJob(ctx context.Context, job *models.Job) error
	JobsByParty(ctx context.Context, addr models.Address) ([]models.Job, error)

	Account(ctx context.Context, addr models.Address) (*models.Account, error)
	Credit(ctx context.Context, entry *models.WalletTransaction) error
	Debit(ctx context.Context, entry *models.WalletTransaction) error
	WalletHistory(ctx context.Context, addr models.Address, limit int) ([]models.WalletTransaction, error)

	AppendEvent(ctx context.Context, ev *models.EscrowEvent) error
}
