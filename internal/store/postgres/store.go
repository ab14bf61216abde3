// Package postgres is the GORM-backed escrow.Store. Rows touched by a
// transaction are taken with SELECT ... FOR UPDATE so several API processes
// can share one database.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/Windi-Fikriyansyah/anywork_escrow/internal/escrow"
	"github.com/Windi-Fikriyansyah/anywork_escrow/internal/models"
	"github.com/Windi-Fikriyansyah/anywork_escrow/internal/services/wallet"
)

// Connect opens the Postgres database at dsn.
func Connect(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return db, nil
}

type Store struct {
	DB     *gorm.DB
	Wallet *wallet.WalletService
}

func New(db *gorm.DB) *Store {
	return &Store{DB: db, Wallet: wallet.NewWalletService()}
}

// Migrate creates or updates every table the ledger uses.
func (s *Store) Migrate() error {
	return s.DB.AutoMigrate(
		&models.PlatformConfig{},
		&models.Artisan{},
		&models.Job{},
		&models.Account{},
		&models.WalletTransaction{},
		&models.EscrowEvent{},
	)
}

func (s *Store) WithinTx(ctx context.Context, fn func(tx escrow.Tx) error) error {
	return s.DB.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		return fn(&gormTx{db: db, wallet: s.Wallet})
	})
}

type gormTx struct {
	db     *gorm.DB
	wallet *wallet.WalletService
}

func (t *gormTx) locked(ctx context.Context) *gorm.DB {
	return t.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"})
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return escrow.ErrRecordNotFound
	}
	return err
}

func (t *gormTx) Config(ctx context.Context) (*models.PlatformConfig, error) {
	var cfg models.PlatformConfig
	if err := t.locked(ctx).First(&cfg, "id = ?", models.PlatformConfigID).Error; err != nil {
		return nil, notFound(err)
	}
	return &cfg, nil
}

func (t *gormTx) SaveConfig(ctx context.Context, cfg *models.PlatformConfig) error {
	cfg.ID = models.PlatformConfigID
	return t.db.WithContext(ctx).Save(cfg).Error
}

func (t *gormTx) Artisan(ctx context.Context, addr models.Address) (*models.Artisan, error) {
	var a models.Artisan
	if err := t.locked(ctx).First(&a, "address = ?", addr).Error; err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

func (t *gormTx) SaveArtisan(ctx context.Context, a *models.Artisan) error {
	return t.db.WithContext(ctx).Save(a).Error
}

func (t *gormTx) Job(ctx context.Context, id uint64) (*models.Job, error) {
	var j models.Job
	if err := t.locked(ctx).First(&j, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &j, nil
}

func (t *gormTx) InsertJob(ctx context.Context, job *models.Job) error {
	return t.db.WithContext(ctx).Create(job).Error
}

// SaveJob writes the mutable columns. Save() cannot be used because job 0 has
// a zero primary key, which GORM would treat as a new row.
func (t *gormTx) SaveJob(ctx context.Context, job *models.Job) error {
	res := t.db.WithContext(ctx).Model(&models.Job{}).
		Where("id = ?", job.ID).
		Updates(map[string]any{
			"amount":     job.Amount,
			"status":     job.Status,
			"claimed_at": job.ClaimedAt,
			"updated_at": job.UpdatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return escrow.ErrRecordNotFound
	}
	return nil
}

func (t *gormTx) JobsByParty(ctx context.Context, addr models.Address) ([]models.Job, error) {
	var jobs []models.Job
	err := t.db.WithContext(ctx).
		Where("client = ? OR artisan = ?", addr, addr).
		Order("id DESC").
		Find(&jobs).Error
	return jobs, err
}

func (t *gormTx) Account(ctx context.Context, addr models.Address) (*models.Account, error) {
	var acc models.Account
	if err := t.db.WithContext(ctx).First(&acc, "address = ?", addr).Error; err != nil {
		return nil, notFound(err)
	}
	return &acc, nil
}

func (t *gormTx) Credit(ctx context.Context, entry *models.WalletTransaction) error {
	return t.wallet.Credit(t.db.WithContext(ctx), entry)
}

func (t *gormTx) Debit(ctx context.Context, entry *models.WalletTransaction) error {
	err := t.wallet.Debit(t.db.WithContext(ctx), entry)
	if errors.Is(err, wallet.ErrInsufficientBalance) {
		return escrow.ErrInsufficientBalance
	}
	return err
}

func (t *gormTx) WalletHistory(ctx context.Context, addr models.Address, limit int) ([]models.WalletTransaction, error) {
	return t.wallet.History(t.db.WithContext(ctx), addr, limit)
}

func (t *gormTx) AppendEvent(ctx context.Context, ev *models.EscrowEvent) error {
	return t.db.WithContext(ctx).Create(ev).Error
}
