package wallet

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Windi-Fikriyansyah/anywork_escrow/internal/models"
)

var ErrInsufficientBalance = errors.New("insufficient balance")

type WalletService struct{}

func NewWalletService() *WalletService {
	return &WalletService{}
}

// Credit adds entry.Amount to the account of entry.Address, creating the
// account on first use, and writes the ledger row.
// This should be called within a DB transaction.
func (s *WalletService) Credit(tx *gorm.DB, entry *models.WalletTransaction) error {
	if entry.Amount <= 0 {
		return errors.New("amount to credit must be greater than zero")
	}

	// 1. Make sure the account row exists
	acc := models.Account{Address: entry.Address, CreatedAt: entry.CreatedAt, UpdatedAt: entry.CreatedAt}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&acc).Error; err != nil {
		return err
	}

	// 2. Update balance atomically
	result := tx.Model(&models.Account{}).
		Where("address = ?", entry.Address).
		Updates(map[string]any{
			"balance":    gorm.Expr("balance + ?", entry.Amount),
			"updated_at": entry.CreatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("account not found for %s", entry.Address)
	}

	// 3. Ledger row
	return s.record(tx, entry)
}

// Debit deducts entry.Amount from the account of entry.Address and writes the
// ledger row. It never lets a balance go negative.
// This should be called within a DB transaction.
func (s *WalletService) Debit(tx *gorm.DB, entry *models.WalletTransaction) error {
	if entry.Amount <= 0 {
		return errors.New("amount to debit must be greater than zero")
	}

	// 1. Lock the account row and check the balance
	var acc models.Account
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&acc, "address = ?", entry.Address).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrInsufficientBalance
	}
	if err != nil {
		return err
	}
	if acc.Balance < entry.Amount {
		return ErrInsufficientBalance
	}

	// 2. Update balance atomically, guarded again in SQL
	result := tx.Model(&models.Account{}).
		Where("address = ? AND balance >= ?", entry.Address, entry.Amount).
		Updates(map[string]any{
			"balance":    gorm.Expr("balance - ?", entry.Amount),
			"updated_at": entry.CreatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrInsufficientBalance
	}

	// 3. Ledger row
	return s.record(tx, entry)
}

func (s *WalletService) record(tx *gorm.DB, entry *models.WalletTransaction) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	return tx.Create(entry).Error
}

// History returns the newest wallet ledger rows of addr.
func (s *WalletService) History(db *gorm.DB, addr models.Address, limit int) ([]models.WalletTransaction, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var out []models.WalletTransaction
	err := db.Where("address = ?", addr).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}
