package models

import (
	"time"

	"github.com/google/uuid"
)

type WalletTrxType string

const (
	WalletTrxDeposit    WalletTrxType = "deposit"     // Funded from outside the platform
	WalletTrxEscrowLock WalletTrxType = "escrow_lock" // Client balance moved into a job
	WalletTrxPayout     WalletTrxType = "payout"      // Net job amount paid to the artisan
	WalletTrxRefund     WalletTrxType = "refund"      // Job amount returned to the client
	WalletTrxFeeSweep   WalletTrxType = "fee_sweep"   // Retained fees moved to an account
	WalletTrxWithdrawal WalletTrxType = "withdrawal"  // Balance paid out of the platform
)

// Account holds funds payable to an address.
type Account struct {
	Address   Address   `gorm:"type:varchar(42);primaryKey" json:"address"`
	Balance   int64     `gorm:"not null;default:0" json:"balance"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type WalletTransaction struct {
	ID          uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	Address     Address       `gorm:"type:varchar(42);index;not null" json:"address"`
	Amount      int64         `gorm:"not null" json:"amount"`
	Type        WalletTrxType `gorm:"type:varchar(20);not null" json:"type"`
	Description string        `gorm:"type:text" json:"description"`
	JobID       *uint64       `gorm:"index" json:"job_id,omitempty"`
	CreatedAt   time.Time     `gorm:"autoCreateTime:false" json:"created_at"`
}
