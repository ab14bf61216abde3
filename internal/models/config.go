// internal/models/config.go
package models

import "time"

// PlatformConfigID is the primary key of the only config row.
const PlatformConfigID = 1

type PlatformConfig struct {
	ID    uint    `gorm:"primaryKey;autoIncrement:false" json:"-"`
	Owner Address `gorm:"type:varchar(42);not null" json:"owner"`

	PlatformFeePercent      int  `gorm:"not null" json:"platform_fee_percent"`
	JobTimeoutDays          int  `gorm:"not null" json:"job_timeout_days"`
	DisputeWindowDays       int  `gorm:"not null" json:"dispute_window_days"`
	SelfVerificationEnabled bool `gorm:"not null" json:"self_verification_enabled"`

	// Fees retained from payouts and not swept yet.
	CollectedFees int64  `gorm:"not null" json:"collected_fees"`
	NextJobID     uint64 `gorm:"not null" json:"next_job_id"`

	UpdatedAt time.Time `gorm:"autoUpdateTime:false" json:"updated_at"`
}

func (PlatformConfig) TableName() string { return "platform_config" }

func (c *PlatformConfig) JobTimeout() time.Duration {
	return time.Duration(c.JobTimeoutDays) * 24 * time.Hour
}

func (c *PlatformConfig) DisputeWindow() time.Duration {
	return time.Duration(c.DisputeWindowDays) * 24 * time.Hour
}
