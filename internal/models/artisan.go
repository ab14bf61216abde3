// internal/models/artisan.go
package models

import "time"

type Artisan struct {
	Address     Address `gorm:"type:varchar(42);primaryKey" json:"address"`
	Registered  bool    `gorm:"not null;default:false" json:"registered"`
	Verified    bool    `gorm:"not null;default:false" json:"verified"`
	MetadataURI string  `gorm:"type:text" json:"metadata_uri"`

	// Set when the artisan verified through the self-service path.
	IdentityVerifiedAt *time.Time `json:"identity_verified_at,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime:false" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime:false" json:"updated_at"`
}

// CanBeHired reports whether a new job may reference this artisan.
func (a *Artisan) CanBeHired() bool {
	return a != nil && a.Registered && a.Verified
}
