// internal/models/event.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// EscrowEvent is the append-only notification log, written in the same
// transaction as the change it describes.
type EscrowEvent struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string         `gorm:"type:varchar(60);index;not null" json:"name"`
	JobID     *uint64        `gorm:"index" json:"job_id,omitempty"`
	Address   Address        `gorm:"type:varchar(42);index" json:"address,omitempty"`
	Payload   datatypes.JSON `json:"payload"`
	CreatedAt time.Time      `gorm:"autoCreateTime:false" json:"created_at"`
}
