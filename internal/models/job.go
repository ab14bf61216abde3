// internal/models/job.go
package models

import (
	"database/sql/driver"
	"fmt"
	"time"
)

type JobStatus uint8

// Numeric values are persisted; keep the order.
const (
	JobActive           JobStatus = iota // Funds locked, work in progress
	JobCompleted                         // Client confirmed, artisan may withdraw
	JobWithdrawn                         // Artisan paid
	JobClaimedByArtisan                  // Artisan claimed after client timeout
	JobDisputed                          // Client reclaimed a timeout claim
	JobCancelled                         // Refunded to client
)

var jobStatusNames = [...]string{
	JobActive:           "active",
	JobCompleted:        "completed",
	JobWithdrawn:        "withdrawn",
	JobClaimedByArtisan: "claimed_by_artisan",
	JobDisputed:         "disputed",
	JobCancelled:        "cancelled",
}

func (s JobStatus) Valid() bool { return int(s) < len(jobStatusNames) }

func (s JobStatus) String() string {
	if !s.Valid() {
		return fmt.Sprintf("JobStatus(%d)", uint8(s))
	}
	return jobStatusNames[s]
}

func (s JobStatus) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("unknown job status %d", uint8(s))
	}
	return []byte(jobStatusNames[s]), nil
}

func (s *JobStatus) UnmarshalText(b []byte) error {
	for i, name := range jobStatusNames {
		if name == string(b) {
			*s = JobStatus(i)
			return nil
		}
	}
	return fmt.Errorf("unknown job status %q", b)
}

func (s JobStatus) Value() (driver.Value, error) { return int64(s), nil }

func (s *JobStatus) Scan(src any) error {
	switch v := src.(type) {
	case int64:
		*s = JobStatus(v)
	case int32:
		*s = JobStatus(v)
	case []byte:
		var n uint8
		if _, err := fmt.Sscanf(string(v), "%d", &n); err != nil {
			return fmt.Errorf("scan job status: %w", err)
		}
		*s = JobStatus(n)
	default:
		return fmt.Errorf("scan job status: unsupported type %T", src)
	}
	if !s.Valid() {
		return fmt.Errorf("scan job status: unknown value %d", uint8(*s))
	}
	return nil
}

// HoldsFunds reports whether a job in this status still has money in escrow.
func (s JobStatus) HoldsFunds() bool {
	switch s {
	case JobActive, JobCompleted, JobClaimedByArtisan:
		return true
	case JobWithdrawn, JobDisputed, JobCancelled:
		return false
	}
	panic("models: unhandled job status " + s.String())
}

func (s JobStatus) Terminal() bool { return s.Valid() && !s.HoldsFunds() }

type Job struct {
	ID uint64 `gorm:"primaryKey;autoIncrement:false" json:"id"`

	Client  Address `gorm:"type:varchar(42);index;not null" json:"client"`
	Artisan Address `gorm:"type:varchar(42);index;not null" json:"artisan"`

	// Amount is what escrow currently holds for the job. Deposit never changes.
	Amount  int64 `gorm:"not null" json:"amount"`
	Deposit int64 `gorm:"not null" json:"deposit"`

	Description string    `gorm:"type:text" json:"description"`
	Status      JobStatus `gorm:"type:smallint;not null;index" json:"status"`

	CreatedAt time.Time `gorm:"autoCreateTime:false" json:"created_at"`
	ClaimedAt time.Time `json:"claimed_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime:false" json:"updated_at"`
}

// Completed is true once the client signed off, whether or not the artisan
// has been paid yet.
func (j *Job) Completed() bool {
	return j.Status == JobCompleted || j.Status == JobWithdrawn
}

// Paid reports whether the artisan received the payout.
func (j *Job) Paid() bool { return j.Status == JobWithdrawn }
