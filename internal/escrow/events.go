package escrow

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Windi-Fikriyansyah/anywork_escrow/internal/models"
)

type EventName string

const (
	EventArtisanRegistered          EventName = "ArtisanRegistered"
	EventIdentityVerified           EventName = "IdentityVerified"
	EventArtisanVerificationUpdated EventName = "ArtisanVerificationUpdated"
	EventJobCreated                 EventName = "JobCreated"
	EventJobCompleted               EventName = "JobCompleted"
	EventPaymentReleased            EventName = "PaymentReleased"
	EventJobStatusChanged           EventName = "JobStatusChanged"
	EventFeesSwept                  EventName = "FeesSwept"
	EventAccountFunded              EventName = "AccountFunded"
	EventBalanceWithdrawn           EventName = "BalanceWithdrawn"
)

// Event is a notification about a committed change.
type Event struct {
	ID      uuid.UUID      `json:"id"`
	Name    EventName      `json:"name"`
	JobID   *uint64        `json:"job_id,omitempty"`
	Address models.Address `json:"address,omitempty"`
	Data    map[string]any `json:"data"`
	At      time.Time      `json:"at"`

	// Recipients are the addresses a realtime subscriber should route to.
	Recipients []models.Address `json:"-"`
}

// Publisher receives events after the transaction that produced them commits.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, Event) error { return nil }

// Publishers fans one event out to several publishers and returns the first
// error after trying all of them.
type Publishers []Publisher

func (ps Publishers) Publish(ctx context.Context, ev Event) error {
	var first error
	for _, p := range ps {
		if err := p.Publish(ctx, ev); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Recorder observes committed state changes, e.g. for metrics.
type Recorder interface {
	JobTransition(to models.JobStatus)
	FundsMoved(kind models.WalletTrxType, amount int64)
}

type nopRecorder struct{}

func (nopRecorder) JobTransition(models.JobStatus) {}
func (nopRecorder) FundsMoved(models.WalletTrxType, int64) {}

func jobRef(id uint64) *uint64 { return &id }
