package escrow

import (
	"errors"

	"github.com/Windi-Fikriyansyah/anywork_escrow/internal/models"
)

// Every operation that returns one of these has left all state untouched.
var (
	ErrUnauthorized           = errors.New("unauthorized")
	ErrArtisanNotRegistered   = errors.New("artisan not registered")
	ErrArtisanNotVerified     = errors.New("artisan not verified")
	ErrNoFundsSent            = errors.New("no funds sent")
	ErrSelfHireNotAllowed     = errors.New("cannot hire yourself")
	ErrInvalidJobState        = errors.New("invalid job state")
	ErrTimeoutNotReached      = errors.New("timeout not reached")
	ErrDisputeWindowClosed    = errors.New("dispute window closed")
	ErrDisputeWindowStillOpen = errors.New("dispute window still open")
	ErrFeeTooHigh             = errors.New("fee too high")

	ErrInvalidFee          = errors.New("fee must not be negative")
	ErrJobNotFound         = errors.New("job not found")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInvalidDuration     = errors.New("days must be between 1 and 365")
	ErrNothingToSweep      = errors.New("no collected fees to sweep")
	ErrNotBootstrapped     = errors.New("platform config not initialized")

	ErrInvalidAddress = models.ErrInvalidAddress

	// ErrRecordNotFound is returned by Tx lookups for missing keys.
	ErrRecordNotFound = errors.New("record not found")
)
