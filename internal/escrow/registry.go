package escrow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Windi-Fikriyansyah/anywork_escrow/internal/models"
)

// RegisterArtisan creates the caller's artisan record, or replaces its
// metadata. Verification status survives re-registration.
func (l *Ledger) RegisterArtisan(ctx context.Context, caller models.Address, metadataURI string) error {
	if caller.IsZero() {
		return ErrUnauthorized
	}
	metadataURI = strings.TrimSpace(metadataURI)

	return l.mutate(ctx, func(ctx context.Context, o *op) error {
		a, err := o.tx.Artisan(ctx, caller)
		switch {
		case errors.Is(err, ErrRecordNotFound):
			a = &models.Artisan{Address: caller, Registered: true, CreatedAt: o.now}
		case err != nil:
			return fmt.Errorf("load artisan: %w", err)
		}
		a.MetadataURI = metadataURI
		a.UpdatedAt = o.now
		if err := o.tx.SaveArtisan(ctx, a); err != nil {
			return fmt.Errorf("save artisan: %w", err)
		}

		o.emit(Event{
			Name:       EventArtisanRegistered,
			Address:    caller,
			Data:       map[string]any{"artisan": caller, "metadata_uri": metadataURI},
			Recipients: []models.Address{caller},
		})
		return nil
	})
}

// VerifyIdentity is the self-service verification path. It only works while
// the owner has self-verification switched on.
func (l *Ledger) VerifyIdentity(ctx context.Context, caller models.Address) error {
	if caller.IsZero() {
		return ErrUnauthorized
	}
	return l.mutate(ctx, func(ctx context.Context, o *op) error {
		a, err := o.tx.Artisan(ctx, caller)
		if errors.Is(err, ErrRecordNotFound) {
			return ErrArtisanNotRegistered
		}
		if err != nil {
			return fmt.Errorf("load artisan: %w", err)
		}
		cfg, err := o.config(ctx)
		if err != nil {
			return err
		}
		if !cfg.SelfVerificationEnabled {
			return ErrUnauthorized
		}

		now := o.now
		a.Verified = true
		a.IdentityVerifiedAt = &now
		a.UpdatedAt = now
		if err := o.tx.SaveArtisan(ctx, a); err != nil {
			return fmt.Errorf("save artisan: %w", err)
		}

		o.emit(Event{
			Name:       EventIdentityVerified,
			Address:    caller,
			Data:       map[string]any{"artisan": caller, "timestamp": now.Unix()},
			Recipients: []models.Address{caller},
		})
		return nil
	})
}

func (l *Ledger) SetArtisanVerified(ctx context.Context, caller, artisan models.Address, verified bool) error {
	return l.mutate(ctx, func(ctx context.Context, o *op) error {
		cfg, err := o.config(ctx)
		if err != nil {
			return err
		}
		if err := l.gate.requireOwner(cfg, caller); err != nil {
			return err
		}

		a, err := o.tx.Artisan(ctx, artisan)
		if errors.Is(err, ErrRecordNotFound) {
			return ErrArtisanNotRegistered
		}
		if err != nil {
			return fmt.Errorf("load artisan: %w", err)
		}
		a.Verified = verified
		a.UpdatedAt = o.now
		if err := o.tx.SaveArtisan(ctx, a); err != nil {
			return fmt.Errorf("save artisan: %w", err)
		}

		o.emit(Event{
			Name:       EventArtisanVerificationUpdated,
			Address:    artisan,
			Data:       map[string]any{"artisan": artisan, "verified": verified},
			Recipients: []models.Address{artisan},
		})
		return nil
	})
}

// GetArtisan returns (nil, false, nil) for an address that never registered.
func (l *Ledger) GetArtisan(ctx context.Context, addr models.Address) (*models.Artisan, bool, error) {
	var out *models.Artisan
	err := l.view(ctx, func(ctx context.Context, o *op) error {
		a, err := o.tx.Artisan(ctx, addr)
		if errors.Is(err, ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("load artisan: %w", err)
		}
		out = a
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return out, out != nil, nil
}
