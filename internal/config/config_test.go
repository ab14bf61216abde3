package config

import (
	"errors"
	"testing"
	"time"

	"github.com/Windi-Fikriyansyah/anywork_escrow/internal/models"
)

func TestParseDefaults(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost/escrow")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("OWNER_ADDRESS", "0x00000000000000000000000000000000000000a1")

	cfg, err := Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.AppPort != "8080" || cfg.PlatformFeePercent != 5 || cfg.JobTimeoutDays != 7 || cfg.DisputeWindowDays != 3 {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.JWTTTL() != 7*24*time.Hour {
		t.Fatalf("expected a one week token, got %v", cfg.JWTTTL())
	}

	initial, err := cfg.InitialPlatform()
	if err != nil {
		t.Fatalf("initial platform: %v", err)
	}
	if initial.Owner != models.MustAddress("0x00000000000000000000000000000000000000A1") {
		t.Fatalf("expected normalised owner, got %s", initial.Owner)
	}
}

func TestParseRequiresSecrets(t *testing.T) {
	t.Setenv("DB_DSN", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("OWNER_ADDRESS", "")
	if _, err := Parse(); err == nil {
		t.Fatalf("expected missing required variables to fail")
	}
}

func TestInitialPlatformRejectsBadOwner(t *testing.T) {
	cfg := Config{OwnerAddress: "not-an-address"}
	if _, err := cfg.InitialPlatform(); !errors.Is(err, models.ErrInvalidAddress) {
		t.Fatalf("expected ErrInvalidAddress, got %v", err)
	}
}
