package postgres_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Windi-Fikriyansyah/anywork_escrow/internal/clock"
	"github.com/Windi-Fikriyansyah/anywork_escrow/internal/escrow"
	"github.com/Windi-Fikriyansyah/anywork_escrow/internal/models"
	"github.com/Windi-Fikriyansyah/anywork_escrow/internal/store/postgres"
)

var (
	owner   = models.MustAddress("0x00000000000000000000000000000000000000a1")
	client  = models.MustAddress("0x00000000000000000000000000000000000000c1")
	artisan = models.MustAddress("0x00000000000000000000000000000000000000b1")
)

// openStore runs the GORM store against a throwaway SQLite file. Row locks
// are dropped by the SQLite dialect; everything else goes through the same
// queries as in production.
func openStore(t *testing.T) *postgres.Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "escrow.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	s := postgres.New(db)
	if err := s.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return s
}

func newLedger(t *testing.T) (*escrow.Ledger, *postgres.Store, *clock.Fake) {
	t.Helper()
	s := openStore(t)
	clk := clock.NewFake(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	l := escrow.New(s, clk)

	ctx := context.Background()
	if _, err := l.Bootstrap(ctx, models.PlatformConfig{
		Owner:              owner,
		PlatformFeePercent: 5,
		JobTimeoutDays:     7,
		DisputeWindowDays:  3,
	}); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if err := l.FundAccount(ctx, owner, client, 5_000_000); err != nil {
		t.Fatalf("fund: %v", err)
	}
	if err := l.RegisterArtisan(ctx, artisan, "ipfs://artisan"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := l.SetArtisanVerified(ctx, owner, artisan, true); err != nil {
		t.Fatalf("verify: %v", err)
	}
	return l, s, clk
}

func TestJobLifecycleIsPersisted(t *testing.T) {
	l, s, _ := newLedger(t)
	ctx := context.Background()

	id, err := l.CreateJob(ctx, client, artisan, "Tile the bathroom", 1_000_000)
	if err != nil {
		t.Fatalf("create job: %v", err)
	}
	if id != 0 {
		t.Fatalf("expected first job id 0, got %d", id)
	}
	if err := l.CompleteJob(ctx, client, id); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if err := l.WithdrawJobPayment(ctx, artisan, id); err != nil {
		t.Fatalf("withdraw: %v", err)
	}

	var job models.Job
	if err := s.DB.First(&job, "id = ?", id).Error; err != nil {
		t.Fatalf("load job row: %v", err)
	}
	if job.Status != models.JobWithdrawn || job.Amount != 0 || job.Deposit != 1_000_000 {
		t.Fatalf("unexpected job row %+v", job)
	}

	acc, err := l.GetAccount(ctx, artisan)
	if err != nil {
		t.Fatalf("get account: %v", err)
	}
	if acc.Balance != 950_000 {
		t.Fatalf("expected artisan balance 950000, got %d", acc.Balance)
	}
	cfg, err := l.GetConfig(ctx)
	if err != nil {
		t.Fatalf("get config: %v", err)
	}
	if cfg.CollectedFees != 50_000 || cfg.NextJobID != 1 {
		t.Fatalf("unexpected config %+v", cfg)
	}

	var events int64
	if err := s.DB.Model(&models.EscrowEvent{}).Count(&events).Error; err != nil {
		t.Fatalf("count events: %v", err)
	}
	if events != 6 {
		t.Fatalf("expected 6 event rows, got %d", events)
	}
}

func TestSecondJobGetsNextID(t *testing.T) {
	l, _, _ := newLedger(t)
	ctx := context.Background()

	for want := uint64(0); want < 2; want++ {
		id, err := l.CreateJob(ctx, client, artisan, "Job", 100)
		if err != nil {
			t.Fatalf("create job: %v", err)
		}
		if id != want {
			t.Fatalf("expected id %d, got %d", want, id)
		}
	}
	jobs, err := l.ListJobs(ctx, client)
	if err != nil {
		t.Fatalf("list jobs: %v", err)
	}
	if len(jobs) != 2 || jobs[0].ID != 1 {
		t.Fatalf("expected both jobs newest first, got %+v", jobs)
	}
}

func TestFailedCreateLeavesNoRows(t *testing.T) {
	l, s, _ := newLedger(t)
	ctx := context.Background()

	_, err := l.CreateJob(ctx, client, artisan, "Too expensive", 9_000_000)
	if !errors.Is(err, escrow.ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}

	var jobs int64
	s.DB.Model(&models.Job{}).Count(&jobs)
	if jobs != 0 {
		t.Fatalf("expected no job rows, got %d", jobs)
	}
	cfg, _ := l.GetConfig(ctx)
	if cfg.NextJobID != 0 {
		t.Fatalf("expected job counter rolled back, got %d", cfg.NextJobID)
	}
	acc, _ := l.GetAccount(ctx, client)
	if acc.Balance != 5_000_000 {
		t.Fatalf("expected client balance untouched, got %d", acc.Balance)
	}
}

func TestClaimedAtRoundTrips(t *testing.T) {
	l, _, clk := newLedger(t)
	ctx := context.Background()

	id, err := l.CreateJob(ctx, client, artisan, "Paint the fence", 1_000)
	if err != nil {
		t.Fatalf("create job: %v", err)
	}
	clk.Advance(7 * 24 * time.Hour)
	claimed := clk.Now()
	if err := l.ClaimJobAfterTimeout(ctx, artisan, id); err != nil {
		t.Fatalf("claim: %v", err)
	}

	job, err := l.GetJob(ctx, id)
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if job.Status != models.JobClaimedByArtisan || !job.ClaimedAt.Equal(claimed) {
		t.Fatalf("expected claimed at %v, got %s at %v", claimed, job.Status, job.ClaimedAt)
	}

	clk.Advance(3*24*time.Hour + time.Second)
	if err := l.FinalizeClaimedJob(ctx, artisan, id); err != nil {
		t.Fatalf("finalize: %v", err)
	}
}

func TestWalletHistoryNewestFirst(t *testing.T) {
	l, _, clk := newLedger(t)
	ctx := context.Background()

	clk.Advance(time.Minute)
	if err := l.WithdrawBalance(ctx, client, 1_000); err != nil {
		t.Fatalf("withdraw balance: %v", err)
	}
	rows, err := l.WalletHistory(ctx, client, 10)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(rows) != 2 || rows[0].Type != models.WalletTrxWithdrawal {
		t.Fatalf("unexpected history %+v", rows)
	}
}
