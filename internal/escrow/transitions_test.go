package escrow

import (
	"math"
	"testing"

	"github.com/Windi-Fikriyansyah/anywork_escrow/internal/models"
)

func TestSplitPayoutTruncates(t *testing.T) {
	tests := []struct {
		amount  int64
		percent int
		net     int64
	}{
		{amount: 1_000_000, percent: 5, net: 950_000},
		{amount: 1, percent: 5, net: 0},
		{amount: 199, percent: 5, net: 189},
		{amount: 12345, percent: 0, net: 12345},
		{amount: 12345, percent: 50, net: 6172},
		{amount: 999, percent: 33, net: 669},
	}

	for _, tt := range tests {
		net, fee := splitPayout(tt.amount, tt.percent)
		if net != tt.net {
			t.Fatalf("splitPayout(%d, %d): expected net %d, got %d", tt.amount, tt.percent, tt.net, net)
		}
		if net+fee != tt.amount {
			t.Fatalf("splitPayout(%d, %d): net %d + fee %d != amount", tt.amount, tt.percent, net, fee)
		}
		if want := tt.amount * int64(100-tt.percent) / 100; net != want {
			t.Fatalf("splitPayout(%d, %d): expected %d from direct formula, got %d", tt.amount, tt.percent, want, net)
		}
	}
}

func TestSplitPayoutLargeAmountDoesNotOverflow(t *testing.T) {
	amount := int64(math.MaxInt64 - 7)
	net, fee := splitPayout(amount, 5)
	if net <= 0 || fee <= 0 || net+fee != amount {
		t.Fatalf("unexpected split of %d: net %d fee %d", amount, net, fee)
	}
}

func TestTransitionTable(t *testing.T) {
	all := []models.JobStatus{
		models.JobActive, models.JobCompleted, models.JobWithdrawn,
		models.JobClaimedByArtisan, models.JobDisputed, models.JobCancelled,
	}
	allowed := map[[2]models.JobStatus]bool{
		{models.JobActive, models.JobCompleted}:           true,
		{models.JobActive, models.JobCancelled}:           true,
		{models.JobActive, models.JobClaimedByArtisan}:    true,
		{models.JobCompleted, models.JobWithdrawn}:        true,
		{models.JobClaimedByArtisan, models.JobDisputed}:  true,
		{models.JobClaimedByArtisan, models.JobWithdrawn}: true,
	}

	for _, from := range all {
		for _, to := range all {
			if got := canTransition(from, to); got != allowed[[2]models.JobStatus{from, to}] {
				t.Fatalf("canTransition(%s, %s) = %v", from, to, got)
			}
		}
		if from.Terminal() && len(successors(from)) != 0 {
			t.Fatalf("terminal status %s has successors", from)
		}
	}
}
