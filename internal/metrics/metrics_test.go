package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/Windi-Fikriyansyah/anywork_escrow/internal/models"
)

func TestRecorderCounts(t *testing.T) {
	m := New()
	m.JobTransition(models.JobActive)
	m.JobTransition(models.JobCompleted)
	m.JobTransition(models.JobCompleted)
	m.FundsMoved(models.WalletTrxPayout, 950_000)
	m.FundsMoved(models.WalletTrxPayout, 50)

	if got := testutil.ToFloat64(m.transitions.WithLabelValues("completed")); got != 2 {
		t.Fatalf("expected 2 completed transitions, got %v", got)
	}
	if got := testutil.ToFloat64(m.moved.WithLabelValues("payout")); got != 950_050 {
		t.Fatalf("expected 950050 units paid out, got %v", got)
	}
	if got := testutil.ToFloat64(m.movements.WithLabelValues("payout")); got != 2 {
		t.Fatalf("expected 2 payout rows, got %v", got)
	}
}

func TestHandlerExposesCounters(t *testing.T) {
	m := New()
	m.JobTransition(models.JobCancelled)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `escrow_job_transitions_total{status="cancelled"} 1`) {
		t.Fatalf("metric missing from exposition:\n%s", body)
	}
}
