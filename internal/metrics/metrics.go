// Package metrics exposes escrow activity to Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Windi-Fikriyansyah/anywork_escrow/internal/models"
)

// Escrow implements escrow.Recorder.
type Escrow struct {
	registry    *prometheus.Registry
	transitions *prometheus.CounterVec
	moved       *prometheus.CounterVec
	movements   *prometheus.CounterVec
}

func New() *Escrow {
	m := &Escrow{
		registry: prometheus.NewRegistry(),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "escrow",
			Name:      "job_transitions_total",
			Help:      "Committed job status changes by target status.",
		}, []string{"status"}),
		moved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "escrow",
			Name:      "funds_moved_units_total",
			Help:      "Minor currency units moved by wallet entry type.",
		}, []string{"type"}),
		movements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "escrow",
			Name:      "wallet_entries_total",
			Help:      "Wallet ledger rows written by type.",
		}, []string{"type"}),
	}
	m.registry.MustRegister(
		m.transitions,
		m.moved,
		m.movements,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Escrow) JobTransition(to models.JobStatus) {
	m.transitions.WithLabelValues(to.String()).Inc()
}

func (m *Escrow) FundsMoved(kind models.WalletTrxType, amount int64) {
	m.movements.WithLabelValues(string(kind)).Inc()
	m.moved.WithLabelValues(string(kind)).Add(float64(amount))
}

// Handler serves the registry in the Prometheus text format.
func (m *Escrow) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
