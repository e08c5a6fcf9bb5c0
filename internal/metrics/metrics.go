// Package metrics exposes the Prometheus instrumentation spec.md §10 names:
// StateStore occupancy and eviction counts, and outcome counts by packet
// kind from the SessionMachine.
//
// Grounded on the pre-fetch engine's Metrics type: a sync.Once-guarded
// package-level instance built from promauto constructors, one struct field
// per series, and Record*/Set* methods hiding the label plumbing from
// callers.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vitalvas/tacacsd/internal/statusmap"
)

var (
	global *Metrics
	once   sync.Once
)

// Metrics holds every series tacacsd registers with Prometheus.
type Metrics struct {
	StateStoreSize      prometheus.Gauge
	StateStoreEvictions prometheus.Counter
	StateStoreRejected  prometheus.Counter

	OutcomesTotal *prometheus.CounterVec

	ConnectionsActive prometheus.Gauge
	ConnectionsTotal  prometheus.Counter
}

// New returns the process-wide Metrics, registering its series with the
// default registry on first call.
func New() *Metrics {
	once.Do(func() {
		global = &Metrics{
			StateStoreSize: promauto.NewGauge(prometheus.GaugeOpts{
				Name: "tacacsd_state_store_size",
				Help: "Current number of live multi-round conversations held by the state store.",
			}),
			StateStoreEvictions: promauto.NewCounter(prometheus.CounterOpts{
				Name: "tacacsd_state_store_evictions_total",
				Help: "Total number of state store entries reaped for exceeding their timeout.",
			}),
			StateStoreRejected: promauto.NewCounter(prometheus.CounterOpts{
				Name: "tacacsd_state_store_rejected_total",
				Help: "Total number of state store allocations rejected because the store was at capacity.",
			}),
			OutcomesTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "tacacsd_outcomes_total",
					Help: "Total number of SessionMachine outcomes, by packet kind and outcome.",
				},
				[]string{"kind", "outcome"},
			),
			ConnectionsActive: promauto.NewGauge(prometheus.GaugeOpts{
				Name: "tacacsd_connections_active",
				Help: "Current number of open client connections.",
			}),
			ConnectionsTotal: promauto.NewCounter(prometheus.CounterOpts{
				Name: "tacacsd_connections_total",
				Help: "Total number of client connections accepted.",
			}),
		}
	})
	return global
}

// RecordOutcome increments the per-kind, per-outcome counter.
func (m *Metrics) RecordOutcome(kind statusmap.PacketKind, outcome statusmap.Outcome) {
	m.OutcomesTotal.WithLabelValues(kind.String(), outcomeLabel(outcome)).Inc()
}

// RecordReplyStatus increments the per-kind counter using the literal
// status string the StatusMapper wrote into a reply (e.g. "Pass",
// "Pass-Repl", "Success"), for callers that only have the wire-level
// status rather than the statusmap.Outcome that produced it.
func (m *Metrics) RecordReplyStatus(kind statusmap.PacketKind, status string) {
	if status == "" {
		status = "unknown"
	}
	m.OutcomesTotal.WithLabelValues(kind.String(), status).Inc()
}

// SetStateStoreSize updates the state store occupancy gauge.
func (m *Metrics) SetStateStoreSize(n int) {
	m.StateStoreSize.Set(float64(n))
}

// RecordEvictions adds n to the eviction counter.
func (m *Metrics) RecordEvictions(n int) {
	if n > 0 {
		m.StateStoreEvictions.Add(float64(n))
	}
}

// RecordRejected increments the capacity-rejection counter.
func (m *Metrics) RecordRejected() {
	m.StateStoreRejected.Inc()
}

// RecordConnectionOpened increments the connection counters.
func (m *Metrics) RecordConnectionOpened() {
	m.ConnectionsTotal.Inc()
	m.ConnectionsActive.Inc()
}

// RecordConnectionClosed decrements the active-connection gauge.
func (m *Metrics) RecordConnectionClosed() {
	m.ConnectionsActive.Dec()
}

func outcomeLabel(o statusmap.Outcome) string {
	switch o {
	case statusmap.OK:
		return "ok"
	case statusmap.Fail:
		return "fail"
	case statusmap.Reject:
		return "reject"
	case statusmap.UserLock:
		return "userlock"
	case statusmap.Invalid:
		return "invalid"
	case statusmap.Handled:
		return "handled"
	case statusmap.Noop:
		return "noop"
	case statusmap.NotFound:
		return "notfound"
	case statusmap.Updated:
		return "updated"
	default:
		return "unknown"
	}
}
