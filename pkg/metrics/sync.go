package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SyncMetrics records sync pass outcomes per platform set.
type SyncMetrics struct {
	passDuration  *prometheus.HistogramVec
	passOutcome   *prometheus.CounterVec
	conflicts     *prometheus.CounterVec
	oversells     prometheus.Counter
	lockContended prometheus.Counter
}

// NewSyncMetrics registers the sync engine metrics on the provided registerer.
func NewSyncMetrics(reg prometheus.Registerer) *SyncMetrics {
	if reg == nil {
		return &SyncMetrics{}
	}
	passDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sync_pass_duration_seconds",
		Help:    "Duration of item sync passes in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"trigger"})
	passOutcome := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sync_pass_total",
		Help: "Sync passes by terminal outcome.",
	}, []string{"outcome"})
	conflicts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sync_conflicts_total",
		Help: "Detected conflicts by type.",
	}, []string{"type"})
	oversells := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "inventory_oversell_total",
		Help: "Order decrements that overshot the on-hand quantity.",
	})
	lockContended := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sync_lock_contention_total",
		Help: "Sync attempts rejected because the item lock was held.",
	})
	reg.MustRegister(passDuration, passOutcome, conflicts, oversells, lockContended)
	return &SyncMetrics{
		passDuration:  passDuration,
		passOutcome:   passOutcome,
		conflicts:     conflicts,
		oversells:     oversells,
		lockContended: lockContended,
	}
}

// ObservePass records a finished pass with its trigger (bulk, order, manual).
func (s *SyncMetrics) ObservePass(trigger string, duration time.Duration) {
	if s == nil || s.passDuration == nil {
		return
	}
	s.passDuration.WithLabelValues(normalizeLabel(trigger)).Observe(duration.Seconds())
}

// IncOutcome counts a terminal pass outcome (completed, failed, conflict, locked).
func (s *SyncMetrics) IncOutcome(outcome string) {
	if s == nil || s.passOutcome == nil {
		return
	}
	s.passOutcome.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncConflict counts a detected conflict by type.
func (s *SyncMetrics) IncConflict(conflictType string) {
	if s == nil || s.conflicts == nil {
		return
	}
	s.conflicts.WithLabelValues(normalizeLabel(conflictType)).Inc()
}

// IncOversell counts an oversold decrement.
func (s *SyncMetrics) IncOversell() {
	if s == nil || s.oversells == nil {
		return
	}
	s.oversells.Inc()
}

// IncLockContention counts a pass rejected on lock acquisition.
func (s *SyncMetrics) IncLockContention() {
	if s == nil || s.lockContended == nil {
		return
	}
	s.lockContended.Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
