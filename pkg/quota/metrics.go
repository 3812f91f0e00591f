package quota

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains Prometheus metrics for the quota package.
//
// Metrics deliberately avoid a per-user label: user IDs are unbounded
// and would blow up series cardinality. Denial reasons and interaction
// kinds are the interesting dimensions.
type Metrics struct {
	admissionChecks  *prometheus.CounterVec
	admissionDenials *prometheus.CounterVec

	commits          prometheus.Counter
	secondsCommitted *prometheus.CounterVec

	savingsAccrued      prometheus.Counter
	bonusMinutesAwarded prometheus.Counter

	checkDuration *prometheus.HistogramVec
}

// NewMetrics creates quota metrics registered on the default registry.
func NewMetrics() *Metrics {
	return NewMetricsWithRegistry(prometheus.DefaultRegisterer)
}

// NewMetricsWithRegistry creates quota metrics on a specific registry.
// Tests use this with prometheus.NewRegistry to avoid duplicate
// registration panics.
func NewMetricsWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		admissionChecks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "meterd_quota_admission_checks_total",
				Help: "Total number of admission checks performed",
			},
			[]string{"result"},
		),

		admissionDenials: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "meterd_quota_admission_denials_total",
				Help: "Total number of admission denials by reason",
			},
			[]string{"reason"},
		),

		commits: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "meterd_quota_commits_total",
				Help: "Total number of committed interactions",
			},
		),

		secondsCommitted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "meterd_quota_seconds_committed_total",
				Help: "Total voice seconds committed to the ledger",
			},
			[]string{"kind"},
		),

		savingsAccrued: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "meterd_quota_savings_accrued_total",
				Help: "Total savings accrued toward bonus minutes, in currency units",
			},
		),

		bonusMinutesAwarded: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "meterd_quota_bonus_minutes_awarded_total",
				Help: "Total whole bonus minutes awarded",
			},
		),

		checkDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "meterd_quota_operation_duration_seconds",
				Help:    "Latency of quota operations",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordCheck records an admission check outcome. Nil-safe.
func (m *Metrics) RecordCheck(decision *Decision, seconds float64) {
	if m == nil {
		return
	}

	if decision.Allowed {
		m.admissionChecks.WithLabelValues("allowed").Inc()
	} else {
		m.admissionChecks.WithLabelValues("denied").Inc()
		m.admissionDenials.WithLabelValues(string(decision.Reason)).Inc()
	}
	m.checkDuration.WithLabelValues("check").Observe(seconds)
}

// RecordCommit records a committed interaction. Nil-safe.
func (m *Metrics) RecordCommit(event Event, receipt *Receipt, seconds float64) {
	if m == nil {
		return
	}

	m.commits.Inc()
	m.secondsCommitted.WithLabelValues(string(KindInput)).Add(event.InputSeconds)
	m.secondsCommitted.WithLabelValues(string(KindOutput)).Add(event.OutputSeconds)
	m.savingsAccrued.Add(receipt.Cost.Savings)
	m.bonusMinutesAwarded.Add(float64(receipt.BonusMinutesAwarded))
	m.checkDuration.WithLabelValues("commit").Observe(seconds)
}
