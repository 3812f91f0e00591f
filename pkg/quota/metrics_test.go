package quota

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"vaani-hq/meterd/pkg/quota/cost"
)

func TestMetrics_RecordCheck(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetricsWithRegistry(reg)

	m.RecordCheck(&Decision{Allowed: true}, 0.001)
	m.RecordCheck(&Decision{Allowed: false, Reason: ReasonDailyQuotaExceeded}, 0.001)
	m.RecordCheck(&Decision{Allowed: false, Reason: ReasonDailyQuotaExceeded}, 0.001)

	if got := testutil.ToFloat64(m.admissionChecks.WithLabelValues("allowed")); got != 1 {
		t.Errorf("Expected 1 allowed check, got %v", got)
	}
	if got := testutil.ToFloat64(m.admissionChecks.WithLabelValues("denied")); got != 2 {
		t.Errorf("Expected 2 denied checks, got %v", got)
	}
	if got := testutil.ToFloat64(m.admissionDenials.WithLabelValues(string(ReasonDailyQuotaExceeded))); got != 2 {
		t.Errorf("Expected 2 daily-quota denials, got %v", got)
	}
}

func TestMetrics_RecordCommit(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetricsWithRegistry(reg)

	receipt := &Receipt{
		Cost:                cost.Breakdown{Savings: 0.48},
		BonusMinutesAwarded: 1,
	}
	m.RecordCommit(Event{InputSeconds: 12, OutputSeconds: 48}, receipt, 0.002)

	if got := testutil.ToFloat64(m.commits); got != 1 {
		t.Errorf("Expected 1 commit, got %v", got)
	}
	if got := testutil.ToFloat64(m.secondsCommitted.WithLabelValues("input")); got != 12 {
		t.Errorf("Expected 12 input seconds, got %v", got)
	}
	if got := testutil.ToFloat64(m.secondsCommitted.WithLabelValues("output")); got != 48 {
		t.Errorf("Expected 48 output seconds, got %v", got)
	}
	if got := testutil.ToFloat64(m.savingsAccrued); got != 0.48 {
		t.Errorf("Expected 0.48 savings accrued, got %v", got)
	}
	if got := testutil.ToFloat64(m.bonusMinutesAwarded); got != 1 {
		t.Errorf("Expected 1 bonus minute, got %v", got)
	}
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics

	// Must not panic when metrics are disabled.
	m.RecordCheck(&Decision{Allowed: true}, 0)
	m.RecordCommit(Event{}, &Receipt{}, 0)
}
