package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordExport(t *testing.T) {
	m := NewPipelineMetrics(prometheus.NewRegistry())

	m.RecordExport("shopify", "done")
	m.RecordExport("shopify", "done")
	m.RecordExport("internal", "failed")

	if got := testutil.ToFloat64(m.ExportsTotal.WithLabelValues("shopify", "done")); got != 2 {
		t.Errorf("expected 2 shopify exports, got %v", got)
	}
	if got := testutil.ToFloat64(m.ExportsTotal.WithLabelValues("internal", "failed")); got != 1 {
		t.Errorf("expected 1 failed internal export, got %v", got)
	}
}

func TestRecordProviderCallCountsFailuresOnly(t *testing.T) {
	m := NewPipelineMetrics(prometheus.NewRegistry())

	m.RecordProviderCall("shopify", time.Now(), "")
	m.RecordProviderCall("shopify", time.Now(), "auth_failed")

	if got := testutil.ToFloat64(m.ProviderFailuresTotal.WithLabelValues("shopify", "auth_failed")); got != 1 {
		t.Errorf("expected 1 failure, got %v", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *PipelineMetrics
	m.RecordExport("shopify", "done")
	m.RecordGateDecision("unknown")
	m.RecordVisit()
}
