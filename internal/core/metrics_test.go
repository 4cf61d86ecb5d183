package core

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestExpvarMetricsRecorderAggregates(t *testing.T) {
	rec := NewExpvarMetricsRecorder("")
	rec.ObserveDuration("package_run", 1500*time.Millisecond)
	rec.ObserveDuration("package_run", 500*time.Millisecond)
	rec.IncResult("package_run", "ok")
	rec.IncResult("package_run", "ok")
	rec.IncResult("package_run", "error")

	snap := rec.Snapshot()
	if got := snap.DurationsMS["package_run"]; got != 2000 {
		t.Fatalf("expected 2000ms total, got %v", got)
	}
	if snap.Results["package_run"]["ok"] != 2 || snap.Results["package_run"]["error"] != 1 {
		t.Fatalf("unexpected result counters: %v", snap.Results)
	}
}

func TestExpvarMetricsSnapshotIsCopy(t *testing.T) {
	rec := NewExpvarMetricsRecorder("")
	rec.IncResult("op", "ok")
	snap := rec.Snapshot()
	snap.Results["op"]["ok"] = 99
	if rec.Snapshot().Results["op"]["ok"] != 1 {
		t.Fatalf("snapshot must be detached from the recorder")
	}
}

func TestPrometheusMetricsRecorderRegisters(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec, err := NewPrometheusMetricsRecorder(reg)
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}
	rec.ObserveDuration("ingest_run", 250*time.Millisecond)
	rec.IncResult("ingest_run", "ok")

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	names := map[string]bool{}
	for _, mf := range families {
		names[mf.GetName()] = true
	}
	if !names["limscore_operation_duration_seconds"] || !names["limscore_operation_results_total"] {
		t.Fatalf("expected both collectors registered, got %v", names)
	}

	if _, err := NewPrometheusMetricsRecorder(reg); err == nil {
		t.Fatalf("expected duplicate registration to fail")
	}
}
