package otel

import (
	"context"
	"sync"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/MrEthical07/sessionjwt"
)

type fakeSource struct {
	mu       sync.RWMutex
	snapshot sessionjwt.MetricsSnapshot
	dropped  uint64
	open     int64
}

func (f *fakeSource) MetricsSnapshot() sessionjwt.MetricsSnapshot {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := sessionjwt.MetricsSnapshot{
		Counters:   make(map[sessionjwt.MetricID]uint64, len(f.snapshot.Counters)),
		Histograms: make(map[sessionjwt.MetricID][]uint64, len(f.snapshot.Histograms)),
	}
	for k, v := range f.snapshot.Counters {
		out.Counters[k] = v
	}
	for k, buckets := range f.snapshot.Histograms {
		next := make([]uint64, len(buckets))
		copy(next, buckets)
		out.Histograms[k] = next
	}
	return out
}

func (f *fakeSource) AuditDropped() uint64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.dropped
}

func (f *fakeSource) OpenConnections() int64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.open
}

func newTestMeter() (*sdkmetric.ManualReader, *sdkmetric.MeterProvider) {
	reader := sdkmetric.NewManualReader()
	return reader, sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
}

func findInt64(rm metricdata.ResourceMetrics, name string) (int64, bool) {
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				if len(data.DataPoints) > 0 {
					return data.DataPoints[0].Value, true
				}
			case metricdata.Gauge[int64]:
				if len(data.DataPoints) > 0 {
					return data.DataPoints[0].Value, true
				}
			}
		}
	}
	return 0, false
}

func TestExporterRegistersAndCollects(t *testing.T) {
	reader, provider := newTestMeter()
	meter := provider.Meter("sessionjwt-test")

	src := &fakeSource{
		snapshot: sessionjwt.MetricsSnapshot{
			Counters: map[sessionjwt.MetricID]uint64{
				sessionjwt.MetricSessionInitSuccess: 3,
			},
			Histograms: map[sessionjwt.MetricID][]uint64{
				sessionjwt.MetricVerifyLatency: {1, 1, 1, 1, 1, 1, 1, 1},
			},
		},
		dropped: 1,
		open:    4,
	}

	exp, err := NewOTelExporterFromSource(meter, src)
	if err != nil {
		t.Fatalf("NewOTelExporterFromSource failed: %v", err)
	}
	defer func() {
		if err := exp.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}
	}()

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect failed: %v", err)
	}

	checks := map[string]int64{
		"sessionjwt_session_init_success_total":           3,
		"sessionjwt_audit_dropped_total":                  1,
		"sessionjwt_open_connections":                     4,
		"sessionjwt_verify_latency_seconds_bucket_le_inf": 8,
		"sessionjwt_verify_latency_seconds_count":         8,
	}
	for name, want := range checks {
		got, ok := findInt64(rm, name)
		if !ok || got != want {
			t.Errorf("%s = %d (found %v), want %d", name, got, ok, want)
		}
	}
}

func TestExporterRejectsNilInputs(t *testing.T) {
	_, provider := newTestMeter()
	meter := provider.Meter("sessionjwt-test")

	if _, err := NewOTelExporterFromSource(meter, nil); err != ErrNilSource {
		t.Fatalf("expected ErrNilSource, got %v", err)
	}
	if _, err := NewOTelExporterFromSource(nil, &fakeSource{}); err != ErrNilMeter {
		t.Fatalf("expected ErrNilMeter, got %v", err)
	}
}

func TestExporterConcurrentCollectNoPanic(t *testing.T) {
	reader, provider := newTestMeter()
	meter := provider.Meter("sessionjwt-test")

	src := &fakeSource{
		snapshot: sessionjwt.MetricsSnapshot{
			Counters: map[sessionjwt.MetricID]uint64{
				sessionjwt.MetricFallbackResolved: 1,
			},
			Histograms: map[sessionjwt.MetricID][]uint64{
				sessionjwt.MetricVerifyLatency: {1, 0, 0, 0, 0, 0, 0, 0},
			},
		},
	}

	exp, err := NewOTelExporterFromSource(meter, src)
	if err != nil {
		t.Fatalf("NewOTelExporterFromSource failed: %v", err)
	}
	defer func() {
		if err := exp.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(v uint64) {
			defer wg.Done()
			src.mu.Lock()
			src.snapshot.Counters[sessionjwt.MetricFallbackResolved] = v
			src.mu.Unlock()

			var rm metricdata.ResourceMetrics
			_ = reader.Collect(context.Background(), &rm)
		}(uint64(i + 1))
	}
	wg.Wait()
}
