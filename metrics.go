package sessionjwt

import (
	"sync/atomic"
	"time"
)

// MetricID identifies a counter in [Metrics].
type MetricID uint16

const (
	// MetricConnOpened counts connections opened with Engine.Open.
	MetricConnOpened MetricID = iota
	// MetricConnClosed counts connections closed.
	MetricConnClosed
	// MetricKeyConfigured counts successful Init calls.
	MetricKeyConfigured
	// MetricKeyRejected counts failed Init calls.
	MetricKeyRejected
	// MetricSessionInitSuccess counts JWTSessionInit calls that stored claims.
	MetricSessionInitSuccess
	// MetricSessionInitFailure counts JWTSessionInit calls that failed for any reason.
	MetricSessionInitFailure
	// MetricMalformedToken counts tokens rejected by the codec or size limit.
	MetricMalformedToken
	// MetricAlgorithmRejected counts tokens whose header declared a foreign algorithm.
	MetricAlgorithmRejected
	// MetricSignatureRejected counts tokens whose signature did not verify.
	MetricSignatureRejected
	// MetricSessionInitThrottled counts JWTSessionInit calls refused by the failure throttle.
	MetricSessionInitThrottled
	// MetricFallbackResolved counts identity queries answered from the claims parameter.
	MetricFallbackResolved
	// MetricFallbackNull counts fallback reads that degraded to null.
	MetricFallbackNull
	// MetricVerifyLatency is the histogram of token verification time.
	MetricVerifyLatency
	metricIDCount
)

const (
	histBucketCount = 8
	cacheLineSize   = 64
)

type metricHistogram struct {
	buckets [histBucketCount]uint64
}

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics holds lock-free counters shared by every connection of an [Engine].
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [metricIDCount]paddedCounter
	histograms    [metricIDCount]metricHistogram
}

// MetricsSnapshot is a point-in-time copy of [Metrics].
type MetricsSnapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

// NewMetrics returns Metrics configured by cfg.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatencyHistograms,
	}
}

// Enabled reports whether counters are recorded.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// LatencyEnabled reports whether the verify latency histogram is recorded.
func (m *Metrics) LatencyEnabled() bool {
	return m != nil && m.enableLatency
}

// Inc adds one to counter id.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Observe records d in the histogram for id. Only [MetricVerifyLatency] has a histogram.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.enabled || !m.enableLatency || id >= metricIDCount {
		return
	}
	if id != MetricVerifyLatency {
		return
	}

	b := bucketIndex(d)
	atomic.AddUint64(&m.histograms[id].buckets[b], 1)
}

// Value returns the current value of counter id.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot copies every counter and, when enabled, the latency histogram buckets.
// Buckets are not cumulative.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil || !m.enabled {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}

	s := MetricsSnapshot{
		Counters:   make(map[MetricID]uint64, int(metricIDCount)),
		Histograms: make(map[MetricID][]uint64, 1),
	}

	for id := MetricID(0); id < metricIDCount; id++ {
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}

	if m.enableLatency {
		buckets := make([]uint64, histBucketCount)
		for i := 0; i < histBucketCount; i++ {
			buckets[i] = atomic.LoadUint64(&m.histograms[MetricVerifyLatency].buckets[i])
		}
		s.Histograms[MetricVerifyLatency] = buckets
	}

	return s
}

// Bounds: 50µs, 100µs, 250µs, 500µs, 1ms, 2.5ms, 5ms, +Inf.
func bucketIndex(d time.Duration) int {
	us := d.Microseconds()

	switch {
	case us <= 50:
		return 0
	case us <= 100:
		return 1
	case us <= 250:
		return 2
	case us <= 500:
		return 3
	case us <= 1000:
		return 4
	case us <= 2500:
		return 5
	case us <= 5000:
		return 6
	default:
		return 7
	}
}
