package internaldefs

import (
	"github.com/MrEthical07/sessionjwt"
)

// CounterDef binds a counter to its exported name.
type CounterDef struct {
	ID   sessionjwt.MetricID
	Name string
	Help string
}

// HistogramDef binds a latency histogram to its exported name.
type HistogramDef struct {
	ID   sessionjwt.MetricID
	Name string
	Help string
}

// AuditDroppedName is the counter fed by Engine.AuditDropped.
const AuditDroppedName = "sessionjwt_audit_dropped_total"

// AuditDroppedHelp describes [AuditDroppedName].
const AuditDroppedHelp = "Dropped audit events due to dispatcher backpressure."

// OpenConnectionsName is the gauge fed by Engine.OpenConnections.
const OpenConnectionsName = "sessionjwt_open_connections"

// OpenConnectionsHelp describes [OpenConnectionsName].
const OpenConnectionsHelp = "Connections opened and not yet closed."

// CounterDefs lists every exported counter in snapshot order.
var CounterDefs = []CounterDef{
	{ID: sessionjwt.MetricConnOpened, Name: "sessionjwt_conn_opened_total", Help: "Connections opened."},
	{ID: sessionjwt.MetricConnClosed, Name: "sessionjwt_conn_closed_total", Help: "Connections closed."},
	{ID: sessionjwt.MetricKeyConfigured, Name: "sessionjwt_key_configured_total", Help: "Verification keys configured by Init."},
	{ID: sessionjwt.MetricKeyRejected, Name: "sessionjwt_key_rejected_total", Help: "Init calls that failed."},
	{ID: sessionjwt.MetricSessionInitSuccess, Name: "sessionjwt_session_init_success_total", Help: "Tokens verified and stored."},
	{ID: sessionjwt.MetricSessionInitFailure, Name: "sessionjwt_session_init_failure_total", Help: "JWTSessionInit calls that failed."},
	{ID: sessionjwt.MetricMalformedToken, Name: "sessionjwt_malformed_token_total", Help: "Tokens rejected as structurally malformed."},
	{ID: sessionjwt.MetricAlgorithmRejected, Name: "sessionjwt_algorithm_rejected_total", Help: "Tokens declaring an unsupported algorithm."},
	{ID: sessionjwt.MetricSignatureRejected, Name: "sessionjwt_signature_rejected_total", Help: "Tokens whose signature did not verify."},
	{ID: sessionjwt.MetricSessionInitThrottled, Name: "sessionjwt_session_init_throttled_total", Help: "JWTSessionInit calls refused by the failure throttle."},
	{ID: sessionjwt.MetricFallbackResolved, Name: "sessionjwt_fallback_resolved_total", Help: "Identity queries answered from the claims parameter."},
	{ID: sessionjwt.MetricFallbackNull, Name: "sessionjwt_fallback_null_total", Help: "Claims parameter reads that yielded no identity."},
}

// HistogramDefs lists the exported latency histograms.
var HistogramDefs = []HistogramDef{
	{ID: sessionjwt.MetricVerifyLatency, Name: "sessionjwt_verify_latency_seconds", Help: "Token verification latency histogram."},
}

// HistogramBounds are the upper bucket bounds in seconds, matching the engine's
// microsecond buckets.
var HistogramBounds = []string{
	"0.00005",
	"0.0001",
	"0.00025",
	"0.0005",
	"0.001",
	"0.0025",
	"0.005",
	"+Inf",
}

// HistogramBoundSuffix names each bound in instrument names.
var HistogramBoundSuffix = []string{
	"0_00005",
	"0_0001",
	"0_00025",
	"0_0005",
	"0_001",
	"0_0025",
	"0_005",
	"inf",
}

// NormalizeBuckets copies raw into a fixed eight-bucket array, zero-filling missing
// buckets and ignoring extras.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts into running totals.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
