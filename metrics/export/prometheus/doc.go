// Package prometheus renders sessionjwt engine metrics in Prometheus text exposition
// format.
//
// [NewPrometheusExporter] accepts a [sessionjwt.Engine] and exposes an [http.Handler].
// Counter names are prefixed sessionjwt_ and end in _total; the single histogram is
// sessionjwt_verify_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry. Callers mount the Handler.
//   - Mutate engine state.
package prometheus
