// Package prometheus exports goGate counters through client_golang.
//
// [Collector] implements prometheus.Collector. Register it on your own
// registry, or mount [Collector.Handler] which serves a private one. Counter
// names are gogate_*_total; the single histogram is
// gogate_evaluate_latency_seconds.
package prometheus
