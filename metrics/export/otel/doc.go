// Package otel publishes goGate counters through an OpenTelemetry meter.
//
// Related counters share one Int64ObservableCounter and are told apart by
// attribute:
//
//	gogate.requests       decision=authenticated|anonymous|exempt|unauthenticated|forbidden
//	gogate.logins         outcome=success|failure|rate_limited
//	gogate.sessions       operation=created|destroyed
//	gogate.audit.dropped  kind=<audit kind>
//
// Evaluation latency is exported as a cumulative gauge keyed by "le" plus a
// sample count. A single callback reads Gate.MetricsSnapshot on every
// collection. Callers own the MeterProvider.
package otel
