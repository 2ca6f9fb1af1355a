// Package internal holds helpers private to goGate.
//
// # Sub-packages
//
//   - audit: asynchronous event dispatch (Dispatcher and Sink implementations)
//   - config: Viper environment loader for cmd/gogate
//   - logging: slog handler that redacts PII attributes
//   - metrics: lock-free counters and the evaluation latency histogram
//   - rate: Redis fixed-window throttle for failed logins
package internal
