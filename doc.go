// Package goGate is an HTTP request authentication gate. Before a protected
// handler runs, a [Gate] decides whether the caller is authenticated, resolves
// the caller's [User] through the configured [Strategy] and maps the outcome to
// proceed, 401 or 403.
//
// The Gate is safe to call from multiple goroutines after initialization
// through [Builder.Build]. The active strategy is chosen once, at Build, from
// [Config.Strategy] and never changes afterwards.
//
// # Strategies
//
//   - [StrategyDisabled]: no gate; every request proceeds anonymously.
//   - [StrategyNull]: every protected route fails closed.
//   - [StrategyBasic]: HTTP Basic credentials checked against a [UserRepository].
//   - [StrategySession]: session cookie over an in-memory store, no expiry.
//   - [StrategySessionExpiring]: same, with a fixed session lifetime.
//   - [StrategySessionPersisted]: same lifetime semantics over a durable
//     session.Backend.
//
// # Login throttle
//
// With [Builder.WithLoginThrottle], failed logins are counted in Redis per
// identifier and per client IP. Once a window's budget is spent, Login
// returns [ErrLoginRateLimited] until the window expires.
//
// # Architecture boundaries
//
// goGate owns decisions. Credential decoding lives in credentials/, path
// exemptions in exclusion/, session storage in session/ and HTTP adapters in
// middleware/.
//
// # What this package must NOT do
//
//   - Persist users or hash passwords (the [UserRepository] does that).
//   - Surface collaborator errors from Evaluate; failures resolve to "no user".
//   - Keep process-wide mutable state outside a Gate.
package goGate
