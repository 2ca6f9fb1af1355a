// Package rate throttles failed logins with Redis fixed-window counters.
//
// # Window semantics
//
// INCR plus EXPIRE on the first hit of a window. Keys:
//   - gl:<hash>  failed logins per identifier
//   - gli:<ip>   failed logins per client IP
//
// Identifiers are hashed before they become keys so emails never appear in
// Redis.
package rate
