// Package session owns the server-side session lifecycle: creation, lookup,
// lazy expiration, destruction and optional durable persistence.
//
// # Stores
//
//   - [MemoryStore] keeps sessions in process memory (lost on restart).
//   - [PersistentStore] writes through to a [Backend] on every Create and
//     Destroy and reads through on every Lookup. [RedisBackend] and
//     [PostgresBackend] are provided.
//
// Both stores honor the same contract: Lookup of an expired session returns
// [ErrNotFound] exactly like a session that never existed. There is no
// background sweeper; expired records are evicted on the next read.
//
// # Cookies
//
// [SetCookie] and [ClearCookie] issue and clear the session cookie. A
// [CookieCodec] turns a session id into a cookie value and back;
// [PlainCookieCodec] uses the id verbatim.
//
// # What this package must NOT do
//
//   - Resolve user records or verify passwords.
//   - Decide whether a request is authorized.
package session
