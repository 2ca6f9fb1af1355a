// Package middleware exposes HTTP adapters for a goGate.Gate.
//
// # Guards
//
//   - [Guard] wraps a net/http handler.
//   - [GinGuard] adapts the same decision to a gin engine.
//
// Both call Gate.Evaluate once per request. A 401 or 403 decision ends the
// request with a JSON error body; otherwise the resolved user, if any, is
// attached to the request context and the next handler runs.
//
// # Session endpoints
//
// [LoginHandler] and [LogoutHandler] expose Gate.Login and Gate.Logout as
// form-encoded endpoints.
//
// This package makes no authentication decisions of its own.
package middleware
