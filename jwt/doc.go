// Package jwt signs and verifies session cookie values. A signed cookie carries
// the session id in the "sid" claim and the session expiry in "exp", so a
// tampered or expired cookie is rejected before any store lookup.
package jwt
