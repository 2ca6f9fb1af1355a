// Package credentials decodes HTTP Basic authorization headers into an
// identifier/secret pair.
//
// Decoding is a pure function of the header value. Every malformed input
// (wrong scheme, bad Base64, invalid UTF-8, missing colon) yields the same
// "no credentials" result so callers cannot tell the failure stages apart.
//
// # What this package must NOT do
//
//   - Look up users or verify secrets.
//   - Return parsing errors to HTTP clients.
package credentials
