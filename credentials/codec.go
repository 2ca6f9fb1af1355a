package credentials

import (
	"encoding/base64"
	"strings"
	"unicode/utf8"
)

const basicScheme = "Basic "

// Credentials is the identifier/secret pair carried by a Basic header.
// It is built per request and never persisted.
type Credentials struct {
	Identifier string
	Secret     string
}

// DecodeBasicHeader runs the full pipeline: scheme match, strict Base64
// decoding, UTF-8 validation and the first-colon split. ok is false on any
// failure.
func DecodeBasicHeader(header string) (Credentials, bool) {
	token, ok := ExtractToken(header)
	if !ok {
		return Credentials{}, false
	}

	decoded, ok := DecodeToken(token)
	if !ok {
		return Credentials{}, false
	}

	return SplitCredentials(decoded)
}

// ExtractToken returns the token of a header of the exact form
// "Basic <token>". The scheme keyword is case-sensitive, the separator is a
// single space and the token may not contain whitespace.
func ExtractToken(header string) (string, bool) {
	if !strings.HasPrefix(header, basicScheme) {
		return "", false
	}

	token := header[len(basicScheme):]
	if token == "" {
		return "", false
	}
	if strings.ContainsAny(token, " \t\r\n\v\f") {
		return "", false
	}

	return token, true
}

// DecodeToken decodes a standard, padded Base64 token and requires the
// result to be valid UTF-8.
func DecodeToken(token string) (string, bool) {
	// The std decoder silently skips CR and LF even in strict mode.
	if strings.ContainsAny(token, "\r\n") {
		return "", false
	}

	raw, err := base64.StdEncoding.Strict().DecodeString(token)
	if err != nil {
		return "", false
	}
	if !utf8.Valid(raw) {
		return "", false
	}

	return string(raw), true
}

// SplitCredentials splits decoded text on its first colon. Both sides must be
// non-empty; the secret keeps any further colons.
func SplitCredentials(decoded string) (Credentials, bool) {
	identifier, secret, found := strings.Cut(decoded, ":")
	if !found || identifier == "" || secret == "" {
		return Credentials{}, false
	}

	return Credentials{Identifier: identifier, Secret: secret}, true
}

// EncodeBasicHeader builds the header value for an identifier/secret pair.
// It is the inverse of DecodeBasicHeader for identifiers without a colon.
func EncodeBasicHeader(identifier, secret string) string {
	return basicScheme + base64.StdEncoding.EncodeToString([]byte(identifier+":"+secret))
}
