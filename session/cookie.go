package session

import (
	"net/http"
	"time"
)

// DefaultCookieName is the session cookie name used when none is configured.
const DefaultCookieName = "session_id"

// CookieCodec maps a session id to the value stored in the client cookie and back.
// Decode reports false for any value that does not carry a usable session id.
type CookieCodec interface {
	Encode(sessionID string, expiresAt time.Time) (string, error)
	Decode(value string) (string, bool)
}

// PlainCookieCodec stores the session id as the cookie value.
type PlainCookieCodec struct{}

// Encode returns sessionID unchanged.
func (PlainCookieCodec) Encode(sessionID string, _ time.Time) (string, error) {
	return sessionID, nil
}

// Decode returns value unchanged; empty values carry no session.
func (PlainCookieCodec) Decode(value string) (string, bool) {
	return value, value != ""
}

// CookieOptions defines how session cookies are issued.
type CookieOptions struct {
	Name     string
	Path     string
	Domain   string
	Secure   bool
	SameSite http.SameSite
	// AllowScriptAccess drops the HttpOnly attribute. Off by default.
	AllowScriptAccess bool
}

func (o CookieOptions) normalize() CookieOptions {
	if o.Name == "" {
		o.Name = DefaultCookieName
	}
	if o.Path == "" {
		o.Path = "/"
	}
	if o.SameSite == 0 {
		o.SameSite = http.SameSiteLaxMode
	}
	return o
}

// SetCookie issues the session cookie. A zero expiresAt yields a browser-session cookie.
func SetCookie(w http.ResponseWriter, value string, expiresAt time.Time, opts CookieOptions) {
	opts = opts.normalize()

	http.SetCookie(w, &http.Cookie{
		Name:     opts.Name,
		Value:    value,
		Path:     opts.Path,
		Domain:   opts.Domain,
		Expires:  expiresAt,
		HttpOnly: !opts.AllowScriptAccess,
		Secure:   opts.Secure,
		SameSite: opts.SameSite,
	})
}

// ClearCookie removes the session cookie from the client.
func ClearCookie(w http.ResponseWriter, opts CookieOptions) {
	opts = opts.normalize()

	http.SetCookie(w, &http.Cookie{
		Name:     opts.Name,
		Value:    "",
		Path:     opts.Path,
		Domain:   opts.Domain,
		MaxAge:   -1,
		HttpOnly: !opts.AllowScriptAccess,
		Secure:   opts.Secure,
		SameSite: opts.SameSite,
	})
}

// ReadCookie returns the named cookie value, or false when absent or empty.
func ReadCookie(r *http.Request, name string) (string, bool) {
	if name == "" {
		name = DefaultCookieName
	}
	c, err := r.Cookie(name)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}
