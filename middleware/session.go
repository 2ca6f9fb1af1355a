package middleware

import (
	"errors"
	"net/http"

	goGate "github.com/MrEthical07/goGate"
)

// LoginHandler reads the email and password form fields, starts a session and
// responds with the user as JSON.
//
//	400 {"error":"email missing"} / {"error":"password missing"}
//	404 {"error":"no user found for this email"}
//	401 {"error":"wrong password"}
//	429 {"error":"too many failed login attempts"}
func LoginHandler(gate *goGate.Gate) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email := r.PostFormValue("email")
		if email == "" {
			writeJSON(w, http.StatusBadRequest, ErrorBody{Error: "email missing"})
			return
		}
		password := r.PostFormValue("password")
		if password == "" {
			writeJSON(w, http.StatusBadRequest, ErrorBody{Error: "password missing"})
			return
		}

		user, err := gate.Login(withClientIP(r), w, email, password)
		switch {
		case err == nil:
			writeJSON(w, http.StatusOK, user)
		case errors.Is(err, goGate.ErrUserNotFound):
			writeJSON(w, http.StatusNotFound, ErrorBody{Error: "no user found for this email"})
		case errors.Is(err, goGate.ErrInvalidCredentials):
			writeJSON(w, http.StatusUnauthorized, ErrorBody{Error: "wrong password"})
		case errors.Is(err, goGate.ErrLoginRateLimited):
			writeJSON(w, http.StatusTooManyRequests, ErrorBody{Error: "too many failed login attempts"})
		case errors.Is(err, goGate.ErrSessionsUnsupported):
			writeError(w, http.StatusNotFound)
		default:
			writeJSON(w, http.StatusInternalServerError, ErrorBody{Error: "session error"})
		}
	}
}

// LogoutHandler destroys the caller's session. It responds 404 when there was
// nothing to destroy and 200 {} otherwise.
func LogoutHandler(gate *goGate.Gate) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := gate.Logout(w, r); err != nil {
			writeError(w, http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, struct{}{})
	}
}
