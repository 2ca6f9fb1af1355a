package goGate

import "errors"

var (
	// ErrUnknownStrategy is returned when the configured strategy name is not recognized.
	ErrUnknownStrategy = errors.New("unknown authentication strategy")
	// ErrUserNotFound is returned by a UserRepository when no user matches.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidCredentials is returned by Login when the password does not verify.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrMissingCredentials is returned by Login when email or password is empty.
	ErrMissingCredentials = errors.New("missing credentials")
	// ErrLoginRateLimited is returned by Login while the failure throttle blocks the identifier or IP.
	ErrLoginRateLimited = errors.New("too many failed login attempts")
	// ErrSessionsUnsupported is returned by Login and Logout for strategies without sessions.
	ErrSessionsUnsupported = errors.New("strategy does not support sessions")
	// ErrSessionCreationFailed is returned when the session store rejects a new session.
	ErrSessionCreationFailed = errors.New("session creation failed")
	// ErrSessionNotFound is returned by Logout when no session was destroyed.
	ErrSessionNotFound = errors.New("session not found")
	// ErrUserRepositoryRequired is returned by Build when a strategy needs user lookups.
	ErrUserRepositoryRequired = errors.New("user repository required")
	// ErrSessionBackendRequired is returned by Build for the persisted strategy without a backend.
	ErrSessionBackendRequired = errors.New("session backend required")
	// ErrThrottleRedisRequired is returned by Build when the login throttle is enabled without a Redis client.
	ErrThrottleRedisRequired = errors.New("login throttle requires a redis client")
	// ErrGateNotReady is returned when a nil or unbuilt Gate is used.
	ErrGateNotReady = errors.New("gate not initialized")
)
