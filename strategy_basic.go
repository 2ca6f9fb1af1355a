package goGate

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/MrEthical07/goGate/credentials"
)

// BasicAuth resolves users from an HTTP Basic Authorization header.
type BasicAuth struct {
	baseStrategy
	users UserRepository
}

// CurrentUser decodes the Authorization header, looks the identifier up by
// email and verifies the secret.
func (s *BasicAuth) CurrentUser(r *http.Request) (User, bool) {
	header, ok := s.AuthorizationHeader(r)
	if !ok {
		return User{}, false
	}

	creds, ok := credentials.DecodeBasicHeader(header)
	if !ok {
		s.logger.DebugContext(r.Context(), "malformed basic credentials")
		return User{}, false
	}

	return s.UserFromCredentials(r.Context(), creds.Identifier, creds.Secret)
}

// UserFromCredentials returns the user whose email and password match.
func (s *BasicAuth) UserFromCredentials(ctx context.Context, email, password string) (User, bool) {
	user, err := verifyCredentials(ctx, s.users, email, password)
	if err != nil {
		if isCollaboratorError(err) {
			s.collaboratorFailure(ctx, "verify_credentials", err)
		}
		return User{}, false
	}
	return user, true
}

// verifyCredentials returns ErrUserNotFound, ErrInvalidCredentials, or a
// collaborator error wrapped with the sentinel it degrades to.
func verifyCredentials(ctx context.Context, users UserRepository, email, password string) (User, error) {
	if email == "" || password == "" {
		return User{}, ErrMissingCredentials
	}

	user, err := users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return User{}, ErrUserNotFound
		}
		return User{}, errors.Join(ErrUserNotFound, fmt.Errorf("find user by email: %w", err))
	}

	ok, err := users.VerifyPassword(ctx, user, password)
	if err != nil {
		return User{}, errors.Join(ErrInvalidCredentials, fmt.Errorf("verify password: %w", err))
	}
	if !ok {
		return User{}, ErrInvalidCredentials
	}
	return user, nil
}

// isCollaboratorError reports whether err came from a failing collaborator
// rather than a plain miss or mismatch.
func isCollaboratorError(err error) bool {
	switch err {
	case nil, ErrUserNotFound, ErrInvalidCredentials, ErrMissingCredentials:
		return false
	}
	return true
}
