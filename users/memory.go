// Package users provides an in-memory goGate.UserRepository backed by a
// password.Hasher. It is the reference collaborator for tests and the demo
// server; production deployments supply their own repository.
package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	goGate "github.com/MrEthical07/goGate"
	"github.com/MrEthical07/goGate/password"
	"github.com/google/uuid"
)

var (
	// ErrEmailTaken is returned by Add when the email is already registered.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidUser is returned by Add for a missing email or password.
	ErrInvalidUser = errors.New("email and password required")
)

type record struct {
	user goGate.User
	hash string
}

// MemoryRepository stores users in a map keyed by id with an email index.
// Emails are matched case-insensitively.
type MemoryRepository struct {
	hasher password.Hasher

	mu      sync.RWMutex
	byID    map[string]record
	byEmail map[string]string
}

var _ goGate.UserRepository = (*MemoryRepository)(nil)

// NewMemoryRepository creates an empty repository. A nil hasher uses Argon2id
// with default parameters.
func NewMemoryRepository(hasher password.Hasher) (*MemoryRepository, error) {
	if hasher == nil {
		h, err := password.NewArgon2(password.DefaultConfig())
		if err != nil {
			return nil, err
		}
		hasher = h
	}
	return &MemoryRepository{
		hasher:  hasher,
		byID:    make(map[string]record),
		byEmail: make(map[string]string),
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Add hashes plaintext and stores user. An empty user.ID is assigned a UUID.
func (m *MemoryRepository) Add(user goGate.User, plaintext string) (goGate.User, error) {
	if normalizeEmail(user.Email) == "" || plaintext == "" {
		return goGate.User{}, ErrInvalidUser
	}
	hash, err := m.hasher.Hash(plaintext)
	if err != nil {
		return goGate.User{}, fmt.Errorf("hash password: %w", err)
	}
	return m.insert(user, hash)
}

// AddHashed stores user with an already encoded hash, for imports from
// another store. The hash is upgraded on the next successful login when the
// repository's hasher uses stronger settings.
func (m *MemoryRepository) AddHashed(user goGate.User, encodedHash string) (goGate.User, error) {
	if normalizeEmail(user.Email) == "" || encodedHash == "" {
		return goGate.User{}, ErrInvalidUser
	}
	return m.insert(user, encodedHash)
}

func (m *MemoryRepository) insert(user goGate.User, hash string) (goGate.User, error) {
	email := normalizeEmail(user.Email)
	if user.ID == "" {
		user.ID = uuid.NewString()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, taken := m.byEmail[email]; taken {
		return goGate.User{}, ErrEmailTaken
	}
	if _, taken := m.byID[user.ID]; taken {
		return goGate.User{}, fmt.Errorf("user id %q already exists", user.ID)
	}

	m.byID[user.ID] = record{user: user, hash: hash}
	m.byEmail[email] = user.ID
	return user, nil
}

// Remove deletes the user and reports whether it existed.
func (m *MemoryRepository) Remove(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.byID[id]
	if !ok {
		return false
	}
	delete(m.byID, id)
	delete(m.byEmail, normalizeEmail(rec.user.Email))
	return true
}

// FindByEmail implements goGate.UserRepository.
func (m *MemoryRepository) FindByEmail(_ context.Context, email string) (goGate.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byEmail[normalizeEmail(email)]
	if !ok {
		return goGate.User{}, goGate.ErrUserNotFound
	}
	return m.byID[id].user, nil
}

// FindByID implements goGate.UserRepository.
func (m *MemoryRepository) FindByID(_ context.Context, id string) (goGate.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.byID[id]
	if !ok {
		return goGate.User{}, goGate.ErrUserNotFound
	}
	return rec.user, nil
}

// VerifyPassword implements goGate.UserRepository. After a match, a hash
// made with weaker settings than the current hasher's is replaced. A failed
// rehash keeps the old hash and does not fail the login.
func (m *MemoryRepository) VerifyPassword(_ context.Context, user goGate.User, plaintext string) (bool, error) {
	if plaintext == "" {
		return false, nil
	}

	m.mu.RLock()
	rec, ok := m.byID[user.ID]
	m.mu.RUnlock()
	if !ok {
		return false, goGate.ErrUserNotFound
	}

	match, err := m.hasher.Verify(plaintext, rec.hash)
	if err != nil || !match {
		return match, err
	}
	m.rehash(user.ID, rec.hash, plaintext)
	return true, nil
}

func (m *MemoryRepository) rehash(id, current, plaintext string) {
	up, ok := m.hasher.(password.Upgrader)
	if !ok {
		return
	}
	if stale, err := up.NeedsUpgrade(current); err != nil || !stale {
		return
	}
	fresh, err := m.hasher.Hash(plaintext)
	if err != nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// A concurrent login may already have replaced it.
	if rec, ok := m.byID[id]; ok && rec.hash == current {
		rec.hash = fresh
		m.byID[id] = rec
	}
}

// Hash returns the stored hash for id.
func (m *MemoryRepository) Hash(id string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.byID[id]
	return rec.hash, ok
}

// Len returns the number of stored users.
func (m *MemoryRepository) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byID)
}
