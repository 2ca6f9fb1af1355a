package password

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrPasswordEmpty is returned by Hash for an empty plaintext.
	ErrPasswordEmpty = errors.New("password must not be empty")
	// ErrPasswordTooShort is returned by Hash below the configured minimum.
	ErrPasswordTooShort = errors.New("password too short")
	// ErrPasswordTooLong is returned when the plaintext exceeds the configured maximum.
	ErrPasswordTooLong = errors.New("password too long")
	// ErrUnknownHasher is returned by New for an unsupported algorithm name.
	ErrUnknownHasher = errors.New("unknown password hasher")
)

// Hasher hashes and verifies passwords. Implementations are safe for
// concurrent use.
type Hasher interface {
	Hash(password string) (string, error)
	Verify(password, encodedHash string) (bool, error)
}

// Upgrader is implemented by hashers that can tell when a stored hash was
// made with weaker settings than they currently use. Callers re-hash after a
// successful Verify.
type Upgrader interface {
	NeedsUpgrade(encodedHash string) (bool, error)
}

var (
	_ Hasher   = (*Argon2)(nil)
	_ Hasher   = (*Bcrypt)(nil)
	_ Upgrader = (*Argon2)(nil)
	_ Upgrader = (*Bcrypt)(nil)
)

// New returns the hasher named by algorithm: "argon2id" (or "") and "bcrypt".
func New(algorithm string) (Hasher, error) {
	switch strings.ToLower(strings.TrimSpace(algorithm)) {
	case "", algorithmID, "argon2":
		return NewArgon2(DefaultConfig())
	case "bcrypt":
		return NewBcrypt(bcrypt.DefaultCost)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownHasher, algorithm)
	}
}

// Bcrypt hashes passwords with bcrypt. Plaintexts longer than 72 bytes are
// rejected instead of being silently truncated.
type Bcrypt struct {
	cost int
}

const bcryptMaxBytes = 72

// NewBcrypt validates cost against bcrypt's supported range.
func NewBcrypt(cost int) (*Bcrypt, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost must be within [%d, %d]", bcrypt.MinCost, bcrypt.MaxCost)
	}
	return &Bcrypt{cost: cost}, nil
}

func (b *Bcrypt) Hash(password string) (string, error) {
	if err := checkLength(password, 0, bcryptMaxBytes); err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), b.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify reports a mismatch as false with a nil error; other bcrypt failures
// (malformed hash) are returned.
func (b *Bcrypt) Verify(password, encodedHash string) (bool, error) {
	if len(password) > bcryptMaxBytes {
		return false, ErrPasswordTooLong
	}
	err := bcrypt.CompareHashAndPassword([]byte(encodedHash), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, err
	}
}

// NeedsUpgrade reports whether encodedHash used a lower cost than b.
func (b *Bcrypt) NeedsUpgrade(encodedHash string) (bool, error) {
	cost, err := bcrypt.Cost([]byte(encodedHash))
	if err != nil {
		return false, err
	}
	return cost < b.cost, nil
}

func checkLength(password string, minLen, maxLen int) error {
	switch {
	case password == "":
		return ErrPasswordEmpty
	case len(password) < minLen:
		return ErrPasswordTooShort
	case maxLen > 0 && len(password) > maxLen:
		return ErrPasswordTooLong
	}
	return nil
}
