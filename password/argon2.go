package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	algorithmID = "argon2id"

	minMemoryKB   = 8 * 1024
	minSaltLength = 16
	minKeyLength  = 16
)

// DefaultMaxPasswordBytes bounds the work a single login can force.
const DefaultMaxPasswordBytes = 1024

// ErrMalformedHash is returned for stored hashes that are not argon2id PHC
// strings this package can verify.
var ErrMalformedHash = errors.New("malformed argon2id hash")

// Config holds Argon2id cost parameters and plaintext bounds. Memory is in KiB.
type Config struct {
	Memory      uint32
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
	// MinLength is the shortest plaintext Hash accepts, in bytes. Zero only
	// rejects the empty password.
	MinLength int
	// MaxPasswordBytes caps plaintext length on Hash and Verify. Zero means
	// DefaultMaxPasswordBytes.
	MaxPasswordBytes int
}

// DefaultConfig returns the parameters used by New("argon2id").
func DefaultConfig() Config {
	return Config{
		Memory:      64 * 1024,
		Time:        1,
		Parallelism: 4,
		SaltLength:  16,
		KeyLength:   32,
	}
}

func (c Config) validate() error {
	var errs []error
	if c.Memory < minMemoryKB {
		errs = append(errs, fmt.Errorf("memory must be >= %d KiB", minMemoryKB))
	}
	if c.Time < 1 {
		errs = append(errs, errors.New("time must be >= 1"))
	}
	if c.Parallelism < 1 {
		errs = append(errs, errors.New("parallelism must be >= 1"))
	}
	if c.SaltLength < minSaltLength {
		errs = append(errs, fmt.Errorf("salt length must be >= %d", minSaltLength))
	}
	if c.KeyLength < minKeyLength {
		errs = append(errs, fmt.Errorf("key length must be >= %d", minKeyLength))
	}
	if c.MinLength < 0 {
		errs = append(errs, errors.New("min length must be >= 0"))
	}
	if c.MaxPasswordBytes < c.MinLength {
		errs = append(errs, errors.New("max password bytes must be >= min length"))
	}
	return errors.Join(errs...)
}

// cost is the part of a PHC string that decides how expensive a hash is.
type cost struct {
	memory  uint32
	time    uint32
	threads uint8
}

func (c cost) weakerThan(o cost) bool {
	return c.memory < o.memory || c.time < o.time || c.threads < o.threads
}

// phc is a decoded "$argon2id$v=19$m=..,t=..,p=..$salt$key" string. Salt and
// key use unpadded standard base64, as the PHC format prescribes.
type phc struct {
	cost
	salt []byte
	key  []byte
}

func (p phc) String() string {
	b64 := base64.RawStdEncoding
	return fmt.Sprintf("$%s$v=%d$%s$%s$%s",
		algorithmID, argon2.Version, p.params(), b64.EncodeToString(p.salt), b64.EncodeToString(p.key))
}

func (p phc) params() string {
	return fmt.Sprintf("m=%d,t=%d,p=%d", p.memory, p.time, p.threads)
}

func malformed(part string) error {
	return fmt.Errorf("%w: %s", ErrMalformedHash, part)
}

func decodePHC(encoded string) (phc, error) {
	var p phc

	fields := strings.Split(encoded, "$")
	if len(fields) != 6 || fields[0] != "" || fields[1] != algorithmID {
		return p, malformed("layout")
	}

	if fields[2] != fmt.Sprintf("v=%d", argon2.Version) {
		return p, malformed("version")
	}

	// Re-encoding must reproduce the field, which rejects trailing junk,
	// reordered keys and leading zeros.
	if _, err := fmt.Sscanf(fields[3], "m=%d,t=%d,p=%d", &p.memory, &p.time, &p.threads); err != nil || p.params() != fields[3] {
		return p, malformed("parameters")
	}
	if p.memory < minMemoryKB || p.time < 1 || p.threads < 1 {
		return p, malformed("parameters")
	}

	var err error
	if p.salt, err = base64.RawStdEncoding.DecodeString(fields[4]); err != nil || len(p.salt) < minSaltLength {
		return p, malformed("salt")
	}
	if p.key, err = base64.RawStdEncoding.DecodeString(fields[5]); err != nil || len(p.key) < minKeyLength {
		return p, malformed("key")
	}
	return p, nil
}

// Argon2 hashes passwords with Argon2id into PHC strings.
type Argon2 struct {
	config Config
}

// NewArgon2 validates cfg and returns a hasher.
func NewArgon2(cfg Config) (*Argon2, error) {
	if cfg.MaxPasswordBytes == 0 {
		cfg.MaxPasswordBytes = DefaultMaxPasswordBytes
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("argon2 config: %w", err)
	}
	return &Argon2{config: cfg}, nil
}

func (a *Argon2) target() cost {
	return cost{memory: a.config.Memory, time: a.config.Time, threads: a.config.Parallelism}
}

// Hash returns the PHC encoding of password. Bytes are hashed as given,
// without Unicode normalization.
func (a *Argon2) Hash(password string) (string, error) {
	if err := checkLength(password, a.config.MinLength, a.config.MaxPasswordBytes); err != nil {
		return "", err
	}

	p := phc{cost: a.target(), salt: make([]byte, a.config.SaltLength)}
	if _, err := rand.Read(p.salt); err != nil {
		return "", err
	}
	p.key = argon2.IDKey([]byte(password), p.salt, p.time, p.memory, p.threads, a.config.KeyLength)
	return p.String(), nil
}

// Verify reports whether password matches encoded, using the cost recorded in
// encoded rather than the current configuration. A malformed hash is an error
// wrapping ErrMalformedHash.
func (a *Argon2) Verify(password, encoded string) (bool, error) {
	if len(password) > a.config.MaxPasswordBytes {
		return false, ErrPasswordTooLong
	}
	p, err := decodePHC(encoded)
	if err != nil {
		return false, err
	}
	got := argon2.IDKey([]byte(password), p.salt, p.time, p.memory, p.threads, uint32(len(p.key)))
	return subtle.ConstantTimeCompare(got, p.key) == 1, nil
}

// NeedsUpgrade reports whether encoded was produced with a lower cost, a
// different key length or a shorter salt than the current configuration.
func (a *Argon2) NeedsUpgrade(encoded string) (bool, error) {
	p, err := decodePHC(encoded)
	if err != nil {
		return false, err
	}
	return p.weakerThan(a.target()) ||
		uint32(len(p.key)) != a.config.KeyLength ||
		uint32(len(p.salt)) < a.config.SaltLength, nil
}
