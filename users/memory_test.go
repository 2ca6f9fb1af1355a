package users

import (
	"context"
	"errors"
	"strings"
	"testing"

	goGate "github.com/MrEthical07/goGate"
	"github.com/MrEthical07/goGate/password"
	"golang.org/x/crypto/bcrypt"
)

func newRepo(t *testing.T) *MemoryRepository {
	t.Helper()
	hasher, err := password.NewBcrypt(bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hasher: %v", err)
	}
	repo, err := NewMemoryRepository(hasher)
	if err != nil {
		t.Fatalf("repo: %v", err)
	}
	return repo
}

func TestAddFindVerify(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	alice, err := repo.Add(goGate.User{Email: "Alice@Example.com", FirstName: "Alice"}, "secret1")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if alice.ID == "" {
		t.Fatal("expected generated id")
	}

	found, err := repo.FindByEmail(ctx, "alice@example.com")
	if err != nil || found.ID != alice.ID {
		t.Fatalf("find by email: %+v %v", found, err)
	}
	byID, err := repo.FindByID(ctx, alice.ID)
	if err != nil || byID.Email != "Alice@Example.com" {
		t.Fatalf("find by id: %+v %v", byID, err)
	}

	ok, err := repo.VerifyPassword(ctx, found, "secret1")
	if err != nil || !ok {
		t.Fatalf("expected password to verify: %v %v", ok, err)
	}
	ok, err = repo.VerifyPassword(ctx, found, "wrong")
	if err != nil || ok {
		t.Fatalf("expected mismatch: %v %v", ok, err)
	}
	ok, err = repo.VerifyPassword(ctx, found, "")
	if err != nil || ok {
		t.Fatalf("expected empty password to fail: %v %v", ok, err)
	}
}

func TestMissesReturnErrUserNotFound(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	if _, err := repo.FindByEmail(ctx, "nobody@example.com"); !errors.Is(err, goGate.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if _, err := repo.FindByID(ctx, "missing"); !errors.Is(err, goGate.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if _, err := repo.VerifyPassword(ctx, goGate.User{ID: "missing"}, "x"); !errors.Is(err, goGate.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestAddRejectsDuplicatesAndEmptyInput(t *testing.T) {
	repo := newRepo(t)

	if _, err := repo.Add(goGate.User{Email: "a@example.com"}, "pw"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := repo.Add(goGate.User{Email: " A@example.com "}, "pw"); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
	if _, err := repo.Add(goGate.User{Email: ""}, "pw"); !errors.Is(err, ErrInvalidUser) {
		t.Fatalf("expected ErrInvalidUser, got %v", err)
	}
	if _, err := repo.Add(goGate.User{Email: "b@example.com"}, ""); !errors.Is(err, ErrInvalidUser) {
		t.Fatalf("expected ErrInvalidUser, got %v", err)
	}
	if repo.Len() != 1 {
		t.Fatalf("expected one user, got %d", repo.Len())
	}
}

func TestRemove(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	u, err := repo.Add(goGate.User{Email: "a@example.com"}, "pw")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if !repo.Remove(u.ID) {
		t.Fatal("expected remove to report true")
	}
	if repo.Remove(u.ID) {
		t.Fatal("expected second remove to report false")
	}
	if _, err := repo.FindByEmail(ctx, "a@example.com"); !errors.Is(err, goGate.ErrUserNotFound) {
		t.Fatalf("expected email index cleared, got %v", err)
	}
}

func argon2Hasher(t *testing.T, timeCost uint32, minLength int) *password.Argon2 {
	t.Helper()
	h, err := password.NewArgon2(password.Config{
		Memory:      8 * 1024,
		Time:        timeCost,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
		MinLength:   minLength,
	})
	if err != nil {
		t.Fatalf("argon2: %v", err)
	}
	return h
}

func TestAddEnforcesHasherMinLength(t *testing.T) {
	repo, err := NewMemoryRepository(argon2Hasher(t, 1, 10))
	if err != nil {
		t.Fatalf("repo: %v", err)
	}
	if _, err := repo.Add(goGate.User{Email: "a@example.com"}, "short"); !errors.Is(err, password.ErrPasswordTooShort) {
		t.Fatalf("expected ErrPasswordTooShort, got %v", err)
	}
	if _, err := repo.Add(goGate.User{Email: "a@example.com"}, strings.Repeat("x", password.DefaultMaxPasswordBytes+1)); !errors.Is(err, password.ErrPasswordTooLong) {
		t.Fatalf("expected ErrPasswordTooLong, got %v", err)
	}
	if repo.Len() != 0 {
		t.Fatalf("rejected passwords must not store a user, got %d", repo.Len())
	}

	u, err := repo.Add(goGate.User{Email: "a@example.com"}, "long enough")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	hash, _ := repo.Hash(u.ID)
	if !strings.HasPrefix(hash, "$argon2id$v=19$m=8192,t=1,p=1$") {
		t.Fatalf("unexpected stored hash: %s", hash)
	}
}

func TestVerifyPasswordUpgradesWeakHash(t *testing.T) {
	ctx := context.Background()
	old, err := argon2Hasher(t, 1, 0).Hash("secret1")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	repo, err := NewMemoryRepository(argon2Hasher(t, 2, 0))
	if err != nil {
		t.Fatalf("repo: %v", err)
	}
	u, err := repo.AddHashed(goGate.User{Email: "legacy@example.com"}, old)
	if err != nil {
		t.Fatalf("add hashed: %v", err)
	}

	if ok, err := repo.VerifyPassword(ctx, u, "wrong"); err != nil || ok {
		t.Fatalf("expected mismatch: %v %v", ok, err)
	}
	if hash, _ := repo.Hash(u.ID); hash != old {
		t.Fatal("a failed login must not rewrite the hash")
	}

	if ok, err := repo.VerifyPassword(ctx, u, "secret1"); err != nil || !ok {
		t.Fatalf("expected match: %v %v", ok, err)
	}
	upgraded, _ := repo.Hash(u.ID)
	if upgraded == old || !strings.Contains(upgraded, "$m=8192,t=2,p=1$") {
		t.Fatalf("expected hash rewritten at the current cost, got %s", upgraded)
	}

	if ok, err := repo.VerifyPassword(ctx, u, "secret1"); err != nil || !ok {
		t.Fatalf("expected upgraded hash to verify: %v %v", ok, err)
	}
	if again, _ := repo.Hash(u.ID); again != upgraded {
		t.Fatal("a current hash must not be rewritten")
	}
}

func TestAddHashedRejectsEmptyInput(t *testing.T) {
	repo := newRepo(t)
	if _, err := repo.AddHashed(goGate.User{Email: "a@example.com"}, ""); !errors.Is(err, ErrInvalidUser) {
		t.Fatalf("expected ErrInvalidUser, got %v", err)
	}
	if _, err := repo.AddHashed(goGate.User{}, "$2a$04$x"); !errors.Is(err, ErrInvalidUser) {
		t.Fatalf("expected ErrInvalidUser, got %v", err)
	}
}
