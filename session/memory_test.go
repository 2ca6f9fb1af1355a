package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestMemoryStoreCreateLookupDestroy(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	store := NewMemoryStore(WithClock(clock.Now))

	id, err := store.Create(ctx, "u1", 0)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if id == "" {
		t.Fatal("expected session id")
	}

	sess, err := store.Lookup(ctx, id)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if sess.UserID != "u1" || sess.SessionID != id {
		t.Fatalf("unexpected session: %+v", sess)
	}
	if sess.HasExpiry() {
		t.Fatalf("expected no expiry for ttl 0, got %v", sess.ExpiresAt)
	}
	if !sess.CreatedAt.Equal(clock.Now()) {
		t.Fatalf("expected createdAt %v, got %v", clock.Now(), sess.CreatedAt)
	}

	existed, err := store.Destroy(ctx, id)
	if err != nil || !existed {
		t.Fatalf("expected destroy to report existing record, got %v %v", existed, err)
	}
	if _, err := store.Lookup(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after destroy, got %v", err)
	}

	existed, err = store.Destroy(ctx, id)
	if err != nil || existed {
		t.Fatalf("expected second destroy to report false, got %v %v", existed, err)
	}
}

func TestMemoryStoreRejectsEmptyUser(t *testing.T) {
	store := NewMemoryStore()
	if _, err := store.Create(context.Background(), "", time.Minute); !errors.Is(err, ErrInvalidUserID) {
		t.Fatalf("expected ErrInvalidUserID, got %v", err)
	}
	if _, err := store.Lookup(context.Background(), ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for empty id, got %v", err)
	}
}

func TestMemoryStoreExpiresLazily(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	store := NewMemoryStore(WithClock(clock.Now))

	id, err := store.Create(ctx, "u1", 10*time.Second)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	sess, err := store.Lookup(ctx, id)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if want := sess.CreatedAt.Add(10 * time.Second); !sess.ExpiresAt.Equal(want) {
		t.Fatalf("expected expiresAt %v, got %v", want, sess.ExpiresAt)
	}

	clock.Advance(10 * time.Second)
	if _, err := store.Lookup(ctx, id); err != nil {
		t.Fatalf("session must still be live at exactly expiresAt: %v", err)
	}
	if store.Len() != 1 {
		t.Fatalf("expected record to stay before expiry, got %d", store.Len())
	}

	clock.Advance(time.Nanosecond)
	if _, err := store.Lookup(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after expiry, got %v", err)
	}
	if store.Len() != 0 {
		t.Fatalf("expected expired record to be evicted, got %d", store.Len())
	}
}

func TestMemoryStoreConcurrentCreatesYieldDistinctIDs(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	const n = 200
	ids := make([]string, n)
	errs := make([]error, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ids[i], errs[i] = store.Create(ctx, fmt.Sprintf("user-%d", i), time.Minute)
		}(i)
	}
	wg.Wait()

	seen := make(map[string]struct{}, n)
	for i, id := range ids {
		if errs[i] != nil {
			t.Fatalf("create %d: %v", i, errs[i])
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate session id %q", id)
		}
		seen[id] = struct{}{}
	}
	if store.Len() != n {
		t.Fatalf("expected %d stored sessions, got %d", n, store.Len())
	}

	for i, id := range ids {
		sess, err := store.Lookup(ctx, id)
		if err != nil {
			t.Fatalf("lookup %d: %v", i, err)
		}
		if sess.UserID != fmt.Sprintf("user-%d", i) {
			t.Fatalf("lost write for %d: %+v", i, sess)
		}
	}
}

func TestMemoryStoreConcurrentDestroyReportsOnce(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	id, err := store.Create(ctx, "u1", time.Minute)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		hits int
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, _ := store.Destroy(ctx, id)
			if ok {
				mu.Lock()
				hits++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if hits != 1 {
		t.Fatalf("expected exactly one destroy to succeed, got %d", hits)
	}
}
