package goGate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/MrEthical07/goGate/credentials"
	"github.com/MrEthical07/goGate/session"
)

type fakeUsers struct {
	mu        sync.Mutex
	users     map[string]User
	passwords map[string]string
	err       error
}

func newFakeUsers() *fakeUsers {
	f := &fakeUsers{users: map[string]User{}, passwords: map[string]string{}}
	f.add(User{ID: "u-alice", Email: "alice@example.com", FirstName: "Alice"}, "secret1")
	return f
}

func (f *fakeUsers) add(u User, pw string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[u.ID] = u
	f.passwords[u.ID] = pw
}

func (f *fakeUsers) fail(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

func (f *fakeUsers) FindByEmail(_ context.Context, email string) (User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return User{}, f.err
	}
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return User{}, ErrUserNotFound
}

func (f *fakeUsers) FindByID(_ context.Context, id string) (User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return User{}, f.err
	}
	u, ok := f.users[id]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUsers) VerifyPassword(_ context.Context, u User, pw string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	return f.passwords[u.ID] == pw, nil
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func buildGate(t *testing.T, kind StrategyKind, users UserRepository, opts ...func(*Builder)) *Gate {
	t.Helper()
	b := New().WithStrategy(kind).WithUserRepository(users)
	for _, opt := range opts {
		opt(b)
	}
	g, err := b.Build()
	if err != nil {
		t.Fatalf("build %s: %v", kind, err)
	}
	t.Cleanup(g.Close)
	return g
}

func basicRequest(path, id, secret string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, path, nil)
	r.Header.Set("Authorization", credentials.EncodeBasicHeader(id, secret))
	return r
}

func cookieRequest(path, value string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, path, nil)
	r.AddCookie(&http.Cookie{Name: session.DefaultCookieName, Value: value})
	return r
}

// loginCookie logs alice in and returns the issued session cookie value.
func loginCookie(t *testing.T, g *Gate) string {
	t.Helper()
	rec := httptest.NewRecorder()
	if _, err := g.Login(context.Background(), rec, "alice@example.com", "secret1"); err != nil {
		t.Fatalf("login: %v", err)
	}
	for _, c := range rec.Result().Cookies() {
		if c.Name == session.DefaultCookieName {
			return c.Value
		}
	}
	t.Fatal("login did not set a session cookie")
	return ""
}
