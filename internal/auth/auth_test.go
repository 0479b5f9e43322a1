package auth

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"

	"github.com/aanand-mishra/lingo-admin/internal/backend"
	"github.com/aanand-mishra/lingo-admin/internal/storage"
	"github.com/aanand-mishra/lingo-admin/internal/types"
	"github.com/aanand-mishra/lingo-admin/internal/utils/response"
)

type memStore struct {
	mu       sync.Mutex
	sessions map[string]types.Session
}

func newMemStore() *memStore {
	return &memStore{sessions: make(map[string]types.Session)}
}

func (m *memStore) CreateSession(_ context.Context, s types.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	return nil
}

func (m *memStore) GetSession(_ context.Context, id string) (types.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return types.Session{}, storage.ErrSessionNotFound
	}
	return s, nil
}

func (m *memStore) DeleteSession(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *memStore) DeleteExpiredSessions(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, s := range m.sessions {
		if s.Expired(now) {
			delete(m.sessions, id)
			n++
		}
	}
	return n, nil
}

type fakeLogin struct {
	token string
	err   error
	calls int
}

func (f *fakeLogin) Login(_ context.Context, email, _ string) (backend.LoginResult, error) {
	f.calls++
	var res backend.LoginResult
	if f.err != nil {
		return res, f.err
	}
	res.AccessToken = f.token
	res.User.ID = "u1"
	res.User.Email = email
	res.User.Role = "admin"
	return res, nil
}

type forgetter struct{ forgotten []string }

func (f *forgetter) Forget(id string) { f.forgotten = append(f.forgotten, id) }

var testNow = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func newManager(t *testing.T, api Backend) (*Manager, *memStore, *forgetter) {
	t.Helper()
	keys, err := DeriveKeys("test-secret", false)
	if err != nil {
		t.Fatal(err)
	}
	st := newMemStore()
	fg := &forgetter{}
	m := NewManager(Options{Storage: st, Backend: api, Views: fg, Keys: keys, TTL: 24 * time.Hour})
	m.now = func() time.Time { return testNow }
	return m, st, fg
}

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("backend-key"))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

// login performs a login and returns the cookies the browser would keep.
func login(t *testing.T, m *Manager) ([]*http.Cookie, types.Session) {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, LoginPath, nil)
	sess, err := m.Login(rec, req, types.LoginForm{Email: "admin@example.com", Password: "pw"})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	return rec.Result().Cookies(), sess
}

func withCookies(req *http.Request, cookies []*http.Cookie) *http.Request {
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req
}

func TestLoginAndRequireAuth(t *testing.T) {
	m, st, _ := newManager(t, &fakeLogin{token: "opaque-token"})
	cookies, sess := login(t, m)

	if len(cookies) == 0 {
		t.Fatal("no cookie set")
	}
	if bytes.Contains([]byte(cookies[0].Value), []byte("opaque-token")) {
		t.Error("token must not travel in the cookie")
	}
	if _, err := st.GetSession(context.Background(), sess.ID); err != nil {
		t.Fatalf("session not stored: %v", err)
	}
	if !sess.ExpiresAt.Equal(testNow.Add(24 * time.Hour)) {
		t.Errorf("ExpiresAt = %v", sess.ExpiresAt)
	}

	var gotToken string
	var gotSession types.Session
	h := m.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = backend.TokenFrom(r.Context())
		gotSession, _ = SessionFrom(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, withCookies(httptest.NewRequest(http.MethodGet, "/dashboard", nil), cookies))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if gotToken != "opaque-token" || gotSession.Email != "admin@example.com" {
		t.Errorf("token = %q session = %+v", gotToken, gotSession)
	}
}

func TestLoginUsesTokenExpiry(t *testing.T) {
	exp := testNow.Add(2 * time.Hour)
	token := signedToken(t, jwt.MapClaims{"exp": exp.Unix(), "role": "editor"})
	m, _, _ := newManager(t, &fakeLogin{token: token})

	_, sess := login(t, m)
	if !sess.ExpiresAt.Equal(exp) {
		t.Errorf("ExpiresAt = %v, want %v", sess.ExpiresAt, exp)
	}
}

func TestLoginValidation(t *testing.T) {
	api := &fakeLogin{token: "t"}
	m, _, _ := newManager(t, api)

	_, err := m.Login(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, LoginPath, nil),
		types.LoginForm{Email: "not-an-email", Password: "pw"})
	if !response.IsFormError(err) {
		t.Fatalf("err = %v, want form error", err)
	}
	if api.calls != 0 {
		t.Error("invalid form must not reach the backend")
	}
}

func TestLoginBackendFailure(t *testing.T) {
	apiErr := &backend.APIError{Status: 401, Message: "Invalid credentials"}
	m, st, _ := newManager(t, &fakeLogin{err: apiErr})

	rec := httptest.NewRecorder()
	_, err := m.Login(rec, httptest.NewRequest(http.MethodPost, LoginPath, nil),
		types.LoginForm{Email: "a@b.io", Password: "pw"})
	if !errors.Is(err, apiErr) {
		t.Fatalf("err = %v", err)
	}
	if len(st.sessions) != 0 || len(rec.Result().Cookies()) != 0 {
		t.Error("failed login must not create a session")
	}
}

func TestRequireAuthRedirects(t *testing.T) {
	m, _, _ := newManager(t, &fakeLogin{token: "t"})
	h := m.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard/language", nil))
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != LoginPath {
		t.Errorf("got %d -> %q", rec.Code, rec.Header().Get("Location"))
	}

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/dashboard/language", nil)
	req.Header.Set("Accept", "application/json")
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("JSON client status = %d, want 401", rec.Code)
	}
}

func TestExpiredSessionIsRejected(t *testing.T) {
	m, st, _ := newManager(t, &fakeLogin{token: "t"})
	cookies, sess := login(t, m)

	m.now = func() time.Time { return sess.ExpiresAt.Add(time.Second) }

	if _, ok := m.Current(withCookies(httptest.NewRequest(http.MethodGet, "/dashboard", nil), cookies)); ok {
		t.Error("expired session accepted")
	}
	if _, err := st.GetSession(context.Background(), sess.ID); !errors.Is(err, storage.ErrSessionNotFound) {
		t.Error("expired session should be deleted on sight")
	}
}

func TestLogout(t *testing.T) {
	m, st, fg := newManager(t, &fakeLogin{token: "t"})
	cookies, sess := login(t, m)

	rec := httptest.NewRecorder()
	m.Logout(rec, withCookies(httptest.NewRequest(http.MethodPost, "/auth/logout", nil), cookies))

	if _, err := st.GetSession(context.Background(), sess.ID); !errors.Is(err, storage.ErrSessionNotFound) {
		t.Error("session should be deleted")
	}
	if len(fg.forgotten) != 1 || fg.forgotten[0] != sess.ID {
		t.Errorf("forgotten = %v", fg.forgotten)
	}
	var expired bool
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge < 0 {
			expired = true
		}
	}
	if !expired {
		t.Error("cookie should be expired")
	}

	// The old cookie no longer grants access.
	if _, ok := m.Current(withCookies(httptest.NewRequest(http.MethodGet, "/dashboard", nil), cookies)); ok {
		t.Error("session still valid after logout")
	}
}

func TestUnauthorizedTearsDown(t *testing.T) {
	m, st, _ := newManager(t, &fakeLogin{token: "t"})
	cookies, sess := login(t, m)

	rec := httptest.NewRecorder()
	m.Unauthorized(rec, withCookies(httptest.NewRequest(http.MethodGet, "/dashboard/profile", nil), cookies))

	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != LoginPath {
		t.Errorf("got %d -> %q", rec.Code, rec.Header().Get("Location"))
	}
	if _, err := st.GetSession(context.Background(), sess.ID); err == nil {
		t.Error("session should be gone")
	}
}

func TestRedirectAuthenticated(t *testing.T) {
	m, _, _ := newManager(t, &fakeLogin{token: "t"})
	cookies, _ := login(t, m)

	called := false
	h := m.RedirectAuthenticated(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, withCookies(httptest.NewRequest(http.MethodGet, LoginPath, nil), cookies))
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != DashboardPath {
		t.Errorf("got %d -> %q", rec.Code, rec.Header().Get("Location"))
	}

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, LoginPath, nil))
	if !called {
		t.Error("anonymous visitor should reach the auth page")
	}
}

func TestDeriveKeys(t *testing.T) {
	a, err := DeriveKeys("s3cret", true)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := DeriveKeys("s3cret", true)
	if !bytes.Equal(a.Hash, b.Hash) || !bytes.Equal(a.CSRF, b.CSRF) {
		t.Error("derivation must be deterministic")
	}
	if bytes.Equal(a.Hash[:32], a.Block) || bytes.Equal(a.Block, a.CSRF) {
		t.Error("keys must be independent")
	}
	if len(a.Hash) != 64 || len(a.Block) != 32 || len(a.CSRF) != 32 {
		t.Errorf("lengths = %d %d %d", len(a.Hash), len(a.Block), len(a.CSRF))
	}

	if _, err := DeriveKeys("", true); !errors.Is(err, ErrNoSecret) {
		t.Errorf("prod without secret: err = %v", err)
	}
	dev, err := DeriveKeys("", false)
	if err != nil || len(dev.Block) != 32 {
		t.Errorf("dev keys = %v, %v", dev, err)
	}
}
