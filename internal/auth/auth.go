// Package auth is the single authentication context of the application.
//
// A browser holds a signed and encrypted cookie carrying nothing but a
// session id. The id resolves to a stored types.Session with the backend
// access token. RequireAuth hydrates that session on every dashboard
// request and attaches its token to the request context, where the backend
// client picks it up. Logout (or any 401 from the backend) tears it down.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"github.com/aanand-mishra/lingo-admin/internal/backend"
	"github.com/aanand-mishra/lingo-admin/internal/storage"
	"github.com/aanand-mishra/lingo-admin/internal/types"
	"github.com/aanand-mishra/lingo-admin/internal/utils/response"
)

// Routes the guards redirect to.
const (
	LoginPath     = "/auth/login"
	DashboardPath = "/dashboard"
)

const sessionIDKey = "sid"

// Backend is the identity call the manager needs.
type Backend interface {
	Login(ctx context.Context, email, password string) (backend.LoginResult, error)
}

// Forgetter drops per-session state held elsewhere (list views).
type Forgetter interface {
	Forget(sessionID string)
}

type Options struct {
	Storage    storage.Storage
	Backend    Backend
	Views      Forgetter
	Keys       Keys
	CookieName string
	TTL        time.Duration
	Secure     bool
}

type Manager struct {
	store      *sessions.CookieStore
	storage    storage.Storage
	api        Backend
	views      Forgetter
	cookieName string
	ttl        time.Duration
	validate   *validator.Validate

	// now is swapped in tests.
	now func() time.Time
}

func NewManager(opts Options) *Manager {
	store := sessions.NewCookieStore(opts.Keys.Hash, opts.Keys.Block)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(opts.TTL.Seconds()),
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	}

	name := opts.CookieName
	if name == "" {
		name = "lingo-admin"
	}

	return &Manager{
		store:      store,
		storage:    opts.Storage,
		api:        opts.Backend,
		views:      opts.Views,
		cookieName: name,
		ttl:        opts.TTL,
		validate:   validator.New(),
		now:        time.Now,
	}
}

// Store exposes the cookie store so flash messages share its keys.
func (m *Manager) Store() sessions.Store {
	return m.store
}

// ─────────────────────────────────────────────────────────────────────────────
// Login exchanges credentials for a backend token, persists a session and
// sets the cookie.
//
// The session ends at the token's exp claim when it has one, and never
// later than TTL from now.
// ─────────────────────────────────────────────────────────────────────────────
func (m *Manager) Login(w http.ResponseWriter, r *http.Request, form types.LoginForm) (types.Session, error) {
	if err := response.CheckForm(m.validate, form); err != nil {
		return types.Session{}, err
	}

	res, err := m.api.Login(r.Context(), form.Email, form.Password)
	if err != nil {
		return types.Session{}, err
	}
	if res.AccessToken == "" {
		return types.Session{}, &backend.APIError{Status: http.StatusOK, Message: "Login response did not include a token"}
	}

	now := m.now()
	claims := readClaims(res.AccessToken)

	sess := types.Session{
		ID:        uuid.NewString(),
		UserID:    res.User.ID,
		Email:     res.User.Email,
		Role:      res.User.Role,
		Token:     res.AccessToken,
		ExpiresAt: now.Add(m.ttl),
		CreatedAt: now,
	}
	if sess.Role == "" {
		sess.Role = claims.role
	}
	if sess.UserID == "" {
		sess.UserID = claims.subject
	}
	if !claims.expires.IsZero() && claims.expires.Before(sess.ExpiresAt) {
		sess.ExpiresAt = claims.expires
	}

	if err := m.storage.CreateSession(r.Context(), sess); err != nil {
		return types.Session{}, fmt.Errorf("auth.Login: store session: %w", err)
	}

	cookie, _ := m.store.Get(r, m.cookieName)
	cookie.Values[sessionIDKey] = sess.ID
	cookie.Options.MaxAge = int(sess.ExpiresAt.Sub(now).Seconds())
	if err := cookie.Save(r, w); err != nil {
		return types.Session{}, fmt.Errorf("auth.Login: save cookie: %w", err)
	}

	slog.Info("user logged in", slog.String("user_id", sess.UserID), slog.String("session", sess.ID))
	return sess, nil
}

// Current resolves the request's cookie to a live session.
func (m *Manager) Current(r *http.Request) (types.Session, bool) {
	cookie, err := m.store.Get(r, m.cookieName)
	if err != nil {
		// Tampered or signed with old keys: treat as logged out.
		return types.Session{}, false
	}
	id, _ := cookie.Values[sessionIDKey].(string)
	if id == "" {
		return types.Session{}, false
	}

	sess, err := m.storage.GetSession(r.Context(), id)
	if err != nil {
		if !errors.Is(err, storage.ErrSessionNotFound) {
			slog.Error("session lookup failed", slog.String("error", err.Error()))
		}
		return types.Session{}, false
	}
	if sess.Expired(m.now()) {
		_ = m.storage.DeleteSession(r.Context(), id)
		return types.Session{}, false
	}
	return sess, true
}

// Logout deletes the session record, forgets its list views and expires
// the cookie. It is safe to call without a session.
func (m *Manager) Logout(w http.ResponseWriter, r *http.Request) {
	cookie, _ := m.store.Get(r, m.cookieName)
	if id, _ := cookie.Values[sessionIDKey].(string); id != "" {
		if err := m.storage.DeleteSession(r.Context(), id); err != nil {
			slog.Error("delete session failed", slog.String("session", id), slog.String("error", err.Error()))
		}
		if m.views != nil {
			m.views.Forget(id)
		}
		slog.Info("user logged out", slog.String("session", id))
	}

	delete(cookie.Values, sessionIDKey)
	cookie.Options.MaxAge = -1
	if err := cookie.Save(r, w); err != nil {
		slog.Error("expire cookie failed", slog.String("error", err.Error()))
	}
}

// Unauthorized handles a backend 401 seen anywhere: the session is torn
// down and the browser goes to the login page. JSON clients get a 401.
func (m *Manager) Unauthorized(w http.ResponseWriter, r *http.Request) {
	m.Logout(w, r)
	if response.WantsJSON(r) {
		response.WriteJSON(w, http.StatusUnauthorized, response.GeneralError(backend.ErrUnauthorized))
		return
	}
	http.Redirect(w, r, LoginPath, http.StatusSeeOther)
}

// RequireAuth lets only logged-in requests through. The session and its
// token are attached to the request context.
func (m *Manager) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := m.Current(r)
		if !ok {
			if response.WantsJSON(r) {
				response.WriteJSON(w, http.StatusUnauthorized, response.GeneralError(backend.ErrUnauthorized))
				return
			}
			http.Redirect(w, r, LoginPath, http.StatusSeeOther)
			return
		}

		ctx := WithSession(r.Context(), sess)
		ctx = backend.WithToken(ctx, sess.Token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RedirectAuthenticated keeps logged-in users off the auth pages.
func (m *Manager) RedirectAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := m.Current(r); ok {
			http.Redirect(w, r, DashboardPath, http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// PurgeExpired deletes expired session rows every interval until ctx is
// done.
func (m *Manager) PurgeExpired(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := m.storage.DeleteExpiredSessions(ctx, m.now())
			if err != nil {
				slog.Error("purge expired sessions", slog.String("error", err.Error()))
				continue
			}
			if n > 0 {
				slog.Info("purged expired sessions", slog.Int64("count", n))
			}
		}
	}
}

type sessionKey struct{}

func WithSession(ctx context.Context, s types.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFrom returns the session RequireAuth attached.
func SessionFrom(ctx context.Context) (types.Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(types.Session)
	return s, ok
}

type tokenClaims struct {
	subject string
	role    string
	expires time.Time
}

// readClaims peeks at the access token without verifying it. The backend
// verifies its own tokens; here the claims only bound the session.
func readClaims(token string) tokenClaims {
	var out tokenClaims
	claims := jwt.MapClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(token, claims); err != nil {
		return out
	}
	if exp, ok := claims["exp"].(float64); ok {
		out.expires = time.Unix(int64(exp), 0)
	}
	out.role, _ = claims["role"].(string)
	if sub, ok := claims["sub"].(string); ok {
		out.subject = sub
	} else if id, ok := claims["_id"].(string); ok {
		out.subject = id
	}
	return out
}
