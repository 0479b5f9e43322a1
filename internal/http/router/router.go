// Package router wires every view onto one http.ServeMux.
//
// Route table:
//
//	GET  /                                 -> /dashboard
//	GET  /static/...                       embedded assets
//	GET  /auth/login, POST /auth/login     sign in (guests only)
//	POST /auth/logout                      sign out
//	GET|POST /auth/forgot-password         reset: request a code
//	GET|POST /auth/verify-otp              reset: enter the code
//	POST /auth/verify-otp/resend           reset: send a new code
//	GET|POST /auth/reset-password          reset: new password
//	GET  /dashboard                        overview
//	.../dashboard/language                 language table
//	.../dashboard/lessons                  lesson table
//	.../dashboard/profile                  user table and export
//	.../dashboard/settings                 own profile and password
package router

import (
	"net/http"

	"github.com/gorilla/csrf"

	"github.com/aanand-mishra/lingo-admin/internal/auth"
	"github.com/aanand-mishra/lingo-admin/internal/http/handlers"
	"github.com/aanand-mishra/lingo-admin/internal/http/handlers/account"
	"github.com/aanand-mishra/lingo-admin/internal/http/handlers/dashboard"
	"github.com/aanand-mishra/lingo-admin/internal/http/handlers/language"
	"github.com/aanand-mishra/lingo-admin/internal/http/handlers/lesson"
	"github.com/aanand-mishra/lingo-admin/internal/http/handlers/profile"
	"github.com/aanand-mishra/lingo-admin/internal/http/handlers/settings"
	"github.com/aanand-mishra/lingo-admin/internal/http/render"
	"github.com/aanand-mishra/lingo-admin/internal/resetflow"
)

// Routes returns the mux without CSRF protection. Protect adds it.
func Routes(d handlers.Deps, flow *resetflow.Flow) *http.ServeMux {
	router := http.NewServeMux()

	guest := func(h http.HandlerFunc) http.Handler { return d.Auth.RedirectAuthenticated(h) }
	private := func(h http.HandlerFunc) http.Handler { return d.Auth.RequireAuth(h) }

	router.Handle("GET /static/", render.Static())
	router.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, auth.DashboardPath, http.StatusSeeOther)
	})

	// ── Auth ──────────────────────────────────────────────────────────────
	router.Handle("GET /auth/login", guest(account.LoginPage(d)))
	router.Handle("POST /auth/login", guest(account.Login(d)))
	router.HandleFunc("POST /auth/logout", account.Logout(d))

	router.Handle("GET /auth/forgot-password", guest(account.ForgotPage(d)))
	router.Handle("POST /auth/forgot-password", guest(account.Forgot(d, flow)))
	router.Handle("GET /auth/verify-otp", guest(account.VerifyPage(d)))
	router.Handle("POST /auth/verify-otp", guest(account.Verify(d, flow)))
	router.Handle("POST /auth/verify-otp/resend", guest(account.Resend(d, flow)))
	router.Handle("GET /auth/reset-password", guest(account.ResetPage(d)))
	router.Handle("POST /auth/reset-password", guest(account.Reset(d, flow)))

	// ── Dashboard ─────────────────────────────────────────────────────────
	router.Handle("GET /dashboard", private(dashboard.Overview(d)))

	router.Handle("GET /dashboard/language", private(language.List(d)))
	router.Handle("POST /dashboard/language", private(language.Create(d)))
	router.Handle("POST /dashboard/language/{id}", private(language.Update(d)))
	router.Handle("POST /dashboard/language/{id}/delete", private(language.Delete(d)))

	router.Handle("GET /dashboard/lessons", private(lesson.List(d)))
	router.Handle("POST /dashboard/lessons", private(lesson.Create(d)))
	router.Handle("POST /dashboard/lessons/{id}", private(lesson.Update(d)))
	router.Handle("POST /dashboard/lessons/{id}/delete", private(lesson.Delete(d)))

	router.Handle("GET /dashboard/profile", private(profile.List(d)))
	router.Handle("GET /dashboard/profile/export", private(profile.Export(d)))
	router.Handle("POST /dashboard/profile/{id}/delete", private(profile.Delete(d)))

	router.Handle("GET /dashboard/settings", private(settings.Show(d)))
	router.Handle("POST /dashboard/settings", private(settings.Update(d)))
	router.Handle("POST /dashboard/settings/password", private(settings.ChangePassword(d)))

	return router
}

// Protect wraps h with gorilla/csrf. Outside prod the site is served over
// plain HTTP, which csrf must be told about or it rejects every POST on
// the Referer check.
func Protect(h http.Handler, key []byte, prod bool) http.Handler {
	protected := csrf.Protect(key,
		csrf.Secure(prod),
		csrf.Path("/"),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "Your form expired. Please reload the page and try again.", http.StatusForbidden)
		})),
	)(h)
	if prod {
		return protected
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		protected.ServeHTTP(w, csrf.PlaintextHTTPRequest(r))
	})
}
