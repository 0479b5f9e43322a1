// Package account contains the pages reachable without a session: sign in,
// sign out and the three forgot-password stages.
//
// A failed submit re-renders the same page with the message and whatever
// the user already typed, except passwords.
package account

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aanand-mishra/lingo-admin/internal/auth"
	"github.com/aanand-mishra/lingo-admin/internal/backend"
	"github.com/aanand-mishra/lingo-admin/internal/http/handlers"
	"github.com/aanand-mishra/lingo-admin/internal/http/render"
	"github.com/aanand-mishra/lingo-admin/internal/resetflow"
	"github.com/aanand-mishra/lingo-admin/internal/types"
	"github.com/aanand-mishra/lingo-admin/internal/utils/request"
	"github.com/aanand-mishra/lingo-admin/internal/utils/response"
)

// InvalidCredentials replaces the backend's 401 on the login form.
const InvalidCredentials = "Invalid email or password"

// EmailBody feeds the login and forgot pages.
type EmailBody struct {
	Email string
}

type VerifyBody struct {
	Email  string
	Digits []string
	Length int
}

type ResetBody struct {
	Email string
	OTP   string
}

// show renders an auth page. err, when set, is shown as an error toast and
// picks the status. A backend 401 on the reset pages sends the browser to
// the login page with the server's message instead.
func show(d handlers.Deps, w http.ResponseWriter, r *http.Request, page, title string, body any, err error) {
	if page != render.PageLogin && errors.Is(err, backend.ErrUnauthorized) {
		msg := backend.Message(err)
		slog.Info("backend rejected reset step", slog.String("page", page), slog.String("message", msg))
		if response.WantsJSON(r) {
			response.WriteJSON(w, http.StatusUnauthorized, response.Response{Status: response.StatusError, Error: msg})
			return
		}
		d.Render.Redirect(w, r, auth.LoginPath, render.FlashError, msg)
		return
	}

	status := http.StatusOK
	v := render.View{Title: title, Body: body}
	if err != nil {
		var msg string
		status, msg = render.Classify(err)
		if status >= http.StatusInternalServerError {
			slog.Error("auth page", slog.String("page", page), slog.String("error", err.Error()))
		}
		if response.WantsJSON(r) {
			response.WriteJSON(w, status, response.Response{Status: response.StatusError, Error: msg})
			return
		}
		v.Flashes = []render.Flash{{Kind: render.FlashError, Message: msg}}
	}
	d.Render.HTML(w, r, status, page, v)
}

// step finishes a successful stage.
func step(d handlers.Deps, w http.ResponseWriter, r *http.Request, s resetflow.Step) {
	if response.WantsJSON(r) {
		response.WriteJSON(w, http.StatusOK, map[string]string{"status": response.StatusOK, "message": s.Message, "next": s.Next})
		return
	}
	d.Render.Redirect(w, r, s.Next, render.FlashSuccess, s.Message)
}

func readForm(d handlers.Deps, w http.ResponseWriter, r *http.Request, page, title string, body any) bool {
	if err := request.ParseForm(r); err != nil {
		show(d, w, r, page, title, body, &response.FormError{Message: "Could not read the submitted form"})
		return false
	}
	return true
}

// ── Sign in / out ───────────────────────────────────────────────────────────

// LoginPage handles GET /auth/login.
func LoginPage(d handlers.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		show(d, w, r, render.PageLogin, "Sign in", EmailBody{Email: r.URL.Query().Get("email")}, nil)
	}
}

// Login handles POST /auth/login. The backend's 401 here means bad
// credentials, not an expired session.
func Login(d handlers.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !readForm(d, w, r, render.PageLogin, "Sign in", EmailBody{}) {
			return
		}
		form := types.LoginForm{
			Email:    strings.TrimSpace(r.FormValue("email")),
			Password: r.FormValue("password"),
		}

		sess, err := d.Auth.Login(w, r, form)
		if err != nil {
			if errors.Is(err, backend.ErrUnauthorized) {
				err = &backend.APIError{Status: http.StatusUnauthorized, Message: InvalidCredentials}
			}
			slog.Info("login failed", slog.String("email", form.Email), slog.String("error", err.Error()))
			show(d, w, r, render.PageLogin, "Sign in", EmailBody{Email: form.Email}, err)
			return
		}

		if response.WantsJSON(r) {
			response.WriteJSON(w, http.StatusOK, map[string]string{"status": response.StatusOK, "userId": sess.UserID, "role": sess.Role})
			return
		}
		d.Render.Redirect(w, r, auth.DashboardPath, render.FlashSuccess, "Welcome back")
	}
}

// Logout handles POST /auth/logout.
func Logout(d handlers.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d.Auth.Logout(w, r)
		if response.WantsJSON(r) {
			response.WriteJSON(w, http.StatusOK, response.Response{Status: response.StatusOK})
			return
		}
		d.Render.Redirect(w, r, auth.LoginPath, render.FlashSuccess, "You have been signed out")
	}
}

// ── Forgot password ─────────────────────────────────────────────────────────

// ForgotPage handles GET /auth/forgot-password.
func ForgotPage(d handlers.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		show(d, w, r, render.PageForgot, "Forgot password", EmailBody{Email: r.URL.Query().Get("email")}, nil)
	}
}

// Forgot handles POST /auth/forgot-password.
func Forgot(d handlers.Deps, flow *resetflow.Flow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !readForm(d, w, r, render.PageForgot, "Forgot password", EmailBody{}) {
			return
		}
		email := strings.TrimSpace(r.FormValue("email"))

		s, err := flow.Request(r.Context(), email)
		if err != nil {
			show(d, w, r, render.PageForgot, "Forgot password", EmailBody{Email: email}, err)
			return
		}
		slog.Info("reset code requested", slog.String("email", email))
		step(d, w, r, s)
	}
}

// VerifyPage handles GET /auth/verify-otp?email=. Without an email there is
// nothing to verify, so the user starts over.
func VerifyPage(d handlers.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email := strings.TrimSpace(r.URL.Query().Get("email"))
		if email == "" {
			http.Redirect(w, r, resetflow.ForgotPath, http.StatusSeeOther)
			return
		}
		show(d, w, r, render.PageVerify, "Verify code", verifyBody(email, nil), nil)
	}
}

func verifyBody(email string, digits []string) VerifyBody {
	return VerifyBody{Email: email, Digits: digits, Length: resetflow.OTPDigits}
}

// Verify handles POST /auth/verify-otp.
func Verify(d handlers.Deps, flow *resetflow.Flow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !readForm(d, w, r, render.PageVerify, "Verify code", verifyBody("", nil)) {
			return
		}
		email := strings.TrimSpace(r.FormValue("email"))
		digits := request.Digits(r)

		s, err := flow.Verify(r.Context(), email, digits)
		if err != nil {
			// A rejected code is cleared; a form problem keeps what was typed.
			if !resetflow.IsValidation(err) {
				digits = nil
			}
			show(d, w, r, render.PageVerify, "Verify code", verifyBody(email, digits), err)
			return
		}
		step(d, w, r, s)
	}
}

// Resend handles POST /auth/verify-otp/resend.
func Resend(d handlers.Deps, flow *resetflow.Flow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !readForm(d, w, r, render.PageVerify, "Verify code", verifyBody("", nil)) {
			return
		}
		email := strings.TrimSpace(r.FormValue("email"))

		s, err := flow.Resend(r.Context(), email)
		if err != nil {
			show(d, w, r, render.PageVerify, "Verify code", verifyBody(email, nil), err)
			return
		}
		step(d, w, r, s)
	}
}

// ResetPage handles GET /auth/reset-password?email=&otp=.
func ResetPage(d handlers.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		body := ResetBody{Email: q.Get("email"), OTP: q.Get("otp")}
		if body.Email == "" || body.OTP == "" {
			d.Render.Redirect(w, r, resetflow.ForgotPath, render.FlashError,
				"This reset link is incomplete. Please request a new code.")
			return
		}
		show(d, w, r, render.PageReset, "Reset password", body, nil)
	}
}

// Reset handles POST /auth/reset-password.
func Reset(d handlers.Deps, flow *resetflow.Flow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !readForm(d, w, r, render.PageReset, "Reset password", ResetBody{}) {
			return
		}
		form := types.ResetPasswordForm{
			Email:           strings.TrimSpace(r.FormValue("email")),
			OTP:             strings.TrimSpace(r.FormValue("otp")),
			Password:        r.FormValue("password"),
			ConfirmPassword: r.FormValue("confirmPassword"),
		}

		s, err := flow.Reset(r.Context(), form)
		if err != nil {
			show(d, w, r, render.PageReset, "Reset password", ResetBody{Email: form.Email, OTP: form.OTP}, err)
			return
		}
		slog.Info("password reset", slog.String("email", form.Email))
		if s.Message == "" {
			s.Message = "Password reset successfully. Please sign in."
		}
		step(d, w, r, s)
	}
}
