// Package settings contains the handlers of the account settings page: the
// signed-in user's profile form and the change-password form.
package settings

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/aanand-mishra/lingo-admin/internal/backend"
	"github.com/aanand-mishra/lingo-admin/internal/http/handlers"
	"github.com/aanand-mishra/lingo-admin/internal/http/render"
	"github.com/aanand-mishra/lingo-admin/internal/types"
	"github.com/aanand-mishra/lingo-admin/internal/utils/request"
	"github.com/aanand-mishra/lingo-admin/internal/utils/response"
)

const Path = "/dashboard/settings"

// AvatarField is the multipart field the backend reads the avatar from.
const AvatarField = "avatar"

// Body is what the settings template receives.
type Body struct {
	User  types.User
	Error string
}

// Show handles GET /dashboard/settings. A failed profile fetch is shown on
// the page itself; the password form still works.
func Show(d handlers.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := handlers.Session(r)

		user, err := d.API.GetUser(r.Context(), sess.UserID)
		if errors.Is(err, backend.ErrUnauthorized) {
			d.Auth.Unauthorized(w, r)
			return
		}

		body := Body{User: user}
		status := http.StatusOK
		if err != nil {
			status, body.Error = render.Classify(err)
			body.User = types.User{ID: sess.UserID, Email: sess.Email}
		}

		if response.WantsJSON(r) {
			if err != nil {
				response.WriteJSON(w, status, response.Response{Status: response.StatusError, Error: body.Error})
				return
			}
			response.WriteJSON(w, http.StatusOK, user)
			return
		}

		d.Render.HTML(w, r, status, render.PageSettings, render.View{Title: "Settings", Active: "settings", Body: body})
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Update handles POST /dashboard/settings.
//
// The backend takes the user id in the multipart body, not in the path.
// A saved profile also invalidates this session's cached user pages.
// ─────────────────────────────────────────────────────────────────────────────
func Update(d handlers.Deps) http.HandlerFunc {
	validate := validator.New()

	return func(w http.ResponseWriter, r *http.Request) {
		sess := handlers.Session(r)
		slog.Info("updating profile", slog.String("user_id", sess.UserID))

		if err := request.ParseForm(r); err != nil {
			d.Render.Fail(w, r, &response.FormError{Message: "Could not read the submitted form"}, Path)
			return
		}

		// The hidden id field is only there for the template; the session
		// decides whose profile is saved.
		form := types.ProfileForm{
			ID:          sess.UserID,
			Name:        strings.TrimSpace(r.FormValue("name")),
			Username:    strings.TrimSpace(r.FormValue("username")),
			Email:       strings.TrimSpace(r.FormValue("email")),
			Phone:       strings.TrimSpace(r.FormValue("phone")),
			DateOfBirth: strings.TrimSpace(r.FormValue("dateOfBirth")),
			Gender:      strings.TrimSpace(r.FormValue("gender")),
		}
		if err := response.CheckForm(validate, form); err != nil {
			d.Render.Fail(w, r, err, Path)
			return
		}

		avatar, err := request.Upload(r, AvatarField)
		if err != nil {
			d.Render.Fail(w, r, &response.FormError{Message: "Could not read the uploaded avatar"}, Path)
			return
		}

		user, err := d.API.UpdateUser(r.Context(), form, avatar)
		if err != nil {
			d.Render.Fail(w, r, err, Path)
			return
		}
		d.Views.Invalidate(sess.ID, types.EntityUsers)

		if response.WantsJSON(r) {
			response.WriteJSON(w, http.StatusOK, user)
			return
		}
		d.Render.Redirect(w, r, Path, render.FlashSuccess, "Profile updated successfully")
	}
}

// ChangePassword handles POST /dashboard/settings/password. Mismatched or
// short passwords are rejected before the backend is called.
func ChangePassword(d handlers.Deps) http.HandlerFunc {
	validate := validator.New()

	return func(w http.ResponseWriter, r *http.Request) {
		if err := request.ParseForm(r); err != nil {
			d.Render.Fail(w, r, &response.FormError{Message: "Could not read the submitted form"}, Path)
			return
		}

		form := types.ChangePasswordForm{
			OldPassword:     r.FormValue("oldPassword"),
			NewPassword:     r.FormValue("newPassword"),
			ConfirmPassword: r.FormValue("confirmPassword"),
		}
		if err := response.CheckForm(validate, form); err != nil {
			d.Render.Fail(w, r, err, Path)
			return
		}

		msg, err := d.API.ChangePassword(r.Context(), form.OldPassword, form.NewPassword, form.ConfirmPassword)
		if err != nil {
			d.Render.Fail(w, r, err, Path)
			return
		}
		slog.Info("password changed", slog.String("user_id", handlers.Session(r).UserID))

		if msg == "" {
			msg = "Password changed successfully"
		}
		if response.WantsJSON(r) {
			response.WriteJSON(w, http.StatusOK, response.Response{Status: response.StatusOK})
			return
		}
		d.Render.Redirect(w, r, Path, render.FlashSuccess, msg)
	}
}
