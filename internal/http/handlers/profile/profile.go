// Package profile contains the handlers of the user table.
package profile

import (
	"bytes"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/aanand-mishra/lingo-admin/internal/export"
	"github.com/aanand-mishra/lingo-admin/internal/http/handlers"
	"github.com/aanand-mishra/lingo-admin/internal/http/render"
	"github.com/aanand-mishra/lingo-admin/internal/listview"
	"github.com/aanand-mishra/lingo-admin/internal/types"
	"github.com/aanand-mishra/lingo-admin/internal/utils/request"
)

const Base = "/dashboard/profile"

var page = handlers.ListPage{Base: Base, Page: render.PageProfile, Title: "Users", Active: "profile"}

func view(d handlers.Deps, r *http.Request) *listview.View[types.User] {
	return listview.ViewFor(d.Views, handlers.Session(r).ID, types.EntityUsers,
		d.API.ListUsers, func(u types.User) string { return u.ID })
}

// List handles GET /dashboard/profile.
func List(d handlers.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		handlers.ServeList(d, w, r, view(d, r), page)
	}
}

// Delete handles POST /dashboard/profile/{id}/delete. Deleting the last
// user of a page past the first lands on the previous page.
func Delete(d handlers.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		slog.Info("deleting a user", slog.String("id", id))

		pg, limit := request.PageParams(r, d.Pagination)

		if id == handlers.Session(r).UserID {
			d.Render.Redirect(w, r, handlers.PageURL(Base, pg, limit), render.FlashError,
				"You cannot delete your own account")
			return
		}

		snap, err := view(d, r).Delete(r.Context(), pg, limit, id, d.API.DeleteUser)
		if err != nil {
			d.Render.Fail(w, r, err, handlers.PageURL(Base, pg, limit))
			return
		}

		handlers.Done(d, w, r, Base, snap, http.StatusOK, "User deleted successfully")
	}
}

// Export handles GET /dashboard/profile/export: the requested page of
// users as an .xlsx download.
func Export(d handlers.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pg, limit := request.PageParams(r, d.Pagination)

		users, err := d.API.ListUsers(r.Context(), pg, limit)
		if err != nil {
			d.Render.Fail(w, r, err, handlers.PageURL(Base, pg, limit))
			return
		}

		var buf bytes.Buffer
		if err := export.Users(&buf, users.Items); err != nil {
			slog.Error("export users", slog.String("error", err.Error()))
			d.Render.Fail(w, r, err, handlers.PageURL(Base, pg, limit))
			return
		}

		slog.Info("users exported", slog.Int("count", len(users.Items)), slog.Int("page", pg))

		w.Header().Set("Content-Type", export.ContentType)
		w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename(pg, limit)+`"`)
		w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
		w.WriteHeader(http.StatusOK)
		_, _ = buf.WriteTo(w)
	}
}
