// Package language contains the HTTP handlers of the language table.
//
// Routes (all behind auth.RequireAuth):
//
//	GET  /dashboard/language               table, ?page=&limit=, modals
//	POST /dashboard/language               create (multipart)
//	POST /dashboard/language/{id}          update (multipart)
//	POST /dashboard/language/{id}/delete   delete
package language

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/aanand-mishra/lingo-admin/internal/http/handlers"
	"github.com/aanand-mishra/lingo-admin/internal/http/render"
	"github.com/aanand-mishra/lingo-admin/internal/listview"
	"github.com/aanand-mishra/lingo-admin/internal/types"
	"github.com/aanand-mishra/lingo-admin/internal/utils/request"
	"github.com/aanand-mishra/lingo-admin/internal/utils/response"
)

// Base is the table's path.
const Base = "/dashboard/language"

// ImageField is the multipart field the backend reads the image from.
const ImageField = "imageLink"

var page = handlers.ListPage{Base: Base, Page: render.PageLanguage, Title: "Languages", Active: "language"}

func view(d handlers.Deps, r *http.Request) *listview.View[types.Language] {
	return listview.ViewFor(d.Views, handlers.Session(r).ID, types.EntityLanguages,
		d.API.ListLanguages, func(l types.Language) string { return l.ID })
}

func readForm(r *http.Request) types.LanguageForm {
	return types.LanguageForm{
		Name:        strings.TrimSpace(r.FormValue("name")),
		Code:        strings.TrimSpace(r.FormValue("code")),
		Description: strings.TrimSpace(r.FormValue("description")),
		About:       strings.TrimSpace(r.FormValue("about")),
	}
}

// List handles GET /dashboard/language.
func List(d handlers.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		handlers.ServeList(d, w, r, view(d, r), page)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Create handles POST /dashboard/language.
//
// Validation runs first; a bad form never reaches the backend and the add
// modal is shown again with the message.
// ─────────────────────────────────────────────────────────────────────────────
func Create(d handlers.Deps) http.HandlerFunc {
	validate := validator.New()

	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("creating a language")

		pg, limit := request.PageParams(r, d.Pagination)
		back := handlers.ModalURL(Base, pg, limit, "modal", render.ModalAdd)

		if err := request.ParseForm(r); err != nil {
			d.Render.Fail(w, r, &response.FormError{Message: "Could not read the submitted form"}, back)
			return
		}
		form := readForm(r)
		if err := response.CheckForm(validate, form); err != nil {
			d.Render.Fail(w, r, err, back)
			return
		}
		image, err := request.Upload(r, ImageField)
		if err != nil {
			d.Render.Fail(w, r, &response.FormError{Message: "Could not read the uploaded image"}, back)
			return
		}

		snap, err := view(d, r).Mutate(r.Context(), func(ctx context.Context) error {
			lang, err := d.API.CreateLanguage(ctx, form, image)
			if err == nil {
				slog.Info("language created", slog.String("id", lang.ID))
			}
			return err
		})
		if err != nil {
			d.Render.Fail(w, r, err, back)
			return
		}

		handlers.Done(d, w, r, Base, snap, http.StatusCreated, "Language created successfully")
	}
}

// Update handles POST /dashboard/language/{id}.
func Update(d handlers.Deps) http.HandlerFunc {
	validate := validator.New()

	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		slog.Info("updating a language", slog.String("id", id))

		pg, limit := request.PageParams(r, d.Pagination)
		back := handlers.ModalURL(Base, pg, limit, "edit", id)

		if err := request.ParseForm(r); err != nil {
			d.Render.Fail(w, r, &response.FormError{Message: "Could not read the submitted form"}, back)
			return
		}
		form := readForm(r)
		if err := response.CheckForm(validate, form); err != nil {
			d.Render.Fail(w, r, err, back)
			return
		}
		image, err := request.Upload(r, ImageField)
		if err != nil {
			d.Render.Fail(w, r, &response.FormError{Message: "Could not read the uploaded image"}, back)
			return
		}

		snap, err := view(d, r).Mutate(r.Context(), func(ctx context.Context) error {
			_, err := d.API.UpdateLanguage(ctx, id, form, image)
			return err
		})
		if err != nil {
			d.Render.Fail(w, r, err, back)
			return
		}

		handlers.Done(d, w, r, Base, snap, http.StatusOK, "Language updated successfully")
	}
}

// Delete handles POST /dashboard/language/{id}/delete.
func Delete(d handlers.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		slog.Info("deleting a language", slog.String("id", id))

		pg, limit := request.PageParams(r, d.Pagination)

		snap, err := view(d, r).Delete(r.Context(), pg, limit, id, d.API.DeleteLanguage)
		if err != nil {
			d.Render.Fail(w, r, err, handlers.PageURL(Base, pg, limit))
			return
		}

		handlers.Done(d, w, r, Base, snap, http.StatusOK, "Language deleted successfully")
	}
}
