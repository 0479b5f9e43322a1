// Package lesson contains the HTTP handlers of the lesson table. Lessons
// are called concepts by the backend.
package lesson

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

const Base = "/dashboard/lessons"

const ImageField = "image"

var page = handlers.ListPage{Base: Base, Page: render.PageLessons, Title: "Lessons", Active: "lessons"}

func view(d handlers.Deps, r *http.Request) *listview.View[types.Concept] {
	return listview.ViewFor(d.Views, handlers.Session(r).ID, types.EntityConcepts,
		d.API.ListConcepts, func(c types.Concept) string { return c.ID })
}

// List handles GET /dashboard/lessons.
func List(d handlers.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		handlers.ServeList(d, w, r, view(d, r), page)
	}
}

type writeFunc func(ctx context.Context, id string, f types.ConceptForm, image *types.Upload) error

// write is shared by create and update; only the backend call and the
// modal to reopen differ. id is empty for creates.
func write(d handlers.Deps, done string, status int, call writeFunc) http.HandlerFunc {
	validate := validator.New()

	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		pg, limit := request.PageParams(r, d.Pagination)
		back := handlers.ModalURL(Base, pg, limit, "modal", render.ModalAdd)
		if id != "" {
			slog.Info("updating a lesson", slog.String("id", id))
			back = handlers.ModalURL(Base, pg, limit, "edit", id)
		}

		if err := request.ParseForm(r); err != nil {
			d.Render.Fail(w, r, &response.FormError{Message: "Could not read the submitted form"}, back)
			return
		}
		form := types.ConceptForm{
			Name:        strings.TrimSpace(r.FormValue("name")),
			Description: strings.TrimSpace(r.FormValue("description")),
		}
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
			return call(ctx, id, form, image)
		})
		if err != nil {
			d.Render.Fail(w, r, err, back)
			return
		}

		handlers.Done(d, w, r, Base, snap, status, done)
	}
}

// Create handles POST /dashboard/lessons.
func Create(d handlers.Deps) http.HandlerFunc {
	return write(d, "Lesson created successfully", http.StatusCreated,
		func(ctx context.Context, _ string, f types.ConceptForm, image *types.Upload) error {
			c, err := d.API.CreateConcept(ctx, f, image)
			if err == nil {
				slog.Info("lesson created", slog.String("id", c.ID))
			}
			return err
		})
}

// Update handles POST /dashboard/lessons/{id}.
func Update(d handlers.Deps) http.HandlerFunc {
	return write(d, "Lesson updated successfully", http.StatusOK,
		func(ctx context.Context, id string, f types.ConceptForm, image *types.Upload) error {
			_, err := d.API.UpdateConcept(ctx, id, f, image)
			return err
		})
}

// Delete handles POST /dashboard/lessons/{id}/delete.
func Delete(d handlers.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		slog.Info("deleting a lesson", slog.String("id", id))

		pg, limit := request.PageParams(r, d.Pagination)
		snap, err := view(d, r).Delete(r.Context(), pg, limit, id, d.API.DeleteConcept)
		if err != nil {
			d.Render.Fail(w, r, err, handlers.PageURL(Base, pg, limit))
			return
		}

		handlers.Done(d, w, r, Base, snap, http.StatusOK, "Lesson deleted successfully")
	}
}
