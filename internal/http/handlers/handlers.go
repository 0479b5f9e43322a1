// Package handlers holds what every view package shares: the dependency
// bundle handed to each handler factory and the list-page plumbing used by
// the language, lesson and user tables.
//
// Each view lives in its own subpackage and follows the same closure
// pattern:
//
//	mux.Handle("GET /dashboard/language", language.List(deps))
//	//                                    ^^^^^^^^^^^^^^^^^^^
//	//                     called once at startup, returns the handler
//	//                     that runs on every request
package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/aanand-mishra/lingo-admin/internal/auth"
	"github.com/aanand-mishra/lingo-admin/internal/backend"
	"github.com/aanand-mishra/lingo-admin/internal/config"
	"github.com/aanand-mishra/lingo-admin/internal/http/render"
	"github.com/aanand-mishra/lingo-admin/internal/listview"
	"github.com/aanand-mishra/lingo-admin/internal/types"
	"github.com/aanand-mishra/lingo-admin/internal/utils/request"
	"github.com/aanand-mishra/lingo-admin/internal/utils/response"
)

// Deps is everything a handler factory may need.
type Deps struct {
	API        *backend.Client
	Auth       *auth.Manager
	Views      *listview.Registry
	Render     *render.Renderer
	Pagination config.Pagination
}

// Session returns the session RequireAuth attached. Dashboard handlers are
// only mounted behind it, so a missing session yields the zero value.
func Session(r *http.Request) types.Session {
	sess, _ := auth.SessionFrom(r.Context())
	return sess
}

// PageURL is base?page=&limit=.
func PageURL(base string, page, limit int) string {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	return base + "?" + q.Encode()
}

// ModalURL reopens a modal after a failed submit.
func ModalURL(base string, page, limit int, key, value string) string {
	return PageURL(base, page, limit) + "&" + url.QueryEscape(key) + "=" + url.QueryEscape(value)
}

// ListPage describes one table page.
type ListPage struct {
	Base   string // e.g. "/dashboard/language"
	Page   string // template name
	Title  string
	Active string
}

// ServeList loads the requested page of view and renders it, or answers
// with the snapshot as JSON. The ?modal=add, ?edit=id and ?delete=id query
// parameters open the matching modal.
func ServeList[T any](d Deps, w http.ResponseWriter, r *http.Request, view *listview.View[T], p ListPage) {
	page, limit := request.PageParams(r, d.Pagination)
	snap := view.Load(r.Context(), page, limit)

	if errors.Is(snap.Err, backend.ErrUnauthorized) {
		d.Auth.Unauthorized(w, r)
		return
	}

	status := http.StatusOK
	if snap.Err != nil {
		status, _ = render.Classify(snap.Err)
	}

	if response.WantsJSON(r) {
		if snap.Err != nil {
			_, msg := render.Classify(snap.Err)
			response.WriteJSON(w, status, response.Response{Status: response.StatusError, Error: msg})
			return
		}
		response.WriteJSON(w, http.StatusOK, snap)
		return
	}

	body := render.ListOf(p.Base, snap)
	q := r.URL.Query()
	switch {
	case q.Get("modal") == render.ModalAdd:
		body.Modal = render.ModalAdd
	case q.Get("edit") != "":
		if rec, ok := view.Find(q.Get("edit")); ok {
			body.Modal, body.Selected = render.ModalEdit, rec
		} else if body.Error == "" {
			body.Error = "That record is no longer available."
		}
	case q.Get("delete") != "":
		if rec, ok := view.Find(q.Get("delete")); ok {
			body.Modal, body.Selected = render.ModalDelete, rec
		} else if body.Error == "" {
			body.Error = "That record is no longer available."
		}
	}

	d.Render.HTML(w, r, status, p.Page, render.View{Title: p.Title, Active: p.Active, Body: body})
}

// Done finishes a successful write: JSON clients get the refreshed snapshot,
// browsers a toast and a redirect to the page the view ended up on.
func Done[T any](d Deps, w http.ResponseWriter, r *http.Request, base string, snap listview.Snapshot[T], status int, message string) {
	if response.WantsJSON(r) {
		response.WriteJSON(w, status, snap)
		return
	}

	page, limit := snap.Key.Page, snap.Key.Limit
	if limit <= 0 {
		page, limit = request.PageParams(r, d.Pagination)
	}
	d.Render.Redirect(w, r, PageURL(base, page, limit), render.FlashSuccess, message)
}
