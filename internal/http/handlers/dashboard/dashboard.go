// Package dashboard renders the overview page: how many languages, lessons
// and users the backend holds.
package dashboard

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/aanand-mishra/lingo-admin/internal/backend"
	"github.com/aanand-mishra/lingo-admin/internal/http/handlers"
	"github.com/aanand-mishra/lingo-admin/internal/http/render"
	"github.com/aanand-mishra/lingo-admin/internal/utils/response"
)

// Card is one total on the overview. A card that failed to load shows its
// own error and leaves the others alone.
type Card struct {
	Label string `json:"label"`
	Link  string `json:"link"`
	Total int    `json:"total"`
	Err   string `json:"error,omitempty"`
}

type Body struct {
	Cards []Card `json:"cards"`
}

type source struct {
	label string
	link  string
	total func(ctx context.Context) (int, error)
}

// Overview handles GET /dashboard. The three counts are fetched
// concurrently with the smallest page the backend accepts.
func Overview(d handlers.Deps) http.HandlerFunc {
	sources := []source{
		{"Languages", "/dashboard/language", func(ctx context.Context) (int, error) {
			p, err := d.API.ListLanguages(ctx, 1, 1)
			return p.Total, err
		}},
		{"Lessons", "/dashboard/lessons", func(ctx context.Context) (int, error) {
			p, err := d.API.ListConcepts(ctx, 1, 1)
			return p.Total, err
		}},
		{"Users", "/dashboard/profile", func(ctx context.Context) (int, error) {
			p, err := d.API.ListUsers(ctx, 1, 1)
			return p.Total, err
		}},
	}

	return func(w http.ResponseWriter, r *http.Request) {
		cards := make([]Card, len(sources))
		errs := make([]error, len(sources))

		var wg sync.WaitGroup
		for i, s := range sources {
			wg.Add(1)
			go func(i int, s source) {
				defer wg.Done()
				total, err := s.total(r.Context())
				cards[i] = Card{Label: s.label, Link: s.link, Total: total}
				errs[i] = err
			}(i, s)
		}
		wg.Wait()

		for i, err := range errs {
			if err == nil {
				continue
			}
			if errors.Is(err, backend.ErrUnauthorized) {
				d.Auth.Unauthorized(w, r)
				return
			}
			_, cards[i].Err = render.Classify(err)
		}

		body := Body{Cards: cards}
		if response.WantsJSON(r) {
			response.WriteJSON(w, http.StatusOK, body)
			return
		}
		d.Render.HTML(w, r, http.StatusOK, render.PageDashboard, render.View{Title: "Overview", Active: "dashboard", Body: body})
	}
}
