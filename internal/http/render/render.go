// Package render turns handler results into HTML pages.
//
// Pages are html/template files embedded in the binary. Every page is
// parsed together with layout.html, which draws the navigation, the
// notification toasts and the shared pagination strip.
//
// Handlers never format errors themselves. They pass them to Fail, which
// knows the error taxonomy: a backend 401 ends the session, a busy view or
// a form problem becomes a toast, anything else becomes the backend's
// message (or a generic one).
package render

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gorilla/csrf"
	"github.com/gorilla/sessions"

	"github.com/aanand-mishra/lingo-admin/internal/auth"
	"github.com/aanand-mishra/lingo-admin/internal/backend"
	"github.com/aanand-mishra/lingo-admin/internal/listview"
	"github.com/aanand-mishra/lingo-admin/internal/utils/response"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed static
var staticFS embed.FS

// Page names, one per file under templates/.
const (
	PageLogin     = "login"
	PageForgot    = "forgot"
	PageVerify    = "verify"
	PageReset     = "reset"
	PageDashboard = "dashboard"
	PageLanguage  = "language"
	PageLessons   = "lessons"
	PageProfile   = "profile"
	PageSettings  = "settings"
)

var pageNames = []string{
	PageLogin, PageForgot, PageVerify, PageReset,
	PageDashboard, PageLanguage, PageLessons, PageProfile, PageSettings,
}

// View is what every template receives.
type View struct {
	Title   string
	Active  string
	Session any
	Flashes []Flash
	CSRF    template.HTML
	Body    any
}

type Renderer struct {
	pages        map[string]*template.Template
	store        sessions.Store
	unauthorized http.HandlerFunc
}

// New parses every page. unauthorized is called when a backend call
// answered 401.
func New(store sessions.Store, unauthorized http.HandlerFunc) (*Renderer, error) {
	rd := &Renderer{
		pages:        make(map[string]*template.Template, len(pageNames)),
		store:        store,
		unauthorized: unauthorized,
	}

	for _, name := range pageNames {
		t, err := template.New(name).Funcs(funcs).ParseFS(templatesFS,
			"templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("render.New: parse %s: %w", name, err)
		}
		rd.pages[name] = t
	}
	return rd, nil
}

// Static serves the embedded assets under /static/.
func Static() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServerFS(sub))
}

// HTML renders page with status. Pending flashes are consumed and the CSRF
// field and current session are filled in.
func (rd *Renderer) HTML(w http.ResponseWriter, r *http.Request, status int, page string, v View) {
	t, ok := rd.pages[page]
	if !ok {
		slog.Error("unknown page", slog.String("page", page))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	v.Flashes = append(rd.takeFlashes(w, r), v.Flashes...)
	v.CSRF = csrf.TemplateField(r)
	if sess, ok := auth.SessionFrom(r.Context()); ok {
		v.Session = sess
	}

	// Render into a buffer so a template error never leaves a half page.
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", v); err != nil {
		slog.Error("render page", slog.String("page", page), slog.String("error", err.Error()))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// Redirect queues a toast and sends the browser to target.
func (rd *Renderer) Redirect(w http.ResponseWriter, r *http.Request, target, kind, message string) {
	if message != "" {
		rd.AddFlash(w, r, kind, message)
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// Fail reports err to the user. HTML clients get a toast and are sent to
// back; JSON clients get the error envelope with a matching status.
func (rd *Renderer) Fail(w http.ResponseWriter, r *http.Request, err error, back string) {
	if errors.Is(err, backend.ErrUnauthorized) {
		slog.Info("backend rejected token", slog.String("path", r.URL.Path))
		rd.unauthorized(w, r)
		return
	}

	status, msg := Classify(err)
	if status >= http.StatusInternalServerError {
		slog.Error("request failed", slog.String("path", r.URL.Path), slog.String("error", err.Error()))
	}

	if response.WantsJSON(r) {
		response.WriteJSON(w, status, response.Response{Status: response.StatusError, Error: msg})
		return
	}
	rd.Redirect(w, r, back, FlashError, msg)
}

// Classify maps an error to an HTTP status and the sentence to show.
func Classify(err error) (int, string) {
	var (
		formErr *response.FormError
		apiErr  *backend.APIError
	)
	switch {
	case errors.As(err, &formErr):
		return http.StatusBadRequest, formErr.Message
	case errors.Is(err, listview.ErrBusy):
		return http.StatusConflict, "Please wait for the current change to finish"
	case errors.As(err, &apiErr):
		status := apiErr.Status
		if status < 400 {
			status = http.StatusUnprocessableEntity
		}
		return status, backend.Message(err)
	default:
		return http.StatusBadGateway, backend.GenericMessage
	}
}

var funcs = template.FuncMap{
	// pageURL keeps the other query parameters out: a page link always
	// closes any open modal.
	"pageURL": func(base string, page, limit int) string {
		q := url.Values{}
		q.Set("page", strconv.Itoa(page))
		q.Set("limit", strconv.Itoa(limit))
		return base + "?" + q.Encode()
	},
	"modalURL": func(base, key, value string, page, limit int) string {
		q := url.Values{}
		q.Set("page", strconv.Itoa(page))
		q.Set("limit", strconv.Itoa(limit))
		q.Set(key, value)
		return base + "?" + q.Encode()
	},
	"date": func(t time.Time) string {
		if t.IsZero() {
			return "-"
		}
		return t.Format("Jan 2, 2006")
	},
	"seq": func(n int) []int {
		out := make([]int, n)
		for i := range out {
			out[i] = i
		}
		return out
	},
	"index1": func(s []string, i int) string {
		if i < len(s) {
			return s[i]
		}
		return ""
	},
}
