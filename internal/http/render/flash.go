package render

import (
	"encoding/gob"
	"log/slog"
	"net/http"
)

const flashSession = "lingo-flash"

// Flash kinds.
const (
	FlashSuccess = "success"
	FlashError   = "error"
)

// Flash is a transient notification shown once on the next rendered page.
type Flash struct {
	Kind    string
	Message string
}

func init() {
	gob.Register(Flash{})
}

// AddFlash queues a notification for the next page this browser renders.
func (rd *Renderer) AddFlash(w http.ResponseWriter, r *http.Request, kind, message string) {
	s, err := rd.store.Get(r, flashSession)
	if err != nil && s == nil {
		slog.Error("flash session", slog.String("error", err.Error()))
		return
	}
	s.AddFlash(Flash{Kind: kind, Message: message})
	if err := s.Save(r, w); err != nil {
		slog.Error("save flash", slog.String("error", err.Error()))
	}
}

func (rd *Renderer) takeFlashes(w http.ResponseWriter, r *http.Request) []Flash {
	s, err := rd.store.Get(r, flashSession)
	if err != nil || s == nil {
		return nil
	}
	raw := s.Flashes()
	if len(raw) == 0 {
		return nil
	}
	if err := s.Save(r, w); err != nil {
		slog.Error("clear flashes", slog.String("error", err.Error()))
	}

	out := make([]Flash, 0, len(raw))
	for _, f := range raw {
		if fl, ok := f.(Flash); ok {
			out = append(out, fl)
		}
	}
	return out
}
