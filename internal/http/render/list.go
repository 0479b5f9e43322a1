package render

import (
	"github.com/aanand-mishra/lingo-admin/internal/backend"
	"github.com/aanand-mishra/lingo-admin/internal/listview"
	"github.com/aanand-mishra/lingo-admin/internal/pagination"
)

// Limits are the page sizes offered under every table.
var Limits = []int{5, 10, 20, 50}

// Modal names carried in the query string.
const (
	ModalAdd    = "add"
	ModalEdit   = "edit"
	ModalDelete = "delete"
)

// List is the body of every table page.
type List struct {
	Base     string
	State    string
	Items    any
	Total    int
	Page     int
	Limit    int
	Limits   []int
	Controls pagination.Controls
	Range    string
	Error    string

	// Modal is "", "add", "edit" or "delete". Selected is the record an
	// edit or delete modal is about.
	Modal    string
	Selected any
}

// ListOf builds the table body from a view snapshot.
func ListOf[T any](base string, snap listview.Snapshot[T]) List {
	page, limit := snap.Key.Page, snap.Key.Limit
	total := snap.Data.Total

	l := List{
		Base:     base,
		State:    snap.State.String(),
		Items:    snap.Data.Items,
		Total:    total,
		Page:     page,
		Limit:    limit,
		Limits:   limitsWith(limit),
		Controls: pagination.Build(page, pagination.TotalPages(total, limit)),
		Range:    pagination.Summarize(page, limit, total).Label(),
	}
	if snap.Err != nil {
		_, l.Error = Classify(snap.Err)
		if l.Error == "" {
			l.Error = backend.GenericMessage
		}
	}
	return l
}

// limitsWith makes sure the current limit is one of the options.
func limitsWith(limit int) []int {
	for _, l := range Limits {
		if l == limit {
			return Limits
		}
	}
	out := make([]int, 0, len(Limits)+1)
	inserted := false
	for _, l := range Limits {
		if !inserted && limit < l {
			out = append(out, limit)
			inserted = true
		}
		out = append(out, l)
	}
	if !inserted {
		out = append(out, limit)
	}
	return out
}
