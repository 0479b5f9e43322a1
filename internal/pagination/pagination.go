// Package pagination derives the page-number controls and the
// "showing X to Y of N" label rendered under every list table.
//
// Everything here is a pure function of (current page, total, limit).
// Page changes are plain links carrying the target page; the controller
// never fetches anything itself.
package pagination

import "fmt"

// Delta is how many pages are shown on each side of the current page.
const Delta = 2

// Marker is one entry in the control strip: either a page number or an
// ellipsis placeholder.
type Marker struct {
	Page     int
	Ellipsis bool
	Current  bool
}

// Controls is the rendered pagination strip. A zero Controls (no markers)
// means pagination is hidden.
type Controls struct {
	Markers []Marker
	Current int
	Total   int
	HasPrev bool
	HasNext bool
	Prev    int
	Next    int
}

// Visible reports whether the strip should be rendered at all.
func (c Controls) Visible() bool {
	return len(c.Markers) > 0
}

// TotalPages is ceil(total/limit). A non-positive limit yields zero pages.
func TotalPages(total, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

// Build computes the control strip for currentPage out of totalPages.
//
// Page 1 and the last page are always present once there are at least
// two pages. The window [current-2, current+2] is clipped to
// [2, totalPages-1], with an ellipsis on whichever side leaves a gap.
func Build(currentPage, totalPages int) Controls {
	if totalPages <= 1 {
		return Controls{}
	}
	if currentPage < 1 {
		currentPage = 1
	}
	if currentPage > totalPages {
		currentPage = totalPages
	}

	markers := make([]Marker, 0, 2*Delta+5)
	markers = append(markers, page(1, currentPage))

	if currentPage-Delta > 2 {
		markers = append(markers, Marker{Ellipsis: true})
	}

	for i := max(2, currentPage-Delta); i <= min(totalPages-1, currentPage+Delta); i++ {
		markers = append(markers, page(i, currentPage))
	}

	if currentPage+Delta < totalPages-1 {
		markers = append(markers, Marker{Ellipsis: true})
	}
	markers = append(markers, page(totalPages, currentPage))

	return Controls{
		Markers: markers,
		Current: currentPage,
		Total:   totalPages,
		HasPrev: currentPage > 1,
		HasNext: currentPage < totalPages,
		Prev:    currentPage - 1,
		Next:    currentPage + 1,
	}
}

func page(n, current int) Marker {
	return Marker{Page: n, Current: n == current}
}

// Range is the "showing X to Y of N" summary for one page.
type Range struct {
	Start int
	End   int
	Total int
}

// NoResults is the label shown instead of a range when the list is empty.
const NoResults = "No results to display"

// Summarize computes the 1-based index range of the items on currentPage.
func Summarize(currentPage, limit, total int) Range {
	if total <= 0 || limit <= 0 {
		return Range{}
	}
	if currentPage < 1 {
		currentPage = 1
	}
	return Range{
		Start: (currentPage-1)*limit + 1,
		End:   min(currentPage*limit, total),
		Total: total,
	}
}

// Label renders the range for humans.
func (r Range) Label() string {
	if r.Total == 0 {
		return NoResults
	}
	return fmt.Sprintf("Showing %d to %d of %d results", r.Start, r.End, r.Total)
}

// Params clamps user supplied page/limit query values. A missing or
// invalid page becomes 1, a missing limit becomes def and an oversized
// one is capped at maxLimit.
func Params(page, limit, def, maxLimit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = def
	}
	if maxLimit > 0 && limit > maxLimit {
		limit = maxLimit
	}
	return page, limit
}
