// Package request reads the bits of an incoming request every handler
// needs: pagination query values, uploaded files and the OTP digits.
package request

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/aanand-mishra/lingo-admin/internal/config"
	"github.com/aanand-mishra/lingo-admin/internal/pagination"
	"github.com/aanand-mishra/lingo-admin/internal/types"
)

// MaxUploadSize caps multipart bodies (image plus text fields).
const MaxUploadSize = 10 << 20

// PageParams reads ?page=&limit= and clamps them.
func PageParams(r *http.Request, cfg config.Pagination) (page, limit int) {
	q := r.URL.Query()
	page, _ = strconv.Atoi(q.Get("page"))
	limit, _ = strconv.Atoi(q.Get("limit"))
	return pagination.Params(page, limit, cfg.DefaultLimit, cfg.MaxLimit)
}

// ParseForm parses either encoding of a POST body.
func ParseForm(r *http.Request) error {
	err := r.ParseMultipartForm(MaxUploadSize)
	if errors.Is(err, http.ErrNotMultipart) {
		err = r.ParseForm()
	}
	if err != nil {
		return fmt.Errorf("parse form: %w", err)
	}
	return nil
}

// Upload returns the file sent in field, or nil when none was chosen. The
// content stays valid until the request's multipart form is cleaned up.
func Upload(r *http.Request, field string) (*types.Upload, error) {
	file, hdr, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s upload: %w", field, err)
	}
	if hdr.Size == 0 {
		file.Close()
		return nil, nil
	}
	return &types.Upload{
		Filename:    hdr.Filename,
		ContentType: hdr.Header.Get("Content-Type"),
		Content:     file,
	}, nil
}

// Digits returns the repeated "digit" inputs of the verify page in order.
func Digits(r *http.Request) []string {
	if r.PostForm == nil {
		_ = ParseForm(r)
	}
	return r.PostForm["digit"]
}
