// Package response provides helpers for writing consistent HTTP responses.
//
// Most pages in this application are HTML, but every list view also answers
// Accept: application/json with its current snapshot, and failures on that
// path need one predictable shape. Rather than repeating the same three
// lines (set header, set status, encode JSON) in every handler, we
// centralise them here, together with the text users see when a form fails
// validation.
package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// ─────────────────────────────────────────────────────────────────────────────
// Response is the standard envelope returned for error cases.
//
// Success responses may return any JSON shape (a list snapshot, a record…).
// Error responses always look like:
//
//	{ "status": "error", "error": "Name is required" }
//
// ─────────────────────────────────────────────────────────────────────────────
type Response struct {
	Status string `json:"status"` // "ok" or "error"
	Error  string `json:"error"`  // human-readable error detail
}

// Status string constants. Use these instead of raw string literals so
// a typo is caught by the compiler rather than silently sending "eroor".
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// ─────────────────────────────────────────────────────────────────────────────
// WriteJSON writes a JSON-encoded response with the given HTTP status code.
//
// IMPORTANT ORDER: Header() → WriteHeader() → body writes.
// Once WriteHeader is called (or the first Write), headers are locked.
// ─────────────────────────────────────────────────────────────────────────────
func WriteJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// WantsJSON reports whether the client asked for JSON instead of a page.
func WantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

// GeneralError wraps any Go error into our standard Response shape.
func GeneralError(err error) Response {
	return Response{
		Status: StatusError,
		Error:  err.Error(),
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// ValidationError converts a slice of validator.FieldError values into
// a single Response, one sentence per failing field joined with ", ".
// ─────────────────────────────────────────────────────────────────────────────
func ValidationError(errs validator.ValidationErrors) Response {
	return Response{
		Status: StatusError,
		Error:  strings.Join(FormMessages(errs), ", "),
	}
}

// FormMessage returns the sentence for the first failing field. Forms show
// one notification at a time.
func FormMessage(errs validator.ValidationErrors) string {
	msgs := FormMessages(errs)
	if len(msgs) == 0 {
		return ""
	}
	return msgs[0]
}

// ─────────────────────────────────────────────────────────────────────────────
// FormMessages turns each FieldError into a plain English sentence.
//
// The switch is on ActualTag(), the validate:"..." rule that failed.
// Field names are humanised ("NewPassword" → "New password").
// ─────────────────────────────────────────────────────────────────────────────
func FormMessages(errs validator.ValidationErrors) []string {
	msgs := make([]string, 0, len(errs))

	for _, e := range errs {
		label := Humanize(e.Field())

		switch e.ActualTag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", label))
		case "email":
			msgs = append(msgs, "Please enter a valid email address")
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s characters long", label, e.Param()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s characters long", label, e.Param()))
		// The one-time code is the only fixed-length numeric input.
		case "len", "numeric":
			if e.Field() == "OTP" {
				msgs = append(msgs, fmt.Sprintf("Please enter all %d digits", otpLength(e)))
			} else if e.ActualTag() == "len" {
				msgs = append(msgs, fmt.Sprintf("%s must be exactly %s characters long", label, e.Param()))
			} else {
				msgs = append(msgs, fmt.Sprintf("%s must contain only digits", label))
			}
		case "eqfield":
			if strings.Contains(e.Field(), "Password") {
				msgs = append(msgs, "Passwords do not match")
			} else {
				msgs = append(msgs, fmt.Sprintf("%s does not match", label))
			}
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of: %s", label,
				strings.Join(strings.Fields(e.Param()), ", ")))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", label))
		}
	}

	return msgs
}

func otpLength(e validator.FieldError) int {
	if e.ActualTag() == "len" {
		var n int
		if _, err := fmt.Sscanf(e.Param(), "%d", &n); err == nil {
			return n
		}
	}
	return 6
}

// Humanize splits a Go field name into a sentence-case label. Runs of
// capitals are kept together: "OTP" stays "OTP", "DateOfBirth" becomes
// "Date of birth".
func Humanize(field string) string {
	runes := []rune(field)
	var words []string
	start := 0
	for i := 1; i < len(runes); i++ {
		if unicode.IsUpper(runes[i]) && (unicode.IsLower(runes[i-1]) ||
			(i+1 < len(runes) && unicode.IsLower(runes[i+1]) && unicode.IsUpper(runes[i-1]))) {
			words = append(words, string(runes[start:i]))
			start = i
		}
	}
	words = append(words, string(runes[start:]))

	for i := 1; i < len(words); i++ {
		if strings.ToUpper(words[i]) != words[i] {
			words[i] = strings.ToLower(words[i])
		}
	}
	return strings.Join(words, " ")
}

// FormError is a form that failed validation. It is raised before any
// request leaves for the backend and carries the sentence to show.
type FormError struct {
	Message string
}

func (e *FormError) Error() string {
	return e.Message
}

// IsFormError reports whether err is (or wraps) a *FormError.
func IsFormError(err error) bool {
	var fe *FormError
	return errors.As(err, &fe)
}

// CheckForm runs v over form and converts validation failures into a
// *FormError. Other validator errors (a non-struct argument) are returned
// as they are.
func CheckForm(v *validator.Validate, form any) error {
	err := v.Struct(form)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return &FormError{Message: FormMessage(verrs)}
	}
	return err
}
