// Package backend is the HTTP client for the remote REST API that owns
// languages, lessons, users and authentication.
//
// Every response is an envelope {success, message, data}. The client
// turns the three failure shapes into distinct errors:
//
//	ErrTransport     network failure, timeout or an undecodable body
//	*APIError        success:false (whatever the HTTP status)
//	ErrUnauthorized  HTTP 401, the caller must force re-authentication
//
// Nothing is retried. The bearer token is read from the request context
// (see WithToken) so that callers never pass it around explicitly.
package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/aanand-mishra/lingo-admin/internal/types"
)

var (
	// ErrUnauthorized matches any HTTP 401. A 401 whose body held a message
	// comes back as an *APIError instead; errors.Is still matches.
	ErrUnauthorized = errors.New("backend: unauthorized")

	// ErrTransport wraps failures that never produced a usable envelope.
	ErrTransport = errors.New("backend: transport failure")
)

// GenericMessage is what users see for transport failures.
const GenericMessage = "Something went wrong. Please try again."

// APIError is an application-level failure reported through the envelope.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// Is makes a 401 that carried an envelope match ErrUnauthorized, so the
// teardown check and the server's message both survive.
func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == http.StatusUnauthorized
}

// Message maps any error from this package to the text a user should see.
func Message(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return GenericMessage
}

type tokenKey struct{}

// WithToken returns a context whose backend requests carry token as a
// bearer credential.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// TokenFrom returns the bearer token attached to ctx, if any.
func TokenFrom(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}

// Client talks to the backend. A single Client is safe for concurrent use.
type Client struct {
	http *resty.Client
}

// New builds a client for baseURL with a fixed per-request timeout.
func New(baseURL string, timeout time.Duration) *Client {
	c := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	c.OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
		if token := TokenFrom(r.Context()); token != "" {
			r.SetAuthToken(token)
		}
		return nil
	})

	return &Client{http: c}
}

// call executes one request and decodes the envelope's data into out
// (when out is non-nil). It returns the envelope message on success.
func (c *Client) call(ctx context.Context, method, path string, build func(*resty.Request), out any) (string, error) {
	req := c.http.R().SetContext(ctx)
	if build != nil {
		build(req)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		slog.Error("backend request failed",
			slog.String("method", method),
			slog.String("path", path),
			slog.String("error", err.Error()))
		return "", fmt.Errorf("%w: %s %s: %v", ErrTransport, method, path, err)
	}

	var env types.Envelope
	decodeErr := json.Unmarshal(resp.Body(), &env)

	if resp.StatusCode() == http.StatusUnauthorized {
		if decodeErr == nil && env.Message != "" {
			return "", &APIError{Status: http.StatusUnauthorized, Message: env.Message}
		}
		return "", ErrUnauthorized
	}

	if err := decodeErr; err != nil {
		if resp.IsError() {
			return "", &APIError{Status: resp.StatusCode(), Message: resp.Status()}
		}
		return "", fmt.Errorf("%w: %s %s: decode envelope: %v", ErrTransport, method, path, err)
	}

	if !env.Success || resp.IsError() {
		msg := env.Message
		if msg == "" {
			msg = fmt.Sprintf("request failed with status %d", resp.StatusCode())
		}
		return "", &APIError{Status: resp.StatusCode(), Message: msg}
	}

	if out != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return "", fmt.Errorf("%w: %s %s: decode data: %v", ErrTransport, method, path, err)
		}
	}

	return env.Message, nil
}

func pageQuery(page, limit int) func(*resty.Request) {
	return func(r *resty.Request) {
		r.SetQueryParams(map[string]string{
			"page":  strconv.Itoa(page),
			"limit": strconv.Itoa(limit),
		})
	}
}

// multipart sets the text fields and the optional file of a write.
func multipart(fields map[string]string, fileField string, file *types.Upload) func(*resty.Request) {
	return func(r *resty.Request) {
		r.SetMultipartFormData(fields)
		if file != nil && file.Content != nil {
			contentType := file.ContentType
			if contentType == "" {
				contentType = "application/octet-stream"
			}
			r.SetMultipartField(fileField, file.Filename, contentType, file.Content)
		}
	}
}

func jsonBody(body any) func(*resty.Request) {
	return func(r *resty.Request) {
		r.SetHeader("Content-Type", "application/json").SetBody(body)
	}
}

// decodePage reads {total, page, limit, <itemsKey>: [...]} into a Page.
func decodePage[T any](raw map[string]json.RawMessage, itemsKey string) (types.Page[T], error) {
	var p types.Page[T]
	for key, dst := range map[string]*int{"total": &p.Total, "page": &p.Page, "limit": &p.Limit} {
		if v, ok := raw[key]; ok {
			if err := json.Unmarshal(v, dst); err != nil {
				return p, fmt.Errorf("%w: decode %s: %v", ErrTransport, key, err)
			}
		}
	}
	p.Items = make([]T, 0)
	if v, ok := raw[itemsKey]; ok && string(v) != "null" {
		if err := json.Unmarshal(v, &p.Items); err != nil {
			return p, fmt.Errorf("%w: decode %s: %v", ErrTransport, itemsKey, err)
		}
	}
	return p, nil
}

func (c *Client) list(ctx context.Context, path string, page, limit int) (map[string]json.RawMessage, error) {
	var raw map[string]json.RawMessage
	if _, err := c.call(ctx, http.MethodGet, path, pageQuery(page, limit), &raw); err != nil {
		return nil, err
	}
	return raw, nil
}
