// Package types holds all shared data structures used across the
// application. Keeping them in one place prevents import cycles: the
// backend client, list views, handlers and storage can all import types
// without depending on each other.
//
// Entities are owned by the remote backend. The JSON tags follow the
// backend's wire format (ids arrive as "_id", timestamps in camelCase).
package types

import (
	"encoding/json"
	"fmt"
	"time"
)

// Entity type names. They double as the first element of list query keys.
const (
	EntityLanguages = "languages"
	EntityConcepts  = "concepts"
	EntityUsers     = "users"
)

// PlaceholderImage is shown wherever an entity has no image.
const PlaceholderImage = "/static/placeholder.svg"

// Envelope is the wrapper every backend response uses regardless of the
// HTTP status. Data stays raw until the caller knows its shape.
type Envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Page is one page of a paginated list endpoint. Total is authoritative
// for computing the page count.
type Page[T any] struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Items []T `json:"items"`
}

// Language is a language offered for learning. Code is a short tag such as "en".
type Language struct {
	ID          string    `json:"_id"`
	Name        string    `json:"name"`
	Code        string    `json:"code"`
	Description string    `json:"description"`
	About       string    `json:"about"`
	Image       Image     `json:"image"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Concept is a lesson.
type Concept struct {
	ID          string    `json:"_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Image       Image     `json:"image"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// User is a learner or administrator account.
type User struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	Phone     string    `json:"phone"`
	Avatar    Image     `json:"avatar"`
	Role      string    `json:"role"`
	Credit    *float64  `json:"credit"`
	Fine      float64   `json:"fine"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ShortID is the tail of the id the user table shows.
func (u User) ShortID() string {
	if len(u.ID) <= 4 {
		return u.ID
	}
	return u.ID[len(u.ID)-4:]
}

// DisplayName falls back to the email when the user has no name.
func (u User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

// Image is a normalised reference to an uploaded image.
//
// The backend is inconsistent: some endpoints send a plain URL string,
// others an object {"public_id": "...", "url": "..."}. UnmarshalJSON
// accepts both (and null) so nothing past the data-access boundary has to
// care which shape arrived.
type Image struct {
	PublicID string `json:"public_id,omitempty"`
	URL      string `json:"url"`
}

// UnmarshalJSON resolves the string/object union.
func (i *Image) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*i = Image{}
		return nil
	}

	var url string
	if err := json.Unmarshal(data, &url); err == nil {
		*i = Image{URL: url}
		return nil
	}

	var obj struct {
		PublicID string `json:"public_id"`
		ID       string `json:"id"`
		URL      string `json:"url"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("image: expected string or object, got %s", string(data))
	}
	i.PublicID = obj.PublicID
	if i.PublicID == "" {
		i.PublicID = obj.ID
	}
	i.URL = obj.URL
	return nil
}

// Src returns the URL to render, or the placeholder when there is none.
func (i Image) Src() string {
	if i.URL == "" {
		return PlaceholderImage
	}
	return i.URL
}

// Session is one logged-in browser. The access token is issued by the
// identity provider and never refreshed here.
type Session struct {
	ID        string
	UserID    string
	Email     string
	Role      string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the session is past its expiry at now.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}
