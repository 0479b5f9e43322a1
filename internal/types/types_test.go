package types

import (
	"encoding/json"
	"testing"
	"time"
)

func TestImageUnmarshal(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantURL  string
		wantID   string
		wantSrc  string
		wantFail bool
	}{
		{name: "string", raw: `"https://cdn/x.png"`, wantURL: "https://cdn/x.png", wantSrc: "https://cdn/x.png"},
		{name: "object", raw: `{"public_id":"p1","url":"https://cdn/y.png"}`, wantURL: "https://cdn/y.png", wantID: "p1", wantSrc: "https://cdn/y.png"},
		{name: "object with id", raw: `{"id":"p2","url":"https://cdn/z.png"}`, wantURL: "https://cdn/z.png", wantID: "p2", wantSrc: "https://cdn/z.png"},
		{name: "null", raw: `null`, wantSrc: PlaceholderImage},
		{name: "empty string", raw: `""`, wantSrc: PlaceholderImage},
		{name: "number", raw: `42`, wantFail: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var img Image
			err := json.Unmarshal([]byte(tt.raw), &img)
			if tt.wantFail {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if img.URL != tt.wantURL || img.PublicID != tt.wantID {
				t.Errorf("got %+v", img)
			}
			if img.Src() != tt.wantSrc {
				t.Errorf("Src() = %q, want %q", img.Src(), tt.wantSrc)
			}
		})
	}
}

func TestUserDecodesEitherAvatarShape(t *testing.T) {
	raw := `[
		{"_id":"650000000000000000000abc","name":"A","avatar":"https://cdn/a.png"},
		{"_id":"650000000000000000000def","email":"b@x.io","avatar":{"public_id":"b","url":"https://cdn/b.png"}}
	]`
	var users []User
	if err := json.Unmarshal([]byte(raw), &users); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if users[0].Avatar.Src() != "https://cdn/a.png" || users[1].Avatar.Src() != "https://cdn/b.png" {
		t.Errorf("avatars = %+v / %+v", users[0].Avatar, users[1].Avatar)
	}
	if users[0].ShortID() != "0abc" {
		t.Errorf("ShortID() = %q", users[0].ShortID())
	}
	if users[1].DisplayName() != "b@x.io" {
		t.Errorf("DisplayName() = %q", users[1].DisplayName())
	}
}

func TestSessionExpired(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	if (Session{}).Expired(now) {
		t.Error("session without expiry reported expired")
	}
	if !(Session{ExpiresAt: now}).Expired(now) {
		t.Error("session expiring now not reported expired")
	}
	if (Session{ExpiresAt: now.Add(time.Minute)}).Expired(now) {
		t.Error("future session reported expired")
	}
}
