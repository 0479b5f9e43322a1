package response

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"

	"github.com/aanand-mishra/lingo-admin/internal/types"
)

func validationErrs(t *testing.T, v any) validator.ValidationErrors {
	t.Helper()
	err := validator.New().Struct(v)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected validation errors, got %v", err)
	}
	return verrs
}

func TestFormMessage(t *testing.T) {
	tests := []struct {
		name string
		form any
		want string
	}{
		{
			name: "password mismatch",
			form: types.ResetPasswordForm{Email: "a@b.io", OTP: "123456", Password: "secret1", ConfirmPassword: "secret2"},
			want: "Passwords do not match",
		},
		{
			name: "short password",
			form: types.ResetPasswordForm{Email: "a@b.io", OTP: "123456", Password: "abc", ConfirmPassword: "abc"},
			want: "Password must be at least 6 characters long",
		},
		{
			name: "incomplete otp",
			form: types.VerifyOTPForm{Email: "a@b.io", OTP: "123"},
			want: "Please enter all 6 digits",
		},
		{
			name: "non numeric otp",
			form: types.VerifyOTPForm{Email: "a@b.io", OTP: "12a456"},
			want: "Please enter all 6 digits",
		},
		{
			name: "bad email",
			form: types.ForgotPasswordForm{Email: "nope"},
			want: "Please enter a valid email address",
		},
		{
			name: "required",
			form: types.ConceptForm{Description: "x"},
			want: "Name is required",
		},
		{
			name: "change password confirm",
			form: types.ChangePasswordForm{OldPassword: "old", NewPassword: "secret1", ConfirmPassword: "other"},
			want: "Passwords do not match",
		},
		{
			name: "gender",
			form: types.ProfileForm{ID: "1", Name: "a", Email: "a@b.io", Gender: "x"},
			want: "Gender must be one of: male, female, other",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormMessage(validationErrs(t, tt.form)); got != tt.want {
				t.Errorf("FormMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHumanize(t *testing.T) {
	tests := map[string]string{
		"Name":        "Name",
		"NewPassword": "New password",
		"DateOfBirth": "Date of birth",
		"OTP":         "OTP",
		"OTPCode":     "OTP code",
	}
	for in, want := range tests {
		if got := Humanize(in); got != want {
			t.Errorf("Humanize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	if err := WriteJSON(rec, http.StatusBadRequest, GeneralError(errors.New("boom"))); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusBadRequest || rec.Header().Get("Content-Type") != "application/json" {
		t.Errorf("code = %d ct = %q", rec.Code, rec.Header().Get("Content-Type"))
	}
	if !strings.Contains(rec.Body.String(), `"error":"boom"`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestWantsJSON(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if WantsJSON(r) {
		t.Error("no Accept header should mean HTML")
	}
	r.Header.Set("Accept", "application/json, text/plain")
	if !WantsJSON(r) {
		t.Error("expected JSON")
	}
}
