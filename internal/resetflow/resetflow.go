// Package resetflow drives the forgot-password flow:
//
//	request  email            -> /auth/verify-otp?email=
//	verify   email + 6 digits -> /auth/reset-password?email=&otp=
//	reset    new password x2  -> /auth/login
//
// The stages are connected by navigation only. Everything a stage needs
// travels in the query string of the next page, so there is no server-side
// flow state to expire or clean up.
//
// Each stage validates its input before calling the backend. Nothing is
// retried; the caller shows the error and the user resubmits.
package resetflow

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/aanand-mishra/lingo-admin/internal/types"
	"github.com/aanand-mishra/lingo-admin/internal/utils/response"
)

// Page paths of the flow.
const (
	ForgotPath = "/auth/forgot-password"
	VerifyPath = "/auth/verify-otp"
	ResetPath  = "/auth/reset-password"
	LoginPath  = "/auth/login"
)

// OTPDigits is the number of separate inputs on the verify page.
const OTPDigits = 6

// Backend is the subset of the REST client the flow calls.
type Backend interface {
	ForgotPassword(ctx context.Context, email string) (string, error)
	VerifyOTP(ctx context.Context, email, otp string) (string, error)
	ResetPassword(ctx context.Context, email, otp, password string) (string, error)
}

// IsValidation reports whether err was raised before reaching the backend.
func IsValidation(err error) bool {
	return response.IsFormError(err)
}

// Step is the outcome of a successful stage: the backend's message and
// where the browser goes next.
type Step struct {
	Message string
	Next    string
}

type Flow struct {
	api      Backend
	validate *validator.Validate
}

func New(api Backend) *Flow {
	return &Flow{api: api, validate: validator.New()}
}

func (f *Flow) check(form any) error {
	if err := response.CheckForm(f.validate, form); err != nil {
		if response.IsFormError(err) {
			return err
		}
		return fmt.Errorf("resetflow: validate: %w", err)
	}
	return nil
}

// Request asks the backend to send a code to email.
func (f *Flow) Request(ctx context.Context, email string) (Step, error) {
	form := types.ForgotPasswordForm{Email: strings.TrimSpace(email)}
	if err := f.check(form); err != nil {
		return Step{}, err
	}

	msg, err := f.api.ForgotPassword(ctx, form.Email)
	if err != nil {
		return Step{}, err
	}
	return Step{Message: msg, Next: VerifyURL(form.Email)}, nil
}

// Resend issues a new code for the same email. The verify page is shown
// again with empty digits.
func (f *Flow) Resend(ctx context.Context, email string) (Step, error) {
	step, err := f.Request(ctx, email)
	if err != nil {
		return Step{}, err
	}
	if step.Message == "" {
		step.Message = "A new code has been sent to your email"
	}
	return step, nil
}

// Verify checks the code with the dedicated verify endpoint. It never
// touches the password.
func (f *Flow) Verify(ctx context.Context, email string, digits []string) (Step, error) {
	form := types.VerifyOTPForm{Email: strings.TrimSpace(email), OTP: JoinDigits(digits)}
	if err := f.check(form); err != nil {
		return Step{}, err
	}

	msg, err := f.api.VerifyOTP(ctx, form.Email, form.OTP)
	if err != nil {
		return Step{}, err
	}
	return Step{Message: msg, Next: ResetURL(form.Email, form.OTP)}, nil
}

// Reset sets the new password using the verified code.
func (f *Flow) Reset(ctx context.Context, form types.ResetPasswordForm) (Step, error) {
	form.Email = strings.TrimSpace(form.Email)
	if form.Email == "" || form.OTP == "" {
		return Step{}, &response.FormError{Message: "This reset link is incomplete. Please request a new code."}
	}
	if err := f.check(form); err != nil {
		return Step{}, err
	}

	msg, err := f.api.ResetPassword(ctx, form.Email, form.OTP, form.Password)
	if err != nil {
		return Step{}, err
	}
	return Step{Message: msg, Next: LoginPath}, nil
}

// JoinDigits concatenates the digit inputs. Blank inputs make the code
// shorter than OTPDigits, which validation then rejects.
func JoinDigits(digits []string) string {
	var b strings.Builder
	for _, d := range digits {
		b.WriteString(strings.TrimSpace(d))
	}
	return b.String()
}

func VerifyURL(email string) string {
	return VerifyPath + "?" + url.Values{"email": {email}}.Encode()
}

func ResetURL(email, otp string) string {
	return ResetPath + "?" + url.Values{"email": {email}, "otp": {otp}}.Encode()
}
