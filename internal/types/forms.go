package types

import "io"

// Form structs carry validate:"..." rules checked by go-playground/validator
// before any request reaches the backend.

type LoginForm struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

type LanguageForm struct {
	Name        string `validate:"required"`
	Code        string `validate:"required,max=10"`
	Description string
	About       string
}

type ConceptForm struct {
	Name        string `validate:"required"`
	Description string `validate:"required"`
}

// ProfileForm is the settings page. The id travels in the multipart body.
type ProfileForm struct {
	ID          string `validate:"required"`
	Name        string `validate:"required"`
	Username    string
	Email       string `validate:"required,email"`
	Phone       string
	DateOfBirth string
	Gender      string `validate:"omitempty,oneof=male female other"`
}

type ChangePasswordForm struct {
	OldPassword     string `validate:"required"`
	NewPassword     string `validate:"required,min=6"`
	ConfirmPassword string `validate:"required,eqfield=NewPassword"`
}

// Upload is an optional file attached to a multipart write.
type Upload struct {
	Filename    string
	ContentType string
	Content     io.Reader
}

// Password reset stages. OTP arrives as six separate digit inputs and is
// joined before validation.

type ForgotPasswordForm struct {
	Email string `validate:"required,email"`
}

type VerifyOTPForm struct {
	Email string `validate:"required,email"`
	OTP   string `validate:"required,len=6,numeric"`
}

type ResetPasswordForm struct {
	Email           string `validate:"required,email"`
	OTP             string `validate:"required,len=6,numeric"`
	Password        string `validate:"required,min=6"`
	ConfirmPassword string `validate:"required,eqfield=Password"`
}
