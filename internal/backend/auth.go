package backend

import (
	"context"
	"net/http"
)

// LoginResult is what the identity endpoint hands back on success.
type LoginResult struct {
	AccessToken string `json:"accessToken"`
	User        struct {
		ID    string `json:"_id"`
		Email string `json:"email"`
		Role  string `json:"role"`
	} `json:"user"`
}

func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	var out LoginResult
	_, err := c.call(ctx, http.MethodPost, "/auth/login",
		jsonBody(map[string]string{"email": email, "password": password}), &out)
	return out, err
}

// ForgotPassword asks the backend to email a one-time code.
func (c *Client) ForgotPassword(ctx context.Context, email string) (string, error) {
	return c.call(ctx, http.MethodPost, "/auth/forget",
		jsonBody(map[string]string{"email": email}), nil)
}

func (c *Client) VerifyOTP(ctx context.Context, email, otp string) (string, error) {
	return c.call(ctx, http.MethodPost, "/auth/verify",
		jsonBody(map[string]string{"email": email, "otp": otp}), nil)
}

func (c *Client) ResetPassword(ctx context.Context, email, otp, password string) (string, error) {
	return c.call(ctx, http.MethodPost, "/auth/reset-password",
		jsonBody(map[string]string{"password": password, "otp": otp, "email": email}), nil)
}

// ChangePassword requires a bearer token on ctx.
func (c *Client) ChangePassword(ctx context.Context, oldPassword, newPassword, confirmPassword string) (string, error) {
	return c.call(ctx, http.MethodPost, "/auth/change-password",
		jsonBody(map[string]string{
			"oldPassword":     oldPassword,
			"newPassword":     newPassword,
			"confirmPassword": confirmPassword,
		}), nil)
}
