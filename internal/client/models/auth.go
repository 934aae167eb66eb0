// Package models defines the client-side data models exchanged with the
// auth backend.
package models

import (
	"fmt"
	"time"
)

// Scene selects which OTP flow a code round applies to.
type Scene string

const (
	SceneSignup        Scene = "signup"
	SceneResetPassword Scene = "reset_password"
)

// ParseScene accepts the wire strings and the short CLI aliases.
func ParseScene(s string) (Scene, error) {
	switch s {
	case string(SceneSignup):
		return SceneSignup, nil
	case string(SceneResetPassword), "reset":
		return SceneResetPassword, nil
	}
	return "", fmt.Errorf("unknown scene %q", s)
}

func (s Scene) Valid() bool {
	return s == SceneSignup || s == SceneResetPassword
}

// AuthResponse carries the session credentials issued by login,
// account creation and refresh.
type AuthResponse struct {
	// AccessToken is the short-lived bearer token for authenticated calls.
	AccessToken string `json:"access_token"`

	// TokenType is normally "Bearer".
	TokenType string `json:"token_type"`

	// ExpiresIn is the access token lifetime in seconds; zero when the
	// server leaves it out.
	ExpiresIn int64 `json:"expires_in"`

	// RefreshToken exchanges for a new AuthResponse at /auth/refresh.
	RefreshToken string `json:"refresh_token"`

	// UserID is the backend's numeric account identifier.
	UserID uint64 `json:"user_id"`
}

// Lifetime returns ExpiresIn as a duration.
func (r AuthResponse) Lifetime() time.Duration {
	return time.Duration(r.ExpiresIn) * time.Second
}

type RequestCodeRequest struct {
	Email string `json:"email"`
	Scene Scene  `json:"scene"`
}

type RequestCodeResponse struct {
	CodeID string `json:"code_id"`
}

type VerifyCodeRequest struct {
	Email  string `json:"email"`
	Scene  Scene  `json:"scene"`
	Code   string `json:"code"`
	CodeID string `json:"code_id"`
}

type VerifyCodeResponse struct {
	Token string `json:"token"`
}

type CreateAccountRequest struct {
	Password string `json:"password"`
	DeviceID string `json:"device_id"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	DeviceID string `json:"device_id"`
}

type ForgetPasswordRequest struct {
	Password string `json:"password"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type SetUsernameRequest struct {
	Username string `json:"username"`
}

type SetUsernameResponse struct {
	Username string `json:"username"`
}
