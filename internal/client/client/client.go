package client

import (
	"context"

	"github.com/dmitrijs2005/authflow/internal/client/models"
)

// Client talks to the auth backend.
type Client interface {
	// RequestCode asks the server to send an OTP to email and returns the
	// code identifier correlating the later verification.
	RequestCode(ctx context.Context, email string, scene models.Scene) (string, error)
	// VerifyCode exchanges the OTP for a one-time transfer token.
	VerifyCode(ctx context.Context, email string, scene models.Scene, code, codeID string) (string, error)
	// CreateAccount sets the password of a verified signup and opens a session.
	CreateAccount(ctx context.Context, ott, password, deviceID string) (models.AuthResponse, error)
	Login(ctx context.Context, email, password, deviceID string) (models.AuthResponse, error)
	// ForgetPassword sets a new password using a reset-scene transfer token.
	ForgetPassword(ctx context.Context, ott, password string) error
	ChangePassword(ctx context.Context, accessToken, oldPassword, newPassword string) error
	Refresh(ctx context.Context, refreshToken string) (models.AuthResponse, error)
	SetUsername(ctx context.Context, accessToken, username string) (string, error)
	LogoutAll(ctx context.Context, accessToken string) error
	Ping(ctx context.Context) error
}

// Doer sends one JSON request and returns the raw success body.
// *netx.Client satisfies it.
type Doer interface {
	Do(ctx context.Context, method, url string, body any, headers map[string]string) ([]byte, error)
}
