package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/authflow/internal/client/models"
	"github.com/dmitrijs2005/authflow/internal/common"
	"github.com/dmitrijs2005/authflow/internal/netx"
)

const (
	pathRequestCode    = "/auth/request-code"
	pathVerifyCode     = "/auth/verify-code"
	pathCreateAccount  = "/auth/create-account"
	pathLogin          = "/auth/login"
	pathRefresh        = "/auth/refresh"
	pathForgetPassword = "/auth/forget-password"
	pathResetPassword  = "/auth/reset-password"
	pathLogoutAll      = "/auth/logout-all"
	pathSetUsername    = "/auth/me/set-username"
	pathPing           = "/ping"
)

// DefaultBaseURL is the development backend.
const DefaultBaseURL = "http://localhost:8080/api"

// HTTPClient implements Client over JSON/HTTP.
type HTTPClient struct {
	baseURL string
	http    Doer
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient returns a client rooted at baseURL.
func NewHTTPClient(baseURL string, doer Doer) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", baseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("base url %q: missing host", baseURL)
	}
	return &HTTPClient{baseURL: strings.TrimRight(baseURL, "/"), http: doer}, nil
}

func (c *HTTPClient) url(path string) string {
	return c.baseURL + path
}

func (c *HTTPClient) RequestCode(ctx context.Context, email string, scene models.Scene) (string, error) {
	req := models.RequestCodeRequest{Email: email, Scene: scene}

	var resp models.RequestCodeResponse
	if err := c.call(ctx, http.MethodPost, pathRequestCode, req, nil, &resp); err != nil {
		return "", err
	}
	if resp.CodeID == "" {
		return "", missingField(pathRequestCode, "code_id")
	}
	return resp.CodeID, nil
}

func (c *HTTPClient) VerifyCode(ctx context.Context, email string, scene models.Scene, code, codeID string) (string, error) {
	req := models.VerifyCodeRequest{Email: email, Scene: scene, Code: code, CodeID: codeID}

	var resp models.VerifyCodeResponse
	if err := c.call(ctx, http.MethodPost, pathVerifyCode, req, nil, &resp); err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", missingField(pathVerifyCode, "token")
	}
	return resp.Token, nil
}

func (c *HTTPClient) CreateAccount(ctx context.Context, ott, password, deviceID string) (models.AuthResponse, error) {
	req := models.CreateAccountRequest{Password: password, DeviceID: deviceID}
	return c.authCall(ctx, http.MethodPost, pathCreateAccount, req, common.BearerHeaders(ott))
}

func (c *HTTPClient) Login(ctx context.Context, email, password, deviceID string) (models.AuthResponse, error) {
	req := models.LoginRequest{Email: email, Password: password, DeviceID: deviceID}
	return c.authCall(ctx, http.MethodPost, pathLogin, req, nil)
}

func (c *HTTPClient) Refresh(ctx context.Context, refreshToken string) (models.AuthResponse, error) {
	req := models.RefreshRequest{RefreshToken: refreshToken}
	return c.authCall(ctx, http.MethodPost, pathRefresh, req, nil)
}

func (c *HTTPClient) ForgetPassword(ctx context.Context, ott, password string) error {
	req := models.ForgetPasswordRequest{Password: password}
	return c.call(ctx, http.MethodPost, pathForgetPassword, req, common.BearerHeaders(ott), nil)
}

func (c *HTTPClient) ChangePassword(ctx context.Context, accessToken, oldPassword, newPassword string) error {
	req := models.ChangePasswordRequest{OldPassword: oldPassword, NewPassword: newPassword}
	return c.call(ctx, http.MethodPatch, pathResetPassword, req, common.BearerHeaders(accessToken), nil)
}

func (c *HTTPClient) SetUsername(ctx context.Context, accessToken, username string) (string, error) {
	req := models.SetUsernameRequest{Username: username}

	var resp models.SetUsernameResponse
	if err := c.call(ctx, http.MethodPatch, pathSetUsername, req, common.BearerHeaders(accessToken), &resp); err != nil {
		return "", err
	}
	if resp.Username == "" {
		return username, nil
	}
	return resp.Username, nil
}

func (c *HTTPClient) LogoutAll(ctx context.Context, accessToken string) error {
	return c.call(ctx, http.MethodPost, pathLogoutAll, struct{}{}, common.BearerHeaders(accessToken), nil)
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.call(ctx, http.MethodGet, pathPing, nil, nil, nil)
}

func (c *HTTPClient) authCall(ctx context.Context, method, path string, body any, headers map[string]string) (models.AuthResponse, error) {
	var resp models.AuthResponse
	if err := c.call(ctx, method, path, body, headers, &resp); err != nil {
		return models.AuthResponse{}, err
	}
	if resp.AccessToken == "" {
		return models.AuthResponse{}, missingField(path, "access_token")
	}
	return resp, nil
}

// call performs the request and decodes the body into out when out is not
// nil. Decoding failures are reported as netx unknown errors.
func (c *HTTPClient) call(ctx context.Context, method, path string, body any, headers map[string]string, out any) error {
	raw, err := c.http.Do(ctx, method, c.url(path), body, headers)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if len(raw) == 0 {
		return netx.Unknown(fmt.Errorf("%s: empty response body", path))
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return netx.Unknown(fmt.Errorf("decode %s response: %w", path, err))
	}
	return nil
}

func missingField(path, field string) error {
	return netx.Unknown(fmt.Errorf("%s: %w: %s", path, errMissingField, field))
}

var errMissingField = errors.New("response is missing a required field")
