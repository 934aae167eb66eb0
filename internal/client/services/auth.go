// Package services contains application services for the authflow client.
// This file defines the auth flow orchestrator: OTP issuance and
// verification, account creation, password reset, login, refresh and
// logout, with the short-lived identifiers kept in a secrets.Store between
// steps.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/dmitrijs2005/authflow/internal/client/client"
	"github.com/dmitrijs2005/authflow/internal/client/flow"
	"github.com/dmitrijs2005/authflow/internal/client/models"
	"github.com/dmitrijs2005/authflow/internal/client/repositories/secrets"
	"github.com/dmitrijs2005/authflow/internal/client/session"
	"github.com/dmitrijs2005/authflow/internal/logging"
	"github.com/dmitrijs2005/authflow/internal/notify"
)

var (
	ErrClosed          = errors.New("auth service closed")
	ErrInvalidArgument = errors.New("invalid argument")
)

// AuthService drives the auth flow for the CLI.
//
// Contract:
//   - RequestCode, VerifyCode: the OTP round of a signup or reset flow.
//   - CreateAccount, SetUsername: finish a signup.
//   - ResetPassword: finish a reset; does not log in.
//   - Login, Refresh, ChangePassword: session operations.
//   - Logout, LogoutAll: end the session and purge flow identifiers.
//   - Reset: abandon the OTP flow; late completions are discarded.
//   - Resume: rebuild the flow phase from the identifiers in the store.
//
// Local preconditions fail with the client.ErrPrecondition class before any
// network call. All methods are safe for concurrent use.
type AuthService interface {
	RequestCode(ctx context.Context, email string, scene models.Scene) error
	VerifyCode(ctx context.Context, email, code string, scene models.Scene) error
	CreateAccount(ctx context.Context, password []byte) error
	SetUsername(ctx context.Context, username string) (string, error)
	ResetPassword(ctx context.Context, password []byte) error
	Login(ctx context.Context, email string, password []byte) error
	Refresh(ctx context.Context) error
	ChangePassword(ctx context.Context, oldPassword, newPassword []byte) error
	Logout(ctx context.Context) error
	LogoutAll(ctx context.Context) error
	Ping(ctx context.Context) error
	Reset(ctx context.Context) error
	Resume(ctx context.Context) error
	State() flow.State
	Session() session.State
	Subscribe() *notify.Subscription[flow.State]
	Close(ctx context.Context) error
}

// authService serializes each operation with its own lock and commits
// results under mu. epoch changes on Reset, Logout and Close; gen changes
// whenever the flow identifiers change. A completion started under an older
// epoch, or an older gen for flow-scoped operations, is discarded.
type authService struct {
	client  client.Client
	store   secrets.Store
	session *session.Session
	logger  logging.Logger
	hub     *notify.Hub[flow.State]

	requestMu  sync.Mutex
	verifyMu   sync.Mutex
	createMu   sync.Mutex
	usernameMu sync.Mutex
	resetMu    sync.Mutex
	loginMu    sync.Mutex
	passwordMu sync.Mutex
	refresh    singleflight.Group

	mu     sync.Mutex
	state  flow.State
	epoch  uint64
	gen    uint64
	closed bool
}

type Option func(*authService)

func WithLogger(l logging.Logger) Option {
	return func(a *authService) { a.logger = l }
}

// NewAuthService constructs an AuthService in the Idle phase.
func NewAuthService(c client.Client, store secrets.Store, sess *session.Session, opts ...Option) AuthService {
	a := &authService{
		client:  c,
		store:   store,
		session: sess,
		logger:  logging.Nop(),
		hub:     notify.NewHub[flow.State](notify.DefaultBuffer),
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// ticket records the epoch and gen an operation started under.
type ticket struct {
	epoch uint64
	gen   uint64
}

type transition func(flow.State) (flow.State, []flow.Effect)

func (a *authService) begin() (ticket, flow.State, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return ticket{}, flow.State{}, ErrClosed
	}
	return ticket{epoch: a.epoch, gen: a.gen}, a.state, nil
}

// commit applies tr to the current state. Secret effects are written in one
// store batch before session effects; the new state is published last.
func (a *authService) commit(ctx context.Context, op string, t ticket, flowScoped bool, tr transition) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.epoch != t.epoch || (flowScoped && a.gen != t.gen) {
		a.logger.Info(ctx, "discarding abandoned completion", "op", op)
		return client.ErrFlowAbandoned
	}

	next, fx := tr(a.state)
	if err := a.apply(ctx, fx); err != nil {
		a.logger.Error(ctx, "commit failed", "op", op, "err", err)
		return fmt.Errorf("%s: %w", op, err)
	}

	a.transitionLocked(ctx, op, next)
	return nil
}

// apply must be called with mu held.
func (a *authService) apply(ctx context.Context, fx []flow.Effect) error {
	for _, e := range fx {
		if e.Kind == flow.StartSession && e.Auth.AccessToken == "" {
			return session.ErrEmptyAccessToken
		}
	}

	if muts := flow.Mutations(fx); len(muts) > 0 {
		// a completed server call must not be lost to a late cancellation
		if err := a.store.Apply(context.WithoutCancel(ctx), muts...); err != nil {
			return fmt.Errorf("store: %w", err)
		}
		a.gen++
	}

	for _, e := range fx {
		switch e.Kind {
		case flow.StartSession:
			if _, err := a.session.Login(e.Auth); err != nil {
				return err
			}
		case flow.EndSession:
			a.session.Logout()
		}
	}
	return nil
}

// transitionLocked must be called with mu held.
func (a *authService) transitionLocked(ctx context.Context, op string, next flow.State) {
	prev := a.state
	a.state = next
	a.logger.Info(ctx, "auth flow transition", "op", op, "from", prev.String(), "to", next.String())
	a.hub.Publish(next)
}

func (a *authService) load(ctx context.Context, key secrets.Key, missing error) (string, error) {
	v, err := a.store.Load(ctx, key)
	if errors.Is(err, secrets.ErrNotFound) || (err == nil && v == "") {
		return "", missing
	}
	if err != nil {
		return "", fmt.Errorf("load %s: %w", key, err)
	}
	return v, nil
}

// RequestCode asks for an OTP. It is always allowed and starts a new flow,
// replacing any earlier code.
func (a *authService) RequestCode(ctx context.Context, email string, scene models.Scene) error {
	if email == "" || !scene.Valid() {
		return fmt.Errorf("%w: email and a valid scene are required", ErrInvalidArgument)
	}

	a.requestMu.Lock()
	defer a.requestMu.Unlock()

	t, _, err := a.begin()
	if err != nil {
		return err
	}

	codeID, err := a.client.RequestCode(ctx, email, scene)
	if err != nil {
		a.logger.Warn(ctx, "request code failed", "scene", string(scene), "err", err)
		return fmt.Errorf("request code: %w", err)
	}

	return a.commit(ctx, "request code", t, false, func(s flow.State) (flow.State, []flow.Effect) {
		return flow.CodeIssued(s, email, scene, codeID)
	})
}

// VerifyCode exchanges the OTP for a transfer token. Without a stored code
// identifier the flow restarts and no request is made.
func (a *authService) VerifyCode(ctx context.Context, email, code string, scene models.Scene) error {
	if code == "" || !scene.Valid() {
		return fmt.Errorf("%w: code and a valid scene are required", ErrInvalidArgument)
	}

	a.verifyMu.Lock()
	defer a.verifyMu.Unlock()

	t, st, err := a.begin()
	if err != nil {
		return err
	}

	// a missing codeID restarts the flow whatever scene was asked for
	codeID, err := a.load(ctx, secrets.KeyCodeID, client.ErrRestartFlow)
	if errors.Is(err, client.ErrRestartFlow) {
		if cerr := a.commit(ctx, "restart flow", t, false, flow.Restart); cerr != nil && !errors.Is(cerr, client.ErrFlowAbandoned) {
			a.logger.Error(ctx, "restart flow failed", "err", cerr)
		}
		return err
	}
	if err != nil {
		return err
	}

	if err := st.CheckScene(scene); err != nil {
		return err
	}
	if email == "" {
		email = st.Email
	}

	ott, err := a.client.VerifyCode(ctx, email, scene, code, codeID)
	if err != nil {
		a.logger.Warn(ctx, "verify code failed", "scene", string(scene), "err", err)
		return fmt.Errorf("verify code: %w", err)
	}

	return a.commit(ctx, "verify code", t, true, func(s flow.State) (flow.State, []flow.Effect) {
		return flow.CodeAccepted(s, email, scene, ott)
	})
}

// CreateAccount finishes a verified signup and opens a session.
func (a *authService) CreateAccount(ctx context.Context, password []byte) error {
	if len(password) == 0 {
		return fmt.Errorf("%w: password is required", ErrInvalidArgument)
	}

	a.createMu.Lock()
	defer a.createMu.Unlock()

	t, st, err := a.begin()
	if err != nil {
		return err
	}
	if err := st.CheckScene(models.SceneSignup); err != nil {
		return err
	}

	deviceID, err := a.load(ctx, secrets.KeyDeviceID, client.ErrDeviceIDMissing)
	if err != nil {
		return err
	}
	ott, err := a.load(ctx, secrets.KeyOTT, client.ErrOTTMissing)
	if err != nil {
		return err
	}

	resp, err := a.client.CreateAccount(ctx, ott, string(password), deviceID)
	if err != nil {
		a.logger.Warn(ctx, "create account failed", "err", err)
		return fmt.Errorf("create account: %w", err)
	}

	return a.commit(ctx, "create account", t, true, func(s flow.State) (flow.State, []flow.Effect) {
		return flow.AccountOpened(s, resp)
	})
}

// SetUsername assigns the account's username and completes a signup.
func (a *authService) SetUsername(ctx context.Context, username string) (string, error) {
	if username == "" {
		return "", fmt.Errorf("%w: username is required", ErrInvalidArgument)
	}

	a.usernameMu.Lock()
	defer a.usernameMu.Unlock()

	t, _, err := a.begin()
	if err != nil {
		return "", err
	}

	cur := a.session.Current()
	if !cur.LoggedIn {
		return "", client.ErrNotLoggedIn
	}

	got, err := a.client.SetUsername(ctx, cur.AccessToken, username)
	if err != nil {
		a.logger.Warn(ctx, "set username failed", "err", err)
		return "", fmt.Errorf("set username: %w", err)
	}

	if err := a.commit(ctx, "set username", t, false, flow.UsernameAssigned); err != nil {
		return "", err
	}
	return got, nil
}

// ResetPassword sets a new password with the reset flow's transfer token
// and ends the flow. The user has to log in afterwards.
func (a *authService) ResetPassword(ctx context.Context, password []byte) error {
	if len(password) == 0 {
		return fmt.Errorf("%w: password is required", ErrInvalidArgument)
	}

	a.resetMu.Lock()
	defer a.resetMu.Unlock()

	t, st, err := a.begin()
	if err != nil {
		return err
	}
	if err := st.CheckScene(models.SceneResetPassword); err != nil {
		return err
	}

	ott, err := a.load(ctx, secrets.KeyOTT, client.ErrOTTMissing)
	if err != nil {
		return err
	}

	if err := a.client.ForgetPassword(ctx, ott, string(password)); err != nil {
		a.logger.Warn(ctx, "reset password failed", "err", err)
		return fmt.Errorf("reset password: %w", err)
	}

	return a.commit(ctx, "reset password", t, true, flow.PasswordReset)
}

// Login authenticates with email and password from any phase. The server
// binds sessions to the device, so a device identifier is required.
func (a *authService) Login(ctx context.Context, email string, password []byte) error {
	if email == "" || len(password) == 0 {
		return fmt.Errorf("%w: email and password are required", ErrInvalidArgument)
	}

	a.loginMu.Lock()
	defer a.loginMu.Unlock()

	t, _, err := a.begin()
	if err != nil {
		return err
	}

	deviceID, err := a.load(ctx, secrets.KeyDeviceID, client.ErrDeviceIDMissing)
	if err != nil {
		return err
	}

	resp, err := a.client.Login(ctx, email, string(password), deviceID)
	if err != nil {
		a.logger.Warn(ctx, "login failed", "err", err)
		return fmt.Errorf("login: %w", err)
	}

	return a.commit(ctx, "login", t, false, func(s flow.State) (flow.State, []flow.Effect) {
		return flow.LoginSucceeded(s, email, resp)
	})
}

// refreshTimeout bounds the shared refresh round trip, retries included.
const refreshTimeout = 3 * time.Minute

// Refresh exchanges the refresh token for new credentials. Concurrent
// calls share one request. The shared request does not follow any single
// caller's cancellation; a caller whose ctx ends stops waiting with
// ctx.Err() while the others still get the result.
func (a *authService) Refresh(ctx context.Context) error {
	ch := a.refresh.DoChan("refresh", func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), refreshTimeout)
		defer cancel()

		t, _, err := a.begin()
		if err != nil {
			return nil, err
		}

		cur := a.session.Current()
		if !cur.LoggedIn || cur.RefreshToken == "" {
			return nil, client.ErrNotLoggedIn
		}

		resp, err := a.client.Refresh(fctx, cur.RefreshToken)
		if err != nil {
			a.logger.Warn(fctx, "refresh failed", "err", err)
			return nil, fmt.Errorf("refresh: %w", err)
		}

		return nil, a.commit(fctx, "refresh", t, false, func(s flow.State) (flow.State, []flow.Effect) {
			return flow.Refreshed(s, resp)
		})
	})

	select {
	case res := <-ch:
		if res.Shared {
			a.logger.Debug(ctx, "refresh shared with a concurrent caller")
		}
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ChangePassword changes the password of the logged-in account.
func (a *authService) ChangePassword(ctx context.Context, oldPassword, newPassword []byte) error {
	if len(oldPassword) == 0 || len(newPassword) == 0 {
		return fmt.Errorf("%w: both passwords are required", ErrInvalidArgument)
	}

	a.passwordMu.Lock()
	defer a.passwordMu.Unlock()

	if _, _, err := a.begin(); err != nil {
		return err
	}

	cur := a.session.Current()
	if !cur.LoggedIn {
		return client.ErrNotLoggedIn
	}

	if err := a.client.ChangePassword(ctx, cur.AccessToken, string(oldPassword), string(newPassword)); err != nil {
		a.logger.Warn(ctx, "change password failed", "err", err)
		return fmt.Errorf("change password: %w", err)
	}
	return nil
}

// Logout clears the session and purges the flow identifiers without a
// network call. The session is cleared even when the store fails.
func (a *authService) Logout(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.epoch++
	next, fx := flow.LoggedOut(a.state)

	var storeErr error
	if err := a.store.Apply(context.WithoutCancel(ctx), flow.Mutations(fx)...); err != nil {
		storeErr = fmt.Errorf("logout: purge secrets: %w", err)
		a.logger.Error(ctx, "purge secrets failed", "err", err)
	}
	a.gen++
	a.session.Logout()

	a.transitionLocked(ctx, "logout", next)
	return storeErr
}

// LogoutAll asks the server to revoke every session of the account, then
// logs out locally whatever the server said. The server error is returned.
func (a *authService) LogoutAll(ctx context.Context) error {
	var serverErr error
	if cur := a.session.Current(); cur.LoggedIn {
		if err := a.client.LogoutAll(ctx, cur.AccessToken); err != nil {
			a.logger.Warn(ctx, "logout-all failed, logging out locally", "err", err)
			serverErr = fmt.Errorf("logout all: %w", err)
		}
	}

	return errors.Join(serverErr, a.Logout(ctx))
}

func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}

// Reset abandons the OTP flow in progress. An established session is kept.
func (a *authService) Reset(ctx context.Context) error {
	a.mu.Lock()
	a.epoch++
	t := ticket{epoch: a.epoch, gen: a.gen}
	a.mu.Unlock()

	return a.commit(ctx, "reset", t, false, flow.Abandoned)
}

// Resume rebuilds the phase from the identifiers held in the store, for a
// client restarted in the middle of a flow.
func (a *authService) Resume(ctx context.Context) error {
	t, _, err := a.begin()
	if err != nil {
		return err
	}

	hasCodeID, err := secrets.Has(ctx, a.store, secrets.KeyCodeID)
	if err != nil {
		return fmt.Errorf("resume: %w", err)
	}
	hasOTT, err := secrets.Has(ctx, a.store, secrets.KeyOTT)
	if err != nil {
		return fmt.Errorf("resume: %w", err)
	}

	return a.commit(ctx, "resume", t, false, func(s flow.State) (flow.State, []flow.Effect) {
		if s.Phase != flow.Idle {
			return s, nil
		}
		return flow.Resume(hasCodeID, hasOTT), nil
	})
}

func (a *authService) State() flow.State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

func (a *authService) Session() session.State {
	return a.session.Current()
}

// Subscribe returns a subscription receiving every committed state, in
// commit order.
func (a *authService) Subscribe() *notify.Subscription[flow.State] {
	return a.hub.Subscribe()
}

// Close discards in-flight completions and ends all subscriptions. The
// store and session keep their contents.
func (a *authService) Close(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return nil
	}
	a.closed = true
	a.epoch++
	a.hub.Close()
	a.logger.Debug(ctx, "auth service closed")
	return nil
}
