// Package session holds the authenticated session of the client and
// publishes its changes.
package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/authflow/internal/client/models"
	"github.com/dmitrijs2005/authflow/internal/notify"
)

var ErrEmptyAccessToken = errors.New("auth response has no access token")

// State is either logged out (the zero value) or logged in with the
// credentials of one account. ExpiresAt is zero when the expiry is unknown.
type State struct {
	LoggedIn     bool
	UserID       uint64
	AccessToken  string
	RefreshToken string
	TokenType    string
	ExpiresAt    time.Time
}

// String hides the tokens.
func (s State) String() string {
	if !s.LoggedIn {
		return "loggedOut"
	}
	return fmt.Sprintf("loggedIn(user=%d, expires=%s)", s.UserID, s.ExpiresAt.Format(time.RFC3339))
}

// ExpiresWithin reports whether the access token expires before now+d.
// Unknown expiry never reports true.
func (s State) ExpiresWithin(now time.Time, d time.Duration) bool {
	if !s.LoggedIn || s.ExpiresAt.IsZero() {
		return false
	}
	return !now.Add(d).Before(s.ExpiresAt)
}

// Session is safe for concurrent use.
type Session struct {
	mu    sync.RWMutex
	state State
	hub   *notify.Hub[State]
	now   func() time.Time
}

type Option func(*Session)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// New returns a logged-out session.
func New(opts ...Option) *Session {
	s := &Session{hub: notify.NewHub[State](notify.DefaultBuffer), now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Login replaces the current state with the credentials in resp.
func (s *Session) Login(resp models.AuthResponse) (State, error) {
	if resp.AccessToken == "" {
		return State{}, ErrEmptyAccessToken
	}

	st := State{
		LoggedIn:     true,
		UserID:       resp.UserID,
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		TokenType:    resp.TokenType,
	}
	if resp.ExpiresIn > 0 {
		st.ExpiresAt = s.now().Add(resp.Lifetime())
	} else if exp, err := TokenExpiry(resp.AccessToken); err == nil {
		st.ExpiresAt = exp
	}

	s.set(st)
	return st, nil
}

// Logout clears the session. It is a no-op when already logged out.
func (s *Session) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.state.LoggedIn {
		return
	}
	s.state = State{}
	s.hub.Publish(s.state)
}

func (s *Session) Current() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// NeedsRefresh reports whether the access token expires within skew.
func (s *Session) NeedsRefresh(skew time.Duration) bool {
	return s.Current().ExpiresWithin(s.now(), skew)
}

// Subscribe returns a subscription receiving every state change in order.
func (s *Session) Subscribe() *notify.Subscription[State] {
	return s.hub.Subscribe()
}

// Close ends all subscriptions.
func (s *Session) Close() {
	s.hub.Close()
}

func (s *Session) set(st State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = st
	s.hub.Publish(st)
}
