package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/authflow/internal/client/models"
	"github.com/dmitrijs2005/authflow/internal/common"
)

var t0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func signedToken(t *testing.T, exp *time.Time) string {
	t.Helper()
	claims := Claims{UserID: 7}
	if exp != nil {
		claims.ExpiresAt = jwt.NewNumericDate(*exp)
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("server-secret"))
	require.NoError(t, err)
	return token
}

func TestSession_StartsLoggedOut(t *testing.T) {
	s := New()
	assert.Equal(t, State{}, s.Current())
	assert.Equal(t, "loggedOut", s.Current().String())
	assert.False(t, s.NeedsRefresh(time.Hour))
}

func TestSession_LoginUsesExpiresIn(t *testing.T) {
	s := New(WithClock(func() time.Time { return t0 }))

	st, err := s.Login(models.AuthResponse{AccessToken: "at", TokenType: "Bearer", ExpiresIn: 900, RefreshToken: "rt", UserID: 42})
	require.NoError(t, err)

	want := State{LoggedIn: true, UserID: 42, AccessToken: "at", RefreshToken: "rt", TokenType: "Bearer", ExpiresAt: t0.Add(15 * time.Minute)}
	assert.Equal(t, want, st)
	assert.Equal(t, want, s.Current())
	assert.NotContains(t, st.String(), "rt")
}

func TestSession_LoginFallsBackToTokenExpiry(t *testing.T) {
	exp := t0.Add(time.Hour)
	s := New(WithClock(func() time.Time { return t0 }))

	st, err := s.Login(models.AuthResponse{AccessToken: signedToken(t, &exp), UserID: 1})
	require.NoError(t, err)
	assert.True(t, exp.Equal(st.ExpiresAt))
}

func TestSession_LoginUnknownExpiry(t *testing.T) {
	s := New()
	st, err := s.Login(models.AuthResponse{AccessToken: "opaque", UserID: 1})
	require.NoError(t, err)
	assert.True(t, st.ExpiresAt.IsZero())
	assert.False(t, s.NeedsRefresh(time.Hour))
}

func TestSession_LoginRejectsEmptyToken(t *testing.T) {
	s := New()
	_, err := s.Login(models.AuthResponse{})
	require.ErrorIs(t, err, ErrEmptyAccessToken)
	assert.False(t, s.Current().LoggedIn)
}

func TestSession_NeedsRefresh(t *testing.T) {
	now := t0
	s := New(WithClock(func() time.Time { return now }))
	_, err := s.Login(models.AuthResponse{AccessToken: "at", ExpiresIn: 60})
	require.NoError(t, err)

	assert.False(t, s.NeedsRefresh(30*time.Second))
	assert.True(t, s.NeedsRefresh(60*time.Second))

	now = t0.Add(2 * time.Minute)
	assert.True(t, s.NeedsRefresh(0))
}

func TestSession_SubscribeSeesChangesInOrder(t *testing.T) {
	s := New()
	sub := s.Subscribe()
	defer sub.Cancel()

	_, err := s.Login(models.AuthResponse{AccessToken: "a1", UserID: 1})
	require.NoError(t, err)
	_, err = s.Login(models.AuthResponse{AccessToken: "a2", UserID: 1})
	require.NoError(t, err)
	s.Logout()
	s.Logout()

	var got []string
	for i := 0; i < 3; i++ {
		st := <-sub.C()
		got = append(got, st.AccessToken)
	}
	assert.Equal(t, []string{"a1", "a2", ""}, got)

	select {
	case st := <-sub.C():
		t.Fatalf("unexpected extra state %v", st)
	default:
	}
}

func TestTokenExpiry(t *testing.T) {
	exp := t0.Add(5 * time.Minute)

	got, err := TokenExpiry(signedToken(t, &exp))
	require.NoError(t, err)
	assert.True(t, exp.Equal(got))

	_, err = TokenExpiry(signedToken(t, nil))
	require.ErrorIs(t, err, common.ErrInvalidToken)

	_, err = TokenExpiry("not-a-jwt")
	require.ErrorIs(t, err, common.ErrInvalidToken)
}
