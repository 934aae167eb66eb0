package netx

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_IsMatchesOwnKindOnly(t *testing.T) {
	err := fmt.Errorf("login: %w", &Error{Kind: KindTransport, Err: errors.New("eof")})

	assert.ErrorIs(t, err, ErrTransport)
	assert.NotErrorIs(t, err, ErrAPI)
	assert.NotErrorIs(t, err, ErrHTTP)
}

func TestError_Messages(t *testing.T) {
	api := &Error{Kind: KindAPI, Status: 409, URL: "http://x/a", API: &APIError{Code: "conflict", Message: "Email already exists"}}
	assert.Contains(t, api.Error(), "409")
	assert.Contains(t, api.Error(), "Email already exists")

	assert.Equal(t, "unknown error", (&Error{}).Error())
	assert.Contains(t, (&Error{Kind: KindHTTP, Status: 502, URL: "u"}).Error(), "502")
	assert.Contains(t, (&Error{Kind: KindEncoding, Err: errors.New("bad")}).Error(), "bad")
}

func TestUnknown_KeepsExistingError(t *testing.T) {
	orig := &Error{Kind: KindAPI, API: &APIError{}}
	assert.Same(t, orig, Unknown(orig))

	wrapped := Unknown(errors.New("unexpected end of JSON input"))
	require.ErrorIs(t, wrapped, ErrUnknown)

	assert.NoError(t, Unknown(nil))
}

func TestDecodeAPIError(t *testing.T) {
	api, ok := decodeAPIError([]byte(`{"code":"","error":""}`))
	require.True(t, ok)
	assert.Equal(t, &APIError{}, api)

	_, ok = decodeAPIError([]byte(`{"code":1,"error":"x"}`))
	assert.False(t, ok)

	_, ok = decodeAPIError([]byte(`[]`))
	assert.False(t, ok)
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "api", KindAPI.String())
	assert.Equal(t, "http", KindHTTP.String())
	assert.Equal(t, "transport", KindTransport.String())
	assert.Equal(t, "encoding", KindEncoding.String())
	assert.Equal(t, "unknown", KindUnknown.String())
}
