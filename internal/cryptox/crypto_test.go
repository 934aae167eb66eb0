package cryptox

import (
	"bytes"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDeriveMasterKey_Deterministic(t *testing.T) {
	password := []byte("secret-password")
	salt := []byte("fixed-salt")

	key1 := DeriveMasterKey(password, salt)
	key2 := DeriveMasterKey(password, salt)

	if !bytes.Equal(key1, key2) {
		t.Errorf("expected same result for same inputs, got different")
	}

	expectedHex := "34f7a1c64df63ab1ad5b5ee06e64db5713b35f81839823304db63e8e5e6a6a39"
	if hex.EncodeToString(key1) != expectedHex {
		t.Errorf("expected %s, got %s", expectedHex, hex.EncodeToString(key1))
	}
}

func TestDeriveMasterKey_DifferentInputs(t *testing.T) {
	password := []byte("secret-password")

	key1 := DeriveMasterKey(password, []byte("salt-1"))
	key2 := DeriveMasterKey(password, []byte("salt-2"))

	if bytes.Equal(key1, key2) {
		t.Errorf("expected different results for different salts, got same")
	}
}

func TestSealOpen_RoundTrip(t *testing.T) {
	key := NewKey()
	ad := []byte("ott")

	sealed, err := Seal(key, []byte("token-value"), ad)
	require.NoError(t, err)
	require.NotContains(t, string(sealed), "token-value")

	got, err := Open(key, sealed, ad)
	require.NoError(t, err)
	require.Equal(t, "token-value", string(got))
}

func TestSeal_FreshNonce(t *testing.T) {
	key := NewKey()

	a, err := Seal(key, []byte("same"), nil)
	require.NoError(t, err)
	b, err := Seal(key, []byte("same"), nil)
	require.NoError(t, err)

	require.NotEqual(t, a, b)
}

func TestOpen_Rejects(t *testing.T) {
	key := NewKey()
	sealed, err := Seal(key, []byte("v"), []byte("codeID"))
	require.NoError(t, err)

	tampered := append([]byte(nil), sealed...)
	tampered[len(tampered)-1] ^= 0xff

	tests := []struct {
		name   string
		key    []byte
		sealed []byte
		ad     []byte
		want   error
	}{
		{"tampered", key, tampered, []byte("codeID"), ErrDecrypt},
		{"wrong key", NewKey(), sealed, []byte("codeID"), ErrDecrypt},
		{"wrong ad", key, sealed, []byte("ott"), ErrDecrypt},
		{"short", key, sealed[:10], []byte("codeID"), ErrMalformed},
		{"bad key size", []byte("short"), sealed, []byte("codeID"), ErrKeySize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Open(tt.key, tt.sealed, tt.ad)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestLoadKey_KeyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "authflow.key")

	k1, err := LoadKey(path, "")
	require.NoError(t, err)
	require.Len(t, k1, KeySize)

	k2, err := LoadKey(path, "")
	require.NoError(t, err)
	require.Equal(t, k1, k2, "key must be stable across loads")
}

func TestLoadKey_Passphrase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "authflow.key")

	k1, err := LoadKey(path, "correct horse")
	require.NoError(t, err)
	k2, err := LoadKey(path, "correct horse")
	require.NoError(t, err)
	k3, err := LoadKey(path, "battery staple")
	require.NoError(t, err)

	require.Equal(t, k1, k2)
	require.NotEqual(t, k1, k3)

	salt, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Len(t, salt, SaltSize)
}

func TestLoadKey_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "authflow.key")
	require.NoError(t, os.WriteFile(path, []byte("short"), 0o600))

	_, err := LoadKey(path, "")
	require.ErrorIs(t, err, ErrKeySize)

	_, err = LoadKey(path, "pass")
	require.ErrorIs(t, err, ErrKeySize)
}
