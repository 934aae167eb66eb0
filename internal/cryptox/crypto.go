// Package cryptox seals small secrets for at-rest storage.
//
// Values are encrypted with XChaCha20-Poly1305. Keys are either random and
// kept in a key file, or derived from a passphrase with Argon2id, in which
// case the file holds only the salt.
package cryptox

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/authflow/internal/common"
	"github.com/dmitrijs2005/authflow/internal/filex"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

const (
	KeySize  = chacha20poly1305.KeySize
	SaltSize = 16
)

var (
	ErrMalformed = errors.New("malformed sealed value")
	ErrDecrypt   = errors.New("decryption failed")
	ErrKeySize   = errors.New("invalid key size")
)

// DeriveMasterKey stretches password with Argon2id into a KeySize key.
func DeriveMasterKey(password []byte, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, KeySize)
}

// NewKey returns a fresh random key.
func NewKey() []byte {
	return common.GenerateRandByteArray(KeySize)
}

// Seal encrypts plaintext under key. The random nonce is prepended to the
// returned ciphertext. ad is authenticated but not encrypted.
func Seal(key, plaintext, ad []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeySize, err)
	}

	nonce := common.GenerateRandByteArray(aead.NonceSize())
	return aead.Seal(nonce, nonce, plaintext, ad), nil
}

// Open reverses Seal. It fails with ErrDecrypt when the value was tampered
// with, sealed under another key or bound to different ad.
func Open(key, sealed, ad []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeySize, err)
	}

	if len(sealed) < aead.NonceSize()+aead.Overhead() {
		return nil, ErrMalformed
	}

	nonce, ciphertext := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, ciphertext, ad)
	if err != nil {
		return nil, ErrDecrypt
	}
	return plaintext, nil
}

// LoadKey returns the store key for keyFile. Without a passphrase the file
// holds the key itself and is created on first use. With a passphrase the
// file holds the Argon2id salt and the key is derived from both.
func LoadKey(keyFile string, passphrase string) ([]byte, error) {
	if passphrase == "" {
		key, err := filex.ReadOrCreate(keyFile, func() ([]byte, error) { return NewKey(), nil })
		if err != nil {
			return nil, fmt.Errorf("load key file: %w", err)
		}
		if len(key) != KeySize {
			return nil, fmt.Errorf("%w: key file %s holds %d bytes", ErrKeySize, keyFile, len(key))
		}
		return key, nil
	}

	salt, err := filex.ReadOrCreate(keyFile, func() ([]byte, error) {
		return common.GenerateRandByteArray(SaltSize), nil
	})
	if err != nil {
		return nil, fmt.Errorf("load salt file: %w", err)
	}
	if len(salt) != SaltSize {
		return nil, fmt.Errorf("%w: salt file %s holds %d bytes", ErrKeySize, keyFile, len(salt))
	}

	pass := []byte(passphrase)
	defer common.WipeByteArray(pass)

	return DeriveMasterKey(pass, salt), nil
}
