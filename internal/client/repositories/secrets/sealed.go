package secrets

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/dmitrijs2005/authflow/internal/cryptox"
)

// SealedStore encrypts values before handing them to the inner store. Each
// value is bound to its key, so a ciphertext copied under another key fails
// to open.
type SealedStore struct {
	inner Store
	key   []byte
}

func NewSealedStore(inner Store, key []byte) (*SealedStore, error) {
	if len(key) != cryptox.KeySize {
		return nil, fmt.Errorf("%w: got %d bytes", cryptox.ErrKeySize, len(key))
	}
	return &SealedStore{inner: inner, key: append([]byte(nil), key...)}, nil
}

func (s *SealedStore) Save(ctx context.Context, key Key, value string) error {
	return s.Apply(ctx, Put(key, value))
}

func (s *SealedStore) Load(ctx context.Context, key Key) (string, error) {
	enc, err := s.inner.Load(ctx, key)
	if err != nil {
		return "", err
	}

	sealed, err := base64.StdEncoding.DecodeString(enc)
	if err != nil {
		return "", fmt.Errorf("secret[%s]: %w", key, cryptox.ErrMalformed)
	}

	plain, err := cryptox.Open(s.key, sealed, []byte(key))
	if err != nil {
		return "", fmt.Errorf("secret[%s]: %w", key, err)
	}
	return string(plain), nil
}

func (s *SealedStore) Delete(ctx context.Context, key Key) error {
	return s.inner.Delete(ctx, key)
}

func (s *SealedStore) Apply(ctx context.Context, muts ...Mutation) error {
	sealed := make([]Mutation, 0, len(muts))
	for _, m := range muts {
		if m.Delete {
			sealed = append(sealed, m)
			continue
		}
		ct, err := cryptox.Seal(s.key, []byte(m.Value), []byte(m.Key))
		if err != nil {
			return fmt.Errorf("seal secret[%s]: %w", m.Key, err)
		}
		sealed = append(sealed, Put(m.Key, base64.StdEncoding.EncodeToString(ct)))
	}
	return s.inner.Apply(ctx, sealed...)
}
