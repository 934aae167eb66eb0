// Package secrets persists the short-lived credentials of the auth flow:
// the device identifier, the OTP correlator and the one-time transfer token.
//
// Values are opaque strings. Stores are safe for concurrent use.
package secrets

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/authflow/internal/common"
)

// Key names a stored secret.
type Key string

const (
	KeyDeviceID Key = "deviceID"
	KeyCodeID   Key = "codeID"
	KeyOTT      Key = "ott"
)

// ErrNotFound is returned by Load when the key holds no value.
var ErrNotFound = fmt.Errorf("secret %w", common.ErrorNotFound)

// Mutation is one write in an Apply batch: a save, or a delete when Delete
// is set.
type Mutation struct {
	Key    Key
	Value  string
	Delete bool
}

// Put returns a mutation that stores value under key.
func Put(key Key, value string) Mutation {
	return Mutation{Key: key, Value: value}
}

// Remove returns a mutation that deletes key.
func Remove(key Key) Mutation {
	return Mutation{Key: key, Delete: true}
}

// Store is the credential store used by the auth flow.
//
// Save overwrites. Delete of an absent key succeeds. Apply commits all of
// its mutations or none of them.
type Store interface {
	Save(ctx context.Context, key Key, value string) error
	Load(ctx context.Context, key Key) (string, error)
	Delete(ctx context.Context, key Key) error
	Apply(ctx context.Context, muts ...Mutation) error
}

// Has reports whether key holds a value.
func Has(ctx context.Context, s Store, key Key) (bool, error) {
	_, err := s.Load(ctx, key)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}
