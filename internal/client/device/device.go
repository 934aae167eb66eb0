// Package device bootstraps the installation-wide device identifier.
package device

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/authflow/internal/client/repositories/secrets"
	"github.com/google/uuid"
)

// newID is replaced in tests.
var newID = func() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Ensure returns the stored device identifier, generating and persisting a
// UUIDv4 on first launch. An existing identifier is never replaced.
func Ensure(ctx context.Context, store secrets.Store) (string, error) {
	id, err := store.Load(ctx, secrets.KeyDeviceID)
	if err == nil && id != "" {
		return id, nil
	}
	if err != nil && !errors.Is(err, secrets.ErrNotFound) {
		return "", fmt.Errorf("load device id: %w", err)
	}

	id, err = newID()
	if err != nil {
		return "", fmt.Errorf("generate device id: %w", err)
	}

	if err := store.Save(ctx, secrets.KeyDeviceID, id); err != nil {
		return "", fmt.Errorf("save device id: %w", err)
	}
	return id, nil
}
