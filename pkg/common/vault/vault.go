package vault

import (
	"context"
	"errors"
)

var ErrKeyNotFound = errors.New("vault: key not found")

// Vault is a flat byte store addressed by string keys. Values are only ever
// replaced, never removed.
type Vault interface {
	Import(ctx context.Context, keyID string, value []byte) error
	// Get returns ErrKeyNotFound if keyID is absent.
	Get(ctx context.Context, keyID string) ([]byte, error)
	Close() error
}
