package vault

import (
	"context"
	"sync"

	com_vault "github.com/mr-shifu/pedersen-commit/pkg/common/vault"
)

type InMemoryVault struct {
	lock sync.RWMutex
	keys map[string][]byte
}

var _ com_vault.Vault = (*InMemoryVault)(nil)

func NewInMemoryVault() *InMemoryVault {
	return &InMemoryVault{
		keys: make(map[string][]byte),
	}
}

func (store *InMemoryVault) Import(_ context.Context, keyID string, value []byte) error {
	store.lock.Lock()
	defer store.lock.Unlock()

	store.keys[keyID] = append([]byte(nil), value...)
	return nil
}

func (store *InMemoryVault) Get(_ context.Context, keyID string) ([]byte, error) {
	store.lock.RLock()
	defer store.lock.RUnlock()

	value, ok := store.keys[keyID]
	if !ok {
		return nil, com_vault.ErrKeyNotFound
	}
	return append([]byte(nil), value...), nil
}

func (store *InMemoryVault) Close() error {
	return nil
}
