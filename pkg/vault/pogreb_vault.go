package vault

import (
	"context"

	"github.com/akrylysov/pogreb"
	"github.com/pkg/errors"

	com_vault "github.com/mr-shifu/pedersen-commit/pkg/common/vault"
	"github.com/mr-shifu/pedersen-commit/pkg/log"
)

// PogrebVault persists values in an embedded pogreb database.
type PogrebVault struct {
	db     *pogreb.DB
	path   string
	logger *log.Logger
}

var _ com_vault.Vault = (*PogrebVault)(nil)

// OpenPogrebVault opens the database at path, creating it if needed.
func OpenPogrebVault(path string, logger *log.Logger) (*PogrebVault, error) {
	logger = logger.WithModule("vault")
	logger.Info("opening pogreb vault", "path", path)

	db, err := pogreb.Open(path, &pogreb.Options{BackgroundSyncInterval: -1})
	if err != nil {
		return nil, errors.Wrapf(err, "vault: failed to open pogreb database at %s", path)
	}
	logger.Info("pogreb vault opened", "path", path, "entries", db.Count())

	return &PogrebVault{
		db:     db,
		path:   path,
		logger: logger,
	}, nil
}

// Import writes value and syncs it to disk before returning.
func (v *PogrebVault) Import(_ context.Context, keyID string, value []byte) error {
	if err := v.db.Put([]byte(keyID), value); err != nil {
		return errors.Wrap(err, "vault: pogreb put")
	}
	return errors.Wrap(v.db.Sync(), "vault: pogreb sync")
}

func (v *PogrebVault) Get(_ context.Context, keyID string) ([]byte, error) {
	ok, err := v.db.Has([]byte(keyID))
	if err != nil {
		return nil, errors.Wrap(err, "vault: pogreb has")
	}
	if !ok {
		return nil, com_vault.ErrKeyNotFound
	}
	value, err := v.db.Get([]byte(keyID))
	if err != nil {
		return nil, errors.Wrap(err, "vault: pogreb get")
	}
	return value, nil
}

func (v *PogrebVault) Close() error {
	v.logger.Info("closing pogreb vault", "path", v.path)
	return v.db.Close()
}
