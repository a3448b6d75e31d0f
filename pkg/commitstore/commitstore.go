package commitstore

import (
	"context"
	"encoding/hex"

	"github.com/fxamacker/cbor/v2"
	"github.com/pkg/errors"
	"github.com/zeebo/blake3"

	com_clock "github.com/mr-shifu/pedersen-commit/pkg/common/clock"
	"github.com/mr-shifu/pedersen-commit/pkg/common/commitstore"
	"github.com/mr-shifu/pedersen-commit/pkg/common/vault"
)

const keyPrefix = "pedersen-commit/entry"

type rawEntry struct {
	G           []byte
	H           []byte
	Payload     []byte
	CommittedAt uint64
	Revealed    bool
	RevealedAt  uint64
}

// VaultCommitStore keeps cbor-encoded entries in a vault under hashed keys.
type VaultCommitStore struct {
	vault vault.Vault
}

var _ commitstore.CommitStore = (*VaultCommitStore)(nil)

func NewVaultCommitStore(v vault.Vault) *VaultCommitStore {
	return &VaultCommitStore{
		vault: v,
	}
}

// EntryKey returns the vault key of identity.
func EntryKey(identity string) string {
	h := blake3.New()
	_, _ = h.Write([]byte(keyPrefix))
	_, _ = h.Write([]byte(identity))
	return hex.EncodeToString(h.Sum(nil))
}

func (cs *VaultCommitStore) Get(ctx context.Context, identity string) (*commitstore.Entry, error) {
	data, err := cs.vault.Get(ctx, EntryKey(identity))
	if errors.Is(err, vault.ErrKeyNotFound) {
		return nil, commitstore.ErrCommitmentNotFound
	}
	if err != nil {
		return nil, errors.WithMessage(err, "commitstore: failed to load entry")
	}
	return decodeEntry(data)
}

func (cs *VaultCommitStore) Import(ctx context.Context, identity string, entry *commitstore.Entry) error {
	data, err := encodeEntry(entry)
	if err != nil {
		return err
	}
	return errors.WithMessage(cs.vault.Import(ctx, EntryKey(identity), data), "commitstore: failed to store entry")
}

func encodeEntry(entry *commitstore.Entry) ([]byte, error) {
	raw := rawEntry{
		G:           entry.G,
		H:           entry.H,
		Payload:     entry.Payload,
		CommittedAt: uint64(entry.CommittedAt),
	}
	if entry.RevealedAt != nil {
		raw.Revealed = true
		raw.RevealedAt = uint64(*entry.RevealedAt)
	}
	data, err := cbor.Marshal(raw)
	if err != nil {
		return nil, errors.Wrap(err, "commitstore: failed to encode entry")
	}
	return data, nil
}

func decodeEntry(data []byte) (*commitstore.Entry, error) {
	raw := &rawEntry{}
	if err := cbor.Unmarshal(data, raw); err != nil {
		return nil, errors.WithMessage(commitstore.ErrMalformedEntry, err.Error())
	}
	entry := &commitstore.Entry{
		G:           raw.G,
		H:           raw.H,
		Payload:     raw.Payload,
		CommittedAt: com_clock.Timestamp(raw.CommittedAt),
	}
	if raw.Revealed {
		at := com_clock.Timestamp(raw.RevealedAt)
		entry.RevealedAt = &at
	}
	return entry, nil
}
