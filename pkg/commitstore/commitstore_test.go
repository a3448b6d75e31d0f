package commitstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	com_clock "github.com/mr-shifu/pedersen-commit/pkg/common/clock"
	"github.com/mr-shifu/pedersen-commit/pkg/common/commitstore"
	"github.com/mr-shifu/pedersen-commit/pkg/vault"
)

func newEntry() *commitstore.Entry {
	return &commitstore.Entry{
		G:           []byte{1, 2, 3},
		H:           []byte{4, 5, 6},
		Payload:     []byte{7, 8, 9},
		CommittedAt: 10,
	}
}

func TestVaultCommitStore_ImportGet(t *testing.T) {
	ctx := context.Background()
	cs := NewVaultCommitStore(vault.NewInMemoryVault())

	_, err := cs.Get(ctx, "alice")
	assert.ErrorIs(t, err, commitstore.ErrCommitmentNotFound)

	require.NoError(t, cs.Import(ctx, "alice", newEntry()))

	got, err := cs.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, newEntry(), got)
	assert.Equal(t, commitstore.StateCommitted, got.State())

	at := com_clock.Timestamp(12)
	got.RevealedAt = &at
	require.NoError(t, cs.Import(ctx, "alice", got))

	got, err = cs.Get(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, got.RevealedAt)
	assert.Equal(t, at, *got.RevealedAt)
	assert.Equal(t, commitstore.StateRevealed, got.State())

	// Revealed at height zero is still revealed.
	zero := com_clock.Timestamp(0)
	got.RevealedAt = &zero
	require.NoError(t, cs.Import(ctx, "alice", got))
	got, err = cs.Get(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, got.Revealed())
}

func TestVaultCommitStore_IdentitiesAreIsolated(t *testing.T) {
	ctx := context.Background()
	cs := NewVaultCommitStore(vault.NewInMemoryVault())

	require.NoError(t, cs.Import(ctx, "alice", newEntry()))
	_, err := cs.Get(ctx, "bob")
	assert.ErrorIs(t, err, commitstore.ErrCommitmentNotFound)
}

func TestVaultCommitStore_MalformedEntry(t *testing.T) {
	ctx := context.Background()
	v := vault.NewInMemoryVault()
	cs := NewVaultCommitStore(v)

	require.NoError(t, v.Import(ctx, EntryKey("alice"), []byte{0xff, 0x00}))
	_, err := cs.Get(ctx, "alice")
	assert.ErrorIs(t, err, commitstore.ErrMalformedEntry)
}

func TestEntryKey(t *testing.T) {
	assert.Equal(t, EntryKey("alice"), EntryKey("alice"))
	assert.NotEqual(t, EntryKey("alice"), EntryKey("bob"))
	assert.Len(t, EntryKey("alice"), 64)
}

func TestEntry_State(t *testing.T) {
	var e *commitstore.Entry
	assert.Equal(t, commitstore.StateAbsent, e.State())
	assert.Equal(t, "absent", e.State().String())
	assert.Equal(t, "committed", newEntry().State().String())
}
