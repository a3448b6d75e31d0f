package host

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mr-shifu/pedersen-commit/core/group"
	"github.com/mr-shifu/pedersen-commit/core/hash"
	"github.com/mr-shifu/pedersen-commit/core/pedersen"
	"github.com/mr-shifu/pedersen-commit/pkg/clock"
	com_clock "github.com/mr-shifu/pedersen-commit/pkg/common/clock"
	com_vault "github.com/mr-shifu/pedersen-commit/pkg/common/vault"
	"github.com/mr-shifu/pedersen-commit/pkg/commitreveal"
	"github.com/mr-shifu/pedersen-commit/pkg/commitstore"
	"github.com/mr-shifu/pedersen-commit/pkg/events"
	"github.com/mr-shifu/pedersen-commit/pkg/log"
	"github.com/mr-shifu/pedersen-commit/pkg/vault"
)

type fixture struct {
	executor *Executor
	engine   *commitreveal.Engine
	scheme   *pedersen.Scheme
	vault    *vault.InMemoryVault
}

func newFixture(t *testing.T) *fixture {
	v := vault.NewInMemoryVault()
	f := newFixtureOver(t, v, clock.NewHeightClock(0))
	f.vault = v
	return f
}

func newFixtureOver(t *testing.T, v com_vault.Vault, clk *clock.HeightClock) *fixture {
	grp := group.Ristretto255
	scheme := pedersen.NewScheme(grp, hash.NewScalarHasher(grp, hash.SHA512))

	engine, err := commitreveal.NewEngine(scheme, commitstore.NewVaultCommitStore(v), clk, events.Discard{}, commitreveal.DefaultConfig())
	require.NoError(t, err)

	return &fixture{
		executor: NewExecutor(engine, clk, 4, log.NewNopLogger()),
		engine:   engine,
		scheme:   scheme,
	}
}

func (f *fixture) commitOp(identity, message, secret string) Op {
	gens := f.scheme.DeriveGenerators([]byte(identity + "/" + message))
	g, h := gens.Bytes()
	return Op{
		Kind:     OpCommit,
		Identity: identity,
		G:        g,
		H:        h,
		Payload:  f.scheme.Construct([]byte(message), []byte(secret), gens).Payload.Bytes(),
	}
}

func revealOp(identity, message, secret string) Op {
	return Op{
		Kind:     OpReveal,
		Identity: identity,
		Message:  []byte(message),
		Secret:   []byte(secret),
	}
}

func TestExecutor_SameBlockCommitReveal(t *testing.T) {
	f := newFixture(t)

	height, results, err := f.executor.ApplyBlock(context.Background(), []Op{
		f.commitOp("alice", "hello", "s3cret"),
		revealOp("alice", "hello", "s3cret"),
		revealOp("bob", "hello", "s3cret"),
	})
	require.NoError(t, err)
	assert.Equal(t, com_clock.Timestamp(1), height)
	require.Len(t, results, 3)

	assert.NoError(t, results[0].Err)
	assert.NoError(t, results[1].Err)
	assert.Equal(t, height, results[1].RevealedAt)
	assert.ErrorIs(t, results[2].Err, commitreveal.ErrNoActiveCommitment)
}

func TestExecutor_OrderWithinIdentity(t *testing.T) {
	f := newFixture(t)

	// The reveal precedes the commit, so it must fail; the second reveal
	// follows the overwrite and must verify against the new entry.
	_, results, err := f.executor.ApplyBlock(context.Background(), []Op{
		revealOp("alice", "first", "s"),
		f.commitOp("alice", "first", "s"),
		f.commitOp("alice", "second", "s"),
		revealOp("alice", "first", "s"),
		revealOp("alice", "second", "s"),
	})
	require.NoError(t, err)

	assert.ErrorIs(t, results[0].Err, commitreveal.ErrNoActiveCommitment)
	assert.NoError(t, results[1].Err)
	assert.NoError(t, results[2].Err)
	assert.ErrorIs(t, results[3].Err, commitreveal.ErrVerificationFailed)
	assert.NoError(t, results[4].Err)
}

func TestExecutor_HeightsAdvancePerBlock(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	h1, _, err := f.executor.ApplyBlock(ctx, []Op{f.commitOp("alice", "hello", "s")})
	require.NoError(t, err)
	h2, results, err := f.executor.ApplyBlock(ctx, []Op{revealOp("alice", "hello", "s")})
	require.NoError(t, err)
	h3, results2, err := f.executor.ApplyBlock(ctx, []Op{revealOp("alice", "hello", "s")})
	require.NoError(t, err)

	assert.Equal(t, h1+1, h2)
	assert.Equal(t, h2+1, h3)
	assert.Equal(t, h2, results[0].RevealedAt)
	assert.Equal(t, h3, results2[0].RevealedAt)

	entry, err := f.engine.Entry(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, h1, entry.CommittedAt)
	assert.Equal(t, h3, *entry.RevealedAt)
}

func TestExecutor_ManyIdentities(t *testing.T) {
	f := newFixture(t)

	var ops []Op
	for i := 0; i < 50; i++ {
		identity := fmt.Sprintf("id-%d", i)
		ops = append(ops, f.commitOp(identity, identity, "s"), revealOp(identity, identity, "s"))
	}

	_, results, err := f.executor.ApplyBlock(context.Background(), ops)
	require.NoError(t, err)
	for i, r := range results {
		assert.NoError(t, r.Err, "op %d", i)
	}
}

func TestExecutor_FatalErrorAbortsBlock(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, _, err := f.executor.ApplyBlock(ctx, []Op{f.commitOp("alice", "hello", "s")})
	require.NoError(t, err)
	require.NoError(t, f.vault.Import(ctx, commitstore.EntryKey("alice"), []byte{0xff}))

	_, results, err := f.executor.ApplyBlock(ctx, []Op{
		revealOp("alice", "hello", "s"),
		revealOp("alice", "hello", "s"),
	})
	assert.ErrorIs(t, err, commitreveal.ErrCorruptEntry)
	assert.ErrorIs(t, results[0].Err, commitreveal.ErrCorruptEntry)
	assert.ErrorIs(t, results[1].Err, ErrBlockAborted)
}

func TestExecutor_UnknownOp(t *testing.T) {
	f := newFixture(t)

	_, results, err := f.executor.ApplyBlock(context.Background(), []Op{{Kind: OpKind(9), Identity: "alice"}})
	require.NoError(t, err)
	assert.Error(t, results[0].Err)
}

func TestExecutor_EmptyBlock(t *testing.T) {
	f := newFixture(t)

	height, results, err := f.executor.ApplyBlock(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, com_clock.Timestamp(1), height)
	assert.Empty(t, results)
}

func TestExecutor_SingleOperationBlocks(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	op := f.commitOp("alice", "hello", "s")
	require.NoError(t, f.executor.Commit(ctx, "alice", op.G, op.H, op.Payload))

	_, err := f.executor.Reveal(ctx, "alice", []byte("hell0"), []byte("s"))
	assert.ErrorIs(t, err, commitreveal.ErrVerificationFailed)

	at, err := f.executor.Reveal(ctx, "alice", []byte("hello"), []byte("s"))
	require.NoError(t, err)
	assert.Equal(t, com_clock.Timestamp(3), at)

	entry, err := f.executor.Entry(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, com_clock.Timestamp(1), entry.CommittedAt)
	assert.Equal(t, at, *entry.RevealedAt)

	require.NoError(t, f.vault.Import(ctx, commitstore.EntryKey("alice"), []byte{0xff}))
	_, err = f.executor.Reveal(ctx, "alice", []byte("hello"), []byte("s"))
	assert.ErrorIs(t, err, commitreveal.ErrCorruptEntry)
}

func TestExecutor_HeightsSurviveRestart(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "db")

	v, err := vault.OpenPogrebVault(path, log.NewNopLogger())
	require.NoError(t, err)
	clk, err := clock.OpenHeightClock(ctx, v)
	require.NoError(t, err)
	f := newFixtureOver(t, v, clk)

	for i := 0; i < 10; i++ {
		_, _, err := f.executor.ApplyBlock(ctx, nil)
		require.NoError(t, err)
	}
	committedAt, results, err := f.executor.ApplyBlock(ctx, []Op{f.commitOp("alice", "hello", "s")})
	require.NoError(t, err)
	require.NoError(t, results[0].Err)
	require.Equal(t, com_clock.Timestamp(11), committedAt)
	require.NoError(t, v.Close())

	v, err = vault.OpenPogrebVault(path, log.NewNopLogger())
	require.NoError(t, err)
	defer v.Close()
	clk, err = clock.OpenHeightClock(ctx, v)
	require.NoError(t, err)
	f = newFixtureOver(t, v, clk)

	at, err := f.executor.Reveal(ctx, "alice", []byte("hello"), []byte("s"))
	require.NoError(t, err)
	assert.Greater(t, at, committedAt)

	entry, err := f.executor.Entry(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, committedAt, entry.CommittedAt)
	assert.Equal(t, at, *entry.RevealedAt)
}

type heightFailingVault struct {
	*vault.InMemoryVault
}

func (v heightFailingVault) Import(ctx context.Context, keyID string, value []byte) error {
	if keyID == clock.HeightKey {
		return assert.AnError
	}
	return v.InMemoryVault.Import(ctx, keyID, value)
}

func TestExecutor_HeightPersistFailureAppliesNothing(t *testing.T) {
	ctx := context.Background()
	v := heightFailingVault{vault.NewInMemoryVault()}
	clk, err := clock.OpenHeightClock(ctx, v)
	require.NoError(t, err)
	f := newFixtureOver(t, v, clk)

	_, results, err := f.executor.ApplyBlock(ctx, []Op{f.commitOp("alice", "hello", "s")})
	assert.ErrorIs(t, err, assert.AnError)
	assert.Nil(t, results)
	assert.Equal(t, com_clock.Timestamp(0), clk.Now())

	_, err = f.engine.Entry(ctx, "alice")
	assert.ErrorIs(t, err, commitreveal.ErrNoActiveCommitment)
}
