// Package host applies blocks of commit/reveal operations the way a ledger
// host does: one height per block, operations on the same identity in
// submission order, distinct identities in parallel.
package host

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/mr-shifu/pedersen-commit/pkg/clock"
	com_clock "github.com/mr-shifu/pedersen-commit/pkg/common/clock"
	"github.com/mr-shifu/pedersen-commit/pkg/common/commitstore"
	"github.com/mr-shifu/pedersen-commit/pkg/commitreveal"
	"github.com/mr-shifu/pedersen-commit/pkg/log"
)

const DefaultParallelism = 8

// ErrBlockAborted fails operations left unapplied by an aborted block.
var ErrBlockAborted = errors.New("host: block aborted")

type OpKind int

const (
	OpCommit OpKind = iota
	OpReveal
)

func (k OpKind) String() string {
	switch k {
	case OpCommit:
		return "commit"
	case OpReveal:
		return "reveal"
	default:
		return fmt.Sprintf("OpKind(%d)", int(k))
	}
}

// Op is one submitted operation. Commit uses G, H and Payload; reveal uses
// Message and Secret.
type Op struct {
	Kind     OpKind
	Identity string

	G       []byte
	H       []byte
	Payload []byte

	Message []byte
	Secret  []byte
}

// Result is the outcome of one Op. RevealedAt is set for successful reveals.
type Result struct {
	RevealedAt com_clock.Timestamp
	Err        error
}

type Executor struct {
	engine      *commitreveal.Engine
	clock       *clock.HeightClock
	parallelism int
	logger      *log.Logger
}

func NewExecutor(engine *commitreveal.Engine, clock *clock.HeightClock, parallelism int, logger *log.Logger) *Executor {
	if parallelism <= 0 {
		parallelism = DefaultParallelism
	}
	return &Executor{
		engine:      engine,
		clock:       clock,
		parallelism: parallelism,
		logger:      logger.WithModule("host"),
	}
}

// ApplyBlock advances the clock to the next height and applies ops. No
// operation runs if the new height cannot be persisted. Results
// are returned in submission order. Rejected operations only fail their own
// Result; a fatal error stops the block and is returned after the partitions
// drain, with unapplied operations failing with ErrBlockAborted.
func (x *Executor) ApplyBlock(ctx context.Context, ops []Op) (com_clock.Timestamp, []Result, error) {
	height, err := x.clock.Next(ctx)
	if err != nil {
		x.logger.Error("failed to open block", "err", err)
		return 0, nil, errors.WithMessage(err, "host: failed to open block")
	}
	results := make([]Result, len(ops))

	// partition by identity, preserving order
	order := make([]string, 0)
	partitions := make(map[string][]int)
	for i, op := range ops {
		if _, ok := partitions[op.Identity]; !ok {
			order = append(order, op.Identity)
		}
		partitions[op.Identity] = append(partitions[op.Identity], i)
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(x.parallelism)
	for _, identity := range order {
		indices := partitions[identity]
		group.Go(func() error {
			var fatal error
			for _, i := range indices {
				if fatal != nil || groupCtx.Err() != nil {
					results[i].Err = ErrBlockAborted
					continue
				}
				results[i] = x.apply(groupCtx, ops[i])
				if commitreveal.IsFatal(results[i].Err) {
					fatal = errors.WithMessagef(results[i].Err, "%s %q", ops[i].Kind, ops[i].Identity)
				}
			}
			return fatal
		})
	}
	err = group.Wait()

	x.logger.Debug("block applied", "height", uint64(height), "ops", len(ops), "identities", len(order))
	if err != nil {
		x.logger.Error("block aborted", "height", uint64(height), "err", err)
	}
	return height, results, err
}

// Commit applies a single commit as its own block.
func (x *Executor) Commit(ctx context.Context, identity string, g, h, payload []byte) error {
	res, err := x.applyOne(ctx, Op{Kind: OpCommit, Identity: identity, G: g, H: h, Payload: payload})
	if err != nil {
		return err
	}
	return res.Err
}

// Reveal applies a single reveal as its own block.
func (x *Executor) Reveal(ctx context.Context, identity string, message, secret []byte) (com_clock.Timestamp, error) {
	res, err := x.applyOne(ctx, Op{Kind: OpReveal, Identity: identity, Message: message, Secret: secret})
	if err != nil {
		return 0, err
	}
	return res.RevealedAt, res.Err
}

// Entry reads the current entry of identity without opening a block.
func (x *Executor) Entry(ctx context.Context, identity string) (*commitstore.Entry, error) {
	return x.engine.Entry(ctx, identity)
}

func (x *Executor) applyOne(ctx context.Context, op Op) (Result, error) {
	_, results, err := x.ApplyBlock(ctx, []Op{op})
	if err != nil {
		return Result{}, err
	}
	return results[0], nil
}

func (x *Executor) apply(ctx context.Context, op Op) Result {
	switch op.Kind {
	case OpCommit:
		return Result{Err: x.engine.Commit(ctx, op.Identity, op.G, op.H, op.Payload)}
	case OpReveal:
		at, err := x.engine.Reveal(ctx, op.Identity, op.Message, op.Secret)
		return Result{RevealedAt: at, Err: err}
	default:
		return Result{Err: fmt.Errorf("host: unknown operation %s", op.Kind)}
	}
}
