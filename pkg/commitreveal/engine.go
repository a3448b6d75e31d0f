// Package commitreveal implements the per-identity commit/reveal state
// machine on top of Pedersen commitments.
//
// An identity moves from absent to committed on Commit and from committed to
// revealed on a successful Reveal. Commit always replaces the previous entry.
package commitreveal

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/mr-shifu/pedersen-commit/core/pedersen"
	com_clock "github.com/mr-shifu/pedersen-commit/pkg/common/clock"
	"github.com/mr-shifu/pedersen-commit/pkg/common/commitstore"
	com_events "github.com/mr-shifu/pedersen-commit/pkg/common/events"
	"github.com/mr-shifu/pedersen-commit/pkg/log"
	"github.com/mr-shifu/pedersen-commit/pkg/metrics"
)

const (
	moduleName = "commitreveal"

	opCommit = "commit"
	opReveal = "reveal"
)

// Engine applies commit and reveal operations against a CommitStore.
type Engine struct {
	scheme *pedersen.Scheme
	store  commitstore.CommitStore
	clock  com_clock.Clock
	sink   com_events.Sink
	cfg    Config

	// fixed holds the trusted pair under PolicyFixed.
	fixed *pedersen.Generators

	locks   stripedLock
	logger  *log.Logger
	metrics *metrics.EngineMetrics
}

type Option func(*Engine)

func WithLogger(logger *log.Logger) Option {
	return func(e *Engine) {
		e.logger = logger.WithModule(moduleName)
	}
}

// WithMetrics instruments the engine. Without it no metrics are emitted.
func WithMetrics(m *metrics.EngineMetrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

func NewEngine(
	scheme *pedersen.Scheme,
	store commitstore.CommitStore,
	clock com_clock.Clock,
	sink com_events.Sink,
	cfg Config,
	opts ...Option,
) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		scheme: scheme,
		store:  store,
		clock:  clock,
		sink:   sink,
		cfg:    cfg,
		logger: log.NewNopLogger(),
	}
	if cfg.Policy == PolicyFixed {
		e.fixed = scheme.DeriveGenerators([]byte(cfg.FixedHSeed))
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Scheme returns the commitment scheme of the engine.
func (e *Engine) Scheme() *pedersen.Scheme {
	return e.scheme
}

// Commit stores a new commitment for identity, replacing any previous one.
// Nothing is written unless all three points decode and satisfy the
// generator policy.
func (e *Engine) Commit(ctx context.Context, identity string, g, h, payload []byte) (err error) {
	defer e.instrument(opCommit)(&err)

	gens, err := e.scheme.DecodeGenerators(g, h)
	if err != nil {
		return err
	}
	if _, err := e.scheme.Group().DecodePoint(payload); err != nil {
		return errors.WithMessage(err, "payload")
	}
	if err := e.checkPolicy(identity, gens); err != nil {
		return err
	}

	mtx := e.locks.get(identity)
	mtx.Lock()
	defer mtx.Unlock()

	entry := &commitstore.Entry{
		G:           clone(g),
		H:           clone(h),
		Payload:     clone(payload),
		CommittedAt: e.clock.Now(),
	}
	if err := e.store.Import(ctx, identity, entry); err != nil {
		e.logger.Error("failed to store commitment", "identity", identity, "err", err)
		return wrapStorage(err, "commit")
	}

	e.logger.Debug("commitment stored", "identity", identity, "committed_at", uint64(entry.CommittedAt))
	return nil
}

// Reveal opens the commitment of identity with (message, secret) and returns
// the reveal timestamp. The message length is checked before any store access
// or hashing.
func (e *Engine) Reveal(ctx context.Context, identity string, message, secret []byte) (at com_clock.Timestamp, err error) {
	defer e.instrument(opReveal)(&err)

	if uint64(len(message)) > uint64(e.cfg.MaxMessageLength) {
		return 0, errors.WithMessagef(ErrMessageTooLarge, "%d bytes, limit %d", len(message), e.cfg.MaxMessageLength)
	}

	mtx := e.locks.get(identity)
	mtx.Lock()
	defer mtx.Unlock()

	entry, err := e.load(ctx, identity)
	if err != nil {
		return 0, err
	}
	if e.cfg.TerminalReveal && entry.Revealed() {
		return 0, ErrAlreadyRevealed
	}

	if err := Verify(e.scheme, entry, message, secret); err != nil {
		if errors.Is(err, ErrCorruptEntry) {
			e.logger.Error("stored commitment does not decode", "identity", identity, "err", err)
		} else {
			e.logger.Warn("reveal rejected", "identity", identity, "state", entry.State().String())
		}
		return 0, err
	}

	first := !entry.Revealed()
	now := e.clock.Now()
	revealed := *entry
	revealed.RevealedAt = &now
	if err := e.store.Import(ctx, identity, &revealed); err != nil {
		e.logger.Error("failed to store reveal", "identity", identity, "err", err)
		return 0, wrapStorage(err, "reveal")
	}

	e.logger.Info("commitment revealed", "identity", identity, "revealed_at", uint64(now), "first", first)
	if e.sink != nil {
		e.sink.Publish(ctx, com_events.RevealEvent{
			ID:         uuid.New(),
			Identity:   identity,
			RevealedAt: now,
			Message:    clone(message),
		})
	}
	if e.metrics != nil {
		e.metrics.RevealEvents(first).Inc()
	}
	return now, nil
}

// State returns the lifecycle state of identity.
func (e *Engine) State(ctx context.Context, identity string) (commitstore.State, error) {
	entry, err := e.Entry(ctx, identity)
	if errors.Is(err, ErrNoActiveCommitment) {
		return commitstore.StateAbsent, nil
	}
	if err != nil {
		return commitstore.StateAbsent, err
	}
	return entry.State(), nil
}

// Entry returns the stored entry of identity, or ErrNoActiveCommitment.
func (e *Engine) Entry(ctx context.Context, identity string) (*commitstore.Entry, error) {
	mtx := e.locks.get(identity)
	mtx.Lock()
	defer mtx.Unlock()

	return e.load(ctx, identity)
}

func (e *Engine) load(ctx context.Context, identity string) (*commitstore.Entry, error) {
	entry, err := e.store.Get(ctx, identity)
	switch {
	case errors.Is(err, commitstore.ErrCommitmentNotFound):
		return nil, ErrNoActiveCommitment
	case errors.Is(err, commitstore.ErrMalformedEntry):
		e.logger.Error("stored commitment is malformed", "identity", identity, "err", err)
		return nil, errors.WithMessage(ErrCorruptEntry, err.Error())
	case err != nil:
		return nil, wrapStorage(err, "load")
	}
	return entry, nil
}

func (e *Engine) checkPolicy(identity string, gens *pedersen.Generators) error {
	var want *pedersen.Generators
	switch e.cfg.Policy {
	case PolicyCaller:
		return nil
	case PolicyFixed:
		want = e.fixed
	case PolicyDerived:
		want = e.scheme.DeriveGenerators([]byte(identity))
	}
	if !gens.Equal(want) {
		return errors.WithMessagef(ErrUntrustedGenerators, "policy %s", e.cfg.Policy.String())
	}
	return nil
}

func (e *Engine) instrument(op string) func(*error) {
	if e.metrics == nil {
		return func(*error) {}
	}
	timer := e.metrics.Latencies(op)
	return func(errp *error) {
		timer.ObserveDuration()
		status := metrics.StatusOK
		switch {
		case *errp == nil:
		case IsFatal(*errp):
			status = metrics.StatusFatal
		default:
			status = metrics.StatusRejected
		}
		e.metrics.Operations(op, status, Cause(*errp)).Inc()
	}
}

func clone(b []byte) []byte {
	return append([]byte(nil), b...)
}
