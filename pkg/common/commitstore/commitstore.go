package commitstore

import (
	"context"
	"errors"

	"github.com/mr-shifu/pedersen-commit/pkg/common/clock"
)

var (
	ErrCommitmentNotFound = errors.New("commitstore: commitment not found")
	ErrMalformedEntry     = errors.New("commitstore: malformed entry")
)

// State is the lifecycle position of an identity's commitment.
type State int

const (
	StateAbsent State = iota
	StateCommitted
	StateRevealed
)

func (s State) String() string {
	switch s {
	case StateAbsent:
		return "absent"
	case StateCommitted:
		return "committed"
	case StateRevealed:
		return "revealed"
	default:
		return "unknown"
	}
}

// Entry is the stored commitment of one identity. G, H and Payload hold
// compressed group elements exactly as submitted.
type Entry struct {
	G           []byte
	H           []byte
	Payload     []byte
	CommittedAt clock.Timestamp
	RevealedAt  *clock.Timestamp
}

func (e *Entry) Revealed() bool {
	return e.RevealedAt != nil
}

func (e *Entry) State() State {
	if e == nil {
		return StateAbsent
	}
	if e.Revealed() {
		return StateRevealed
	}
	return StateCommitted
}

// CommitStore holds one entry per identity. Entries are overwritten by later
// commits and never removed.
type CommitStore interface {
	// Get returns ErrCommitmentNotFound if identity has no entry.
	Get(ctx context.Context, identity string) (*Entry, error)
	// Import stores entry, replacing any previous one.
	Import(ctx context.Context, identity string, entry *Entry) error
}
