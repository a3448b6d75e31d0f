package commitreveal

import (
	"github.com/pkg/errors"

	"github.com/mr-shifu/pedersen-commit/core/group"
)

var (
	// ErrInvalidEncoding is returned by Commit when an argument is not the
	// canonical compressed encoding of a group element.
	ErrInvalidEncoding = group.ErrInvalidEncoding
	// ErrUntrustedGenerators is returned by Commit when the generators do not
	// match the configured generator policy.
	ErrUntrustedGenerators = errors.New("commitreveal: untrusted generators")

	ErrNoActiveCommitment = errors.New("commitreveal: no active commitment")
	ErrMessageTooLarge    = errors.New("commitreveal: message too large")
	ErrVerificationFailed = errors.New("commitreveal: verification failed")
	ErrAlreadyRevealed    = errors.New("commitreveal: commitment already revealed")

	// ErrCorruptEntry reports a stored entry that no longer decodes. It is an
	// integrity violation of the store, not a caller error.
	ErrCorruptEntry = errors.New("commitreveal: corrupt store entry")
	// ErrStorage reports a failure of the underlying store.
	ErrStorage = errors.New("commitreveal: storage failure")
)

type storageError struct {
	err error
}

func (e *storageError) Error() string {
	return ErrStorage.Error() + ": " + e.err.Error()
}

func (e *storageError) Unwrap() error {
	return e.err
}

func (e *storageError) Is(target error) bool {
	return target == ErrStorage
}

func wrapStorage(err error, msg string) error {
	return &storageError{err: errors.WithMessage(err, msg)}
}

// IsFatal reports whether err signals a host-side integrity or storage fault
// rather than a rejected operation.
func IsFatal(err error) bool {
	return errors.Is(err, ErrCorruptEntry) || errors.Is(err, ErrStorage)
}

// Cause returns a stable short name for the error kind of err, or "internal"
// for errors outside the taxonomy.
func Cause(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidEncoding):
		return "invalid_encoding"
	case errors.Is(err, ErrUntrustedGenerators):
		return "untrusted_generators"
	case errors.Is(err, ErrNoActiveCommitment):
		return "no_active_commitment"
	case errors.Is(err, ErrMessageTooLarge):
		return "message_too_large"
	case errors.Is(err, ErrVerificationFailed):
		return "verification_failed"
	case errors.Is(err, ErrAlreadyRevealed):
		return "already_revealed"
	case errors.Is(err, ErrCorruptEntry):
		return "corrupt_entry"
	case errors.Is(err, ErrStorage):
		return "storage"
	default:
		return "internal"
	}
}
