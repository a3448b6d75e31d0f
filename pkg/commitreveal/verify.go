package commitreveal

import (
	"github.com/pkg/errors"

	"github.com/mr-shifu/pedersen-commit/core/pedersen"
	"github.com/mr-shifu/pedersen-commit/pkg/common/commitstore"
)

// Verify checks (message, secret) against a stored entry. It returns
// ErrCorruptEntry if the entry's points no longer decode and
// ErrVerificationFailed if they decode but do not open to the pair.
func Verify(scheme *pedersen.Scheme, entry *commitstore.Entry, message, secret []byte) error {
	gens, err := scheme.DecodeGenerators(entry.G, entry.H)
	if err != nil {
		return errors.WithMessage(ErrCorruptEntry, err.Error())
	}
	payload, err := scheme.Group().DecodePoint(entry.Payload)
	if err != nil {
		return errors.WithMessage(ErrCorruptEntry, "payload: "+err.Error())
	}
	if !scheme.Verify(gens, payload, message, secret) {
		return ErrVerificationFailed
	}
	return nil
}
