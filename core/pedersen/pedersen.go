// Package pedersen implements Pedersen commitments to (message, secret) pairs.
//
// A commitment is the group element payload = m·g + r·h, where m and r are
// the scalars derived from the message and the secret. It is hiding as long
// as h has no known discrete-log relation to g, and binding as long as the
// hash-to-scalar function is collision resistant.
package pedersen

import (
	"io"

	"github.com/pkg/errors"

	"github.com/mr-shifu/pedersen-commit/core/group"
	"github.com/mr-shifu/pedersen-commit/core/hash"
)

// DeriveDST is the domain separation tag for derived generators.
const DeriveDST = "pedersen-commit/generator-h"

// Generators is the basis (g, h) of a commitment.
type Generators struct {
	G group.Point
	H group.Point
}

// Bytes returns the compressed encodings of g and h.
func (gens *Generators) Bytes() (g, h []byte) {
	return gens.G.Bytes(), gens.H.Bytes()
}

// Equal reports whether both generators match.
func (gens *Generators) Equal(other *Generators) bool {
	return gens.G.Equal(other.G) && gens.H.Equal(other.H)
}

// Commitment is the result of Construct. M and R are the committer's
// witnesses; only Payload (with the generators) is ever published.
type Commitment struct {
	Payload group.Point
	M       group.Scalar
	R       group.Scalar
}

// Scheme binds a group and a hash-to-scalar function.
type Scheme struct {
	group  group.Group
	hasher hash.ScalarHasher
}

// NewScheme creates a Scheme over grp using hasher to derive scalars.
func NewScheme(grp group.Group, hasher hash.ScalarHasher) *Scheme {
	return &Scheme{
		group:  grp,
		hasher: hasher,
	}
}

// Group returns the group of the scheme.
func (s *Scheme) Group() group.Group {
	return s.group
}

// BaseGenerator returns the fixed public generator g.
func (s *Scheme) BaseGenerator() group.Point {
	return s.group.Generator()
}

// RandomGenerators returns g = BaseGenerator and an independent h sampled from rand.
func (s *Scheme) RandomGenerators(rand io.Reader) (*Generators, error) {
	h, err := s.group.RandomPoint(rand)
	if err != nil {
		return nil, errors.WithMessage(err, "pedersen: failed to sample generator h")
	}
	return &Generators{G: s.group.Generator(), H: h}, nil
}

// DeriveGenerators returns g = BaseGenerator and h hashed to the group from
// label. Nobody can choose h, so nobody knows its discrete log to base g.
func (s *Scheme) DeriveGenerators(label []byte) *Generators {
	return &Generators{
		G: s.group.Generator(),
		H: s.group.HashToPoint(label, []byte(DeriveDST)),
	}
}

// DecodeGenerators decompresses a generator pair.
func (s *Scheme) DecodeGenerators(g, h []byte) (*Generators, error) {
	gp, err := s.group.DecodePoint(g)
	if err != nil {
		return nil, errors.WithMessage(err, "generator g")
	}
	hp, err := s.group.DecodePoint(h)
	if err != nil {
		return nil, errors.WithMessage(err, "generator h")
	}
	return &Generators{G: gp, H: hp}, nil
}

// Construct commits to (message, secret) under gens.
func (s *Scheme) Construct(message, secret []byte, gens *Generators) *Commitment {
	m := s.hasher.HashToScalar(message)
	r := s.hasher.HashToScalar(secret)
	return &Commitment{
		Payload: s.combine(m, r, gens),
		M:       m,
		R:       r,
	}
}

// Verify reports whether payload opens to (message, secret) under gens.
// The comparison is between group elements, never between encodings.
func (s *Scheme) Verify(gens *Generators, payload group.Point, message, secret []byte) bool {
	m := s.hasher.HashToScalar(message)
	r := s.hasher.HashToScalar(secret)
	return s.combine(m, r, gens).Equal(payload)
}

func (s *Scheme) combine(m, r group.Scalar, gens *Generators) group.Point {
	mg := s.group.NewPoint().ScalarMult(m, gens.G)
	rh := s.group.NewPoint().ScalarMult(r, gens.H)
	return s.group.NewPoint().Add(mg, rh)
}
