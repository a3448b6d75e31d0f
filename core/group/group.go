// Package group wraps the prime-order groups a Pedersen commitment can be built on.
//
// Implementations delegate all curve arithmetic to an existing library; this
// package only fixes the contract the commitment code relies on: a constant
// base generator, independent random generators, canonical fixed-width point
// encodings and a wide reduction into the scalar field.
package group

import (
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// UniformBytesLength is the length of the input accepted by ScalarFromUniformBytes.
const UniformBytesLength = 64

var (
	// ErrInvalidEncoding is returned when a byte string does not decode to a group element.
	ErrInvalidEncoding = errors.New("group: invalid point encoding")
	// ErrUnknownGroup is returned by ByName for an unsupported group name.
	ErrUnknownGroup = errors.New("group: unknown group")
)

// Scalar is an element of the scalar field of a Group.
type Scalar interface {
	// Bytes returns the canonical encoding of the scalar.
	Bytes() []byte
	// Equal reports whether the receiver equals b.
	Equal(b Scalar) bool
	// IsZero reports whether the receiver is zero.
	IsZero() bool
}

// Point is an element of a Group.
//
// Arithmetic methods set the receiver to the result and return it.
type Point interface {
	// Add sets the receiver to a+b and returns it.
	Add(a, b Point) Point
	// ScalarMult sets the receiver to s*p and returns it.
	ScalarMult(s Scalar, p Point) Point
	// Set sets the receiver to a and returns it.
	Set(a Point) Point
	// Equal reports whether the receiver and b are the same group element.
	Equal(b Point) bool
	// IsIdentity reports whether the receiver is the identity element.
	IsIdentity() bool
	// Bytes returns the compressed encoding of the point, PointSize bytes long.
	Bytes() []byte
}

// Group is a prime-order group with a secure point compression format.
type Group interface {
	// Name returns the name the group is registered under.
	Name() string
	// PointSize returns the length of a compressed point.
	PointSize() int
	// NewPoint returns a new identity point.
	NewPoint() Point
	// Generator returns the fixed public base generator.
	Generator() Point
	// RandomPoint returns a uniformly distributed point sampled from r.
	// The result has no known discrete-log relation to Generator.
	RandomPoint(r io.Reader) (Point, error)
	// HashToPoint deterministically maps msg to a point under the domain
	// separation tag dst.
	HashToPoint(msg, dst []byte) Point
	// DecodePoint decompresses a point. Any input that is not the canonical
	// encoding of a group element yields an error wrapping ErrInvalidEncoding.
	DecodePoint(data []byte) (Point, error)
	// ScalarFromUniformBytes reduces UniformBytesLength bytes into the scalar field.
	ScalarFromUniformBytes(data []byte) (Scalar, error)
}

// ByName returns the group registered under name.
func ByName(name string) (Group, error) {
	switch strings.ToLower(name) {
	case Ristretto255.Name():
		return Ristretto255, nil
	case Secp256k1.Name():
		return Secp256k1, nil
	default:
		return nil, errors.Wrapf(ErrUnknownGroup, "%q", name)
	}
}

func invalidEncoding(format string, args ...interface{}) error {
	return errors.WithMessage(ErrInvalidEncoding, fmt.Sprintf(format, args...))
}
