package group

import (
	"io"

	"filippo.io/edwards25519"
	circl "github.com/cloudflare/circl/group"
	"github.com/pkg/errors"
)

const (
	// RistrettoPointSize is the size of a compressed ristretto255 element.
	RistrettoPointSize = 32

	ristrettoRandomDST = "pedersen-commit/ristretto255/random"
)

// Ristretto255 is the ristretto255 prime-order group over Curve25519.
var Ristretto255 Group = ristretto255{}

type ristretto255 struct{}

type ristrettoPoint struct {
	e circl.Element
}

type ristrettoScalar struct {
	s circl.Scalar
}

func (ristretto255) Name() string { return "ristretto255" }

func (ristretto255) PointSize() int { return RistrettoPointSize }

func (ristretto255) NewPoint() Point {
	return &ristrettoPoint{e: circl.Ristretto255.NewElement()}
}

func (ristretto255) Generator() Point {
	return &ristrettoPoint{e: circl.Ristretto255.Generator()}
}

func (ristretto255) RandomPoint(r io.Reader) (Point, error) {
	seed := make([]byte, UniformBytesLength)
	if _, err := io.ReadFull(r, seed); err != nil {
		return nil, errors.WithMessage(err, "ristretto255: failed to read random seed")
	}
	return &ristrettoPoint{e: circl.Ristretto255.HashToElement(seed, []byte(ristrettoRandomDST))}, nil
}

func (ristretto255) HashToPoint(msg, dst []byte) Point {
	return &ristrettoPoint{e: circl.Ristretto255.HashToElement(msg, dst)}
}

func (ristretto255) DecodePoint(data []byte) (Point, error) {
	if len(data) != RistrettoPointSize {
		return nil, invalidEncoding("ristretto255: bad point length %d", len(data))
	}
	e := circl.Ristretto255.NewElement()
	if err := e.UnmarshalBinary(data); err != nil {
		return nil, invalidEncoding("ristretto255: %v", err)
	}
	return &ristrettoPoint{e: e}, nil
}

// ScalarFromUniformBytes reduces a 64-byte little-endian integer modulo the
// group order, the same wide reduction curve25519 libraries use for
// hash-derived scalars.
func (ristretto255) ScalarFromUniformBytes(data []byte) (Scalar, error) {
	if len(data) != UniformBytesLength {
		return nil, errors.Errorf("ristretto255: uniform input must be %d bytes, got %d", UniformBytesLength, len(data))
	}
	reduced, err := edwards25519.NewScalar().SetUniformBytes(data)
	if err != nil {
		return nil, errors.WithMessage(err, "ristretto255: internal error: setting scalar failed")
	}
	s := circl.Ristretto255.NewScalar()
	if err := s.UnmarshalBinary(reduced.Bytes()); err != nil {
		return nil, errors.WithMessage(err, "ristretto255: internal error: decoding reduced scalar failed")
	}
	return &ristrettoScalar{s: s}, nil
}

func (p *ristrettoPoint) Add(a, b Point) Point {
	p.e = circl.Ristretto255.NewElement().Add(a.(*ristrettoPoint).e, b.(*ristrettoPoint).e)
	return p
}

func (p *ristrettoPoint) ScalarMult(s Scalar, q Point) Point {
	p.e = circl.Ristretto255.NewElement().Mul(q.(*ristrettoPoint).e, s.(*ristrettoScalar).s)
	return p
}

func (p *ristrettoPoint) Set(a Point) Point {
	p.e = a.(*ristrettoPoint).e.Copy()
	return p
}

func (p *ristrettoPoint) Equal(b Point) bool {
	other, ok := b.(*ristrettoPoint)
	if !ok {
		return false
	}
	return p.e.IsEqual(other.e)
}

func (p *ristrettoPoint) IsIdentity() bool {
	return p.e.IsIdentity()
}

func (p *ristrettoPoint) Bytes() []byte {
	out, err := p.e.MarshalBinaryCompress()
	if err != nil {
		// ristretto255 encoding is total over valid elements.
		panic(errors.WithMessage(err, "ristretto255: internal error: encoding failed"))
	}
	return out
}

func (s *ristrettoScalar) Bytes() []byte {
	out, err := s.s.MarshalBinary()
	if err != nil {
		panic(errors.WithMessage(err, "ristretto255: internal error: encoding scalar failed"))
	}
	return out
}

func (s *ristrettoScalar) Equal(b Scalar) bool {
	other, ok := b.(*ristrettoScalar)
	if !ok {
		return false
	}
	return s.s.IsEqual(other.s)
}

func (s *ristrettoScalar) IsZero() bool {
	return s.s.IsZero()
}
