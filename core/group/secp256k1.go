package group

import (
	"crypto/sha256"
	"encoding/binary"
	"io"

	"github.com/cronokirby/saferith"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/pkg/errors"
)

const (
	// Secp256k1PointSize is the size of a SEC1 compressed secp256k1 point.
	Secp256k1PointSize = 33

	// maxCandidates bounds the x-coordinate search of RandomPoint; roughly
	// half of all candidates are on the curve.
	maxCandidates = 256

	compressedEven = 0x02
)

// Secp256k1 is the secp256k1 prime-order group.
var Secp256k1 Group = secp256k1Group{
	order: saferith.ModulusFromBytes(secp256k1.Params().N.Bytes()),
}

type secp256k1Group struct {
	order *saferith.Modulus
}

type secpPoint struct {
	p secp256k1.JacobianPoint
}

type secpScalar struct {
	s secp256k1.ModNScalar
}

func (secp256k1Group) Name() string { return "secp256k1" }

func (secp256k1Group) PointSize() int { return Secp256k1PointSize }

func (secp256k1Group) NewPoint() Point {
	return &secpPoint{}
}

func (secp256k1Group) Generator() Point {
	var one secp256k1.ModNScalar
	one.SetInt(1)
	p := &secpPoint{}
	secp256k1.ScalarBaseMultNonConst(&one, &p.p)
	p.p.ToAffine()
	return p
}

// RandomPoint samples random x coordinates until one lies on the curve. The
// y parity comes from its own random byte, independent of x.
func (g secp256k1Group) RandomPoint(r io.Reader) (Point, error) {
	candidate := make([]byte, Secp256k1PointSize)
	for i := 0; i < maxCandidates; i++ {
		if _, err := io.ReadFull(r, candidate); err != nil {
			return nil, errors.WithMessage(err, "secp256k1: failed to read random candidate")
		}
		candidate[0] = compressedEven | (candidate[0] & 1)
		if p, err := g.DecodePoint(candidate); err == nil {
			return p, nil
		}
	}
	return nil, errors.New("secp256k1: no valid point found in random candidates")
}

// HashToPoint uses try-and-increment over SHA-256; msg and dst are public, so
// the variable running time leaks nothing.
func (g secp256k1Group) HashToPoint(msg, dst []byte) Point {
	var ctr [4]byte
	candidate := make([]byte, Secp256k1PointSize)
	for i := uint32(0); ; i++ {
		binary.BigEndian.PutUint32(ctr[:], i)
		h := sha256.New()
		h.Write(dst)
		h.Write(msg)
		h.Write(ctr[:])
		digest := h.Sum(nil)

		candidate[0] = compressedEven
		copy(candidate[1:], digest)
		if p, err := g.DecodePoint(candidate); err == nil {
			return p
		}
	}
}

func (secp256k1Group) DecodePoint(data []byte) (Point, error) {
	if len(data) != Secp256k1PointSize {
		return nil, invalidEncoding("secp256k1: bad point length %d", len(data))
	}
	pk, err := secp256k1.ParsePubKey(data)
	if err != nil {
		return nil, invalidEncoding("secp256k1: %v", err)
	}
	p := &secpPoint{}
	pk.AsJacobian(&p.p)
	return p, nil
}

// ScalarFromUniformBytes reduces a 64-byte big-endian integer modulo n.
func (g secp256k1Group) ScalarFromUniformBytes(data []byte) (Scalar, error) {
	if len(data) != UniformBytesLength {
		return nil, errors.Errorf("secp256k1: uniform input must be %d bytes, got %d", UniformBytesLength, len(data))
	}
	n := new(saferith.Nat).SetBytes(data)
	n.Mod(n, g.order)

	s := &secpScalar{}
	if overflow := s.s.SetByteSlice(n.FillBytes(make([]byte, 32))); overflow {
		return nil, errors.New("secp256k1: internal error: reduced scalar overflows")
	}
	return s, nil
}

func (p *secpPoint) Add(a, b Point) Point {
	var result secp256k1.JacobianPoint
	secp256k1.AddNonConst(&a.(*secpPoint).p, &b.(*secpPoint).p, &result)
	p.p.Set(&result)
	return p
}

func (p *secpPoint) ScalarMult(s Scalar, q Point) Point {
	var result secp256k1.JacobianPoint
	secp256k1.ScalarMultNonConst(&s.(*secpScalar).s, &q.(*secpPoint).p, &result)
	p.p.Set(&result)
	return p
}

func (p *secpPoint) Set(a Point) Point {
	p.p.Set(&a.(*secpPoint).p)
	return p
}

func (p *secpPoint) affine() secp256k1.JacobianPoint {
	var a secp256k1.JacobianPoint
	a.Set(&p.p)
	if !isInfinity(&a) {
		a.ToAffine()
	}
	return a
}

func isInfinity(p *secp256k1.JacobianPoint) bool {
	return (p.X.IsZero() && p.Y.IsZero()) || p.Z.IsZero()
}

func (p *secpPoint) Equal(b Point) bool {
	other, ok := b.(*secpPoint)
	if !ok {
		return false
	}
	x, y := p.affine(), other.affine()
	if isInfinity(&x) || isInfinity(&y) {
		return isInfinity(&x) && isInfinity(&y)
	}
	return x.X.Equals(&y.X) && x.Y.Equals(&y.Y)
}

func (p *secpPoint) IsIdentity() bool {
	return isInfinity(&p.p)
}

// Bytes returns the SEC1 compressed encoding. The identity has no such
// encoding and is returned as all zero bytes, which DecodePoint rejects.
func (p *secpPoint) Bytes() []byte {
	a := p.affine()
	if isInfinity(&a) {
		return make([]byte, Secp256k1PointSize)
	}
	return secp256k1.NewPublicKey(&a.X, &a.Y).SerializeCompressed()
}

func (s *secpScalar) Bytes() []byte {
	b := s.s.Bytes()
	return b[:]
}

func (s *secpScalar) Equal(b Scalar) bool {
	other, ok := b.(*secpScalar)
	if !ok {
		return false
	}
	return s.s.Equals(&other.s)
}

func (s *secpScalar) IsZero() bool {
	return s.s.IsZero()
}
