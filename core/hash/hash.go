// Package hash derives group scalars from arbitrary byte strings.
package hash

import (
	"crypto/sha512"
	"fmt"
	"io"
	"strings"

	"github.com/zeebo/blake3"
	"golang.org/x/crypto/sha3"

	"github.com/mr-shifu/pedersen-commit/core/group"
)

// DigestLengthBytes is the output length of every Function; wide enough that
// reducing it into a ~256-bit scalar field has negligible bias.
const DigestLengthBytes = group.UniformBytesLength // 64

// Function is a hash function with a DigestLengthBytes output. It implements
// the pflag.Value interface.
type Function uint

const (
	// SHA512 is SHA-512.
	SHA512 Function = iota
	// BLAKE3 is BLAKE3 in extendable-output mode.
	BLAKE3
	// SHAKE256 is SHAKE256 read to DigestLengthBytes.
	SHAKE256
)

// String returns the string representation of a Function.
func (f *Function) String() string {
	switch *f {
	case SHA512:
		return "sha512"
	case BLAKE3:
		return "blake3"
	case SHAKE256:
		return "shake256"
	default:
		panic("hash: unsupported function")
	}
}

// Set sets the Function to the value specified by the provided string.
func (f *Function) Set(s string) error {
	switch strings.ToLower(s) {
	case "sha512":
		*f = SHA512
	case "blake3":
		*f = BLAKE3
	case "shake256":
		*f = SHAKE256
	default:
		return fmt.Errorf("hash: invalid function: '%s'", s)
	}
	return nil
}

// Type returns the list of supported Functions.
func (f *Function) Type() string {
	return "[sha512,blake3,shake256]"
}

// Digest returns the DigestLengthBytes hash of data.
func (f Function) Digest(data []byte) []byte {
	switch f {
	case SHA512:
		sum := sha512.Sum512(data)
		return sum[:]
	case BLAKE3:
		h := blake3.New()
		_, _ = h.Write(data)
		out := make([]byte, DigestLengthBytes)
		if _, err := io.ReadFull(h.Digest(), out); err != nil {
			panic(fmt.Sprintf("hash.Digest: internal hash failure: %v", err))
		}
		return out
	case SHAKE256:
		out := make([]byte, DigestLengthBytes)
		sha3.ShakeSum256(out, data)
		return out
	default:
		panic("hash: unsupported function")
	}
}

// ScalarHasher maps byte strings to scalars.
type ScalarHasher interface {
	// HashToScalar deterministically derives a scalar from data. It is total
	// over all inputs, including the empty string.
	HashToScalar(data []byte) group.Scalar
}

type scalarHasher struct {
	grp group.Group
	fn  Function
}

// NewScalarHasher returns a ScalarHasher reducing fn digests into grp's scalar field.
func NewScalarHasher(grp group.Group, fn Function) ScalarHasher {
	return &scalarHasher{grp: grp, fn: fn}
}

func (h *scalarHasher) HashToScalar(data []byte) group.Scalar {
	s, err := h.grp.ScalarFromUniformBytes(h.fn.Digest(data))
	if err != nil {
		panic(fmt.Sprintf("hash.HashToScalar: internal failure: %v", err))
	}
	return s
}
