// Package scheme abstracts the elliptic-curve group a ceremony runs over.
// spec.md ties CryptoScheme to the target chain: EVM and Bitcoin share
// secp256k1 (Bitcoin additionally requires an x-only pubkey), Solana uses
// ed25519, Polkadot uses sr25519. Every curve-touching package in
// internal/ceremony (commitment, sharing, blame) is written against this
// interface rather than against any one curve library, the same way
// smallyunet-go-cggmp-tss's internal/crypto/curves.Curve abstracts
// elliptic.CurveParams operations behind one interface used by the rest of
// that protocol's rounds.
package scheme

import (
	"crypto/sha256"
	"fmt"
)

// Scalar is a field element modulo the group order.
type Scalar interface {
	Add(Scalar) Scalar
	Sub(Scalar) Scalar
	Mul(Scalar) Scalar
	Negate() Scalar
	// Invert returns the multiplicative inverse. Undefined for the zero
	// scalar; callers only invoke it on differences of distinct PartyIdx
	// evaluation points, which are never zero (spec.md's Lagrange
	// coefficient L_j(0) = Π (0 - x_k) / (x_j - x_k), j != k).
	Invert() Scalar
	IsZero() bool
	Equal(Scalar) bool
	Bytes() []byte
}

// Point is a group element.
type Point interface {
	Add(Point) Point
	Equal(Point) bool
	Bytes() []byte
}

// Scheme is the set of group operations a ceremony needs: generating and
// combining scalars, multiplying by the base point, and deserializing wire
// bytes back into scalars/points.
type Scheme interface {
	// Name identifies the scheme for logging and for the ceremony's
	// parameter record.
	Name() string

	// RandomScalar returns a uniformly random non-zero scalar.
	RandomScalar() (Scalar, error)

	// ScalarFromUint64 embeds a small integer (a PartyIdx) as a scalar,
	// used as the evaluation point x=j in Shamir sharing and as the
	// Lagrange interpolation variable.
	ScalarFromUint64(v uint64) Scalar

	// ScalarFromBytes parses a wire-format scalar. Returns an error
	// (attributable by the caller as DeserializationError) if the bytes
	// don't represent a valid, canonically-reduced scalar.
	ScalarFromBytes(b []byte) (Scalar, error)

	// PointFromBytes parses a wire-format compressed point, including an
	// on-curve check.
	PointFromBytes(b []byte) (Point, error)

	// ScalarBaseMult computes s*G.
	ScalarBaseMult(s Scalar) Point

	// ScalarMult computes s*P.
	ScalarMult(s Scalar, p Point) Point

	// Identity returns the group identity element, used as the starting
	// accumulator for commitment/point sums.
	Identity() Point

	// RequiresSecondaryTweak reports whether this scheme's aggregate
	// pubkey shape constrains the secondary (c1) coefficient - true for
	// Bitcoin's x-only requirement, false elsewhere.
	RequiresSecondaryTweak() bool

	// CheckSecondaryTweak validates the secondary-coefficient constraint
	// against the aggregate commitment vector's primary point (sum of
	// every party's C_0). A no-op (always nil) for schemes that don't
	// require a tweak.
	CheckSecondaryTweak(aggregatePrimary Point) error
}

// ByName resolves a scheme by the identifier stored in a ceremony's
// parameters (see internal/chains for where this name comes from).
func ByName(name string) (Scheme, error) {
	switch name {
	case "secp256k1":
		return NewSecp256k1(), nil
	case "secp256k1-xonly":
		return NewBitcoinXOnly(), nil
	case "ed25519":
		return NewEd25519(), nil
	case "sr25519":
		return NewSr25519(), nil
	default:
		return nil, fmt.Errorf("scheme: unknown crypto scheme %q", name)
	}
}

// SumPoints folds a slice of points with Add, starting from the scheme's
// identity element. Used throughout commitment verification and keygen's
// aggregate-pubkey computation (spec.md §3: "aggregate_pubkey = Σ_k C_{k,0}").
func SumPoints(s Scheme, pts []Point) Point {
	acc := s.Identity()
	for _, p := range pts {
		acc = acc.Add(p)
	}
	return acc
}

// HashToScalar derives a Fiat-Shamir challenge scalar from the concatenation
// of data, the same role challenge() plays in
// smallyunet-go-cggmp-tss/internal/crypto/zk/schnorr, generalized across
// curves whose order isn't close enough to 2^256 for a plain mod-reduce: a
// counter byte is appended and the hash retried until the digest happens to
// be a canonically-reduced scalar for s. Every scheme here has order within
// a small constant factor of 2^256, so this terminates in O(1) iterations.
func HashToScalar(s Scheme, data ...[]byte) Scalar {
	for counter := byte(0); ; counter++ {
		h := sha256.New()
		for _, d := range data {
			h.Write(d)
		}
		h.Write([]byte{counter})
		digest := h.Sum(nil)
		if sc, err := s.ScalarFromBytes(digest); err == nil {
			return sc
		}
	}
}
