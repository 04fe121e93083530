// Package commitment implements the two DKG commitment primitives a
// ceremony's early stages depend on: the hash pre-commitment broadcast in
// stage 1 and opened in stage 3, and the vector-of-points commitment to a
// sharing polynomial's coefficients plus a Schnorr proof of knowledge of its
// free coefficient. Grounded on
// smallyunet-go-cggmp-tss/internal/crypto/commitment (the hash commitment
// shape) and .../crypto/zk/schnorr (the proof shape), rebuilt against the
// generic scheme.Scheme/Scalar/Point interfaces so the same code runs for
// every supported curve.
package commitment

import (
	"crypto/sha256"
	"fmt"

	"github.com/chainbridge-validators/threshold-core/internal/ceremony/scheme"
)

// DKGCommitment is the vector [C_0 ... C_t] = [c_0*G ... c_t*G] a party
// publishes for its sharing polynomial, plus a zero-knowledge proof that it
// knows c_0 (the free coefficient, i.e. its secret contribution).
type DKGCommitment struct {
	Coeffs []scheme.Point
	Proof  *SchnorrProof
}

// New builds the commitment vector for a polynomial's coefficients
// (coeffs[0] is c_0, the secret contribution) and proves knowledge of c_0.
func New(s scheme.Scheme, coeffs []scheme.Scalar) (*DKGCommitment, error) {
	if len(coeffs) == 0 {
		return nil, fmt.Errorf("commitment: polynomial must have at least one coefficient")
	}

	points := make([]scheme.Point, len(coeffs))
	for i, c := range coeffs {
		points[i] = s.ScalarBaseMult(c)
	}

	proof, err := Prove(s, coeffs[0], points[0])
	if err != nil {
		return nil, fmt.Errorf("commitment: %w", err)
	}

	return &DKGCommitment{Coeffs: points, Proof: proof}, nil
}

// Verify checks the embedded Schnorr proof against the published C_0. It
// does not check the secondary-coefficient (c_1) tweak constraint; callers
// that need that check call scheme.Scheme.CheckSecondaryTweak separately
// once the aggregate of every party's C_0 is known.
func (c *DKGCommitment) Verify(s scheme.Scheme) bool {
	if len(c.Coeffs) == 0 || c.Proof == nil {
		return false
	}
	return c.Proof.Verify(s, c.Coeffs[0])
}

// Evaluate computes the commitment's prediction for a party's share,
// Σ_k C_k * x^k, so a received share s_{i->j} = f_i(j) can be checked
// against i's published commitments without learning f_i.
func (c *DKGCommitment) Evaluate(s scheme.Scheme, x scheme.Scalar) scheme.Point {
	acc := s.Identity()
	xPow := s.ScalarFromUint64(1)
	for _, ck := range c.Coeffs {
		acc = acc.Add(s.ScalarMult(xPow, ck))
		xPow = xPow.Mul(x)
	}
	return acc
}

// Encode serializes the commitment vector and proof to bytes, preserving
// every coefficient commitment and the proof across a round trip (spec
// requirement: encode/decode must be lossless). Format is a stream of
// length-prefixed point/scalar encodings: point count, then each point,
// then R, then S.
func (c *DKGCommitment) Encode() []byte {
	var out []byte
	out = append(out, byte(len(c.Coeffs)))
	for _, p := range c.Coeffs {
		out = appendLenPrefixed(out, p.Bytes())
	}
	out = appendLenPrefixed(out, c.Proof.R.Bytes())
	out = appendLenPrefixed(out, c.Proof.S.Bytes())
	return out
}

// Decode parses bytes produced by Encode back into a DKGCommitment.
func Decode(s scheme.Scheme, b []byte) (*DKGCommitment, error) {
	if len(b) < 1 {
		return nil, fmt.Errorf("commitment: empty payload")
	}
	n := int(b[0])
	rest := b[1:]

	points := make([]scheme.Point, n)
	for i := 0; i < n; i++ {
		chunk, tail, err := readLenPrefixed(rest)
		if err != nil {
			return nil, fmt.Errorf("commitment: coefficient %d: %w", i, err)
		}
		p, err := s.PointFromBytes(chunk)
		if err != nil {
			return nil, fmt.Errorf("commitment: coefficient %d: %w", i, err)
		}
		points[i] = p
		rest = tail
	}

	rChunk, rest, err := readLenPrefixed(rest)
	if err != nil {
		return nil, fmt.Errorf("commitment: proof R: %w", err)
	}
	rPoint, err := s.PointFromBytes(rChunk)
	if err != nil {
		return nil, fmt.Errorf("commitment: proof R: %w", err)
	}

	sChunk, _, err := readLenPrefixed(rest)
	if err != nil {
		return nil, fmt.Errorf("commitment: proof S: %w", err)
	}
	sScalar, err := s.ScalarFromBytes(sChunk)
	if err != nil {
		return nil, fmt.Errorf("commitment: proof S: %w", err)
	}

	return &DKGCommitment{
		Coeffs: points,
		Proof:  &SchnorrProof{R: rPoint, S: sScalar},
	}, nil
}

func appendLenPrefixed(out []byte, chunk []byte) []byte {
	out = append(out, byte(len(chunk)))
	return append(out, chunk...)
}

func readLenPrefixed(b []byte) (chunk []byte, rest []byte, err error) {
	if len(b) < 1 {
		return nil, nil, fmt.Errorf("truncated length prefix")
	}
	n := int(b[0])
	if len(b) < 1+n {
		return nil, nil, fmt.Errorf("truncated payload: want %d bytes, have %d", n, len(b)-1)
	}
	return b[1 : 1+n], b[1+n:], nil
}

// HashDigest is the 32-byte pre-commitment broadcast in stage 1, binding a
// party to its DKGCommitment before seeing anyone else's.
type HashDigest [32]byte

// Hash computes the stage-1 digest for a DKGCommitment.
func Hash(c *DKGCommitment) HashDigest {
	return sha256.Sum256(c.Encode())
}

// VerifyHash checks that an opened commitment matches its stage-1 digest.
func VerifyHash(digest HashDigest, c *DKGCommitment) bool {
	return Hash(c) == digest
}
