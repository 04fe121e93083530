package commitment

import (
	"fmt"

	"github.com/chainbridge-validators/threshold-core/internal/ceremony/scheme"
)

// SchnorrProof is a non-interactive Schnorr proof of knowledge of the
// discrete log x of X = x*G, using the Fiat-Shamir transform: e = H(X, R),
// s = k + e*x. Grounded on
// smallyunet-go-cggmp-tss/internal/crypto/zk/schnorr.Proof, rebuilt against
// scheme.Scheme so it isn't tied to secp256k1.
type SchnorrProof struct {
	R scheme.Point
	S scheme.Scalar
}

// Prove constructs a proof that the prover knows x such that public = x*G.
func Prove(s scheme.Scheme, x scheme.Scalar, public scheme.Point) (*SchnorrProof, error) {
	k, err := s.RandomScalar()
	if err != nil {
		return nil, fmt.Errorf("schnorr: %w", err)
	}
	r := s.ScalarBaseMult(k)

	e := challenge(s, public, r)
	resp := k.Add(e.Mul(x))

	return &SchnorrProof{R: r, S: resp}, nil
}

// Verify checks that s*G == R + e*public, where e = H(public, R).
func (p *SchnorrProof) Verify(s scheme.Scheme, public scheme.Point) bool {
	if p == nil || p.R == nil || p.S == nil || public == nil {
		return false
	}
	e := challenge(s, public, p.R)

	lhs := s.ScalarBaseMult(p.S)
	rhs := p.R.Add(s.ScalarMult(e, public))
	return lhs.Equal(rhs)
}

func challenge(s scheme.Scheme, public, r scheme.Point) scheme.Scalar {
	return scheme.HashToScalar(s, public.Bytes(), r.Bytes())
}
