// Package sharing implements Shamir secret sharing over a scheme.Scheme's
// scalar field: random polynomial generation, Horner evaluation, and the
// Lagrange-coefficient math resharing needs to re-weight an existing share
// into a fresh polynomial's free coefficient. Grounded on
// smallyunet-go-cggmp-tss/internal/crypto/polynomial for the polynomial
// shape and .../protocol/reshare/round_3.go for the Lagrange coefficient
// formula, both rebuilt against scheme.Scalar instead of *big.Int mod N.
package sharing

import (
	"fmt"

	"github.com/chainbridge-validators/threshold-core/internal/ceremony/party"
	"github.com/chainbridge-validators/threshold-core/internal/ceremony/scheme"
)

// Polynomial is f(x) = c_0 + c_1*x + ... + c_t*x^t over a scheme's scalar
// field. Coeffs[0] is the party's secret contribution to the ceremony.
type Polynomial struct {
	Coeffs []scheme.Scalar
}

// NewRandom builds a degree-t polynomial with a uniformly random free
// coefficient, used by a fresh (non-resharing) keygen participant.
func NewRandom(s scheme.Scheme, degree int) (*Polynomial, error) {
	c0, err := s.RandomScalar()
	if err != nil {
		return nil, fmt.Errorf("sharing: %w", err)
	}
	return NewWithFreeCoefficient(s, degree, c0)
}

// NewWithFreeCoefficient builds a degree-t polynomial whose free coefficient
// is fixed to secret, with the remaining coefficients drawn uniformly at
// random. Used by a resharing party, whose free coefficient must equal its
// Lagrange-weighted existing share (spec.md §4.1, handover mode).
func NewWithFreeCoefficient(s scheme.Scheme, degree int, secret scheme.Scalar) (*Polynomial, error) {
	if degree < 0 {
		return nil, fmt.Errorf("sharing: degree must be non-negative, got %d", degree)
	}
	coeffs := make([]scheme.Scalar, degree+1)
	coeffs[0] = secret
	for i := 1; i <= degree; i++ {
		c, err := s.RandomScalar()
		if err != nil {
			return nil, fmt.Errorf("sharing: %w", err)
		}
		coeffs[i] = c
	}
	return &Polynomial{Coeffs: coeffs}, nil
}

// Evaluate computes f(x) via Horner's method.
func (p *Polynomial) Evaluate(s scheme.Scheme, x scheme.Scalar) scheme.Scalar {
	degree := len(p.Coeffs) - 1
	result := p.Coeffs[degree]
	for i := degree - 1; i >= 0; i-- {
		result = result.Mul(x).Add(p.Coeffs[i])
	}
	return result
}

// EvaluateAt evaluates f at every other party's index, returning the
// point-to-point shares s_{i->j} = f_i(j) for stage 5 (spec.md "Secret
// Share. Scalar s_{i->j} = f_i(j) sent from i to j").
func (p *Polynomial) EvaluateAt(s scheme.Scheme, idxs []party.PartyIdx) map[party.PartyIdx]scheme.Scalar {
	out := make(map[party.PartyIdx]scheme.Scalar, len(idxs))
	for _, idx := range idxs {
		out[idx] = p.Evaluate(s, s.ScalarFromUint64(uint64(idx)))
	}
	return out
}

// LagrangeCoefficientAtZero computes L_j(0) = Π_{k != j} (0 - x_k) / (x_j - x_k)
// for party j against the full set of participating indices all, the
// standard Lagrange basis evaluated at x=0. In handover mode it re-weights a
// sharing party's existing share into the free coefficient of its new
// polynomial, and the PubkeyShares0 stage uses it to interpolate each
// contributor's published f_k(j)*G points back to f_k(0)*G.
func LagrangeCoefficientAtZero(s scheme.Scheme, j party.PartyIdx, all []party.PartyIdx) scheme.Scalar {
	xj := s.ScalarFromUint64(uint64(j))
	result := s.ScalarFromUint64(1)
	zero := s.ScalarFromUint64(0)

	for _, k := range all {
		if k == j {
			continue
		}
		xk := s.ScalarFromUint64(uint64(k))
		num := zero.Sub(xk)
		den := xj.Sub(xk)
		result = result.Mul(num).Mul(den.Invert())
	}
	return result
}
