package sharing

import (
	"github.com/chainbridge-validators/threshold-core/internal/ceremony/commitment"
	"github.com/chainbridge-validators/threshold-core/internal/ceremony/party"
	"github.com/chainbridge-validators/threshold-core/internal/ceremony/scheme"
)

// VerifyShare checks a received share s_{i->j} = f_i(j) against sender i's
// published DKGCommitment, per spec.md's "Recipient verifies
// s_{i->j}*G ?= Σ_k j^k * C_{i,k}": a received share is legitimate iff its
// base-point multiple equals the commitment vector evaluated at the
// recipient's index.
func VerifyShare(s scheme.Scheme, share scheme.Scalar, senderCommitment *commitment.DKGCommitment, recipient party.PartyIdx) bool {
	lhs := s.ScalarBaseMult(share)
	rhs := senderCommitment.Evaluate(s, s.ScalarFromUint64(uint64(recipient)))
	return lhs.Equal(rhs)
}

// CombineShares sums the shares received from every sender into a party's
// final key share x_i = Σ_k s_{k->i} (spec.md's KeyShare definition).
func CombineShares(s scheme.Scheme, shares map[party.PartyIdx]scheme.Scalar) scheme.Scalar {
	acc := s.ScalarFromUint64(0)
	for _, sh := range shares {
		acc = acc.Add(sh)
	}
	return acc
}
