// Package blame adjudicates stage 6-9's complaint/response cycle: a party
// that received a bad share names its accuser in a ComplaintSet, the
// accused publishes a BlameResponse covering every accuser, and an
// adjudicator either exonerates the accused (every revealed share checks
// out) or blames them with InvalidBlameResponse (a missing or still-invalid
// share). Grounded on
// contractcourt/htlc_timeout_resolver.go's resolved-bool-plus-terminal-
// outcome resolver shape, adapted from "drive one HTLC to Resolved/still
// pending" to "drive one accused party's case to Exonerated/Blamed".
package blame

import (
	"fmt"

	"github.com/chainbridge-validators/threshold-core/internal/ceremony/commitment"
	"github.com/chainbridge-validators/threshold-core/internal/ceremony/party"
	"github.com/chainbridge-validators/threshold-core/internal/ceremony/scheme"
	"github.com/chainbridge-validators/threshold-core/internal/ceremony/sharing"
)

// ComplaintSet is one party's stage-6 broadcast: the senders whose stage-5
// share either never arrived or failed local verification.
type ComplaintSet struct {
	From    party.PartyIdx
	Accused []party.PartyIdx
}

// BlameResponse is an accused party's stage-8 broadcast: the share it
// should have sent to each of its accusers.
type BlameResponse struct {
	From   party.PartyIdx
	Shares map[party.PartyIdx]scheme.Scalar
}

// Verdict is the adjudicated outcome for one accused party.
type Verdict int

const (
	// Exonerated: every accuser's revealed share checked out.
	Exonerated Verdict = iota
	// Blamed: the blame response was incomplete or contained an invalid
	// share; spec.md's InvalidBlameResponse.
	Blamed
)

func (v Verdict) String() string {
	if v == Exonerated {
		return "Exonerated"
	}
	return "Blamed"
}

// Case is everything the adjudicator needs to resolve one accused party.
type Case struct {
	Accused    party.PartyIdx
	Accusers   []party.PartyIdx
	Commitment *commitment.DKGCommitment
	Response   *BlameResponse // nil if the accused never published one
}

// Adjudicate resolves a single accused party's case: their published
// BlameResponse must contain a valid revealed share for every accuser, with
// no exceptions - an empty or partial response is always a failure (spec.md
// §4.3's completeness requirement), and every completed revealed share is
// re-checked against the accused's own stage-3 commitments exactly the way
// sharing.VerifyShare checks an honestly-delivered stage-5 share.
func Adjudicate(s scheme.Scheme, c Case) (Verdict, error) {
	if c.Response == nil {
		return Blamed, fmt.Errorf("blame: party %d published no blame response", c.Accused)
	}

	for _, accuser := range c.Accusers {
		revealed, ok := c.Response.Shares[accuser]
		if !ok {
			return Blamed, fmt.Errorf("blame: party %d's response is missing accuser %d", c.Accused, accuser)
		}
		if !sharing.VerifyShare(s, revealed, c.Commitment, accuser) {
			return Blamed, fmt.Errorf("blame: party %d's revealed share for accuser %d fails verification", c.Accused, accuser)
		}
	}

	return Exonerated, nil
}

// BuildResponse constructs the BlameResponse an accused party broadcasts in
// stage 8: the share it owes every current accuser, drawn from the
// polynomial it committed to in stage 3.
func BuildResponse(s scheme.Scheme, self party.PartyIdx, poly *sharing.Polynomial, accusers []party.PartyIdx) *BlameResponse {
	return &BlameResponse{
		From:   self,
		Shares: poly.EvaluateAt(s, accusers),
	}
}

// AccusersOf collects every party that named accused in their stage-6
// complaint set, the input an adjudicator needs to build a Case.
func AccusersOf(accused party.PartyIdx, complaints []ComplaintSet) []party.PartyIdx {
	var accusers []party.PartyIdx
	for _, c := range complaints {
		for _, a := range c.Accused {
			if a == accused {
				accusers = append(accusers, c.From)
				break
			}
		}
	}
	return accusers
}
