package blame

import (
	"testing"

	"github.com/chainbridge-validators/threshold-core/internal/ceremony/commitment"
	"github.com/chainbridge-validators/threshold-core/internal/ceremony/party"
	"github.com/chainbridge-validators/threshold-core/internal/ceremony/scheme"
	"github.com/chainbridge-validators/threshold-core/internal/ceremony/sharing"
	"github.com/stretchr/testify/require"
)

func TestAdjudicateExoneratesValidResponse(t *testing.T) {
	s := scheme.NewSecp256k1()

	poly, err := sharing.NewRandom(s, 2)
	require.NoError(t, err)
	c, err := commitment.New(s, poly.Coeffs)
	require.NoError(t, err)

	accused := party.PartyIdx(3)
	accusers := []party.PartyIdx{1, 2}
	resp := BuildResponse(s, accused, poly, accusers)

	verdict, err := Adjudicate(s, Case{
		Accused:    accused,
		Accusers:   accusers,
		Commitment: c,
		Response:   resp,
	})
	require.NoError(t, err)
	require.Equal(t, Exonerated, verdict)
}

func TestAdjudicateBlamesMissingResponse(t *testing.T) {
	s := scheme.NewSecp256k1()
	poly, err := sharing.NewRandom(s, 1)
	require.NoError(t, err)
	c, err := commitment.New(s, poly.Coeffs)
	require.NoError(t, err)

	verdict, err := Adjudicate(s, Case{
		Accused:    party.PartyIdx(3),
		Accusers:   []party.PartyIdx{1},
		Commitment: c,
		Response:   nil,
	})
	require.Error(t, err)
	require.Equal(t, Blamed, verdict)
}

func TestAdjudicateBlamesIncompleteResponse(t *testing.T) {
	s := scheme.NewSecp256k1()
	poly, err := sharing.NewRandom(s, 1)
	require.NoError(t, err)
	c, err := commitment.New(s, poly.Coeffs)
	require.NoError(t, err)

	accused := party.PartyIdx(3)
	resp := BuildResponse(s, accused, poly, []party.PartyIdx{1}) // missing accuser 2

	verdict, err := Adjudicate(s, Case{
		Accused:    accused,
		Accusers:   []party.PartyIdx{1, 2},
		Commitment: c,
		Response:   resp,
	})
	require.Error(t, err)
	require.Equal(t, Blamed, verdict)
}

func TestAdjudicateBlamesForgedShare(t *testing.T) {
	s := scheme.NewSecp256k1()
	poly, err := sharing.NewRandom(s, 1)
	require.NoError(t, err)
	c, err := commitment.New(s, poly.Coeffs)
	require.NoError(t, err)

	accused := party.PartyIdx(3)
	resp := BuildResponse(s, accused, poly, []party.PartyIdx{1})

	forged, err := s.RandomScalar()
	require.NoError(t, err)
	resp.Shares[1] = forged

	verdict, err := Adjudicate(s, Case{
		Accused:    accused,
		Accusers:   []party.PartyIdx{1},
		Commitment: c,
		Response:   resp,
	})
	require.Error(t, err)
	require.Equal(t, Blamed, verdict)
}

func TestAccusersOfCollectsEveryComplainant(t *testing.T) {
	complaints := []ComplaintSet{
		{From: 1, Accused: []party.PartyIdx{3}},
		{From: 2, Accused: []party.PartyIdx{3, 4}},
		{From: 4, Accused: []party.PartyIdx{5}},
	}

	require.ElementsMatch(t, []party.PartyIdx{1, 2}, AccusersOf(3, complaints))
	require.ElementsMatch(t, []party.PartyIdx{2}, AccusersOf(4, complaints))
	require.Empty(t, AccusersOf(99, complaints))
}

func TestVerdictString(t *testing.T) {
	require.Equal(t, "Exonerated", Exonerated.String())
	require.Equal(t, "Blamed", Blamed.String())
}
