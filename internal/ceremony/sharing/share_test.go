package sharing

import (
	"testing"

	"github.com/chainbridge-validators/threshold-core/internal/ceremony/commitment"
	"github.com/chainbridge-validators/threshold-core/internal/ceremony/party"
	"github.com/chainbridge-validators/threshold-core/internal/ceremony/scheme"
	"github.com/stretchr/testify/require"
)

func TestVerifyShareAcceptsHonestShare(t *testing.T) {
	for name, s := range schemesUnderTest() {
		s := s
		t.Run(name, func(t *testing.T) {
			p, err := NewRandom(s, 2)
			require.NoError(t, err)

			c, err := commitment.New(s, p.Coeffs)
			require.NoError(t, err)

			recipient := party.PartyIdx(7)
			share := p.Evaluate(s, s.ScalarFromUint64(uint64(recipient)))
			require.True(t, VerifyShare(s, share, c, recipient))
		})
	}
}

func TestVerifyShareRejectsForgedShare(t *testing.T) {
	for name, s := range schemesUnderTest() {
		s := s
		t.Run(name, func(t *testing.T) {
			p, err := NewRandom(s, 2)
			require.NoError(t, err)

			c, err := commitment.New(s, p.Coeffs)
			require.NoError(t, err)

			forged, err := s.RandomScalar()
			require.NoError(t, err)

			require.False(t, VerifyShare(s, forged, c, party.PartyIdx(7)))
		})
	}
}

func TestCombineSharesSumsAllSenders(t *testing.T) {
	s := scheme.NewSecp256k1()

	one := s.ScalarFromUint64(1)
	two := s.ScalarFromUint64(2)
	three := s.ScalarFromUint64(3)

	shares := map[party.PartyIdx]scheme.Scalar{
		1: one,
		2: two,
		3: three,
	}

	combined := CombineShares(s, shares)
	require.True(t, combined.Equal(s.ScalarFromUint64(6)))
}
