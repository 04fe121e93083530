package sharing

import (
	"testing"

	"github.com/chainbridge-validators/threshold-core/internal/ceremony/party"
	"github.com/chainbridge-validators/threshold-core/internal/ceremony/scheme"
	"github.com/stretchr/testify/require"
)

func schemesUnderTest() map[string]scheme.Scheme {
	return map[string]scheme.Scheme{
		"secp256k1": scheme.NewSecp256k1(),
		"ed25519":   scheme.NewEd25519(),
		"sr25519":   scheme.NewSr25519(),
	}
}

func TestNewWithFreeCoefficientFixesConstantTerm(t *testing.T) {
	for name, s := range schemesUnderTest() {
		s := s
		t.Run(name, func(t *testing.T) {
			secret, err := s.RandomScalar()
			require.NoError(t, err)

			p, err := NewWithFreeCoefficient(s, 2, secret)
			require.NoError(t, err)
			require.True(t, p.Coeffs[0].Equal(secret))

			zero := s.ScalarFromUint64(0)
			require.True(t, p.Evaluate(s, zero).Equal(secret))
		})
	}
}

func TestEvaluateAtProducesOneSharePerIndex(t *testing.T) {
	for name, s := range schemesUnderTest() {
		s := s
		t.Run(name, func(t *testing.T) {
			p, err := NewRandom(s, 1)
			require.NoError(t, err)

			idxs := []party.PartyIdx{1, 2, 3}
			shares := p.EvaluateAt(s, idxs)
			require.Len(t, shares, 3)
			for _, idx := range idxs {
				require.True(t, shares[idx].Equal(p.Evaluate(s, s.ScalarFromUint64(uint64(idx)))))
			}
		})
	}
}

func TestLagrangeReconstructsSecret(t *testing.T) {
	for name, s := range schemesUnderTest() {
		s := s
		t.Run(name, func(t *testing.T) {
			secret, err := s.RandomScalar()
			require.NoError(t, err)

			// degree-1 polynomial (t=1), 3 participants: any 2 shares
			// reconstruct the secret via Lagrange interpolation at 0.
			p, err := NewWithFreeCoefficient(s, 1, secret)
			require.NoError(t, err)

			idxs := []party.PartyIdx{1, 2}
			shares := p.EvaluateAt(s, idxs)

			reconstructed := s.ScalarFromUint64(0)
			for _, j := range idxs {
				lambda := LagrangeCoefficientAtZero(s, j, idxs)
				reconstructed = reconstructed.Add(shares[j].Mul(lambda))
			}
			require.True(t, reconstructed.Equal(secret))
		})
	}
}

func TestLagrangeWithDifferentSubsetsAgree(t *testing.T) {
	for name, s := range schemesUnderTest() {
		s := s
		t.Run(name, func(t *testing.T) {
			secret, err := s.RandomScalar()
			require.NoError(t, err)

			// degree-2 polynomial, any 3 of 4 participants should
			// reconstruct the same secret.
			p, err := NewWithFreeCoefficient(s, 2, secret)
			require.NoError(t, err)

			all := []party.PartyIdx{1, 2, 3, 4}
			shares := p.EvaluateAt(s, all)

			subsets := [][]party.PartyIdx{
				{1, 2, 3},
				{2, 3, 4},
				{1, 3, 4},
			}
			for _, subset := range subsets {
				reconstructed := s.ScalarFromUint64(0)
				for _, j := range subset {
					lambda := LagrangeCoefficientAtZero(s, j, subset)
					reconstructed = reconstructed.Add(shares[j].Mul(lambda))
				}
				require.True(t, reconstructed.Equal(secret))
			}
		})
	}
}
