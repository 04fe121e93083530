package scheme

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func allSchemes() map[string]Scheme {
	return map[string]Scheme{
		"secp256k1":       NewSecp256k1(),
		"secp256k1-xonly": NewBitcoinXOnly(),
		"ed25519":         NewEd25519(),
		"sr25519":         NewSr25519(),
	}
}

func TestScalarArithmeticRoundTrips(t *testing.T) {
	for name, s := range allSchemes() {
		s := s
		t.Run(name, func(t *testing.T) {
			a, err := s.RandomScalar()
			require.NoError(t, err)
			b, err := s.RandomScalar()
			require.NoError(t, err)

			sum := a.Add(b)
			diff := sum.Sub(b)
			require.True(t, diff.Equal(a), "a+b-b should equal a")

			neg := a.Negate()
			require.True(t, a.Add(neg).IsZero(), "a + (-a) should be zero")

			encoded := a.Bytes()
			decoded, err := s.ScalarFromBytes(encoded)
			require.NoError(t, err)
			require.True(t, a.Equal(decoded))
		})
	}
}

func TestScalarInvert(t *testing.T) {
	for name, s := range allSchemes() {
		s := s
		t.Run(name, func(t *testing.T) {
			a, err := s.RandomScalar()
			require.NoError(t, err)

			inv := a.Invert()
			one := s.ScalarFromUint64(1)
			require.True(t, a.Mul(inv).Equal(one))
		})
	}
}

func TestScalarBaseMultDistributesOverAdd(t *testing.T) {
	for name, s := range allSchemes() {
		s := s
		t.Run(name, func(t *testing.T) {
			a, err := s.RandomScalar()
			require.NoError(t, err)
			b, err := s.RandomScalar()
			require.NoError(t, err)

			lhs := s.ScalarBaseMult(a.Add(b))
			rhs := s.ScalarBaseMult(a).Add(s.ScalarBaseMult(b))
			require.True(t, lhs.Equal(rhs))
		})
	}
}

func TestPointRoundTrip(t *testing.T) {
	for name, s := range allSchemes() {
		s := s
		t.Run(name, func(t *testing.T) {
			a, err := s.RandomScalar()
			require.NoError(t, err)
			p := s.ScalarBaseMult(a)

			encoded := p.Bytes()
			decoded, err := s.PointFromBytes(encoded)
			require.NoError(t, err)
			require.True(t, p.Equal(decoded))
		})
	}
}

func TestScalarFromUint64Deterministic(t *testing.T) {
	for name, s := range allSchemes() {
		s := s
		t.Run(name, func(t *testing.T) {
			a := s.ScalarFromUint64(7)
			b := s.ScalarFromUint64(7)
			require.True(t, a.Equal(b))

			c := s.ScalarFromUint64(8)
			require.False(t, a.Equal(c))
		})
	}
}

func TestSumPointsIdentityForEmpty(t *testing.T) {
	for name, s := range allSchemes() {
		s := s
		t.Run(name, func(t *testing.T) {
			sum := SumPoints(s, nil)
			require.True(t, sum.Equal(s.Identity()))
		})
	}
}

func TestByNameUnknown(t *testing.T) {
	_, err := ByName("curve25519-montgomery")
	require.Error(t, err)
}
