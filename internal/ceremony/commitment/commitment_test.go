package commitment

import (
	"testing"

	"github.com/chainbridge-validators/threshold-core/internal/ceremony/scheme"
	"github.com/stretchr/testify/require"
)

func randomPolynomial(t *testing.T, s scheme.Scheme, degree int) []scheme.Scalar {
	t.Helper()
	coeffs := make([]scheme.Scalar, degree+1)
	for i := range coeffs {
		c, err := s.RandomScalar()
		require.NoError(t, err)
		coeffs[i] = c
	}
	return coeffs
}

func TestNewAndVerify(t *testing.T) {
	for name, s := range schemesUnderTest() {
		s := s
		t.Run(name, func(t *testing.T) {
			coeffs := randomPolynomial(t, s, 2)
			c, err := New(s, coeffs)
			require.NoError(t, err)
			require.Len(t, c.Coeffs, 3)
			require.True(t, c.Verify(s))
		})
	}
}

func TestVerifyRejectsForgedC0(t *testing.T) {
	for name, s := range schemesUnderTest() {
		s := s
		t.Run(name, func(t *testing.T) {
			coeffs := randomPolynomial(t, s, 1)
			c, err := New(s, coeffs)
			require.NoError(t, err)

			forged, err := s.RandomScalar()
			require.NoError(t, err)
			c.Coeffs[0] = s.ScalarBaseMult(forged)
			require.False(t, c.Verify(s))
		})
	}
}

func TestEvaluateMatchesShamirShare(t *testing.T) {
	for name, s := range schemesUnderTest() {
		s := s
		t.Run(name, func(t *testing.T) {
			coeffs := randomPolynomial(t, s, 2)
			c, err := New(s, coeffs)
			require.NoError(t, err)

			x := s.ScalarFromUint64(3)

			// f(3) = c0 + c1*3 + c2*9
			acc := coeffs[0]
			xPow := s.ScalarFromUint64(1)
			for _, co := range coeffs[1:] {
				xPow = xPow.Mul(x)
				acc = acc.Add(co.Mul(xPow))
			}
			expected := s.ScalarBaseMult(acc)

			require.True(t, c.Evaluate(s, x).Equal(expected))
		})
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	for name, s := range schemesUnderTest() {
		s := s
		t.Run(name, func(t *testing.T) {
			coeffs := randomPolynomial(t, s, 3)
			c, err := New(s, coeffs)
			require.NoError(t, err)

			encoded := c.Encode()
			decoded, err := Decode(s, encoded)
			require.NoError(t, err)

			require.Len(t, decoded.Coeffs, len(c.Coeffs))
			for i := range c.Coeffs {
				require.True(t, c.Coeffs[i].Equal(decoded.Coeffs[i]))
			}
			require.True(t, decoded.Verify(s))
		})
	}
}

func TestHashCommitmentBindsOpening(t *testing.T) {
	for name, s := range schemesUnderTest() {
		s := s
		t.Run(name, func(t *testing.T) {
			coeffs := randomPolynomial(t, s, 2)
			c, err := New(s, coeffs)
			require.NoError(t, err)

			digest := Hash(c)
			require.True(t, VerifyHash(digest, c))

			other, err := New(s, randomPolynomial(t, s, 2))
			require.NoError(t, err)
			require.False(t, VerifyHash(digest, other))
		})
	}
}
