package chains

import "github.com/chainbridge-validators/threshold-core/internal/ceremony/scheme"

// schnorrAggKey wraps a scheme.Point as an AggKey, used by every chain
// whose verification is plain Schnorr over the ceremony's own group
// (EVM's secp256k1 aggregate key; Solana's ed25519 aggregate key is
// instead carried in its own solanaAggKey so it can speak the exact wire
// encoding golang.org/x/crypto/ed25519 expects).
type schnorrAggKey struct {
	s scheme.Scheme
	p scheme.Point
}

func (k schnorrAggKey) Bytes() []byte { return k.p.Bytes() }

func (k schnorrAggKey) Equal(o AggKey) bool {
	ok, ok2 := o.(schnorrAggKey)
	if !ok2 {
		return false
	}
	return k.p.Equal(ok.p)
}

// schnorrSignature is a (R, s) Schnorr signature pair over a scheme.Scheme
// group: s*G = R + H(R || pubkey || payload)*pubkey.
type schnorrSignature struct {
	s scheme.Scheme
	r scheme.Point
	z scheme.Scalar
}

func (sig schnorrSignature) Bytes() []byte {
	return append(append([]byte{}, sig.r.Bytes()...), sig.z.Bytes()...)
}

// verifySchnorr checks a (R, z) signature against pubkey and payload using
// the ceremony's own group law, the verification-side counterpart of the
// Schnorr proof of knowledge internal/ceremony/commitment constructs for
// each contributor's secret (same s*G = R + e*P identity, different
// message domain).
func verifySchnorr(s scheme.Scheme, pubkey scheme.Point, payload []byte, sig schnorrSignature) bool {
	if sig.r == nil || sig.z == nil {
		return false
	}
	challenge := scheme.HashToScalar(s, sig.r.Bytes(), pubkey.Bytes(), payload)
	lhs := s.ScalarBaseMult(sig.z)
	rhs := sig.r.Add(s.ScalarMult(challenge, pubkey))
	return lhs.Equal(rhs)
}
