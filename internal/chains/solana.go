package chains

import "golang.org/x/crypto/ed25519"

// SolanaCrypto implements ChainCrypto for Solana's ed25519 aggregate key
// (spec.md §6.3). Final verification goes through golang.org/x/crypto/ed25519
// directly, the chain's own consensus-defined signature scheme, rather
// than through internal/ceremony/scheme's ed25519 group law, which exists
// only to run Shamir sharing and Feldman commitments over the same curve.
type SolanaCrypto struct{}

// NewSolanaCrypto constructs the Solana ChainCrypto.
func NewSolanaCrypto() *SolanaCrypto { return &SolanaCrypto{} }

// solanaAggKey is a raw 32-byte ed25519 public key.
type solanaAggKey struct {
	raw [ed25519.PublicKeySize]byte
}

// NewSolanaAggKey wraps a raw 32-byte ed25519 public key as this chain's
// AggKey.
func NewSolanaAggKey(raw [ed25519.PublicKeySize]byte) AggKey { return solanaAggKey{raw: raw} }

func (k solanaAggKey) Bytes() []byte { return k.raw[:] }

func (k solanaAggKey) Equal(o AggKey) bool {
	ok, ok2 := o.(solanaAggKey)
	return ok2 && k.raw == ok.raw
}

// solanaSignature is a raw 64-byte ed25519 signature.
type solanaSignature struct {
	raw [ed25519.SignatureSize]byte
}

// NewSolanaSignature wraps a raw 64-byte ed25519 signature.
func NewSolanaSignature(raw [ed25519.SignatureSize]byte) ThresholdSignature {
	return solanaSignature{raw: raw}
}

func (s solanaSignature) Bytes() []byte { return s.raw[:] }

func (c *SolanaCrypto) VerifySignature(key AggKey, payload Payload, sig ThresholdSignature) bool {
	k, ok := key.(solanaAggKey)
	if !ok {
		return false
	}
	s, ok := sig.(solanaSignature)
	if !ok {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(k.raw[:]), payload, s.raw[:])
}

func (c *SolanaCrypto) KeyHandoverIsRequired() bool { return false }

func (c *SolanaCrypto) MaybeBroadcastBarriersOnRotation(BroadcastID) []BroadcastID {
	return nil
}
