package chains

import schnorrkel "github.com/ChainSafe/go-schnorrkel"

// polkadotSigningContext is the domain-separation label Substrate chains
// use for extrinsic signatures, matching every sr25519-signing Substrate
// client.
var polkadotSigningContext = []byte("substrate")

// PolkadotCrypto implements ChainCrypto for Polkadot's sr25519 aggregate
// key (spec.md §6.3). Verification is delegated to
// github.com/ChainSafe/go-schnorrkel, the chain's actual consensus
// signature scheme, rather than internal/ceremony/scheme's ristretto255
// group law, which only needs to run Shamir sharing and Feldman
// commitments over the same curve (see the grounding note in
// internal/ceremony/scheme/sr25519.go).
type PolkadotCrypto struct{}

// NewPolkadotCrypto constructs the Polkadot ChainCrypto.
func NewPolkadotCrypto() *PolkadotCrypto { return &PolkadotCrypto{} }

// polkadotAggKey is a raw 32-byte sr25519 public key.
type polkadotAggKey struct {
	raw [32]byte
}

// NewPolkadotAggKey wraps a raw 32-byte sr25519 public key as this
// chain's AggKey.
func NewPolkadotAggKey(raw [32]byte) AggKey { return polkadotAggKey{raw: raw} }

func (k polkadotAggKey) Bytes() []byte { return k.raw[:] }

func (k polkadotAggKey) Equal(o AggKey) bool {
	ok, ok2 := o.(polkadotAggKey)
	return ok2 && k.raw == ok.raw
}

// polkadotSignature is a raw 64-byte sr25519 signature.
type polkadotSignature struct {
	raw [64]byte
}

// NewPolkadotSignature wraps a raw 64-byte sr25519 signature.
func NewPolkadotSignature(raw [64]byte) ThresholdSignature { return polkadotSignature{raw: raw} }

func (s polkadotSignature) Bytes() []byte { return s.raw[:] }

func (c *PolkadotCrypto) VerifySignature(key AggKey, payload Payload, sig ThresholdSignature) bool {
	k, ok := key.(polkadotAggKey)
	if !ok {
		return false
	}
	s, ok := sig.(polkadotSignature)
	if !ok {
		return false
	}

	pub := schnorrkel.NewPublicKey(k.raw)
	var raw schnorrkel.Signature
	if err := raw.Decode(s.raw); err != nil {
		return false
	}
	transcript := schnorrkel.NewSigningContext(polkadotSigningContext, payload)
	ok, err := pub.Verify(&raw, transcript)
	if err != nil {
		return false
	}
	return ok
}

func (c *PolkadotCrypto) KeyHandoverIsRequired() bool { return false }

func (c *PolkadotCrypto) MaybeBroadcastBarriersOnRotation(BroadcastID) []BroadcastID {
	return nil
}
