package chains

import (
	"crypto/sha256"

	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/chainbridge-validators/threshold-core/internal/ceremony/scheme"
)

// BitcoinCrypto implements ChainCrypto for Bitcoin's BIP-340 x-only
// aggregate key (spec.md §6.3). Verification goes through the teacher's
// own btcec/v2/schnorr dependency rather than the generic Schnorr identity
// in schnorr.go, because BIP-340's challenge hash and signature encoding
// are a fixed chain-consensus format, not the ceremony's own domain
// separation.
type BitcoinCrypto struct {
	scheme *scheme.BitcoinXOnlyScheme
}

// NewBitcoinCrypto constructs the Bitcoin ChainCrypto.
func NewBitcoinCrypto() *BitcoinCrypto {
	return &BitcoinCrypto{scheme: scheme.NewBitcoinXOnly()}
}

// bitcoinAggKey holds the full ceremony point, and Bytes derives the
// chain-facing x-only (32-byte) encoding from it, since
// CheckSecondaryTweak needs the full point but BIP-340 verification needs
// just the x-coordinate.
type bitcoinAggKey struct {
	p scheme.Point
}

// NewBitcoinAggKey wraps a ceremony-produced aggregate point, already
// checked even-y by CheckSecondaryTweak, as this chain's AggKey.
func NewBitcoinAggKey(p scheme.Point) AggKey { return bitcoinAggKey{p: p} }

func (k bitcoinAggKey) Bytes() []byte {
	full := k.p.Bytes()
	return full[1:] // drop the compressed-point sign-byte prefix
}

func (k bitcoinAggKey) Equal(o AggKey) bool {
	ok, ok2 := o.(bitcoinAggKey)
	if !ok2 {
		return false
	}
	return k.p.Equal(ok.p)
}

// bitcoinSignature is a 64-byte BIP-340 signature.
type bitcoinSignature struct {
	raw [64]byte
}

// NewBitcoinSignature wraps a raw 64-byte BIP-340 signature.
func NewBitcoinSignature(raw [64]byte) ThresholdSignature { return bitcoinSignature{raw: raw} }

func (s bitcoinSignature) Bytes() []byte { return s.raw[:] }

func (c *BitcoinCrypto) VerifySignature(key AggKey, payload Payload, sig ThresholdSignature) bool {
	k, ok := key.(bitcoinAggKey)
	if !ok {
		return false
	}
	s, ok := sig.(bitcoinSignature)
	if !ok {
		return false
	}

	pubKey, err := schnorr.ParsePubKey(k.Bytes())
	if err != nil {
		return false
	}
	parsed, err := schnorr.ParseSignature(s.raw[:])
	if err != nil {
		return false
	}

	// BIP-340 signs a fixed 32-byte message hash; a payload of any other
	// length is the pre-image of that hash, not the hash itself.
	hash := [32]byte(payload32(payload))
	return parsed.Verify(hash[:], pubKey)
}

func payload32(payload Payload) [32]byte {
	if len(payload) == 32 {
		var out [32]byte
		copy(out[:], payload)
		return out
	}
	return sha256.Sum256(payload)
}

func (c *BitcoinCrypto) KeyHandoverIsRequired() bool { return true }

func (c *BitcoinCrypto) MaybeBroadcastBarriersOnRotation(rotation BroadcastID) []BroadcastID {
	// A rotation on an x-only aggregate key must not let any broadcast
	// signed under the outgoing key dispatch after the new key is
	// installed: the whole pending set is barriered behind the rotation
	// itself (spec.md §4.6).
	return []BroadcastID{rotation}
}
