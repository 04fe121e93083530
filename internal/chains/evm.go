package chains

import "github.com/chainbridge-validators/threshold-core/internal/ceremony/scheme"

// EVMCrypto implements ChainCrypto for EVM chains: a plain secp256k1
// aggregate key, verified with the same Schnorr identity the ceremony
// uses internally (spec.md §6.3; the secp256k1 scheme is the one
// internal/ceremony/scheme wires to github.com/decred/dcrd/dcrec/secp256k1/v4).
// EVM keys are pure keygen - rotation never needs a handover ceremony,
// unlike Bitcoin's x-only-tweaked aggregate.
type EVMCrypto struct {
	scheme scheme.Scheme
}

// NewEVMCrypto constructs the Ethereum/EVM ChainCrypto.
func NewEVMCrypto() *EVMCrypto {
	return &EVMCrypto{scheme: scheme.NewSecp256k1()}
}

// NewEVMAggKey wraps a ceremony-produced aggregate point as this chain's
// AggKey.
func NewEVMAggKey(p scheme.Point) AggKey {
	return schnorrAggKey{s: scheme.NewSecp256k1(), p: p}
}

// NewEVMSignature wraps a (R, z) Schnorr pair as this chain's
// ThresholdSignature.
func NewEVMSignature(r scheme.Point, z scheme.Scalar) ThresholdSignature {
	return schnorrSignature{s: scheme.NewSecp256k1(), r: r, z: z}
}

func (c *EVMCrypto) VerifySignature(key AggKey, payload Payload, sig ThresholdSignature) bool {
	k, ok := key.(schnorrAggKey)
	if !ok {
		return false
	}
	s, ok := sig.(schnorrSignature)
	if !ok {
		return false
	}
	return verifySchnorr(c.scheme, k.p, payload, s)
}

func (c *EVMCrypto) KeyHandoverIsRequired() bool { return false }

func (c *EVMCrypto) MaybeBroadcastBarriersOnRotation(BroadcastID) []BroadcastID {
	return nil
}
