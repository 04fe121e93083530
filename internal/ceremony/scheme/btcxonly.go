package scheme

import "fmt"

// BitcoinXOnlyScheme is the secp256k1 scheme with the additional constraint
// that the ceremony's aggregate public key must have an even y-coordinate,
// as required by BIP-340 x-only pubkeys. spec.md §3: "c1 may be tweaked
// (e.g. to achieve x-only pubkey compatibility) - this is called the
// 'secondary coefficient'." The underlying group arithmetic is identical to
// the EVM scheme; only CheckSecondaryTweak differs.
type BitcoinXOnlyScheme struct {
	*Secp256k1Scheme
}

// NewBitcoinXOnly constructs the Bitcoin crypto scheme.
func NewBitcoinXOnly() *BitcoinXOnlyScheme {
	return &BitcoinXOnlyScheme{Secp256k1Scheme: NewSecp256k1()}
}

func (s *BitcoinXOnlyScheme) Name() string { return "secp256k1-xonly" }

func (s *BitcoinXOnlyScheme) RequiresSecondaryTweak() bool { return true }

// CheckSecondaryTweak rejects an aggregate primary-coefficient point with an
// odd y-coordinate. No party adjusts its polynomial to avoid this: the
// runner runs this check once, at stage 4, over the sum of every accepted
// C_0, and an odd result fails the ceremony as InvalidCommitment against
// every contributor (spec.md §4.2).
func (s *BitcoinXOnlyScheme) CheckSecondaryTweak(aggregatePrimary Point) error {
	p, ok := aggregatePrimary.(*secp256k1Point)
	if !ok {
		return fmt.Errorf("scheme: secondary tweak check requires a secp256k1 point")
	}
	if p.p.Y.IsOdd() {
		return fmt.Errorf("scheme: aggregate key has odd y-coordinate, x-only tweak required")
	}
	return nil
}
