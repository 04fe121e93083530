package scheme

import (
	"crypto/rand"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// Secp256k1Scheme implements Scheme over the secp256k1 group used by EVM
// chains. Grounded on smallyunet-go-cggmp-tss's internal/crypto/curves
// Secp256k1 wrapper, rebuilt against the constant-time ModNScalar /
// JacobianPoint API (github.com/decred/dcrd/dcrec/secp256k1/v4) rather than
// the legacy crypto/elliptic shape, matching how lnwallet/script_utils.go
// exercises the same package.
type Secp256k1Scheme struct{}

// NewSecp256k1 constructs the EVM crypto scheme.
func NewSecp256k1() *Secp256k1Scheme {
	return &Secp256k1Scheme{}
}

func (s *Secp256k1Scheme) Name() string { return "secp256k1" }

func (s *Secp256k1Scheme) RandomScalar() (Scalar, error) {
	for i := 0; i < 256; i++ {
		var buf [32]byte
		if _, err := rand.Read(buf[:]); err != nil {
			return nil, err
		}
		var sc secp256k1.ModNScalar
		sc.SetByteSlice(buf[:])
		if !sc.IsZero() {
			return &secp256k1Scalar{s: sc}, nil
		}
	}
	return nil, fmt.Errorf("secp256k1: failed to sample a nonzero scalar")
}

func (s *Secp256k1Scheme) ScalarFromUint64(v uint64) Scalar {
	var sc secp256k1.ModNScalar
	sc.SetInt(uint32(v))
	return &secp256k1Scalar{s: sc}
}

func (s *Secp256k1Scheme) ScalarFromBytes(b []byte) (Scalar, error) {
	if len(b) != 32 {
		return nil, fmt.Errorf("secp256k1: scalar must be 32 bytes, got %d", len(b))
	}
	var sc secp256k1.ModNScalar
	overflowed := sc.SetByteSlice(b)
	if overflowed {
		return nil, fmt.Errorf("secp256k1: scalar not canonically reduced")
	}
	return &secp256k1Scalar{s: sc}, nil
}

func (s *Secp256k1Scheme) PointFromBytes(b []byte) (Point, error) {
	pub, err := secp256k1.ParsePubKey(b)
	if err != nil {
		return nil, fmt.Errorf("secp256k1: %w", err)
	}
	var j secp256k1.JacobianPoint
	pub.AsJacobian(&j)
	return &secp256k1Point{p: j}, nil
}

func (s *Secp256k1Scheme) ScalarBaseMult(sc Scalar) Point {
	ss := sc.(*secp256k1Scalar)
	var result secp256k1.JacobianPoint
	secp256k1.ScalarBaseMultNonConst(&ss.s, &result)
	result.ToAffine()
	return &secp256k1Point{p: result}
}

func (s *Secp256k1Scheme) ScalarMult(sc Scalar, p Point) Point {
	ss := sc.(*secp256k1Scalar)
	pp := p.(*secp256k1Point)
	var result secp256k1.JacobianPoint
	secp256k1.ScalarMultNonConst(&ss.s, &pp.p, &result)
	result.ToAffine()
	return &secp256k1Point{p: result}
}

func (s *Secp256k1Scheme) Identity() Point {
	return &secp256k1Point{}
}

func (s *Secp256k1Scheme) RequiresSecondaryTweak() bool { return false }

func (s *Secp256k1Scheme) CheckSecondaryTweak(Point) error { return nil }

type secp256k1Scalar struct {
	s secp256k1.ModNScalar
}

func (a *secp256k1Scalar) Add(b Scalar) Scalar {
	ob := b.(*secp256k1Scalar)
	var res secp256k1.ModNScalar
	res.Add2(&a.s, &ob.s)
	return &secp256k1Scalar{s: res}
}

func (a *secp256k1Scalar) Sub(b Scalar) Scalar {
	return a.Add(b.Negate())
}

func (a *secp256k1Scalar) Mul(b Scalar) Scalar {
	ob := b.(*secp256k1Scalar)
	var res secp256k1.ModNScalar
	res.Mul2(&a.s, &ob.s)
	return &secp256k1Scalar{s: res}
}

func (a *secp256k1Scalar) Negate() Scalar {
	var res secp256k1.ModNScalar
	res.Set(&a.s)
	res.Negate()
	return &secp256k1Scalar{s: res}
}

func (a *secp256k1Scalar) Invert() Scalar {
	var res secp256k1.ModNScalar
	res.Set(&a.s)
	res.InverseNonConst()
	return &secp256k1Scalar{s: res}
}

func (a *secp256k1Scalar) IsZero() bool { return a.s.IsZero() }

func (a *secp256k1Scalar) Equal(b Scalar) bool {
	ob := b.(*secp256k1Scalar)
	return a.s.Equals(&ob.s)
}

func (a *secp256k1Scalar) Bytes() []byte {
	b := a.s.Bytes()
	return b[:]
}

type secp256k1Point struct {
	p secp256k1.JacobianPoint
}

func (a *secp256k1Point) Add(b Point) Point {
	ob := b.(*secp256k1Point)
	var result secp256k1.JacobianPoint
	secp256k1.AddNonConst(&a.p, &ob.p, &result)
	result.ToAffine()
	return &secp256k1Point{p: result}
}

func (a *secp256k1Point) Equal(b Point) bool {
	ob := b.(*secp256k1Point)
	return a.p.X.Equals(&ob.p.X) && a.p.Y.Equals(&ob.p.Y) && a.p.Z.Equals(&ob.p.Z)
}

func (a *secp256k1Point) Bytes() []byte {
	x, y := a.p.X, a.p.Y
	pub := secp256k1.NewPublicKey(&x, &y)
	return pub.SerializeCompressed()
}
