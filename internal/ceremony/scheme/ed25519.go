package scheme

import (
	"crypto/rand"
	"fmt"

	"filippo.io/edwards25519"
)

// Ed25519Scheme implements Scheme over the ed25519 group used for Solana.
// Grounded on smallyunet-go-cggmp-tss's internal/crypto/curves ed25519
// wrapper, rebuilt directly against filippo.io/edwards25519's Scalar/Point
// API instead of raw big.Int arithmetic.
type Ed25519Scheme struct{}

// NewEd25519 constructs the Solana crypto scheme.
func NewEd25519() *Ed25519Scheme {
	return &Ed25519Scheme{}
}

func (s *Ed25519Scheme) Name() string { return "ed25519" }

func (s *Ed25519Scheme) RandomScalar() (Scalar, error) {
	var buf [64]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return nil, err
	}
	sc, err := edwards25519.NewScalar().SetUniformBytes(buf[:])
	if err != nil {
		return nil, fmt.Errorf("ed25519: %w", err)
	}
	return &ed25519Scalar{s: sc}, nil
}

func (s *Ed25519Scheme) ScalarFromUint64(v uint64) Scalar {
	var buf [32]byte
	for i := 0; i < 8; i++ {
		buf[i] = byte(v >> (8 * i))
	}
	sc, err := edwards25519.NewScalar().SetCanonicalBytes(buf[:])
	if err != nil {
		// v < 2^64 is always canonical mod l (l > 2^252); unreachable.
		panic(fmt.Sprintf("ed25519: unreachable canonical bytes failure: %v", err))
	}
	return &ed25519Scalar{s: sc}
}

func (s *Ed25519Scheme) ScalarFromBytes(b []byte) (Scalar, error) {
	sc, err := edwards25519.NewScalar().SetCanonicalBytes(b)
	if err != nil {
		return nil, fmt.Errorf("ed25519: %w", err)
	}
	return &ed25519Scalar{s: sc}, nil
}

func (s *Ed25519Scheme) PointFromBytes(b []byte) (Point, error) {
	p, err := edwards25519.NewIdentityPoint().SetBytes(b)
	if err != nil {
		return nil, fmt.Errorf("ed25519: %w", err)
	}
	return &ed25519Point{p: p}, nil
}

func (s *Ed25519Scheme) ScalarBaseMult(sc Scalar) Point {
	ss := sc.(*ed25519Scalar)
	result := edwards25519.NewIdentityPoint()
	result.ScalarBaseMult(ss.s)
	return &ed25519Point{p: result}
}

func (s *Ed25519Scheme) ScalarMult(sc Scalar, p Point) Point {
	ss := sc.(*ed25519Scalar)
	pp := p.(*ed25519Point)
	result := edwards25519.NewIdentityPoint()
	result.ScalarMult(ss.s, pp.p)
	return &ed25519Point{p: result}
}

func (s *Ed25519Scheme) Identity() Point {
	return &ed25519Point{p: edwards25519.NewIdentityPoint()}
}

func (s *Ed25519Scheme) RequiresSecondaryTweak() bool { return false }

func (s *Ed25519Scheme) CheckSecondaryTweak(Point) error { return nil }

type ed25519Scalar struct {
	s *edwards25519.Scalar
}

func (a *ed25519Scalar) Add(b Scalar) Scalar {
	ob := b.(*ed25519Scalar)
	res := edwards25519.NewScalar()
	res.Add(a.s, ob.s)
	return &ed25519Scalar{s: res}
}

func (a *ed25519Scalar) Sub(b Scalar) Scalar {
	ob := b.(*ed25519Scalar)
	res := edwards25519.NewScalar()
	res.Subtract(a.s, ob.s)
	return &ed25519Scalar{s: res}
}

func (a *ed25519Scalar) Mul(b Scalar) Scalar {
	ob := b.(*ed25519Scalar)
	res := edwards25519.NewScalar()
	res.Multiply(a.s, ob.s)
	return &ed25519Scalar{s: res}
}

func (a *ed25519Scalar) Negate() Scalar {
	res := edwards25519.NewScalar()
	res.Negate(a.s)
	return &ed25519Scalar{s: res}
}

func (a *ed25519Scalar) Invert() Scalar {
	res := edwards25519.NewScalar()
	res.Invert(a.s)
	return &ed25519Scalar{s: res}
}

func (a *ed25519Scalar) IsZero() bool {
	return a.s.Equal(edwards25519.NewScalar()) == 1
}

func (a *ed25519Scalar) Equal(b Scalar) bool {
	ob := b.(*ed25519Scalar)
	return a.s.Equal(ob.s) == 1
}

func (a *ed25519Scalar) Bytes() []byte {
	return a.s.Bytes()
}

type ed25519Point struct {
	p *edwards25519.Point
}

func (a *ed25519Point) Add(b Point) Point {
	ob := b.(*ed25519Point)
	result := edwards25519.NewIdentityPoint()
	result.Add(a.p, ob.p)
	return &ed25519Point{p: result}
}

func (a *ed25519Point) Equal(b Point) bool {
	ob := b.(*ed25519Point)
	return a.p.Equal(ob.p) == 1
}

func (a *ed25519Point) Bytes() []byte {
	return a.p.Bytes()
}
