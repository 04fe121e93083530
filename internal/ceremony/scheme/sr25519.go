package scheme

import (
	"crypto/rand"
	"fmt"

	"github.com/gtank/ristretto255"
)

// Sr25519Scheme implements Scheme over the ristretto255 group that
// Polkadot's sr25519 keys are built on. Grounded on
// Jason-chen-taiwan-arcSignv2's use of github.com/ChainSafe/go-schnorrkel
// for Polkadot addressing; schnorrkel itself is layered on
// github.com/gtank/ristretto255, which is what the ceremony's group
// arithmetic is built against directly - the ceremony only needs the group
// law (commit/share/interpolate), not schnorrkel's VRF/transcript
// machinery, which belongs to the external ThresholdSigner.
type Sr25519Scheme struct{}

// NewSr25519 constructs the Polkadot crypto scheme.
func NewSr25519() *Sr25519Scheme {
	return &Sr25519Scheme{}
}

func (s *Sr25519Scheme) Name() string { return "sr25519" }

func (s *Sr25519Scheme) RandomScalar() (Scalar, error) {
	var buf [32]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return nil, err
	}
	// Clear the top nibble: the ristretto255 scalar field order is just
	// above 2^252, so any value below 2^252 is always canonical and
	// Decode can never reject it.
	buf[31] &= 0x0f
	sc := ristretto255.NewScalar()
	if err := sc.Decode(buf[:]); err != nil {
		return nil, fmt.Errorf("sr25519: %w", err)
	}
	if sc.Equal(ristretto255.NewScalar()) == 1 {
		return s.RandomScalar()
	}
	return &sr25519Scalar{s: sc}, nil
}

func (s *Sr25519Scheme) ScalarFromUint64(v uint64) Scalar {
	var buf [32]byte
	for i := 0; i < 8; i++ {
		buf[i] = byte(v >> (8 * i))
	}
	sc := ristretto255.NewScalar()
	if err := sc.Decode(buf[:]); err != nil {
		panic(fmt.Sprintf("sr25519: unreachable canonical decode failure: %v", err))
	}
	return &sr25519Scalar{s: sc}
}

func (s *Sr25519Scheme) ScalarFromBytes(b []byte) (Scalar, error) {
	if len(b) != 32 {
		return nil, fmt.Errorf("sr25519: scalar must be 32 bytes, got %d", len(b))
	}
	sc := ristretto255.NewScalar()
	if err := sc.Decode(b); err != nil {
		return nil, fmt.Errorf("sr25519: %w", err)
	}
	return &sr25519Scalar{s: sc}, nil
}

func (s *Sr25519Scheme) PointFromBytes(b []byte) (Point, error) {
	el := ristretto255.NewElement()
	if err := el.Decode(b); err != nil {
		return nil, fmt.Errorf("sr25519: %w", err)
	}
	return &sr25519Point{p: el}, nil
}

func (s *Sr25519Scheme) ScalarBaseMult(sc Scalar) Point {
	ss := sc.(*sr25519Scalar)
	result := ristretto255.NewElement()
	result.ScalarBaseMult(ss.s)
	return &sr25519Point{p: result}
}

func (s *Sr25519Scheme) ScalarMult(sc Scalar, p Point) Point {
	ss := sc.(*sr25519Scalar)
	pp := p.(*sr25519Point)
	result := ristretto255.NewElement()
	result.ScalarMult(ss.s, pp.p)
	return &sr25519Point{p: result}
}

func (s *Sr25519Scheme) Identity() Point {
	return &sr25519Point{p: ristretto255.NewElement()}
}

func (s *Sr25519Scheme) RequiresSecondaryTweak() bool { return false }

func (s *Sr25519Scheme) CheckSecondaryTweak(Point) error { return nil }

type sr25519Scalar struct {
	s *ristretto255.Scalar
}

func (a *sr25519Scalar) Add(b Scalar) Scalar {
	ob := b.(*sr25519Scalar)
	res := ristretto255.NewScalar()
	res.Add(a.s, ob.s)
	return &sr25519Scalar{s: res}
}

func (a *sr25519Scalar) Sub(b Scalar) Scalar {
	ob := b.(*sr25519Scalar)
	res := ristretto255.NewScalar()
	res.Subtract(a.s, ob.s)
	return &sr25519Scalar{s: res}
}

func (a *sr25519Scalar) Mul(b Scalar) Scalar {
	ob := b.(*sr25519Scalar)
	res := ristretto255.NewScalar()
	res.Multiply(a.s, ob.s)
	return &sr25519Scalar{s: res}
}

func (a *sr25519Scalar) Negate() Scalar {
	res := ristretto255.NewScalar()
	res.Negate(a.s)
	return &sr25519Scalar{s: res}
}

func (a *sr25519Scalar) Invert() Scalar {
	res := ristretto255.NewScalar()
	res.Invert(a.s)
	return &sr25519Scalar{s: res}
}

func (a *sr25519Scalar) IsZero() bool {
	return a.s.Equal(ristretto255.NewScalar()) == 1
}

func (a *sr25519Scalar) Equal(b Scalar) bool {
	ob := b.(*sr25519Scalar)
	return a.s.Equal(ob.s) == 1
}

func (a *sr25519Scalar) Bytes() []byte {
	return a.s.Encode(nil)
}

type sr25519Point struct {
	p *ristretto255.Element
}

func (a *sr25519Point) Add(b Point) Point {
	ob := b.(*sr25519Point)
	result := ristretto255.NewElement()
	result.Add(a.p, ob.p)
	return &sr25519Point{p: result}
}

func (a *sr25519Point) Equal(b Point) bool {
	ob := b.(*sr25519Point)
	return a.p.Equal(ob.p) == 1
}

func (a *sr25519Point) Bytes() []byte {
	return a.p.Encode(nil)
}
