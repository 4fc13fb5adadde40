package curve

import (
	"math/big"

	"filippo.io/edwards25519"
	"filippo.io/edwards25519/field"
	"github.com/cronokirby/saferith"
)

// Edwards25519 is the prime-order subgroup of the twisted Edwards curve behind
// Ed25519. Decoding rejects points with a torsion component.
type Edwards25519 struct{}

func (Edwards25519) ID() ID { return IDEdwards25519 }

func (Edwards25519) Name() string { return "edwards25519" }

func (Edwards25519) OID() string { return "1.3.101.112" }

func (Edwards25519) NewPoint() Point {
	return &Edwards25519Point{value: edwards25519.NewIdentityPoint()}
}

func (Edwards25519) NewBasePoint() Point {
	return &Edwards25519Point{value: edwards25519.NewGeneratorPoint()}
}

func (Edwards25519) NewScalar() Scalar {
	return &Edwards25519Scalar{value: edwards25519.NewScalar()}
}

func (Edwards25519) Order() *saferith.Modulus { return ed25519Order }

func (Edwards25519) ScalarBits() int { return 253 }

func (Edwards25519) ScalarBytes() int { return 32 }

func (Edwards25519) PointBytes() int { return 32 }

// HashToPoint decodes candidates as compressed points and clears the cofactor of the
// first one that lies on the curve.
func (Edwards25519) HashToPoint(expand Expander) (Point, error) {
	for ctr := 0; ctr < MaxHashToPointTries; ctr++ {
		candidate, err := edwards25519.NewIdentityPoint().SetBytes(expand(uint8(ctr), 32))
		if err != nil {
			continue
		}
		p := &Edwards25519Point{value: edwards25519.NewIdentityPoint().MultByCofactor(candidate)}
		if !p.IsIdentity() {
			return p, nil
		}
	}
	return nil, ErrPointNotFound
}

type Edwards25519Scalar struct {
	value *edwards25519.Scalar
}

func edwards25519CastScalar(generic Scalar) *Edwards25519Scalar {
	out, ok := generic.(*Edwards25519Scalar)
	if !ok {
		panic(ErrCurveMismatch)
	}
	return out
}

func (*Edwards25519Scalar) Curve() Curve {
	return Edwards25519{}
}

func (s *Edwards25519Scalar) MarshalBinary() ([]byte, error) {
	return s.value.Bytes(), nil
}

func (s *Edwards25519Scalar) UnmarshalBinary(data []byte) error {
	if len(data) != 32 {
		return ErrInvalidScalar
	}
	if _, err := s.value.SetCanonicalBytes(data); err != nil {
		return ErrInvalidScalar
	}
	return nil
}

func (s *Edwards25519Scalar) Add(that Scalar) Scalar {
	s.value.Add(s.value, edwards25519CastScalar(that).value)
	return s
}

func (s *Edwards25519Scalar) Sub(that Scalar) Scalar {
	s.value.Subtract(s.value, edwards25519CastScalar(that).value)
	return s
}

func (s *Edwards25519Scalar) Mul(that Scalar) Scalar {
	s.value.Multiply(s.value, edwards25519CastScalar(that).value)
	return s
}

func (s *Edwards25519Scalar) Negate() Scalar {
	s.value.Negate(s.value)
	return s
}

func (s *Edwards25519Scalar) Set(that Scalar) Scalar {
	s.value.Set(edwards25519CastScalar(that).value)
	return s
}

func (s *Edwards25519Scalar) SetNat(x *saferith.Nat) Scalar {
	if _, err := s.value.SetCanonicalBytes(littleEndianReduced(x, ed25519Order)); err != nil {
		panic(err)
	}
	return s
}

func (s *Edwards25519Scalar) Equal(that Scalar) bool {
	other, ok := that.(*Edwards25519Scalar)
	return ok && s.value.Equal(other.value) == 1
}

func (s *Edwards25519Scalar) IsZero() bool {
	return s.value.Equal(edwards25519.NewScalar()) == 1
}

func (s *Edwards25519Scalar) Act(that Point) Point {
	other := edwards25519CastPoint(that)
	return &Edwards25519Point{value: edwards25519.NewIdentityPoint().ScalarMult(s.value, other.value)}
}

func (s *Edwards25519Scalar) ActOnBase() Point {
	return &Edwards25519Point{value: edwards25519.NewIdentityPoint().ScalarBaseMult(s.value)}
}

type Edwards25519Point struct {
	value *edwards25519.Point
}

func edwards25519CastPoint(generic Point) *Edwards25519Point {
	out, ok := generic.(*Edwards25519Point)
	if !ok {
		panic(ErrCurveMismatch)
	}
	return out
}

func (*Edwards25519Point) Curve() Curve {
	return Edwards25519{}
}

func (p *Edwards25519Point) MarshalBinary() ([]byte, error) {
	return p.value.Bytes(), nil
}

func (p *Edwards25519Point) UnmarshalBinary(data []byte) error {
	if len(data) != 32 {
		return ErrInvalidPoint
	}
	value, err := edwards25519.NewIdentityPoint().SetBytes(data)
	if err != nil {
		return ErrInvalidPoint
	}
	if value.Equal(edwards25519.NewIdentityPoint()) == 1 {
		return ErrIdentityPoint
	}
	if !inPrimeOrderSubgroup(value) {
		return ErrInvalidPoint
	}
	p.value = value
	return nil
}

func (p *Edwards25519Point) Add(that Point) Point {
	p.value.Add(p.value, edwards25519CastPoint(that).value)
	return p
}

func (p *Edwards25519Point) Set(that Point) Point {
	p.value.Set(edwards25519CastPoint(that).value)
	return p
}

func (p *Edwards25519Point) Equal(that Point) bool {
	other, ok := that.(*Edwards25519Point)
	return ok && p.value.Equal(other.value) == 1
}

func (p *Edwards25519Point) IsIdentity() bool {
	return p.value.Equal(edwards25519.NewIdentityPoint()) == 1
}

func (p *Edwards25519Point) Coordinates() (x, y *big.Int, err error) {
	if p.IsIdentity() {
		return nil, nil, ErrIdentityPoint
	}
	X, Y, Z, _ := p.value.ExtendedCoordinates()
	zInv := new(field.Element).Invert(Z)
	return leBytesToInt(new(field.Element).Multiply(X, zInv).Bytes()),
		leBytesToInt(new(field.Element).Multiply(Y, zInv).Bytes()), nil
}

// inPrimeOrderSubgroup checks l·P = O, computed as (l-1)·P + P.
func inPrimeOrderSubgroup(p *edwards25519.Point) bool {
	one, _ := edwards25519.NewScalar().SetCanonicalBytes(append([]byte{1}, make([]byte, 31)...))
	minusOne := edwards25519.NewScalar().Negate(one)
	q := edwards25519.NewIdentityPoint().ScalarMult(minusOne, p)
	q.Add(q, p)
	return q.Equal(edwards25519.NewIdentityPoint()) == 1
}

func leBytesToInt(le []byte) *big.Int {
	be := make([]byte, len(le))
	for i := range le {
		be[len(le)-1-i] = le[i]
	}
	return new(big.Int).SetBytes(be)
}
