package curve

import (
	"encoding/hex"

	"github.com/cronokirby/saferith"
	"github.com/gtank/ristretto255"
)

// ed25519Order is l = 2^252 + 27742317777372353535851937790883648493, shared by
// ristretto255 and the prime-order subgroup of edwards25519.
var ed25519Order = func() *saferith.Modulus {
	raw, _ := hex.DecodeString("1000000000000000000000000000000014def9dea2f79cd65812631a5cf5d3ed")
	return saferith.ModulusFromBytes(raw)
}()

type Ristretto255 struct{}

func (Ristretto255) ID() ID { return IDRistretto255 }

func (Ristretto255) Name() string { return "ristretto255" }

// OID is empty, ristretto255 has no registered object identifier.
func (Ristretto255) OID() string { return "" }

func (Ristretto255) NewPoint() Point {
	return &Ristretto255Point{value: ristretto255.NewElement()}
}

func (Ristretto255) NewBasePoint() Point {
	return &Ristretto255Point{value: ristretto255.NewElement().Base()}
}

func (Ristretto255) NewScalar() Scalar {
	return &Ristretto255Scalar{value: ristretto255.NewScalar()}
}

func (Ristretto255) Order() *saferith.Modulus { return ed25519Order }

func (Ristretto255) ScalarBits() int { return 253 }

func (Ristretto255) ScalarBytes() int { return 32 }

func (Ristretto255) PointBytes() int { return 32 }

// HashToPoint uses the Elligator map on 64 uniform bytes. Only the identity can fail.
func (Ristretto255) HashToPoint(expand Expander) (Point, error) {
	for ctr := 0; ctr < MaxHashToPointTries; ctr++ {
		p := &Ristretto255Point{value: ristretto255.NewElement().FromUniformBytes(expand(uint8(ctr), 64))}
		if !p.IsIdentity() {
			return p, nil
		}
	}
	return nil, ErrPointNotFound
}

type Ristretto255Scalar struct {
	value *ristretto255.Scalar
}

func ristretto255CastScalar(generic Scalar) *Ristretto255Scalar {
	out, ok := generic.(*Ristretto255Scalar)
	if !ok {
		panic(ErrCurveMismatch)
	}
	return out
}

func (*Ristretto255Scalar) Curve() Curve {
	return Ristretto255{}
}

func (s *Ristretto255Scalar) MarshalBinary() ([]byte, error) {
	return s.value.Encode(nil), nil
}

func (s *Ristretto255Scalar) UnmarshalBinary(data []byte) error {
	if len(data) != 32 {
		return ErrInvalidScalar
	}
	if err := s.value.Decode(data); err != nil {
		return ErrInvalidScalar
	}
	return nil
}

func (s *Ristretto255Scalar) Add(that Scalar) Scalar {
	s.value.Add(s.value, ristretto255CastScalar(that).value)
	return s
}

func (s *Ristretto255Scalar) Sub(that Scalar) Scalar {
	s.value.Subtract(s.value, ristretto255CastScalar(that).value)
	return s
}

func (s *Ristretto255Scalar) Mul(that Scalar) Scalar {
	s.value.Multiply(s.value, ristretto255CastScalar(that).value)
	return s
}

func (s *Ristretto255Scalar) Negate() Scalar {
	s.value.Negate(s.value)
	return s
}

func (s *Ristretto255Scalar) Set(that Scalar) Scalar {
	s.value.Add(ristretto255CastScalar(that).value, ristretto255.NewScalar())
	return s
}

func (s *Ristretto255Scalar) SetNat(x *saferith.Nat) Scalar {
	if err := s.value.Decode(littleEndianReduced(x, ed25519Order)); err != nil {
		panic(err)
	}
	return s
}

func (s *Ristretto255Scalar) Equal(that Scalar) bool {
	other, ok := that.(*Ristretto255Scalar)
	return ok && s.value.Equal(other.value) == 1
}

func (s *Ristretto255Scalar) IsZero() bool {
	return s.value.Equal(ristretto255.NewScalar()) == 1
}

func (s *Ristretto255Scalar) Act(that Point) Point {
	other := ristretto255CastPoint(that)
	return &Ristretto255Point{value: ristretto255.NewElement().ScalarMult(s.value, other.value)}
}

func (s *Ristretto255Scalar) ActOnBase() Point {
	return &Ristretto255Point{value: ristretto255.NewElement().ScalarBaseMult(s.value)}
}

type Ristretto255Point struct {
	value *ristretto255.Element
}

func ristretto255CastPoint(generic Point) *Ristretto255Point {
	out, ok := generic.(*Ristretto255Point)
	if !ok {
		panic(ErrCurveMismatch)
	}
	return out
}

func (*Ristretto255Point) Curve() Curve {
	return Ristretto255{}
}

// MarshalBinary returns the canonical encoding; the identity encodes as all zeros.
func (p *Ristretto255Point) MarshalBinary() ([]byte, error) {
	return p.value.Encode(nil), nil
}

func (p *Ristretto255Point) UnmarshalBinary(data []byte) error {
	if len(data) != 32 {
		return ErrInvalidPoint
	}
	if isZeroBytes(data) {
		return ErrIdentityPoint
	}
	value := ristretto255.NewElement()
	if err := value.Decode(data); err != nil {
		return ErrInvalidPoint
	}
	p.value = value
	return nil
}

func (p *Ristretto255Point) Add(that Point) Point {
	p.value.Add(p.value, ristretto255CastPoint(that).value)
	return p
}

func (p *Ristretto255Point) Set(that Point) Point {
	p.value.Add(ristretto255CastPoint(that).value, ristretto255.NewElement())
	return p
}

func (p *Ristretto255Point) Equal(that Point) bool {
	other, ok := that.(*Ristretto255Point)
	return ok && p.value.Equal(other.value) == 1
}

func (p *Ristretto255Point) IsIdentity() bool {
	return p.value.Equal(ristretto255.NewElement()) == 1
}

// littleEndianReduced returns x mod m as 32 little-endian bytes.
func littleEndianReduced(x *saferith.Nat, m *saferith.Modulus) []byte {
	out := new(saferith.Nat).Mod(x, m).FillBytes(make([]byte, 32))
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}
