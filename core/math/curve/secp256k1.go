package curve

import (
	"math/big"

	"github.com/cronokirby/saferith"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

var secp256k1Order = saferith.ModulusFromBytes(secp256k1.Params().N.Bytes())

type Secp256k1 struct{}

func (Secp256k1) ID() ID { return IDSecp256k1 }

func (Secp256k1) Name() string { return "secp256k1" }

func (Secp256k1) OID() string { return "1.3.132.0.10" }

func (Secp256k1) NewPoint() Point {
	return new(Secp256k1Point)
}

func (Secp256k1) NewBasePoint() Point {
	var one secp256k1.ModNScalar
	one.SetInt(1)
	out := new(Secp256k1Point)
	secp256k1.ScalarBaseMultNonConst(&one, &out.value)
	out.value.ToAffine()
	return out
}

func (Secp256k1) NewScalar() Scalar {
	return new(Secp256k1Scalar)
}

func (Secp256k1) Order() *saferith.Modulus { return secp256k1Order }

func (Secp256k1) ScalarBits() int { return 256 }

func (Secp256k1) ScalarBytes() int { return 32 }

func (Secp256k1) PointBytes() int { return 33 }

// HashToPoint searches for an x-coordinate on the curve and picks the even root.
func (Secp256k1) HashToPoint(expand Expander) (Point, error) {
	for ctr := 0; ctr < MaxHashToPointTries; ctr++ {
		var x, y secp256k1.FieldVal
		if overflow := x.SetByteSlice(expand(uint8(ctr), 32)); overflow {
			continue
		}
		if !secp256k1.DecompressY(&x, false, &y) {
			continue
		}
		y.Normalize()
		var one secp256k1.FieldVal
		one.SetInt(1)
		return &Secp256k1Point{value: secp256k1.MakeJacobianPoint(&x, &y, &one)}, nil
	}
	return nil, ErrPointNotFound
}

type Secp256k1Scalar struct {
	value secp256k1.ModNScalar
}

func secp256k1CastScalar(generic Scalar) *Secp256k1Scalar {
	out, ok := generic.(*Secp256k1Scalar)
	if !ok {
		panic(ErrCurveMismatch)
	}
	return out
}

func (*Secp256k1Scalar) Curve() Curve {
	return Secp256k1{}
}

func (s *Secp256k1Scalar) MarshalBinary() ([]byte, error) {
	data := s.value.Bytes()
	return data[:], nil
}

func (s *Secp256k1Scalar) UnmarshalBinary(data []byte) error {
	if len(data) != 32 {
		return ErrInvalidScalar
	}
	var value secp256k1.ModNScalar
	if overflow := value.SetByteSlice(data); overflow {
		return ErrInvalidScalar
	}
	s.value.Set(&value)
	return nil
}

func (s *Secp256k1Scalar) Add(that Scalar) Scalar {
	other := secp256k1CastScalar(that)
	s.value.Add(&other.value)
	return s
}

func (s *Secp256k1Scalar) Sub(that Scalar) Scalar {
	other := secp256k1CastScalar(that)
	var negated secp256k1.ModNScalar
	negated.NegateVal(&other.value)
	s.value.Add(&negated)
	return s
}

func (s *Secp256k1Scalar) Mul(that Scalar) Scalar {
	other := secp256k1CastScalar(that)
	s.value.Mul(&other.value)
	return s
}

func (s *Secp256k1Scalar) Negate() Scalar {
	s.value.Negate()
	return s
}

func (s *Secp256k1Scalar) Set(that Scalar) Scalar {
	other := secp256k1CastScalar(that)
	s.value.Set(&other.value)
	return s
}

func (s *Secp256k1Scalar) SetNat(x *saferith.Nat) Scalar {
	reduced := new(saferith.Nat).Mod(x, secp256k1Order)
	s.value.SetByteSlice(reduced.FillBytes(make([]byte, 32)))
	return s
}

func (s *Secp256k1Scalar) Equal(that Scalar) bool {
	other := secp256k1CastScalar(that)
	return s.value.Equals(&other.value)
}

func (s *Secp256k1Scalar) IsZero() bool {
	return s.value.IsZero()
}

func (s *Secp256k1Scalar) Act(that Point) Point {
	other := secp256k1CastPoint(that)
	out := new(Secp256k1Point)
	secp256k1.ScalarMultNonConst(&s.value, &other.value, &out.value)
	out.value.ToAffine()
	return out
}

func (s *Secp256k1Scalar) ActOnBase() Point {
	out := new(Secp256k1Point)
	secp256k1.ScalarBaseMultNonConst(&s.value, &out.value)
	out.value.ToAffine()
	return out
}

// Secp256k1Point is kept in affine form; the identity is (0, 0).
type Secp256k1Point struct {
	value secp256k1.JacobianPoint
}

func secp256k1CastPoint(generic Point) *Secp256k1Point {
	out, ok := generic.(*Secp256k1Point)
	if !ok {
		panic(ErrCurveMismatch)
	}
	return out
}

func (*Secp256k1Point) Curve() Curve {
	return Secp256k1{}
}

func (p *Secp256k1Point) MarshalBinary() ([]byte, error) {
	if p.IsIdentity() {
		return make([]byte, 33), nil
	}
	return secp256k1.NewPublicKey(&p.value.X, &p.value.Y).SerializeCompressed(), nil
}

func (p *Secp256k1Point) UnmarshalBinary(data []byte) error {
	if len(data) != 33 {
		return ErrInvalidPoint
	}
	if isZeroBytes(data) {
		return ErrIdentityPoint
	}
	key, err := secp256k1.ParsePubKey(data)
	if err != nil {
		return ErrInvalidPoint
	}
	key.AsJacobian(&p.value)
	return nil
}

func (p *Secp256k1Point) Add(that Point) Point {
	other := secp256k1CastPoint(that)
	var out secp256k1.JacobianPoint
	secp256k1.AddNonConst(&p.value, &other.value, &out)
	out.ToAffine()
	p.value.Set(&out)
	return p
}

func (p *Secp256k1Point) Set(that Point) Point {
	other := secp256k1CastPoint(that)
	p.value.Set(&other.value)
	return p
}

func (p *Secp256k1Point) Equal(that Point) bool {
	other, ok := that.(*Secp256k1Point)
	if !ok {
		return false
	}
	if p.IsIdentity() || other.IsIdentity() {
		return p.IsIdentity() == other.IsIdentity()
	}
	return p.value.X.Equals(&other.value.X) && p.value.Y.Equals(&other.value.Y)
}

func (p *Secp256k1Point) IsIdentity() bool {
	return (p.value.X.IsZero() && p.value.Y.IsZero()) || p.value.Z.IsZero()
}

func (p *Secp256k1Point) Coordinates() (x, y *big.Int, err error) {
	if p.IsIdentity() {
		return nil, nil, ErrIdentityPoint
	}
	return new(big.Int).SetBytes(p.value.X.Bytes()[:]), new(big.Int).SetBytes(p.value.Y.Bytes()[:]), nil
}

func isZeroBytes(data []byte) bool {
	var acc byte
	for _, b := range data {
		acc |= b
	}
	return acc == 0
}
