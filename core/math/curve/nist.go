package curve

import (
	"math/big"

	"filippo.io/nistec"
	"github.com/cronokirby/saferith"
)

// nistecPoint is the method set shared by the nistec point types.
type nistecPoint[P any] interface {
	Bytes() []byte
	BytesCompressed() []byte
	SetBytes([]byte) (P, error)
	Set(P) P
	SetGenerator() P
	Add(P, P) P
	ScalarMult(P, []byte) (P, error)
	ScalarBaseMult([]byte) (P, error)
}

type nistParams struct {
	order      *saferith.Modulus
	bits       int
	fieldBytes int
	scalarSize int
	// topMask clears the excess bits of hash-to-point candidates for P-521.
	topMask byte
}

func newNISTParams(orderHex string, bits, fieldBytes int, topMask byte) *nistParams {
	order, err := saferith.ModulusFromHex(orderHex)
	if err != nil {
		panic(err)
	}
	return &nistParams{
		order:      order,
		bits:       bits,
		fieldBytes: fieldBytes,
		scalarSize: (bits + 7) / 8,
		topMask:    topMask,
	}
}

var (
	p224Params = newNISTParams("FFFFFFFFFFFFFFFFFFFFFFFFFFFF16A2E0B8F03E13DD29455C5C2A3D", 224, 28, 0xff)
	p256Params = newNISTParams("FFFFFFFF00000000FFFFFFFFFFFFFFFFBCE6FAADA7179E84F3B9CAC2FC632551", 256, 32, 0xff)
	p384Params = newNISTParams("FFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFC7634D81F4372DDF"+
		"581A0DB248B0A77AECEC196ACCC52973", 384, 48, 0xff)
	p521Params = newNISTParams("1FFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFF"+
		"FA51868783BF2F966B7FCC0148F709A5D03BB5C9B8899C47AEBB6FB71E91386409", 521, 66, 0x01)
)

type P224 struct{}

func (P224) ID() ID                   { return IDP224 }
func (P224) Name() string             { return "secp224r1" }
func (P224) OID() string              { return "1.3.132.0.33" }
func (c P224) NewPoint() Point        { return newNISTPoint(c, p224Params, nistec.NewP224Point) }
func (c P224) NewBasePoint() Point    { return c.NewPoint().(*NISTPoint[*nistec.P224Point]).generator() }
func (c P224) NewScalar() Scalar      { return newNISTScalar(c, p224Params) }
func (P224) Order() *saferith.Modulus { return p224Params.order }
func (P224) ScalarBits() int          { return p224Params.bits }
func (P224) ScalarBytes() int         { return p224Params.scalarSize }
func (P224) PointBytes() int          { return p224Params.fieldBytes + 1 }
func (c P224) HashToPoint(expand Expander) (Point, error) {
	return nistHashToPoint(c.NewPoint().(*NISTPoint[*nistec.P224Point]), expand)
}

type P256 struct{}

func (P256) ID() ID                   { return IDP256 }
func (P256) Name() string             { return "prime256v1" }
func (P256) OID() string              { return "1.2.840.10045.3.1.7" }
func (c P256) NewPoint() Point        { return newNISTPoint(c, p256Params, nistec.NewP256Point) }
func (c P256) NewBasePoint() Point    { return c.NewPoint().(*NISTPoint[*nistec.P256Point]).generator() }
func (c P256) NewScalar() Scalar      { return newNISTScalar(c, p256Params) }
func (P256) Order() *saferith.Modulus { return p256Params.order }
func (P256) ScalarBits() int          { return p256Params.bits }
func (P256) ScalarBytes() int         { return p256Params.scalarSize }
func (P256) PointBytes() int          { return p256Params.fieldBytes + 1 }
func (c P256) HashToPoint(expand Expander) (Point, error) {
	return nistHashToPoint(c.NewPoint().(*NISTPoint[*nistec.P256Point]), expand)
}

type P384 struct{}

func (P384) ID() ID                   { return IDP384 }
func (P384) Name() string             { return "secp384r1" }
func (P384) OID() string              { return "1.3.132.0.34" }
func (c P384) NewPoint() Point        { return newNISTPoint(c, p384Params, nistec.NewP384Point) }
func (c P384) NewBasePoint() Point    { return c.NewPoint().(*NISTPoint[*nistec.P384Point]).generator() }
func (c P384) NewScalar() Scalar      { return newNISTScalar(c, p384Params) }
func (P384) Order() *saferith.Modulus { return p384Params.order }
func (P384) ScalarBits() int          { return p384Params.bits }
func (P384) ScalarBytes() int         { return p384Params.scalarSize }
func (P384) PointBytes() int          { return p384Params.fieldBytes + 1 }
func (c P384) HashToPoint(expand Expander) (Point, error) {
	return nistHashToPoint(c.NewPoint().(*NISTPoint[*nistec.P384Point]), expand)
}

type P521 struct{}

func (P521) ID() ID                   { return IDP521 }
func (P521) Name() string             { return "secp521r1" }
func (P521) OID() string              { return "1.3.132.0.35" }
func (c P521) NewPoint() Point        { return newNISTPoint(c, p521Params, nistec.NewP521Point) }
func (c P521) NewBasePoint() Point    { return c.NewPoint().(*NISTPoint[*nistec.P521Point]).generator() }
func (c P521) NewScalar() Scalar      { return newNISTScalar(c, p521Params) }
func (P521) Order() *saferith.Modulus { return p521Params.order }
func (P521) ScalarBits() int          { return p521Params.bits }
func (P521) ScalarBytes() int         { return p521Params.scalarSize }
func (P521) PointBytes() int          { return p521Params.fieldBytes + 1 }
func (c P521) HashToPoint(expand Expander) (Point, error) {
	return nistHashToPoint(c.NewPoint().(*NISTPoint[*nistec.P521Point]), expand)
}

// NISTScalar is an integer modulo the order of one of the NIST prime curves.
type NISTScalar struct {
	group  Curve
	params *nistParams
	value  *saferith.Nat
}

func newNISTScalar(group Curve, params *nistParams) *NISTScalar {
	zero := new(saferith.Nat).SetUint64(0)
	return &NISTScalar{group: group, params: params, value: zero.Mod(zero, params.order)}
}

func (s *NISTScalar) cast(generic Scalar) *NISTScalar {
	out, ok := generic.(*NISTScalar)
	if !ok || out.group.ID() != s.group.ID() {
		panic(ErrCurveMismatch)
	}
	return out
}

func (s *NISTScalar) Curve() Curve {
	return s.group
}

func (s *NISTScalar) MarshalBinary() ([]byte, error) {
	return s.value.FillBytes(make([]byte, s.params.scalarSize)), nil
}

func (s *NISTScalar) UnmarshalBinary(data []byte) error {
	if len(data) != s.params.scalarSize {
		return ErrInvalidScalar
	}
	x := new(saferith.Nat).SetBytes(data)
	if _, _, lt := x.CmpMod(s.params.order); lt != 1 {
		return ErrInvalidScalar
	}
	s.value = x.Mod(x, s.params.order)
	return nil
}

func (s *NISTScalar) Add(that Scalar) Scalar {
	other := s.cast(that)
	s.value.ModAdd(s.value, other.value, s.params.order)
	return s
}

func (s *NISTScalar) Sub(that Scalar) Scalar {
	other := s.cast(that)
	s.value.ModSub(s.value, other.value, s.params.order)
	return s
}

func (s *NISTScalar) Mul(that Scalar) Scalar {
	other := s.cast(that)
	s.value.ModMul(s.value, other.value, s.params.order)
	return s
}

func (s *NISTScalar) Negate() Scalar {
	s.value.ModNeg(s.value, s.params.order)
	return s
}

func (s *NISTScalar) Set(that Scalar) Scalar {
	other := s.cast(that)
	s.value = new(saferith.Nat).Mod(other.value, s.params.order)
	return s
}

func (s *NISTScalar) SetNat(x *saferith.Nat) Scalar {
	s.value = new(saferith.Nat).Mod(x, s.params.order)
	return s
}

func (s *NISTScalar) Equal(that Scalar) bool {
	other, ok := that.(*NISTScalar)
	if !ok || other.group.ID() != s.group.ID() {
		return false
	}
	return s.value.Eq(other.value) == 1
}

func (s *NISTScalar) IsZero() bool {
	return s.value.EqZero() == 1
}

func (s *NISTScalar) bytes() []byte {
	return s.value.FillBytes(make([]byte, s.params.scalarSize))
}

func (s *NISTScalar) Act(that Point) Point {
	mustMatch(s.group, that.Curve())
	return that.(nistMultiplier).mul(s.bytes())
}

func (s *NISTScalar) ActOnBase() Point {
	return s.group.NewPoint().(nistMultiplier).baseMul(s.bytes())
}

type nistMultiplier interface {
	mul(k []byte) Point
	baseMul(k []byte) Point
}

// NISTPoint wraps a nistec point. Encodings are SEC 1 compressed points; the identity
// encodes as all zeros.
type NISTPoint[P nistecPoint[P]] struct {
	group  Curve
	params *nistParams
	fresh  func() P
	value  P
}

func newNISTPoint[P nistecPoint[P]](group Curve, params *nistParams, fresh func() P) *NISTPoint[P] {
	return &NISTPoint[P]{group: group, params: params, fresh: fresh, value: fresh()}
}

func (p *NISTPoint[P]) cast(generic Point) *NISTPoint[P] {
	out, ok := generic.(*NISTPoint[P])
	if !ok {
		panic(ErrCurveMismatch)
	}
	return out
}

func (p *NISTPoint[P]) generator() Point {
	p.value.SetGenerator()
	return p
}

func (p *NISTPoint[P]) mul(k []byte) Point {
	out := newNISTPoint(p.group, p.params, p.fresh)
	if _, err := out.value.ScalarMult(p.value, k); err != nil {
		panic(err)
	}
	return out
}

func (p *NISTPoint[P]) baseMul(k []byte) Point {
	out := newNISTPoint(p.group, p.params, p.fresh)
	if _, err := out.value.ScalarBaseMult(k); err != nil {
		panic(err)
	}
	return out
}

func (p *NISTPoint[P]) Curve() Curve {
	return p.group
}

func (p *NISTPoint[P]) MarshalBinary() ([]byte, error) {
	raw := p.value.BytesCompressed()
	if len(raw) == 1 {
		return make([]byte, p.params.fieldBytes+1), nil
	}
	return raw, nil
}

func (p *NISTPoint[P]) UnmarshalBinary(data []byte) error {
	if len(data) != p.params.fieldBytes+1 {
		return ErrInvalidPoint
	}
	if isZeroBytes(data) {
		return ErrIdentityPoint
	}
	if data[0] != 2 && data[0] != 3 {
		return ErrInvalidPoint
	}
	if _, err := p.value.SetBytes(data); err != nil {
		return ErrInvalidPoint
	}
	return nil
}

func (p *NISTPoint[P]) Add(that Point) Point {
	other := p.cast(that)
	p.value.Add(p.value, other.value)
	return p
}

func (p *NISTPoint[P]) Set(that Point) Point {
	other := p.cast(that)
	p.value.Set(other.value)
	return p
}

func (p *NISTPoint[P]) Equal(that Point) bool {
	other, ok := that.(*NISTPoint[P])
	if !ok {
		return false
	}
	a, b := p.value.Bytes(), other.value.Bytes()
	if len(a) != len(b) {
		return false
	}
	var acc byte
	for i := range a {
		acc |= a[i] ^ b[i]
	}
	return acc == 0
}

func (p *NISTPoint[P]) IsIdentity() bool {
	return len(p.value.Bytes()) == 1
}

func (p *NISTPoint[P]) Coordinates() (x, y *big.Int, err error) {
	raw := p.value.Bytes()
	if len(raw) == 1 {
		return nil, nil, ErrIdentityPoint
	}
	size := p.params.fieldBytes
	return new(big.Int).SetBytes(raw[1 : 1+size]), new(big.Int).SetBytes(raw[1+size:]), nil
}

// nistHashToPoint tries candidate x-coordinates until one lies on the curve and
// takes the even root.
func nistHashToPoint[P nistecPoint[P]](p *NISTPoint[P], expand Expander) (Point, error) {
	encoded := make([]byte, 1+p.params.fieldBytes)
	encoded[0] = 2
	for ctr := 0; ctr < MaxHashToPointTries; ctr++ {
		candidate := expand(uint8(ctr), p.params.fieldBytes)
		candidate[0] &= p.params.topMask
		copy(encoded[1:], candidate)
		if _, err := p.value.SetBytes(encoded); err != nil {
			continue
		}
		return p, nil
	}
	return nil, ErrPointNotFound
}
