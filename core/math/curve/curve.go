// Package curve provides the prime-order group abstraction used by the ring
// signature engine. Scalars and points mutate their receiver and return it, so
// expressions like s.Add(a).Mul(b) can be chained.
package curve

import (
	"encoding"
	"math/big"

	"github.com/cronokirby/saferith"
	"github.com/mr-shifu/ringsig-lib/core/status"
)

// ID identifies a supported curve. The value is used as the type tag of encoded keys
// and as the curve byte of folded rings and signatures.
type ID uint8

const (
	Unknown ID = iota
	IDSecp256k1
	IDP224
	IDP256
	IDP384
	IDP521
	IDRistretto255
	IDEdwards25519
)

// MaxHashToPointTries bounds the try-and-increment search of HashToPoint.
const MaxHashToPointTries = 256

var (
	ErrInvalidPoint    = status.New(status.InvalidPointCoordinates, "curve: invalid point encoding")
	ErrIdentityPoint   = status.New(status.NilPointCoordinates, "curve: point is the identity")
	ErrInvalidScalar   = status.New(status.UnmarshalFailed, "curve: invalid scalar encoding")
	ErrUnknownCurve    = status.New(status.UnexpectedCurveType, "curve: unknown curve")
	ErrCurveMismatch   = status.New(status.UnexpectedCurveType, "curve: operands belong to different curves")
	ErrPointNotFound   = status.New(status.PointWasNotFound, "curve: no point found for digest")
	ErrNoAffineSupport = status.New(status.UnexpectedCurveType, "curve: group has no affine coordinates")
)

// Expander yields candidate bytes for the given counter. HashToPoint calls it with
// increasing counters until a candidate maps onto the curve.
type Expander func(counter uint8, size int) []byte

type Curve interface {
	ID() ID
	Name() string
	// OID returns the dotted ITU object identifier of the curve or "" when none exists.
	OID() string
	// NewPoint returns the identity element.
	NewPoint() Point
	NewBasePoint() Point
	// NewScalar returns the zero scalar.
	NewScalar() Scalar
	Order() *saferith.Modulus
	ScalarBits() int
	ScalarBytes() int
	// PointBytes is the length of a compressed point encoding.
	PointBytes() int
	// HashToPoint maps the candidates produced by expand to a non-identity point whose
	// discrete logarithm relative to the base point is unknown.
	HashToPoint(expand Expander) (Point, error)
}

type Scalar interface {
	encoding.BinaryMarshaler
	encoding.BinaryUnmarshaler
	Curve() Curve
	Add(Scalar) Scalar
	Sub(Scalar) Scalar
	Mul(Scalar) Scalar
	Negate() Scalar
	Set(Scalar) Scalar
	// SetNat sets the scalar to x mod n.
	SetNat(x *saferith.Nat) Scalar
	Equal(Scalar) bool
	IsZero() bool
	Act(Point) Point
	ActOnBase() Point
}

type Point interface {
	encoding.BinaryMarshaler
	encoding.BinaryUnmarshaler
	Curve() Curve
	Add(Point) Point
	Set(Point) Point
	Equal(Point) bool
	IsIdentity() bool
}

// AffinePoint is implemented by points of curves that expose (x, y) coordinates.
type AffinePoint interface {
	Point
	Coordinates() (x, y *big.Int, err error)
}

// Coordinates returns the affine coordinates of p.
func Coordinates(p Point) (x, y *big.Int, err error) {
	ap, ok := p.(AffinePoint)
	if !ok {
		return nil, nil, ErrNoAffineSupport
	}
	if p.IsIdentity() {
		return nil, nil, ErrIdentityPoint
	}
	return ap.Coordinates()
}

// SameCurve reports whether all elements belong to the same curve as the first one.
func SameCurve(group Curve, others ...Curve) bool {
	for _, o := range others {
		if o == nil || o.ID() != group.ID() {
			return false
		}
	}
	return true
}

func mustMatch(a, b Curve) {
	if a.ID() != b.ID() {
		panic(ErrCurveMismatch)
	}
}
