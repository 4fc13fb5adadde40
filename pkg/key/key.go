// Package key manages the key pairs ring members sign with.
package key

import (
	"crypto/rand"
	"crypto/sha256"
	"io"
	"math/big"

	"github.com/mr-shifu/ringsig-lib/core/math/curve"
	"github.com/mr-shifu/ringsig-lib/core/math/sample"
	"github.com/mr-shifu/ringsig-lib/core/status"
)

var (
	ErrZeroScalar      = status.New(status.ParsePrivateKeyFailure, "key: private scalar is zero")
	ErrIdentityKey     = status.New(status.NilPointCoordinates, "key: public point is the identity")
	ErrInvalidEncoding = status.New(status.ParsePublicKeyFailed, "key: invalid public key encoding")
)

// PrivateKey holds a secret scalar d in [1, n-1]. It is never serialized implicitly;
// Bytes and PEM are the only ways out.
type PrivateKey struct {
	group curve.Curve
	d     curve.Scalar
	pub   *PublicKey
}

// PublicKey holds Q = d·G.
type PublicKey struct {
	group curve.Curve
	q     curve.Point
}

// GeneratePrivateKey draws a fresh key pair on the curve id from crypto/rand.
func GeneratePrivateKey(id curve.ID) (*PrivateKey, error) {
	return GeneratePrivateKeyFrom(rand.Reader, id)
}

// GeneratePrivateKeyFrom draws a fresh key pair using the given randomness.
func GeneratePrivateKeyFrom(rand io.Reader, id curve.ID) (*PrivateKey, error) {
	group, err := curve.FromID(id)
	if err != nil {
		return nil, err
	}
	d, err := sample.Scalar(rand, group)
	if err != nil {
		return nil, status.Wrap(err, status.CreateKeyFailed, "key: failed to sample private scalar")
	}
	return NewPrivateKey(d)
}

// NewPrivateKey wraps an existing scalar.
func NewPrivateKey(d curve.Scalar) (*PrivateKey, error) {
	if d == nil || d.IsZero() {
		return nil, ErrZeroScalar
	}
	group := d.Curve()
	priv := &PrivateKey{group: group, d: group.NewScalar().Set(d)}
	priv.pub = DerivePublicKey(priv)
	return priv, nil
}

// NewPublicKey wraps an existing point.
func NewPublicKey(q curve.Point) (*PublicKey, error) {
	if q == nil || q.IsIdentity() {
		return nil, ErrIdentityKey
	}
	group := q.Curve()
	return &PublicKey{group: group, q: group.NewPoint().Set(q)}, nil
}

// DerivePublicKey computes Q = d·G.
func DerivePublicKey(priv *PrivateKey) *PublicKey {
	return &PublicKey{group: priv.group, q: priv.d.ActOnBase()}
}

// Public returns the public key derived when priv was created. Keys are immutable,
// so priv may sign from several goroutines at once.
func (priv *PrivateKey) Public() *PublicKey {
	return priv.pub
}

func (priv *PrivateKey) Group() curve.Curve {
	return priv.group
}

// Scalar returns a copy of the secret scalar.
func (priv *PrivateKey) Scalar() curve.Scalar {
	return priv.group.NewScalar().Set(priv.d)
}

func (priv *PrivateKey) Equal(other *PrivateKey) bool {
	return other != nil && priv.group.ID() == other.group.ID() && priv.d.Equal(other.d)
}

func (pub *PublicKey) Group() curve.Curve {
	return pub.group
}

// Point returns a copy of Q.
func (pub *PublicKey) Point() curve.Point {
	return pub.group.NewPoint().Set(pub.q)
}

func (pub *PublicKey) Equal(other *PublicKey) bool {
	return other != nil && pub.group.ID() == other.group.ID() && pub.q.Equal(other.q)
}

// PointBytes returns the compressed point without the curve tag, as laid out in
// folded rings.
func (pub *PublicKey) PointBytes() []byte {
	data, err := pub.q.MarshalBinary()
	if err != nil {
		panic(err)
	}
	return data
}

// MarshalBinary returns the canonical encoding [curve id][compressed point].
func (pub *PublicKey) MarshalBinary() ([]byte, error) {
	return append([]byte{byte(pub.group.ID())}, pub.PointBytes()...), nil
}

// UnmarshalPublicKey decodes the canonical encoding produced by MarshalBinary.
func UnmarshalPublicKey(data []byte) (*PublicKey, error) {
	if len(data) < 1 {
		return nil, ErrInvalidEncoding
	}
	group, err := curve.FromID(curve.ID(data[0]))
	if err != nil {
		return nil, err
	}
	return PublicKeyFromPoint(group, data[1:])
}

// PublicKeyFromPoint decodes a compressed point of group.
func PublicKeyFromPoint(group curve.Curve, data []byte) (*PublicKey, error) {
	q := group.NewPoint()
	if err := q.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return &PublicKey{group: group, q: q}, nil
}

// SKI returns the SHA-256 subject key identifier of the public key.
func (pub *PublicKey) SKI() []byte {
	raw, _ := pub.MarshalBinary()
	sum := sha256.Sum256(raw)
	return sum[:]
}

// ExtractCoordinates returns the affine coordinates of pub.
func ExtractCoordinates(pub *PublicKey) (x, y *big.Int, err error) {
	if pub == nil || pub.q == nil {
		return nil, nil, ErrIdentityKey
	}
	return curve.Coordinates(pub.q)
}
