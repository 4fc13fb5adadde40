// Package lsag implements linkable spontaneous anonymous group signatures over the
// rings built by package ring.
//
// A signature proves that one member of a ring signed a message without revealing
// which one. Every signature made with the same private key carries the same key
// image I = d·H_p(Q), so two signatures by one signer can be linked.
package lsag

import (
	"crypto/rand"
	"crypto/subtle"
	"io"

	"github.com/mr-shifu/ringsig-lib/core/hash"
	"github.com/mr-shifu/ringsig-lib/core/math/curve"
	"github.com/mr-shifu/ringsig-lib/core/math/sample"
	"github.com/mr-shifu/ringsig-lib/core/status"
	"github.com/mr-shifu/ringsig-lib/pkg/key"
	"github.com/mr-shifu/ringsig-lib/pkg/ring"
)

// MinRingSize is the smallest ring a signature can hide in.
const MinRingSize = 2

const (
	challengeLabel = "challenge"
	keyImageLabel  = "key-image"
)

var (
	ErrRingTooSmall     = status.New(status.InsufficientNumberOfPublicKeys, "lsag: ring needs at least two members")
	ErrSignerNotInRing  = status.New(status.PrivateKeyNotFoundAmongPublicKeys, "lsag: private key does not belong to any ring member")
	ErrPositionRange    = status.New(status.PrivateKeyPositionOutOfRange, "lsag: signer position out of range")
	ErrPositionMismatch = status.New(status.PrivateKeyNotFitPublic, "lsag: private key does not fit the public key at position")
	ErrCurveMismatch    = status.New(status.UnexpectedCurveType, "lsag: curve does not match ring")
	ErrHashMismatch     = status.New(status.UnexpectedHashType, "lsag: hash algorithm does not match ring")
	ErrResponseCount    = status.New(status.IncorrectNumberOfSignatures, "lsag: number of responses does not match ring size")
	ErrNilInput         = status.New(status.UnmarshalFailed, "lsag: missing ring, key or signature")
)

// Sign signs message on behalf of r with priv. The signer's position is found by
// comparing public keys; caseID scopes the signature to one signing context.
func Sign(r *ring.Ring, priv *key.PrivateKey, message, caseID []byte) (*Signature, error) {
	if r == nil || priv == nil {
		return nil, ErrNilInput
	}
	if r.Len() < MinRingSize {
		return nil, ErrRingTooSmall
	}
	if priv.Group().ID() != r.Curve().ID() {
		return nil, ErrCurveMismatch
	}
	position := r.Position(priv.Public())
	if position < 0 {
		return nil, ErrSignerNotInRing
	}
	return sign(rand.Reader, r, priv, position, message, caseID)
}

// SignAt signs with the signer at a known position of the ring.
func SignAt(r *ring.Ring, priv *key.PrivateKey, position int, message, caseID []byte) (*Signature, error) {
	if r == nil || priv == nil {
		return nil, ErrNilInput
	}
	if r.Len() < MinRingSize {
		return nil, ErrRingTooSmall
	}
	if priv.Group().ID() != r.Curve().ID() {
		return nil, ErrCurveMismatch
	}
	if position < 0 || position >= r.Len() {
		return nil, ErrPositionRange
	}
	if !r.Key(position).Equal(priv.Public()) {
		return nil, ErrPositionMismatch
	}
	return sign(rand.Reader, r, priv, position, message, caseID)
}

// CreateSignature unfolds a ring blob in any format and signs over it.
func CreateSignature(folded []byte, priv *key.PrivateKey, message, caseID []byte) (*Signature, error) {
	r, err := ring.Unfold(folded, ring.Auto)
	if err != nil {
		return nil, err
	}
	return Sign(r, priv, message, caseID)
}

// KeyImage returns I = d·H_p(Q) for priv. It depends on the key pair alone, so
// every signature priv makes carries the same image whatever ring it signs over.
func KeyImage(priv *key.PrivateKey) (curve.Point, error) {
	hp, err := hashToPoint(priv.Public())
	if err != nil {
		return nil, err
	}
	return priv.Scalar().Act(hp), nil
}

// keyImageHash picks the hash behind H_p from the curve alone. SHA3-256 covers
// every curve up to 512 bit scalars, P-521 needs SHA3-512.
func keyImageHash(group curve.Curve) hash.ID {
	if hash.CheckCombination(group, hash.SHA3_256) == nil {
		return hash.SHA3_256
	}
	return hash.SHA3_512
}

func hashToPoint(pub *key.PublicKey) (curve.Point, error) {
	group := pub.Group()
	return hash.ToPoint(keyImageHash(group), group, keyImageLabel, pub.PointBytes())
}

func memberPoints(r *ring.Ring) ([]curve.Point, []curve.Point, error) {
	pubs := make([]curve.Point, r.Len())
	hps := make([]curve.Point, r.Len())
	for i := 0; i < r.Len(); i++ {
		k := r.Key(i)
		hp, err := hashToPoint(k)
		if err != nil {
			return nil, nil, err
		}
		pubs[i], hps[i] = k.Point(), hp
	}
	return pubs, hps, nil
}

// challengeBase fixes the inputs shared by every challenge of one signature.
func challengeBase(r *ring.Ring, image curve.Point, message, caseID []byte) (*hash.Transcript, error) {
	t, err := hash.NewTranscript(r.Hash(), challengeLabel)
	if err != nil {
		return nil, err
	}
	err = t.WriteAny(
		append([]byte{}, caseID...),
		r.Hash().Sum(message),
		r.Digest(),
		image,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// challenge computes c_{i+1} = H(base, L_i, R_i).
func challenge(base *hash.Transcript, group curve.Curve, L, R curve.Point) (curve.Scalar, error) {
	t, err := base.Fork(L, R)
	if err != nil {
		return nil, err
	}
	return t.Scalar(group)
}

// ring equation terms L_i = r_i·G + c_i·P_i and R_i = r_i·H_p(P_i) + c_i·I.
func commitments(response, c curve.Scalar, pub, hp, image curve.Point) (curve.Point, curve.Point) {
	L := response.ActOnBase().Add(c.Act(pub))
	R := response.Act(hp).Add(c.Act(image))
	return L, R
}

func sign(rand io.Reader, r *ring.Ring, priv *key.PrivateKey, s int, message, caseID []byte) (*Signature, error) {
	group := r.Curve()
	n := r.Len()

	pubs, hps, err := memberPoints(r)
	if err != nil {
		return nil, err
	}
	d := priv.Scalar()
	image := d.Act(hps[s])

	base, err := challengeBase(r, image, message, caseID)
	if err != nil {
		return nil, err
	}

	responses := make([]curve.Scalar, n)
	challenges := make([]curve.Scalar, n)

	u, err := sample.Scalar(rand, group)
	if err != nil {
		return nil, status.Wrap(err, status.CreateKeyFailed, "lsag: failed to sample nonce")
	}
	next := (s + 1) % n
	challenges[next], err = challenge(base, group, u.ActOnBase(), u.Act(hps[s]))
	if err != nil {
		return nil, err
	}

	for i := next; i != s; i = (i + 1) % n {
		responses[i], err = sample.Scalar(rand, group)
		if err != nil {
			return nil, status.Wrap(err, status.CreateKeyFailed, "lsag: failed to sample response")
		}
		L, R := commitments(responses[i], challenges[i], pubs[i], hps[i], image)
		challenges[(i+1)%n], err = challenge(base, group, L, R)
		if err != nil {
			return nil, err
		}
	}

	// r_s = u - c_s·d closes the ring
	responses[s] = group.NewScalar().Set(challenges[s]).Mul(d).Negate().Add(u)

	return &Signature{
		group:     group,
		hash:      r.Hash(),
		c0:        challenges[0],
		responses: responses,
		image:     image,
	}, nil
}

// Verify checks sig against r, message and caseID. A well formed signature that
// does not verify yields false and no error; malformed input yields an error whose
// status code names the problem.
func Verify(r *ring.Ring, sig *Signature, message, caseID []byte) (bool, error) {
	if r == nil || sig == nil || sig.group == nil || sig.c0 == nil || sig.image == nil {
		return false, ErrNilInput
	}
	if sig.group.ID() != r.Curve().ID() {
		return false, ErrCurveMismatch
	}
	if sig.hash != r.Hash() {
		return false, ErrHashMismatch
	}
	if len(sig.responses) != r.Len() {
		return false, ErrResponseCount
	}
	if sig.image.IsIdentity() {
		return false, ErrInvalidKeyImage
	}

	group := r.Curve()
	pubs, hps, err := memberPoints(r)
	if err != nil {
		return false, err
	}
	base, err := challengeBase(r, sig.image, message, caseID)
	if err != nil {
		return false, err
	}

	c := group.NewScalar().Set(sig.c0)
	for i := 0; i < r.Len(); i++ {
		L, R := commitments(sig.responses[i], c, pubs[i], hps[i], sig.image)
		if c, err = challenge(base, group, L, R); err != nil {
			return false, err
		}
	}

	got, _ := c.MarshalBinary()
	want, _ := sig.c0.MarshalBinary()
	return subtle.ConstantTimeCompare(got, want) == 1, nil
}

// VerifySignature unfolds a ring blob in any format and verifies sig over it.
func VerifySignature(folded []byte, sig *Signature, message, caseID []byte) (bool, error) {
	r, err := ring.Unfold(folded, ring.Auto)
	if err != nil {
		return false, err
	}
	return Verify(r, sig, message, caseID)
}

// VerifyCode verifies encoded inputs and reports the outcome as a status code:
// Success when the signature verifies, InvalidSignature when it does not and the
// code of the malformed input otherwise.
func VerifyCode(folded, signature, message, caseID []byte) status.Code {
	sig, err := ParseSignature(signature)
	if err != nil {
		return status.CodeOf(err)
	}
	ok, err := VerifySignature(folded, sig, message, caseID)
	if err != nil {
		return status.CodeOf(err)
	}
	if !ok {
		return status.InvalidSignature
	}
	return status.Success
}

// Linked reports whether a and b were produced by the same private key.
func Linked(a, b *Signature) bool {
	if a == nil || b == nil || a.group == nil || b.group == nil || a.image == nil || b.image == nil {
		return false
	}
	if a.group.ID() != b.group.ID() {
		return false
	}
	return a.image.Equal(b.image)
}
