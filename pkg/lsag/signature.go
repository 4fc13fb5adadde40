package lsag

import (
	"encoding/hex"
	"encoding/pem"
	"strconv"

	"github.com/mr-shifu/ringsig-lib/core/hash"
	"github.com/mr-shifu/ringsig-lib/core/math/curve"
	"github.com/mr-shifu/ringsig-lib/core/status"
	"github.com/mr-shifu/ringsig-lib/pkg/key"
)

const PEMType = "RING SIGNATURE"

var (
	ErrInvalidKeyImage = status.New(status.InvalidKeyImage, "lsag: invalid key image")
	ErrSignatureLength = status.New(status.UnmarshalFailed, "lsag: invalid signature length")
)

// Signature is an LSAG signature: the challenge entering position 0, one response
// per ring member and the signer's key image. It is immutable once created.
type Signature struct {
	group     curve.Curve
	hash      hash.ID
	c0        curve.Scalar
	responses []curve.Scalar
	image     curve.Point
}

func (sig *Signature) Curve() curve.Curve {
	return sig.group
}

func (sig *Signature) Hash() hash.ID {
	return sig.hash
}

// Len returns the number of responses, which equals the size of the signing ring.
func (sig *Signature) Len() int {
	return len(sig.responses)
}

// KeyImage returns a copy of the key image point.
func (sig *Signature) KeyImage() curve.Point {
	return sig.group.NewPoint().Set(sig.image)
}

// KeyImageHex returns the hex encoding of the canonical key image bytes.
func (sig *Signature) KeyImageHex() string {
	return hex.EncodeToString(SignatureKeyImage(sig))
}

// SignatureKeyImage returns the canonical encoding of the key image of sig. Each
// call returns a fresh slice.
func SignatureKeyImage(sig *Signature) []byte {
	if sig == nil || sig.image == nil {
		return nil
	}
	data, _ := sig.image.MarshalBinary()
	return data
}

// MarshalBinary lays the signature out as [c_0][r_0..r_{n-1}][I][curve id][hash id].
func (sig *Signature) MarshalBinary() ([]byte, error) {
	scalarSize := sig.group.ScalarBytes()
	out := make([]byte, 0, (len(sig.responses)+1)*scalarSize+sig.group.PointBytes()+2)

	c0, err := sig.c0.MarshalBinary()
	if err != nil {
		return nil, status.Wrap(err, status.MarshalFailed, "lsag: failed to marshal challenge")
	}
	out = append(out, c0...)
	for _, r := range sig.responses {
		data, err := r.MarshalBinary()
		if err != nil {
			return nil, status.Wrap(err, status.MarshalFailed, "lsag: failed to marshal response")
		}
		out = append(out, data...)
	}
	image, err := sig.image.MarshalBinary()
	if err != nil {
		return nil, status.Wrap(err, status.MarshalFailed, "lsag: failed to marshal key image")
	}
	out = append(out, image...)
	return append(out, byte(sig.group.ID()), byte(sig.hash)), nil
}

// UnmarshalSignature decodes the binary layout produced by MarshalBinary.
func UnmarshalSignature(data []byte) (*Signature, error) {
	if len(data) < 2 {
		return nil, ErrSignatureLength
	}
	group, err := curve.FromID(curve.ID(data[len(data)-2]))
	if err != nil {
		return nil, err
	}
	hashID := hash.ID(data[len(data)-1])
	if !hashID.Valid() {
		return nil, hash.ErrUnknownHash
	}

	scalarSize, pointSize := group.ScalarBytes(), group.PointBytes()
	body := len(data) - 2 - pointSize
	if body < 2*scalarSize || body%scalarSize != 0 {
		return nil, ErrSignatureLength
	}
	n := body/scalarSize - 1

	scalars := make([]curve.Scalar, n+1)
	for i := range scalars {
		s := group.NewScalar()
		if err := s.UnmarshalBinary(data[i*scalarSize : (i+1)*scalarSize]); err != nil {
			return nil, err
		}
		scalars[i] = s
	}
	image := group.NewPoint()
	if err := image.UnmarshalBinary(data[body : body+pointSize]); err != nil {
		return nil, status.Wrap(err, status.InvalidKeyImage, "lsag: invalid key image")
	}

	return &Signature{
		group:     group,
		hash:      hashID,
		c0:        scalars[0],
		responses: scalars[1:],
		image:     image,
	}, nil
}

// PEM armors the binary signature with descriptive headers.
func (sig *Signature) PEM() ([]byte, error) {
	data, err := sig.MarshalBinary()
	if err != nil {
		return nil, err
	}
	block := &pem.Block{
		Type: PEMType,
		Headers: map[string]string{
			"KeyImage":     sig.KeyImageHex(),
			"CurveName":    sig.group.Name(),
			"HasherName":   sig.hash.String(),
			"NumberOfKeys": strconv.Itoa(sig.Len()),
		},
		Bytes: data,
	}
	out := pem.EncodeToMemory(block)
	if out == nil {
		return nil, status.New(status.EncodePEMFailed, "lsag: failed to encode PEM block")
	}
	return out, nil
}

// ParseSignature accepts the PEM armor or the binary layout of a signature.
func ParseSignature(data []byte) (*Signature, error) {
	if key.IsPEM(data) {
		body, err := key.DecodePEM(data, PEMType)
		if err != nil {
			return nil, err
		}
		data = body
	}
	return UnmarshalSignature(data)
}
