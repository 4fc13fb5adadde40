package key

import (
	"bytes"
	"encoding/pem"

	"github.com/fxamacker/cbor/v2"
	"github.com/mr-shifu/ringsig-lib/core/math/curve"
	"github.com/mr-shifu/ringsig-lib/core/status"
)

const (
	PrivateKeyPEMType = "RING PRIVATE KEY"
	PublicKeyPEMType  = "RING PUBLIC KEY"

	curveNameHeader = "CurveName"
)

var pemPrefix = []byte("-----BEGIN")

var encMode = func() cbor.EncMode {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	return em
}()

type rawKey struct {
	Curve string
	D     []byte `cbor:",omitempty"`
	Q     []byte
}

// Bytes returns the deterministic CBOR record of the key pair.
func (priv *PrivateKey) Bytes() ([]byte, error) {
	d, err := priv.d.MarshalBinary()
	if err != nil {
		return nil, status.Wrap(err, status.MarshalFailed, "key: failed to marshal private scalar")
	}
	raw := &rawKey{Curve: priv.group.Name(), D: d, Q: priv.Public().PointBytes()}
	data, err := encMode.Marshal(raw)
	if err != nil {
		return nil, status.Wrap(err, status.MarshalFailed, "key: failed to encode private key")
	}
	return data, nil
}

// Bytes returns the deterministic CBOR record of the public key.
func (pub *PublicKey) Bytes() ([]byte, error) {
	data, err := encMode.Marshal(&rawKey{Curve: pub.group.Name(), Q: pub.PointBytes()})
	if err != nil {
		return nil, status.Wrap(err, status.MarshalPublicKeyFailed, "key: failed to encode public key")
	}
	return data, nil
}

func (priv *PrivateKey) PEM() ([]byte, error) {
	data, err := priv.Bytes()
	if err != nil {
		return nil, err
	}
	return encodePEM(PrivateKeyPEMType, priv.group, data)
}

func (pub *PublicKey) PEM() ([]byte, error) {
	data, err := pub.Bytes()
	if err != nil {
		return nil, err
	}
	return encodePEM(PublicKeyPEMType, pub.group, data)
}

func encodePEM(blockType string, group curve.Curve, data []byte) ([]byte, error) {
	block := &pem.Block{
		Type:    blockType,
		Headers: map[string]string{curveNameHeader: group.Name()},
		Bytes:   data,
	}
	out := pem.EncodeToMemory(block)
	if out == nil {
		return nil, status.New(status.EncodePEMFailed, "key: failed to encode PEM block")
	}
	return out, nil
}

// DecodePEM returns the body of the single PEM block of the given type in data.
func DecodePEM(data []byte, blockType string) ([]byte, error) {
	block, rest := pem.Decode(data)
	if block == nil {
		return nil, status.New(status.DecodePEMFailure, "key: no PEM block found")
	}
	if block.Type != blockType {
		return nil, status.New(status.DecodePEMFailure, "key: unexpected PEM block type "+block.Type)
	}
	if len(bytes.TrimSpace(rest)) > 0 {
		return nil, status.New(status.UnexpectedRestOfSignature, "key: trailing data after PEM block")
	}
	return block.Bytes, nil
}

// IsPEM reports whether data starts like a PEM block.
func IsPEM(data []byte) bool {
	return bytes.HasPrefix(bytes.TrimSpace(data), pemPrefix)
}

func decodeRaw(data []byte, code status.Code) (*rawKey, curve.Curve, error) {
	raw := &rawKey{}
	rest, err := cbor.UnmarshalFirst(data, raw)
	if err != nil {
		return nil, nil, status.Wrap(err, code, "key: failed to decode key record")
	}
	if len(rest) > 0 {
		return nil, nil, status.New(status.UnexpectedRestOfSignature, "key: trailing data after key record")
	}
	group, err := curve.FromName(raw.Curve)
	if err != nil {
		return nil, nil, err
	}
	return raw, group, nil
}

// ParsePrivateKey accepts the PEM armor or the bare CBOR record of a private key.
func ParsePrivateKey(data []byte) (*PrivateKey, error) {
	if IsPEM(data) {
		body, err := DecodePEM(data, PrivateKeyPEMType)
		if err != nil {
			return nil, err
		}
		data = body
	}

	raw, group, err := decodeRaw(data, status.ParsePrivateKeyFailure)
	if err != nil {
		return nil, err
	}
	d := group.NewScalar()
	if err = d.UnmarshalBinary(raw.D); err != nil {
		return nil, status.Wrap(err, status.ParsePrivateKeyFailure, "key: invalid private scalar")
	}
	priv, err := NewPrivateKey(d)
	if err != nil {
		return nil, err
	}
	if len(raw.Q) > 0 {
		q := group.NewPoint()
		if err = q.UnmarshalBinary(raw.Q); err != nil {
			return nil, err
		}
		if !priv.Public().q.Equal(q) {
			return nil, status.New(status.PrivateKeyNotFitPublic, "key: stored public key does not match private scalar")
		}
	}
	return priv, nil
}

// ParsePublicKey accepts the PEM armor, the CBOR record or the canonical binary
// encoding of a public key.
func ParsePublicKey(data []byte) (*PublicKey, error) {
	if IsPEM(data) {
		body, err := DecodePEM(data, PublicKeyPEMType)
		if err != nil {
			return nil, err
		}
		data = body
	} else if len(data) > 0 {
		if _, err := curve.FromID(curve.ID(data[0])); err == nil {
			if pub, err := UnmarshalPublicKey(data); err == nil {
				return pub, nil
			}
		}
	}

	raw, group, err := decodeRaw(data, status.ParsePublicKeyFailed)
	if err != nil {
		return nil, err
	}
	return PublicKeyFromPoint(group, raw.Q)
}
