// Package keyimage keeps track of spent key images so that a second signature by
// the same ring member can be detected.
package keyimage

import (
	"encoding/hex"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
	"github.com/mr-shifu/ringsig-lib/pkg/common/vault"
	"github.com/mr-shifu/ringsig-lib/pkg/lsag"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

var (
	ErrNilSignature = errors.New("keyimage: nil signature")
	ErrNotRecorded  = errors.New("keyimage: key image not recorded")
)

// Record is the stored trace of the first signature seen with a key image.
type Record struct {
	ID         string
	Curve      string
	KeyImage   []byte
	RingDigest []byte
	RecordedAt int64
}

type Registry struct {
	v   vault.Vault
	log zerolog.Logger
}

type Option func(*Registry)

func WithLogger(log zerolog.Logger) Option {
	return func(reg *Registry) {
		reg.log = log
	}
}

func NewRegistry(v vault.Vault, opts ...Option) *Registry {
	reg := &Registry{v: v, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(reg)
	}
	return reg
}

func recordID(curveName string, image []byte) string {
	return curveName + ":" + hex.EncodeToString(image)
}

// Record stores the key image of sig. It reports true when the image had been
// recorded before, i.e. the signer already signed once.
func (reg *Registry) Record(sig *lsag.Signature, ringDigest []byte) (bool, error) {
	if sig == nil {
		return false, ErrNilSignature
	}
	image := lsag.SignatureKeyImage(sig)
	id := recordID(sig.Curve().Name(), image)

	data, err := cbor.Marshal(&Record{
		ID:         uuid.New().String(),
		Curve:      sig.Curve().Name(),
		KeyImage:   image,
		RingDigest: ringDigest,
		RecordedAt: time.Now().Unix(),
	})
	if err != nil {
		return false, errors.WithMessage(err, "keyimage: failed to encode record")
	}

	stored, err := reg.v.ImportIfAbsent(id, data)
	if err != nil {
		return false, errors.WithMessage(err, "keyimage: failed to store record")
	}
	if !stored {
		reg.log.Warn().
			Str("key_image", hex.EncodeToString(image)).
			Str("ring_digest", hex.EncodeToString(ringDigest)).
			Msg("key image already recorded")
		return true, nil
	}

	reg.log.Debug().
		Str("key_image", hex.EncodeToString(image)).
		Str("ring_digest", hex.EncodeToString(ringDigest)).
		Msg("key image recorded")
	return false, nil
}

// Seen reports whether image was recorded on the named curve.
func (reg *Registry) Seen(curveName string, image []byte) bool {
	return reg.v.Has(recordID(curveName, image))
}

// Lookup returns the record stored for image.
func (reg *Registry) Lookup(curveName string, image []byte) (*Record, error) {
	data, err := reg.v.Get(recordID(curveName, image))
	if err != nil {
		return nil, errors.WithMessage(ErrNotRecorded, err.Error())
	}
	rec := &Record{}
	if err := cbor.Unmarshal(data, rec); err != nil {
		return nil, errors.WithMessage(err, "keyimage: failed to decode record")
	}
	return rec, nil
}

// Forget removes image from the registry.
func (reg *Registry) Forget(curveName string, image []byte) error {
	if err := reg.v.Delete(recordID(curveName, image)); err != nil {
		return errors.WithMessage(err, "keyimage: failed to delete record")
	}
	reg.log.Debug().Str("key_image", hex.EncodeToString(image)).Msg("key image forgotten")
	return nil
}
