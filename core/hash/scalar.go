package hash

import (
	"io"

	"github.com/cronokirby/saferith"
	"github.com/mr-shifu/ringsig-lib/core/math/curve"
	"github.com/pkg/errors"
)

// wideBytes is the extra output read before reducing modulo the group order.
const wideBytes = 16

// Scalar reduces the transcript output to a scalar of group. The output is read
// 16 bytes wider than the scalar so the reduction bias is negligible.
func (t *Transcript) Scalar(group curve.Curve) (curve.Scalar, error) {
	buf := make([]byte, group.ScalarBytes()+wideBytes)
	if _, err := io.ReadFull(t.Digest(), buf); err != nil {
		return nil, errors.WithMessage(err, "hash: failed to expand transcript")
	}
	return group.NewScalar().SetNat(new(saferith.Nat).SetBytes(buf)), nil
}

// ToScalar hashes data into a scalar of group under label.
func ToScalar(id ID, group curve.Curve, label string, data ...interface{}) (curve.Scalar, error) {
	t, err := NewTranscript(id, label)
	if err != nil {
		return nil, err
	}
	if err = t.WriteAny(data...); err != nil {
		return nil, err
	}
	return t.Scalar(group)
}

// Expander returns candidate bytes for curve.HashToPoint. Each counter forks the
// transcript, so candidates are independent of each other.
func (t *Transcript) Expander() curve.Expander {
	return func(counter uint8, size int) []byte {
		out := make([]byte, size)
		forked := t.Clone()
		forked.write(BytesWithDomain{"counter", []byte{counter}})
		if _, err := io.ReadFull(forked.Digest(), out); err != nil {
			panic(errors.WithMessage(err, "hash: failed to expand candidate"))
		}
		return out
	}
}

// ToPoint maps data under label to a point of group with no known discrete logarithm.
func ToPoint(id ID, group curve.Curve, label string, data ...interface{}) (curve.Point, error) {
	t, err := NewTranscript(id, label)
	if err != nil {
		return nil, err
	}
	if err = t.WriteAny(data...); err != nil {
		return nil, err
	}
	return group.HashToPoint(t.Expander())
}
