// Package sample draws uniformly distributed secrets for curve groups.
package sample

import (
	cryptorand "crypto/rand"
	"io"

	"github.com/cronokirby/saferith"
	"github.com/mr-shifu/ringsig-lib/core/math/curve"
	"github.com/pkg/errors"
)

// extraBytes of randomness keep the bias of the modular reduction below 2^-128.
const extraBytes = 16

// maxIterations bounds the retries on a zero scalar.
const maxIterations = 256

var ErrExhausted = errors.New("sample: failed to draw a nonzero scalar")

// Scalar returns a uniform scalar in [1, n-1]. A nil rand uses crypto/rand.
func Scalar(rand io.Reader, group curve.Curve) (curve.Scalar, error) {
	if rand == nil {
		rand = cryptorand.Reader
	}

	buf := make([]byte, group.ScalarBytes()+extraBytes)
	for i := 0; i < maxIterations; i++ {
		if _, err := io.ReadFull(rand, buf); err != nil {
			return nil, errors.WithMessage(err, "sample: failed to read random bytes")
		}
		s := group.NewScalar().SetNat(new(saferith.Nat).SetBytes(buf))
		if !s.IsZero() {
			return s, nil
		}
	}
	return nil, ErrExhausted
}

// ScalarPointPair returns a fresh scalar x together with x·G.
func ScalarPointPair(rand io.Reader, group curve.Curve) (curve.Scalar, curve.Point, error) {
	s, err := Scalar(rand, group)
	if err != nil {
		return nil, nil, err
	}
	return s, s.ActOnBase(), nil
}
