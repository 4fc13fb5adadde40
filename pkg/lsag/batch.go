package lsag

import (
	"context"
	"runtime"

	"github.com/mr-shifu/ringsig-lib/pkg/ring"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// BatchItem is one independent verification.
type BatchItem struct {
	Ring      *ring.Ring
	Signature *Signature
	Message   []byte
	CaseID    []byte
}

// VerifyBatch verifies items concurrently. The result at index i tells whether item
// i verified. The first malformed item aborts the batch and is returned as error.
func VerifyBatch(ctx context.Context, items []BatchItem) ([]bool, error) {
	results := make([]bool, len(items))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range items {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			ok, err := Verify(items[i].Ring, items[i].Signature, items[i].Message, items[i].CaseID)
			if err != nil {
				return errors.WithMessagef(err, "lsag: batch item %d", i)
			}
			results[i] = ok
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Status is the outcome of a verification.
type Status int

const (
	Valid Status = iota
	Invalid
	Malformed
)

func (s Status) String() string {
	switch s {
	case Valid:
		return "valid"
	case Invalid:
		return "invalid"
	}
	return "malformed"
}

// Classify maps the result of Verify to a Status.
func Classify(ok bool, err error) Status {
	switch {
	case err != nil:
		return Malformed
	case ok:
		return Valid
	}
	return Invalid
}
