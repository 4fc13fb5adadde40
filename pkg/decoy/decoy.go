// Package decoy supplies the other ring members a signer hides among.
package decoy

import (
	"context"
	cryptorand "crypto/rand"
	"io"
	"math/big"

	"github.com/mr-shifu/ringsig-lib/core/math/curve"
	"github.com/mr-shifu/ringsig-lib/core/status"
	"github.com/mr-shifu/ringsig-lib/pkg/key"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

var (
	ErrNotEnoughKeys = status.New(status.InsufficientNumberOfPublicKeys, "decoy: source has too few keys")
	ErrRingSize      = status.New(status.InsufficientNumberOfPublicKeys, "decoy: ring size must be at least two")
)

// Source provides candidate public keys on a curve.
type Source interface {
	PublicKeys(ctx context.Context, id curve.ID, n int) ([]*key.PublicKey, error)
}

// Static serves caller supplied keys, for example the registered members of a
// community.
type Static struct {
	keys []*key.PublicKey
}

func NewStatic(keys ...*key.PublicKey) *Static {
	return &Static{keys: append([]*key.PublicKey(nil), keys...)}
}

// PublicKeys returns the first n keys on curve id.
func (s *Static) PublicKeys(ctx context.Context, id curve.ID, n int) ([]*key.PublicKey, error) {
	out := make([]*key.PublicKey, 0, n)
	for _, k := range s.keys {
		if len(out) == n {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if k.Group().ID() == id {
			out = append(out, k)
		}
	}
	if len(out) < n {
		return nil, ErrNotEnoughKeys
	}
	return out, nil
}

// Generated creates fresh key pairs and discards the private halves. Useful in tests
// and for padding a ring.
type Generated struct {
	// Workers bounds concurrent key generation; zero means no limit.
	Workers int
}

func (g Generated) PublicKeys(ctx context.Context, id curve.ID, n int) ([]*key.PublicKey, error) {
	out := make([]*key.PublicKey, n)
	eg, ctx := errgroup.WithContext(ctx)
	if g.Workers > 0 {
		eg.SetLimit(g.Workers)
	}
	for i := 0; i < n; i++ {
		i := i
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			priv, err := key.GeneratePrivateKey(id)
			if err != nil {
				return err
			}
			out[i] = priv.Public()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, errors.WithMessage(err, "decoy: failed to generate keys")
	}
	return out, nil
}

// Assemble returns size keys: the signer and size-1 decoys from src, with the signer
// at a uniformly random position. Decoys equal to the signer are skipped.
func Assemble(ctx context.Context, signer *key.PublicKey, src Source, size int) ([]*key.PublicKey, error) {
	return assemble(ctx, cryptorand.Reader, signer, src, size)
}

func assemble(ctx context.Context, random io.Reader, signer *key.PublicKey, src Source, size int) ([]*key.PublicKey, error) {
	if size < 2 {
		return nil, ErrRingSize
	}
	id := signer.Group().ID()
	candidates, err := src.PublicKeys(ctx, id, size-1)
	if err != nil {
		return nil, err
	}
	if containsKey(candidates, signer) {
		// one more to make up for the signer
		if candidates, err = src.PublicKeys(ctx, id, size); err != nil {
			return nil, err
		}
	}

	members := make([]*key.PublicKey, 0, size)
	for _, k := range candidates {
		if len(members) == size-1 {
			break
		}
		if !k.Equal(signer) {
			members = append(members, k)
		}
	}
	if len(members) < size-1 {
		return nil, ErrNotEnoughKeys
	}

	pos, err := cryptorand.Int(random, big.NewInt(int64(size)))
	if err != nil {
		return nil, errors.WithMessage(err, "decoy: failed to draw signer position")
	}
	at := int(pos.Int64())
	members = append(members, nil)
	copy(members[at+1:], members[at:])
	members[at] = signer
	return members, nil
}

func containsKey(keys []*key.PublicKey, pub *key.PublicKey) bool {
	for _, k := range keys {
		if k.Equal(pub) {
			return true
		}
	}
	return false
}
