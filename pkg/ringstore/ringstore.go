// Package ringstore keeps folded rings so that a ring assembled once can be reused
// by every signature of a signing context.
package ringstore

import (
	"encoding/hex"
	"sync"

	"github.com/mr-shifu/ringsig-lib/pkg/common/vault"
	"github.com/mr-shifu/ringsig-lib/pkg/ring"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

var (
	ErrContextNotFound = errors.New("ringstore: no ring for context")
	ErrRingNotFound    = errors.New("ringstore: ring not found")
)

// Store maps signing contexts to rings. Folded blobs live in a vault keyed by the
// hex ring digest; several contexts may share one ring.
type Store struct {
	lock     sync.RWMutex
	v        vault.Vault
	contexts map[string]string
	log      zerolog.Logger
}

type Option func(*Store)

func WithLogger(log zerolog.Logger) Option {
	return func(s *Store) {
		s.log = log
	}
}

func New(v vault.Vault, opts ...Option) *Store {
	s := &Store{
		v:        v,
		contexts: make(map[string]string),
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Import validates folded, stores it in binary form and binds it to contextID. It
// returns the unfolded ring.
func (s *Store) Import(contextID string, folded []byte) (*ring.Ring, error) {
	r, err := ring.Unfold(folded, ring.Auto)
	if err != nil {
		return nil, errors.WithMessage(err, "ringstore: failed to unfold ring")
	}
	blob, err := r.Fold(ring.Binary)
	if err != nil {
		return nil, err
	}
	digest := hex.EncodeToString(r.Digest())

	s.lock.Lock()
	defer s.lock.Unlock()

	if err := s.v.Import(digest, blob); err != nil {
		return nil, errors.WithMessage(err, "ringstore: failed to store ring")
	}
	s.contexts[contextID] = digest

	s.log.Debug().Str("context", contextID).Str("ring_digest", digest).Int("members", r.Len()).Msg("ring imported")
	return r, nil
}

// Get returns the ring bound to contextID.
func (s *Store) Get(contextID string) (*ring.Ring, error) {
	s.lock.RLock()
	digest, ok := s.contexts[contextID]
	s.lock.RUnlock()
	if !ok {
		return nil, ErrContextNotFound
	}
	return s.load(digest)
}

// GetByDigest returns the ring with the given digest.
func (s *Store) GetByDigest(digest []byte) (*ring.Ring, error) {
	return s.load(hex.EncodeToString(digest))
}

func (s *Store) load(digest string) (*ring.Ring, error) {
	blob, err := s.v.Get(digest)
	if err != nil {
		return nil, errors.WithMessage(ErrRingNotFound, err.Error())
	}
	return ring.Unfold(blob, ring.Binary)
}

// Delete unbinds contextID. The folded ring is dropped once no context uses it.
func (s *Store) Delete(contextID string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	digest, ok := s.contexts[contextID]
	if !ok {
		return ErrContextNotFound
	}
	delete(s.contexts, contextID)

	for _, d := range s.contexts {
		if d == digest {
			return nil
		}
	}
	if err := s.v.Delete(digest); err != nil {
		return errors.WithMessage(err, "ringstore: failed to delete ring")
	}
	s.log.Debug().Str("context", contextID).Str("ring_digest", digest).Msg("ring deleted")
	return nil
}
