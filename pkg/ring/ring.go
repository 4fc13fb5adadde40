// Package ring folds an ordered set of public keys into a self-describing blob and
// unfolds it again.
package ring

import (
	"bytes"
	"sort"
	"strings"

	"github.com/mr-shifu/ringsig-lib/core/hash"
	"github.com/mr-shifu/ringsig-lib/core/math/curve"
	"github.com/mr-shifu/ringsig-lib/core/status"
	"github.com/mr-shifu/ringsig-lib/pkg/key"
)

// OrderPolicy decides the member order of a folded ring.
type OrderPolicy uint8

const (
	// AsSupplied keeps the order the keys were given in.
	AsSupplied OrderPolicy = iota
	// ByHash sorts members by salted hashes of their encodings, so the order depends
	// only on the set of keys.
	ByHash
)

func (o OrderPolicy) String() string {
	switch o {
	case AsSupplied:
		return "as-supplied"
	case ByHash:
		return "hashes"
	}
	return "unknown"
}

func (o OrderPolicy) Valid() bool {
	return o == AsSupplied || o == ByHash
}

// ParseOrderPolicy accepts "hashes" (or "by-hash") and "as-supplied" (or "none").
func ParseOrderPolicy(name string) (OrderPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "hashes", "by-hash", "byhash":
		return ByHash, nil
	case "as-supplied", "none", "":
		return AsSupplied, nil
	}
	return AsSupplied, ErrUnknownOrder
}

var (
	ErrNoKeys         = status.New(status.InsufficientNumberOfPublicKeys, "ring: no public keys")
	ErrDuplicateKeys  = status.New(status.DuplicatePublicKeys, "ring: duplicate public keys")
	ErrCurveMismatch  = status.New(status.UnexpectedCurveType, "ring: public keys belong to different curves")
	ErrUnknownOrder   = status.New(status.UnmarshalFailed, "ring: unknown order policy")
	ErrUnknownFormat  = status.New(status.UnmarshalFailed, "ring: unknown folded ring format")
	ErrOrder          = status.New(status.UnmarshalFailed, "ring: members are not in hash order")
	ErrChecksum       = status.New(status.IncorrectChecksum, "ring: digest does not match folded keys")
	ErrTruncated      = status.New(status.UnmarshalFailed, "ring: folded ring is truncated")
	ErrVersion        = status.New(status.UnmarshalFailed, "ring: unsupported folded ring version")
	ErrTrailingData   = status.New(status.UnexpectedRestOfSignature, "ring: trailing data after folded ring")
	ErrUnknownCurveID = status.New(status.OIDCurveNotFound, "ring: unknown curve identifier")
	ErrUnknownHashID  = status.New(status.OIDHasherNotFound, "ring: unknown hash identifier")
)

// Ring is an ordered, duplicate free sequence of public keys on one curve, together
// with the hash algorithm its folded form is checksummed with.
type Ring struct {
	group   curve.Curve
	hash    hash.ID
	order   OrderPolicy
	keys    []*key.PublicKey
	encoded []byte
	digest  []byte
}

// New validates keys, orders them according to order and computes the folded form.
func New(keys []*key.PublicKey, hashID hash.ID, order OrderPolicy) (*Ring, error) {
	if !hashID.Valid() {
		return nil, hash.ErrUnknownHash
	}
	if !order.Valid() {
		return nil, ErrUnknownOrder
	}
	if len(keys) == 0 {
		return nil, ErrNoKeys
	}
	group := keys[0].Group()
	for _, k := range keys {
		if k == nil {
			return nil, key.ErrIdentityKey
		}
		if k.Group().ID() != group.ID() {
			return nil, ErrCurveMismatch
		}
	}
	if err := hash.CheckCombination(group, hashID); err != nil {
		return nil, err
	}

	members := make([]*key.PublicKey, len(keys))
	copy(members, keys)
	if err := checkDuplicates(members); err != nil {
		return nil, err
	}
	if order == ByHash {
		sortByHash(members, hashID)
	}

	r := &Ring{group: group, hash: hashID, order: order, keys: members}
	r.encoded = r.marshal()
	r.digest = r.encoded[len(r.encoded)-hashID.Size():]
	return r, nil
}

func checkDuplicates(keys []*key.PublicKey) error {
	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		enc := string(k.PointBytes())
		if _, ok := seen[enc]; ok {
			return ErrDuplicateKeys
		}
		seen[enc] = struct{}{}
	}
	return nil
}

// sortByHash orders keys by H(salt ‖ H(enc_i)) where salt is the hash of all member
// hashes in sorted order. Ties fall back to the encodings themselves.
func sortByHash(keys []*key.PublicKey, hashID hash.ID) {
	type entry struct {
		key    *key.PublicKey
		enc    []byte
		digest []byte
		salted []byte
	}
	entries := make([]entry, len(keys))
	for i, k := range keys {
		enc := k.PointBytes()
		entries[i] = entry{key: k, enc: enc, digest: hashID.Sum(enc)}
	}

	sort.Slice(entries, func(i, j int) bool { return bytes.Compare(entries[i].digest, entries[j].digest) < 0 })
	all := make([][]byte, len(entries))
	for i := range entries {
		all[i] = entries[i].digest
	}
	salt := hashID.Sum(all...)

	for i := range entries {
		entries[i].salted = hashID.Sum(salt, entries[i].digest)
	}
	sort.Slice(entries, func(i, j int) bool {
		if c := bytes.Compare(entries[i].salted, entries[j].salted); c != 0 {
			return c < 0
		}
		return bytes.Compare(entries[i].enc, entries[j].enc) < 0
	})
	for i := range entries {
		keys[i] = entries[i].key
	}
}

func (r *Ring) Curve() curve.Curve {
	return r.group
}

func (r *Ring) Hash() hash.ID {
	return r.hash
}

func (r *Ring) Order() OrderPolicy {
	return r.order
}

func (r *Ring) Len() int {
	return len(r.keys)
}

// Keys returns the members in ring order.
func (r *Ring) Keys() []*key.PublicKey {
	out := make([]*key.PublicKey, len(r.keys))
	copy(out, r.keys)
	return out
}

func (r *Ring) Key(i int) *key.PublicKey {
	return r.keys[i]
}

// Position returns the index of pub in the ring or -1.
func (r *Ring) Position(pub *key.PublicKey) int {
	for i, k := range r.keys {
		if k.Equal(pub) {
			return i
		}
	}
	return -1
}

// Digest returns the integrity digest of the folded ring. It identifies the ring and
// is bound into every signature made over it.
func (r *Ring) Digest() []byte {
	return append([]byte(nil), r.digest...)
}

// FormatDigest renders a digest as colon separated hex pairs.
func FormatDigest(digest []byte) string {
	const hexDigits = "0123456789abcdef"
	var sb strings.Builder
	for i, b := range digest {
		if i > 0 {
			sb.WriteByte(':')
		}
		sb.WriteByte(hexDigits[b>>4])
		sb.WriteByte(hexDigits[b&0x0f])
	}
	return sb.String()
}
