// Package hash holds the hash algorithms a ring can be configured with and the
// domain-separated transcript the signature engine hashes its challenges through.
package hash

import (
	"crypto/sha256"
	"crypto/sha512"
	stdhash "hash"
	"strings"

	"github.com/mr-shifu/ringsig-lib/core/math/curve"
	"github.com/mr-shifu/ringsig-lib/core/status"
	"github.com/zeebo/blake3"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

// ID identifies a hash algorithm inside folded rings and signatures.
type ID uint8

const (
	Unknown ID = iota
	SHA256
	SHA512
	SHA3_224
	SHA3_256
	SHA3_384
	SHA3_512
	BLAKE2b_256
	BLAKE2b_512
	BLAKE3
)

var (
	ErrUnknownHash            = status.New(status.UnexpectedHashType, "hash: unknown hash algorithm")
	ErrUnknownOID             = status.New(status.OIDHasherNotFound, "hash: no hash algorithm for object identifier")
	ErrUnsupportedCombination = status.New(status.UnsupportedCurveHashCombination, "hash: digest too short for curve")
)

type algorithm struct {
	name string
	oid  string
	size int
	new  func() stdhash.Hash
}

func mustBlake2b(newFunc func([]byte) (stdhash.Hash, error)) func() stdhash.Hash {
	return func() stdhash.Hash {
		h, err := newFunc(nil)
		if err != nil {
			panic(err)
		}
		return h
	}
}

var algorithms = map[ID]algorithm{
	SHA256:      {"sha256", "2.16.840.1.101.3.4.2.1", 32, sha256.New},
	SHA512:      {"sha512", "2.16.840.1.101.3.4.2.3", 64, sha512.New},
	SHA3_224:    {"sha3-224", "2.16.840.1.101.3.4.2.7", 28, sha3.New224},
	SHA3_256:    {"sha3-256", "2.16.840.1.101.3.4.2.8", 32, sha3.New256},
	SHA3_384:    {"sha3-384", "2.16.840.1.101.3.4.2.9", 48, sha3.New384},
	SHA3_512:    {"sha3-512", "2.16.840.1.101.3.4.2.10", 64, sha3.New512},
	BLAKE2b_256: {"blake2b-256", "1.3.6.1.4.1.1722.12.2.1.8", 32, mustBlake2b(blake2b.New256)},
	BLAKE2b_512: {"blake2b-512", "1.3.6.1.4.1.1722.12.2.1.16", 64, mustBlake2b(blake2b.New512)},
	BLAKE3:      {"blake3", "", 32, func() stdhash.Hash { return blake3.New() }},
}

// Supported lists every registered algorithm in ID order.
func Supported() []ID {
	out := make([]ID, 0, len(algorithms))
	for id := SHA256; id <= BLAKE3; id++ {
		out = append(out, id)
	}
	return out
}

func (id ID) Valid() bool {
	_, ok := algorithms[id]
	return ok
}

func (id ID) String() string {
	if a, ok := algorithms[id]; ok {
		return a.name
	}
	return "unknown"
}

// OID returns the dotted object identifier or "" when the algorithm has none.
func (id ID) OID() string {
	return algorithms[id].oid
}

// Size returns the digest length in bytes.
func (id ID) Size() int {
	return algorithms[id].size
}

// New returns a fresh hasher. It panics on an unregistered id; callers validate ids
// at their boundary.
func (id ID) New() stdhash.Hash {
	a, ok := algorithms[id]
	if !ok {
		panic(ErrUnknownHash)
	}
	return a.new()
}

// Sum hashes the concatenation of data.
func (id ID) Sum(data ...[]byte) []byte {
	h := id.New()
	for _, d := range data {
		_, _ = h.Write(d)
	}
	return h.Sum(nil)
}

// FromName resolves an algorithm by name. Matching is case-insensitive and
// ignores underscores ("SHA3_256" and "sha3-256" are the same).
func FromName(name string) (ID, error) {
	name = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "-")
	for id, a := range algorithms {
		if a.name == name {
			return id, nil
		}
	}
	return Unknown, ErrUnknownHash
}

// FromOID resolves an algorithm by its dotted object identifier.
func FromOID(oid string) (ID, error) {
	for id, a := range algorithms {
		if oid != "" && a.oid == oid {
			return id, nil
		}
	}
	return Unknown, ErrUnknownOID
}

// CheckCombination rejects digests shorter than half the scalar size of group, which
// would leave challenges below the group's security level.
func CheckCombination(group curve.Curve, id ID) error {
	if !id.Valid() {
		return ErrUnknownHash
	}
	if 2*8*id.Size() < group.ScalarBits() {
		return ErrUnsupportedCombination
	}
	return nil
}
