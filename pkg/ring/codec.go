package ring

import (
	"crypto/subtle"
	"encoding/binary"
	"encoding/pem"
	"strconv"
	"strings"

	"github.com/mr-shifu/ringsig-lib/core/hash"
	"github.com/mr-shifu/ringsig-lib/core/math/curve"
	"github.com/mr-shifu/ringsig-lib/core/status"
	"github.com/mr-shifu/ringsig-lib/pkg/key"
)

// Format selects the outer encoding of a folded ring.
type Format uint8

const (
	// Auto detects the encoding when unfolding and produces PEM when folding.
	Auto Format = iota
	Binary
	PEM
)

func (f Format) String() string {
	switch f {
	case Binary:
		return "binary"
	case PEM:
		return "PEM"
	}
	return "auto"
}

// ParseFormat accepts "binary", "pem" and "auto", in any case.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "auto", "":
		return Auto, nil
	case "binary", "bin":
		return Binary, nil
	case "pem":
		return PEM, nil
	}
	return Auto, ErrUnknownFormat
}

const (
	Version    = 1
	PEMType    = "FOLDED PUBLIC KEYS"
	headerSize = 8
)

// Fold builds a ring from keys and returns its folded form.
func Fold(keys []*key.PublicKey, hashID hash.ID, format Format, order OrderPolicy) ([]byte, error) {
	r, err := New(keys, hashID, order)
	if err != nil {
		return nil, err
	}
	return r.Fold(format)
}

// Fold returns the folded form of r in the requested format.
func (r *Ring) Fold(format Format) ([]byte, error) {
	if format == Binary {
		return append([]byte(nil), r.encoded...), nil
	}
	block := &pem.Block{
		Type: PEMType,
		Headers: map[string]string{
			"CurveName":    r.group.Name(),
			"CurveOID":     r.group.OID(),
			"HasherName":   r.hash.String(),
			"HasherOID":    r.hash.OID(),
			"NumberOfKeys": strconv.Itoa(len(r.keys)),
			"Digest":       FormatDigest(r.digest),
		},
		Bytes: r.encoded,
	}
	out := pem.EncodeToMemory(block)
	if out == nil {
		return nil, status.New(status.EncodePEMFailed, "ring: failed to encode PEM block")
	}
	return out, nil
}

// marshal lays out [version][curve][hash][order][count][points...][digest], where the
// digest is the ring hash over every preceding byte.
func (r *Ring) marshal() []byte {
	pointSize := r.group.PointBytes()
	out := make([]byte, headerSize, headerSize+len(r.keys)*pointSize+r.hash.Size())
	out[0] = Version
	out[1] = byte(r.group.ID())
	out[2] = byte(r.hash)
	out[3] = byte(r.order)
	binary.BigEndian.PutUint32(out[4:8], uint32(len(r.keys)))
	for _, k := range r.keys {
		out = append(out, k.PointBytes()...)
	}
	return append(out, r.hash.Sum(out)...)
}

// Unfold parses a folded ring and verifies its digest.
func Unfold(blob []byte, format Format) (*Ring, error) {
	if format == Auto {
		format = Binary
		if key.IsPEM(blob) {
			format = PEM
		}
	}
	if format == PEM {
		return unfoldPEM(blob)
	}
	return unmarshal(blob)
}

func unfoldPEM(blob []byte) (*Ring, error) {
	block, _ := pem.Decode(blob)
	body, err := key.DecodePEM(blob, PEMType)
	if err != nil {
		return nil, err
	}
	r, err := unmarshal(body)
	if err != nil {
		return nil, err
	}
	if digest, ok := block.Headers["Digest"]; ok && digest != FormatDigest(r.digest) {
		return nil, ErrChecksum
	}
	return r, nil
}

func unmarshal(data []byte) (*Ring, error) {
	if len(data) < headerSize {
		return nil, ErrTruncated
	}
	if data[0] != Version {
		return nil, ErrVersion
	}
	group, err := curve.FromID(curve.ID(data[1]))
	if err != nil {
		return nil, ErrUnknownCurveID
	}
	hashID := hash.ID(data[2])
	if !hashID.Valid() {
		return nil, ErrUnknownHashID
	}
	order := OrderPolicy(data[3])
	if !order.Valid() {
		return nil, ErrUnknownOrder
	}
	count := uint64(binary.BigEndian.Uint32(data[4:8]))
	if count == 0 {
		return nil, ErrNoKeys
	}

	pointSize := uint64(group.PointBytes())
	expected := uint64(headerSize) + count*pointSize + uint64(hashID.Size())
	if uint64(len(data)) < expected {
		return nil, ErrTruncated
	}
	if uint64(len(data)) > expected {
		return nil, ErrTrailingData
	}

	body, digest := data[:len(data)-hashID.Size()], data[len(data)-hashID.Size():]
	if subtle.ConstantTimeCompare(hashID.Sum(body), digest) != 1 {
		return nil, ErrChecksum
	}
	if err = hash.CheckCombination(group, hashID); err != nil {
		return nil, err
	}

	keys := make([]*key.PublicKey, 0, count)
	for off := uint64(headerSize); off < uint64(len(body)); off += pointSize {
		k, err := key.PublicKeyFromPoint(group, body[off:off+pointSize])
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	if err = checkDuplicates(keys); err != nil {
		return nil, err
	}
	if order == ByHash && !inHashOrder(keys, hashID) {
		return nil, ErrOrder
	}

	encoded := append([]byte(nil), data...)
	return &Ring{
		group:   group,
		hash:    hashID,
		order:   order,
		keys:    keys,
		encoded: encoded,
		digest:  encoded[len(encoded)-hashID.Size():],
	}, nil
}

// inHashOrder reports whether keys already sit where sortByHash puts them.
func inHashOrder(keys []*key.PublicKey, hashID hash.ID) bool {
	sorted := append([]*key.PublicKey(nil), keys...)
	sortByHash(sorted, hashID)
	for i := range keys {
		if !keys[i].Equal(sorted[i]) {
			return false
		}
	}
	return true
}
