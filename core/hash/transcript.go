package hash

import (
	"bytes"
	"encoding"
	"encoding/binary"
	"fmt"
	stdhash "hash"
	"io"
	"reflect"

	"github.com/cronokirby/saferith"
	"github.com/pkg/errors"
	"golang.org/x/crypto/hkdf"
)

const transcriptPrefix = "RINGSIG-LSAG"

// BytesWithDomain is a piece of transcript input together with its domain.
type BytesWithDomain struct {
	TheDomain string
	Bytes     []byte
}

// WriterToWithDomain is implemented by values that know how to write themselves to
// a transcript under their own domain.
type WriterToWithDomain interface {
	io.WriterTo
	Domain() string
}

// Transcript is a domain separated hash over one of the registered algorithms.
//
// Every input is framed as `(<domain_size><domain><data_size><data>)` so that no two
// sequences of inputs produce the same hashed byte string.
type Transcript struct {
	id    ID
	h     stdhash.Hash
	state []BytesWithDomain
}

// NewTranscript creates a transcript keyed with the algorithm name and label.
func NewTranscript(id ID, label string) (*Transcript, error) {
	if !id.Valid() {
		return nil, ErrUnknownHash
	}
	t := &Transcript{id: id, h: id.New()}
	_, _ = io.WriteString(t.h, transcriptPrefix)
	t.write(BytesWithDomain{"label", []byte(id.String() + "/" + label)})
	return t, nil
}

func (t *Transcript) ID() ID {
	return t.id
}

// WriteAny writes data to the transcript.
//
// Currently supported types:
//
//   - []byte
//   - string
//   - *saferith.Nat
//   - hash.WriterToWithDomain
//   - encoding.BinaryMarshaler (scalars and points)
func (t *Transcript) WriteAny(data ...interface{}) error {
	for _, d := range data {
		var toBeWritten BytesWithDomain
		switch v := d.(type) {
		case []byte:
			if v == nil {
				return errors.New("hash: nil []byte")
			}
			toBeWritten = BytesWithDomain{"[]byte", v}
		case string:
			toBeWritten = BytesWithDomain{"string", []byte(v)}
		case *saferith.Nat:
			if v == nil {
				return errors.New("hash: nil *saferith.Nat")
			}
			toBeWritten = BytesWithDomain{"saferith.Nat", v.Bytes()}
		case WriterToWithDomain:
			buf := new(bytes.Buffer)
			if _, err := v.WriteTo(buf); err != nil {
				return errors.WithMessagef(err, "hash: %s", reflect.TypeOf(v))
			}
			toBeWritten = BytesWithDomain{v.Domain(), buf.Bytes()}
		case encoding.BinaryMarshaler:
			raw, err := v.MarshalBinary()
			if err != nil {
				return errors.WithMessagef(err, "hash: %s", reflect.TypeOf(v))
			}
			toBeWritten = BytesWithDomain{reflect.TypeOf(v).String(), raw}
		default:
			return fmt.Errorf("hash: invalid type %T provided as input", d)
		}
		t.write(toBeWritten)
	}
	return nil
}

func (t *Transcript) write(toBeWritten BytesWithDomain) {
	t.state = append(t.state, toBeWritten)
	writeFramed(t.h, toBeWritten)
}

func writeFramed(h io.Writer, toBeWritten BytesWithDomain) {
	var sizeBuf [8]byte

	_, _ = io.WriteString(h, "(")
	binary.BigEndian.PutUint64(sizeBuf[:], uint64(len(toBeWritten.TheDomain)))
	_, _ = h.Write(sizeBuf[:])
	_, _ = io.WriteString(h, toBeWritten.TheDomain)
	binary.BigEndian.PutUint64(sizeBuf[:], uint64(len(toBeWritten.Bytes)))
	_, _ = h.Write(sizeBuf[:])
	_, _ = h.Write(toBeWritten.Bytes)
	_, _ = io.WriteString(h, ")")
}

// Sum returns the digest of the current state without finalizing it.
func (t *Transcript) Sum() []byte {
	return t.h.Sum(nil)
}

// Digest returns a stream of output bytes derived from the current state with HKDF.
// Reads beyond 255 digests fail.
func (t *Transcript) Digest() io.Reader {
	return hkdf.Expand(t.id.New, t.Sum(), []byte(transcriptPrefix+" output"))
}

// Clone returns a copy of the transcript in its current state. The copy replays the
// recorded inputs since the registered hashers cannot all be cloned directly.
func (t *Transcript) Clone() *Transcript {
	clone := &Transcript{id: t.id, h: t.id.New(), state: make([]BytesWithDomain, 0, len(t.state))}
	_, _ = io.WriteString(clone.h, transcriptPrefix)
	for _, d := range t.state {
		clone.write(d)
	}
	return clone
}

// Fork clones the transcript and writes data to the copy.
func (t *Transcript) Fork(data ...interface{}) (*Transcript, error) {
	forked := t.Clone()
	if err := forked.WriteAny(data...); err != nil {
		return nil, err
	}
	return forked, nil
}
