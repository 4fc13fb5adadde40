package ring

import (
	"encoding/binary"
	"testing"

	"github.com/mr-shifu/ringsig-lib/core/hash"
	"github.com/mr-shifu/ringsig-lib/core/math/curve"
	"github.com/mr-shifu/ringsig-lib/core/status"
	"github.com/mr-shifu/ringsig-lib/pkg/key"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPublicKeys(t *testing.T, id curve.ID, n int) []*key.PublicKey {
	keys := make([]*key.PublicKey, n)
	for i := range keys {
		priv, err := key.GeneratePrivateKey(id)
		require.NoError(t, err)
		keys[i] = priv.Public()
	}
	return keys
}

func reversed(keys []*key.PublicKey) []*key.PublicKey {
	out := make([]*key.PublicKey, len(keys))
	for i, k := range keys {
		out[len(keys)-1-i] = k
	}
	return out
}

func TestFold_RoundTrip(t *testing.T) {
	for _, group := range curve.SupportedCurves() {
		for _, format := range []Format{Binary, PEM} {
			t.Run(group.Name()+"/"+format.String(), func(t *testing.T) {
				keys := newPublicKeys(t, group.ID(), 5)
				folded, err := Fold(keys, hash.SHA512, format, AsSupplied)
				require.NoError(t, err)

				r, err := Unfold(folded, format)
				require.NoError(t, err)
				require.Equal(t, len(keys), r.Len())
				for i, k := range keys {
					assert.True(t, k.Equal(r.Key(i)))
					assert.Equal(t, i, r.Position(k))
				}
				assert.Equal(t, group.ID(), r.Curve().ID())
				assert.Equal(t, hash.SHA512, r.Hash())

				auto, err := Unfold(folded, Auto)
				require.NoError(t, err)
				assert.Equal(t, r.Digest(), auto.Digest())

				// folding is idempotent
				again, err := Fold(r.Keys(), hash.SHA512, format, AsSupplied)
				require.NoError(t, err)
				assert.Equal(t, folded, again)
			})
		}
	}
}

func TestFold_ByHashDependsOnlyOnSet(t *testing.T) {
	keys := newPublicKeys(t, curve.IDP256, 7)

	a, err := Fold(keys, hash.SHA3_256, Binary, ByHash)
	require.NoError(t, err)
	b, err := Fold(reversed(keys), hash.SHA3_256, Binary, ByHash)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	r, err := Unfold(a, Binary)
	require.NoError(t, err)
	assert.Equal(t, ByHash, r.Order())
	again, err := Fold(r.Keys(), hash.SHA3_256, Binary, ByHash)
	require.NoError(t, err)
	assert.Equal(t, a, again)

	c, err := Fold(reversed(keys), hash.SHA3_256, Binary, AsSupplied)
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestFold_Errors(t *testing.T) {
	keys := newPublicKeys(t, curve.IDSecp256k1, 3)

	_, err := Fold(nil, hash.SHA256, Binary, AsSupplied)
	assert.Equal(t, status.InsufficientNumberOfPublicKeys, status.CodeOf(err))

	_, err = Fold(keys, hash.ID(77), Binary, AsSupplied)
	assert.Equal(t, status.UnexpectedHashType, status.CodeOf(err))

	mixed := append(newPublicKeys(t, curve.IDP256, 1), keys...)
	_, err = Fold(mixed, hash.SHA256, Binary, AsSupplied)
	assert.Equal(t, status.UnexpectedCurveType, status.CodeOf(err))

	_, err = Fold(append(keys, keys[0]), hash.SHA256, Binary, AsSupplied)
	assert.Equal(t, status.DuplicatePublicKeys, status.CodeOf(err))

	_, err = Fold(newPublicKeys(t, curve.IDP521, 2), hash.SHA3_224, Binary, AsSupplied)
	assert.Equal(t, status.UnsupportedCurveHashCombination, status.CodeOf(err))
}

func TestUnfold_Tampering(t *testing.T) {
	keys := newPublicKeys(t, curve.IDP256, 4)
	folded, err := Fold(keys, hash.SHA3_256, Binary, AsSupplied)
	require.NoError(t, err)

	flip := func(i int) []byte {
		out := append([]byte(nil), folded...)
		out[i] ^= 0x01
		return out
	}

	// digest byte
	_, err = Unfold(flip(len(folded)-1), Binary)
	assert.Equal(t, status.IncorrectChecksum, status.CodeOf(err))
	// key byte
	_, err = Unfold(flip(headerSize+3), Binary)
	assert.Equal(t, status.IncorrectChecksum, status.CodeOf(err))

	_, err = Unfold(folded[:len(folded)-1], Binary)
	assert.Equal(t, status.UnmarshalFailed, status.CodeOf(err))
	_, err = Unfold(append(append([]byte(nil), folded...), 0), Binary)
	assert.Equal(t, status.UnexpectedRestOfSignature, status.CodeOf(err))
	_, err = Unfold(folded[:3], Binary)
	assert.Equal(t, status.UnmarshalFailed, status.CodeOf(err))

	badCurve := append([]byte(nil), folded...)
	badCurve[1] = 99
	_, err = Unfold(badCurve, Binary)
	assert.Equal(t, status.OIDCurveNotFound, status.CodeOf(err))

	badHash := append([]byte(nil), folded...)
	badHash[2] = 99
	_, err = Unfold(badHash, Binary)
	assert.Equal(t, status.OIDHasherNotFound, status.CodeOf(err))

	zero := append([]byte(nil), folded...)
	binary.BigEndian.PutUint32(zero[4:8], 0)
	_, err = Unfold(zero, Binary)
	assert.Equal(t, status.InsufficientNumberOfPublicKeys, status.CodeOf(err))
}

func TestUnfold_ByHashOrderEnforced(t *testing.T) {
	sorted, err := New(newPublicKeys(t, curve.IDP256, 4), hash.SHA3_256, ByHash)
	require.NoError(t, err)

	// same members, declared as hash ordered but laid out in reverse
	asSupplied, err := Fold(reversed(sorted.Keys()), hash.SHA3_256, Binary, AsSupplied)
	require.NoError(t, err)
	body := asSupplied[:len(asSupplied)-hash.SHA3_256.Size()]
	body[3] = byte(ByHash)
	forged := append(body, hash.SHA3_256.Sum(body)...)

	_, err = Unfold(forged, Binary)
	assert.ErrorIs(t, err, ErrOrder)
	assert.Equal(t, status.UnmarshalFailed, status.CodeOf(err))

	folded, err := sorted.Fold(Binary)
	require.NoError(t, err)
	again, err := Unfold(folded, Binary)
	require.NoError(t, err)
	assert.Equal(t, ByHash, again.Order())
}

func TestUnfold_PEMDigestHeader(t *testing.T) {
	keys := newPublicKeys(t, curve.IDEdwards25519, 3)
	r, err := New(keys, hash.BLAKE3, AsSupplied)
	require.NoError(t, err)
	armored, err := r.Fold(PEM)
	require.NoError(t, err)
	assert.Contains(t, string(armored), "Digest: "+FormatDigest(r.Digest()))
	assert.Contains(t, string(armored), "NumberOfKeys: 3")

	_, err = Unfold([]byte("not a pem"), PEM)
	assert.Equal(t, status.DecodePEMFailure, status.CodeOf(err))
}

func TestFormatDigest(t *testing.T) {
	assert.Equal(t, "0a:ff:10", FormatDigest([]byte{0x0a, 0xff, 0x10}))
	assert.Equal(t, "", FormatDigest(nil))
}

func TestParseOrderPolicy(t *testing.T) {
	o, err := ParseOrderPolicy("hashes")
	require.NoError(t, err)
	assert.Equal(t, ByHash, o)
	o, err = ParseOrderPolicy("as-supplied")
	require.NoError(t, err)
	assert.Equal(t, AsSupplied, o)
	_, err = ParseOrderPolicy("random")
	assert.Error(t, err)
}
