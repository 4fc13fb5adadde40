package hash

import (
	"crypto/rand"
	"math/big"
	"testing"

	"github.com/cronokirby/saferith"
	"github.com/mr-shifu/ringsig-lib/core/math/curve"
	"github.com/mr-shifu/ringsig-lib/core/math/sample"
	"github.com/mr-shifu/ringsig-lib/core/status"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTranscript(t *testing.T) *Transcript {
	tr, err := NewTranscript(SHA3_256, "test")
	require.NoError(t, err)
	return tr
}

func TestTranscript_WriteAny(t *testing.T) {
	testFunc := func(vs ...interface{}) error {
		return newTranscript(t).WriteAny(vs...)
	}
	b := big.NewInt(35)
	n := new(saferith.Nat).SetBig(b, b.BitLen())

	s, err := sample.Scalar(rand.Reader, curve.Secp256k1{})
	require.NoError(t, err)

	assert.NoError(t, testFunc(n))
	assert.NoError(t, testFunc(s))
	assert.NoError(t, testFunc(s.ActOnBase()))
	assert.NoError(t, testFunc([]byte{1, 4, 6}, "label"))
	assert.Error(t, testFunc([]byte(nil)))
	assert.Error(t, testFunc(42))
}

func TestTranscript_WriteAny_Collision(t *testing.T) {
	testFunc := func(vs ...interface{}) []byte {
		tr := newTranscript(t)
		require.NoError(t, tr.WriteAny(vs...))
		return tr.Sum()
	}

	h1 := testFunc([]byte("1)(string\x02*data_added*"), "3")
	h2 := testFunc([]byte("1"), "*data_added*)(string\x023")
	assert.NotEqual(t, h1, h2)

	assert.NotEqual(t, testFunc([]byte("ab"), []byte("c")), testFunc([]byte("a"), []byte("bc")))
}

func TestTranscript_Clone(t *testing.T) {
	tr := newTranscript(t)
	require.NoError(t, tr.WriteAny([]byte("prefix")))

	c1 := tr.Clone()
	c2 := tr.Clone()
	assert.Equal(t, tr.Sum(), c1.Sum())

	require.NoError(t, c1.WriteAny([]byte("123")))
	require.NoError(t, c2.WriteAny([]byte("123")))
	assert.Equal(t, c1.Sum(), c2.Sum())
	assert.NotEqual(t, tr.Sum(), c1.Sum())

	forked, err := tr.Fork([]byte("123"))
	require.NoError(t, err)
	assert.Equal(t, c1.Sum(), forked.Sum())
}

func TestTranscript_LabelSeparates(t *testing.T) {
	a, err := NewTranscript(SHA256, "challenge")
	require.NoError(t, err)
	b, err := NewTranscript(SHA256, "key-image")
	require.NoError(t, err)
	assert.NotEqual(t, a.Sum(), b.Sum())

	_, err = NewTranscript(ID(200), "x")
	assert.Equal(t, status.UnexpectedHashType, status.CodeOf(err))
}

func TestToScalar(t *testing.T) {
	for _, id := range Supported() {
		for _, group := range curve.SupportedCurves() {
			s1, err := ToScalar(id, group, "challenge", []byte("message"))
			require.NoError(t, err)
			s2, err := ToScalar(id, group, "challenge", []byte("message"))
			require.NoError(t, err)
			s3, err := ToScalar(id, group, "challenge", []byte("massage"))
			require.NoError(t, err)

			assert.True(t, s1.Equal(s2), "%s/%s", id, group.Name())
			assert.False(t, s1.Equal(s3), "%s/%s", id, group.Name())
		}
	}
}

func TestToPoint(t *testing.T) {
	for _, group := range curve.SupportedCurves() {
		p1, err := ToPoint(BLAKE3, group, "key-image", []byte("member"))
		require.NoError(t, err)
		p2, err := ToPoint(BLAKE3, group, "key-image", []byte("member"))
		require.NoError(t, err)
		assert.True(t, p1.Equal(p2))
		assert.False(t, p1.IsIdentity())
		// the mapped point is not a known multiple of the generator
		assert.False(t, p1.Equal(group.NewBasePoint()))
	}
}

func TestRegistry(t *testing.T) {
	for _, id := range Supported() {
		byName, err := FromName(id.String())
		require.NoError(t, err)
		assert.Equal(t, id, byName)
		assert.Len(t, id.Sum([]byte("abc")), id.Size())
		if id.OID() != "" {
			byOID, err := FromOID(id.OID())
			require.NoError(t, err)
			assert.Equal(t, id, byOID)
		}
	}

	id, err := FromName("SHA3_256")
	require.NoError(t, err)
	assert.Equal(t, SHA3_256, id)

	_, err = FromName("md5")
	assert.Equal(t, status.UnexpectedHashType, status.CodeOf(err))
	_, err = FromOID("1.2.3")
	assert.Equal(t, status.OIDHasherNotFound, status.CodeOf(err))
}

func TestCheckCombination(t *testing.T) {
	assert.NoError(t, CheckCombination(curve.P256{}, SHA3_256))
	assert.NoError(t, CheckCombination(curve.P521{}, SHA512))
	assert.NoError(t, CheckCombination(curve.Ristretto255{}, BLAKE3))

	err := CheckCombination(curve.P521{}, SHA3_224)
	assert.Equal(t, status.UnsupportedCurveHashCombination, status.CodeOf(err))
	err = CheckCombination(curve.P256{}, Unknown)
	assert.Equal(t, status.UnexpectedHashType, status.CodeOf(err))
}
