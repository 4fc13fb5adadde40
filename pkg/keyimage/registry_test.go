package keyimage

import (
	"bytes"
	"testing"

	"github.com/mr-shifu/ringsig-lib/core/hash"
	"github.com/mr-shifu/ringsig-lib/core/math/curve"
	"github.com/mr-shifu/ringsig-lib/pkg/key"
	"github.com/mr-shifu/ringsig-lib/pkg/lsag"
	"github.com/mr-shifu/ringsig-lib/pkg/ring"
	"github.com/mr-shifu/ringsig-lib/pkg/vault"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRegistry(out *bytes.Buffer) *Registry {
	return NewRegistry(vault.NewInMemoryVault(), WithLogger(zerolog.New(out).Level(zerolog.DebugLevel)))
}

func TestRegistry_Record(t *testing.T) {
	privs := make([]*key.PrivateKey, 3)
	pubs := make([]*key.PublicKey, 3)
	for i := range privs {
		priv, err := key.GeneratePrivateKey(curve.IDP256)
		require.NoError(t, err)
		privs[i], pubs[i] = priv, priv.Public()
	}
	r, err := ring.New(pubs, hash.SHA256, ring.ByHash)
	require.NoError(t, err)

	var logs bytes.Buffer
	reg := newRegistry(&logs)

	first, err := lsag.Sign(r, privs[0], []byte("ballot A"), []byte("election"))
	require.NoError(t, err)
	second, err := lsag.Sign(r, privs[0], []byte("ballot B"), []byte("election"))
	require.NoError(t, err)
	other, err := lsag.Sign(r, privs[1], []byte("ballot A"), []byte("election"))
	require.NoError(t, err)

	linked, err := reg.Record(first, r.Digest())
	require.NoError(t, err)
	assert.False(t, linked)

	linked, err = reg.Record(other, r.Digest())
	require.NoError(t, err)
	assert.False(t, linked)

	linked, err = reg.Record(second, r.Digest())
	require.NoError(t, err)
	assert.True(t, linked)
	assert.Contains(t, logs.String(), "key image already recorded")

	image := lsag.SignatureKeyImage(first)
	assert.True(t, reg.Seen("prime256v1", image))
	rec, err := reg.Lookup("prime256v1", image)
	require.NoError(t, err)
	assert.Equal(t, image, rec.KeyImage)
	assert.Equal(t, r.Digest(), rec.RingDigest)
	assert.NotEmpty(t, rec.ID)

	require.NoError(t, reg.Forget("prime256v1", image))
	assert.False(t, reg.Seen("prime256v1", image))
	_, err = reg.Lookup("prime256v1", image)
	assert.True(t, errors.Is(err, ErrNotRecorded))

	_, err = reg.Record(nil, nil)
	assert.Error(t, err)
}

func TestRegistry_RecordAcrossHashes(t *testing.T) {
	pubs := make([]*key.PublicKey, 3)
	var signer *key.PrivateKey
	for i := range pubs {
		priv, err := key.GeneratePrivateKey(curve.IDSecp256k1)
		require.NoError(t, err)
		signer, pubs[i] = priv, priv.Public()
	}
	r1, err := ring.New(pubs, hash.SHA3_256, ring.ByHash)
	require.NoError(t, err)
	r2, err := ring.New(pubs, hash.BLAKE3, ring.AsSupplied)
	require.NoError(t, err)

	reg := newRegistry(&bytes.Buffer{})
	first, err := lsag.Sign(r1, signer, []byte("ballot A"), nil)
	require.NoError(t, err)
	second, err := lsag.Sign(r2, signer, []byte("ballot B"), nil)
	require.NoError(t, err)

	linked, err := reg.Record(first, r1.Digest())
	require.NoError(t, err)
	assert.False(t, linked)

	// refolding the members under another hash does not hide the signer
	linked, err = reg.Record(second, r2.Digest())
	require.NoError(t, err)
	assert.True(t, linked)
}
