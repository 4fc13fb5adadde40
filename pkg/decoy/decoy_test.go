package decoy

import (
	"bytes"
	"context"
	"testing"

	"github.com/mr-shifu/ringsig-lib/core/hash"
	"github.com/mr-shifu/ringsig-lib/core/math/curve"
	"github.com/mr-shifu/ringsig-lib/core/status"
	"github.com/mr-shifu/ringsig-lib/pkg/key"
	"github.com/mr-shifu/ringsig-lib/pkg/lsag"
	"github.com/mr-shifu/ringsig-lib/pkg/ring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerated(t *testing.T) {
	keys, err := Generated{Workers: 2}.PublicKeys(context.Background(), curve.IDRistretto255, 5)
	require.NoError(t, err)
	require.Len(t, keys, 5)
	for _, k := range keys {
		assert.Equal(t, curve.IDRistretto255, k.Group().ID())
	}
	assert.False(t, keys[0].Equal(keys[1]))

	_, err = Generated{}.PublicKeys(context.Background(), curve.ID(99), 2)
	assert.Equal(t, status.UnexpectedCurveType, status.CodeOf(err))
}

func TestStatic(t *testing.T) {
	gen, err := Generated{}.PublicKeys(context.Background(), curve.IDP256, 3)
	require.NoError(t, err)
	other, err := Generated{}.PublicKeys(context.Background(), curve.IDSecp256k1, 1)
	require.NoError(t, err)

	src := NewStatic(append(other, gen...)...)
	keys, err := src.PublicKeys(context.Background(), curve.IDP256, 2)
	require.NoError(t, err)
	assert.True(t, keys[0].Equal(gen[0]))
	assert.True(t, keys[1].Equal(gen[1]))

	_, err = src.PublicKeys(context.Background(), curve.IDP256, 4)
	assert.Equal(t, status.InsufficientNumberOfPublicKeys, status.CodeOf(err))
}

func TestAssemble(t *testing.T) {
	signer, err := key.GeneratePrivateKey(curve.IDP256)
	require.NoError(t, err)

	members, err := Assemble(context.Background(), signer.Public(), Generated{}, 6)
	require.NoError(t, err)
	require.Len(t, members, 6)

	r, err := ring.New(members, hash.SHA3_256, ring.ByHash)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, r.Position(signer.Public()), 0)

	sig, err := lsag.Sign(r, signer, []byte("msg"), nil)
	require.NoError(t, err)
	ok, err := lsag.Verify(r, sig, []byte("msg"), nil)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAssemble_SkipsSigner(t *testing.T) {
	signer, err := key.GeneratePrivateKey(curve.IDP256)
	require.NoError(t, err)
	decoys, err := Generated{}.PublicKeys(context.Background(), curve.IDP256, 1)
	require.NoError(t, err)

	// the source only offers the signer itself and one decoy
	src := NewStatic(signer.Public(), decoys[0])
	_, err = Assemble(context.Background(), signer.Public(), src, 2)
	require.NoError(t, err)

	_, err = Assemble(context.Background(), signer.Public(), src, 3)
	assert.Equal(t, status.InsufficientNumberOfPublicKeys, status.CodeOf(err))

	_, err = Assemble(context.Background(), signer.Public(), src, 1)
	assert.Equal(t, status.InsufficientNumberOfPublicKeys, status.CodeOf(err))
}

func TestAssemble_Position(t *testing.T) {
	signer, err := key.GeneratePrivateKey(curve.IDSecp256k1)
	require.NoError(t, err)
	decoys, err := Generated{}.PublicKeys(context.Background(), curve.IDSecp256k1, 3)
	require.NoError(t, err)

	// a zero stream always draws position 0
	members, err := assemble(context.Background(), bytes.NewReader(make([]byte, 64)), signer.Public(), NewStatic(decoys...), 4)
	require.NoError(t, err)
	assert.True(t, members[0].Equal(signer.Public()))
	for i, d := range decoys {
		assert.True(t, members[i+1].Equal(d))
	}
}
